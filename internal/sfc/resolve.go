package sfc

import (
	"fmt"
	"os"
	"path/filepath"
)

// SourceLoader loads the content of an external reference. path is resolved
// relative to the directory of containingFile.
type SourceLoader interface {
	LoadSrc(path, containingFile string) (string, error)
}

// FileLoader reads external references from disk.
type FileLoader struct{}

func (FileLoader) LoadSrc(path, containingFile string) (string, error) {
	full := path
	if !filepath.IsAbs(path) {
		full = filepath.Join(filepath.Dir(containingFile), filepath.FromSlash(path))
	}
	// #nosec G304 -- path comes from the component author
	data, err := os.ReadFile(full)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// MapLoader serves external references from memory, keyed by the src value.
type MapLoader map[string]string

func (m MapLoader) LoadSrc(path, containingFile string) (string, error) {
	if s, ok := m[path]; ok {
		return s, nil
	}
	return "", fmt.Errorf("open %s: %w", path, os.ErrNotExist)
}

// Resolve returns the block with external content loaded. Inline blocks and
// blocks already resolved are returned unchanged.
func (b Block) Resolve(loader SourceLoader, filename string) (Block, error) {
	if b.Src == "" || b.External {
		return b, nil
	}
	if loader == nil {
		loader = FileLoader{}
	}
	content, err := loader.LoadSrc(b.Src, filename)
	if err != nil {
		return b, fmt.Errorf("load <%s src=%q>: %w", b.Type, b.Src, err)
	}
	b.Content = content
	b.External = true
	return b, nil
}

// Resolve returns a copy of the descriptor with every external reference
// loaded. The receiver is not modified.
func (d *Descriptor) Resolve(loader SourceLoader) (*Descriptor, error) {
	if d == nil {
		return nil, nil
	}
	return d.Map(func(_ Kind, b Block) (Block, error) {
		return b.Resolve(loader, d.Filename)
	})
}

// Map returns a copy of the descriptor with fn applied to every block. The
// first error stops the walk.
func (d *Descriptor) Map(fn func(Kind, Block) (Block, error)) (*Descriptor, error) {
	if d == nil {
		return nil, nil
	}
	out := &Descriptor{Filename: d.Filename}
	if d.Template != nil {
		blk, err := fn(KindTemplate, d.Template.Block)
		if err != nil {
			return nil, err
		}
		out.Template = &Template{Block: blk, Functional: d.Template.Functional}
	}
	if d.Script != nil {
		blk, err := fn(KindScript, d.Script.Block)
		if err != nil {
			return nil, err
		}
		out.Script = &Script{Block: blk}
	}
	for _, s := range d.Styles {
		blk, err := fn(KindStyle, s.Block)
		if err != nil {
			return nil, err
		}
		cp := *s
		cp.Block = blk
		out.Styles = append(out.Styles, &cp)
	}
	for _, c := range d.Custom {
		blk, err := fn(KindCustom, c.Block)
		if err != nil {
			return nil, err
		}
		out.Custom = append(out.Custom, &Custom{Block: blk})
	}
	return out, nil
}
