package sfc

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"sfcc/internal/source"
)

var (
	// ErrDuplicateBlock is returned for a second <template> or <script>.
	ErrDuplicateBlock = errors.New("duplicate block")
	// ErrUnclosedBlock is returned when a top-level block never closes.
	ErrUnclosedBlock = errors.New("unclosed block")
)

// ParseError locates a document-level failure.
type ParseError struct {
	Filename string
	Pos      source.LineCol
	Tag      string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: <%s>: %v", e.Filename, e.Pos.Line, e.Pos.Col, e.Tag, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parser turns raw text into a Descriptor.
type Parser interface {
	Parse(src, filename string) (*Descriptor, error)
}

// HTMLParser is the default Parser.
type HTMLParser struct{}

// Parse is a shortcut for HTMLParser{}.Parse.
func Parse(src, filename string) (*Descriptor, error) {
	return HTMLParser{}.Parse(src, filename)
}

type openBlock struct {
	tag     string
	attrs   map[string]string
	start   int // offset of the opening tag
	content int // offset of the first content byte
	nesting int
}

// Parse splits src into blocks.
func (HTMLParser) Parse(src, filename string) (*Descriptor, error) {
	doc := source.NewDocument(filename, src)
	desc := &Descriptor{Filename: filename}
	z := html.NewTokenizer(strings.NewReader(src))

	var cur *openBlock
	off := 0
	for {
		tt := z.Next()
		tokStart := off
		off += len(z.Raw())
		if tt == html.ErrorToken {
			if errors.Is(z.Err(), io.EOF) {
				break
			}
			return nil, fmt.Errorf("%s: tokenize: %w", filename, z.Err())
		}

		switch tt {
		case html.StartTagToken:
			name, hasAttr := z.TagName()
			tag := string(name)
			if cur == nil {
				cur = &openBlock{
					tag:     tag,
					attrs:   readAttrs(z, hasAttr),
					start:   tokStart,
					content: off,
					nesting: 1,
				}
				continue
			}
			if tag == cur.tag {
				cur.nesting++
			}
		case html.EndTagToken:
			if cur == nil {
				continue
			}
			name, _ := z.TagName()
			if string(name) != cur.tag {
				continue
			}
			cur.nesting--
			if cur.nesting > 0 {
				continue
			}
			if err := desc.add(cur, src[cur.content:tokStart], tokStart); err != nil {
				return nil, &ParseError{Filename: filename, Pos: doc.Resolve(source.Offset32(cur.start)), Tag: cur.tag, Err: err}
			}
			cur = nil
		case html.SelfClosingTagToken:
			if cur != nil {
				continue
			}
			name, hasAttr := z.TagName()
			blk := &openBlock{tag: string(name), start: tokStart, content: off}
			blk.attrs = readAttrs(z, hasAttr)
			if err := desc.add(blk, "", off); err != nil {
				return nil, &ParseError{Filename: filename, Pos: doc.Resolve(source.Offset32(tokStart)), Tag: blk.tag, Err: err}
			}
		}
	}
	if cur != nil {
		return nil, &ParseError{Filename: filename, Pos: doc.Resolve(source.Offset32(cur.start)), Tag: cur.tag, Err: ErrUnclosedBlock}
	}
	return desc, nil
}

func readAttrs(z *html.Tokenizer, more bool) map[string]string {
	attrs := make(map[string]string)
	for more {
		var key, val []byte
		key, val, more = z.TagAttr()
		attrs[string(key)] = string(val)
	}
	return attrs
}

func (d *Descriptor) add(open *openBlock, content string, end int) error {
	blk := Block{
		Type:    open.tag,
		Content: content,
		Src:     open.attrs["src"],
		Lang:    open.attrs["lang"],
		Attrs:   open.attrs,
		Start:   source.Offset32(open.content),
		End:     source.Offset32(end),
	}
	switch KindOf(open.tag) {
	case KindTemplate:
		if d.Template != nil {
			return ErrDuplicateBlock
		}
		d.Template = &Template{Block: blk, Functional: blk.Has("functional")}
	case KindScript:
		if d.Script != nil {
			return ErrDuplicateBlock
		}
		d.Script = &Script{Block: blk}
	case KindStyle:
		module, isModule := open.attrs["module"]
		d.Styles = append(d.Styles, &Style{
			Block:    blk,
			IsModule: isModule,
			Module:   module,
			Scoped:   blk.Has("scoped"),
		})
	default:
		d.Custom = append(d.Custom, &Custom{Block: blk})
	}
	return nil
}

func sortByStart(blocks []*Block) {
	sort.SliceStable(blocks, func(i, j int) bool { return blocks[i].Start < blocks[j].Start })
}
