package section

import (
	"errors"

	"sfcc/internal/diag"
	"sfcc/internal/sfc"
	"sfcc/internal/source"
)

// Env is the per-call context shared by the adapters.
type Env struct {
	Doc      *source.Document
	Loader   sfc.SourceLoader
	Reporter diag.Reporter
}

func (e Env) filename() string {
	if e.Doc == nil {
		return ""
	}
	return e.Doc.Path
}

func (e Env) reporter() diag.Reporter {
	return diag.OrNop(e.Reporter)
}

// locate moves a section-relative diagnostic into document coordinates.
// Diagnostics of external content keep their spans and point at the
// referenced file.
func (e Env) locate(d diag.Diagnostic, blk *sfc.Block) diag.Diagnostic {
	if blk.External {
		d.File = blk.Src
		pos := source.NewDocument(blk.Src, blk.Content).Resolve(d.Primary.Start)
		d.Pos = pos
		return d
	}
	return d.Locate(e.Doc, blk.Start)
}

func (e Env) startLine(blk *sfc.Block) int {
	if blk.External || e.Doc == nil {
		return 1
	}
	return source.LineNumberAt(e.Doc.Content, int(blk.Start))
}

// resolve loads an external reference unless the block is already resolved.
func (e Env) resolve(kind sfc.Kind, blk sfc.Block) (sfc.Block, error) {
	out, err := blk.Resolve(e.Loader, e.filename())
	if err != nil {
		ce := loadError(kind, e.filename(), err)
		ce.Diagnostics = []diag.Diagnostic{
			diag.NewError(diag.SfcLoadFailed, source.Span{}, err.Error()).Locate(e.Doc, blk.Start),
		}
		return blk, ce
	}
	return out, nil
}

func (e Env) collect(err error, blk *sfc.Block) []diag.Diagnostic {
	var de DiagnosticError
	if !errors.As(err, &de) {
		return nil
	}
	src := de.Diagnostics()
	out := make([]diag.Diagnostic, 0, len(src))
	for _, d := range src {
		out = append(out, e.locate(d, blk))
	}
	return out
}

// Resolve returns a copy of d with every external reference loaded through
// e.Loader. A failure is a *CompileError of the block's kind that also
// matches ErrLoad.
func (e Env) Resolve(d *sfc.Descriptor) (*sfc.Descriptor, error) {
	return d.Map(e.resolve)
}
