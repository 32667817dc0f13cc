package section

import (
	"fmt"

	"sfcc/internal/diag"
	"sfcc/internal/sfc"
	"sfcc/internal/source"
)

// CustomAdapter dispatches custom blocks to handlers keyed by block type,
// falling back to the block's lang.
type CustomAdapter struct {
	Handlers map[string]CustomHandler
	Config   CustomConfig
}

func (CustomAdapter) Policy() Policy { return PolicyFor(sfc.KindCustom) }

func (a CustomAdapter) handlerFor(blk *sfc.Custom) CustomHandler {
	if h, ok := a.Handlers[blk.Type]; ok {
		return h
	}
	if blk.Lang != "" {
		return a.Handlers[blk.Lang]
	}
	return nil
}

// Compile runs every block with a handler, in document order. Blocks without
// a handler are reported and skipped, and so is empty handler output. The
// result is nil when nothing was produced.
func (a CustomAdapter) Compile(env Env, blocks []*sfc.Custom) ([]CustomResult, error) {
	var out []CustomResult
	for _, blk := range blocks {
		h := a.handlerFor(blk)
		if h == nil {
			diag.ReportInfo(env.reporter(), diag.CusNoHandler, source.Span{}, fmt.Sprintf("no handler for <%s>; block ignored", blk.Type)).In(env.Doc, blk.Start).Emit()
			continue
		}
		resolved, err := env.resolve(sfc.KindCustom, blk.Block)
		if err != nil {
			return nil, err
		}
		code, err := h.Process(CustomInput{
			Type:     resolved.Type,
			Lang:     resolved.Lang,
			Content:  resolved.Content,
			Attrs:    resolved.Attrs,
			Filename: env.filename(),
		}, a.Config)
		if err != nil {
			return nil, &CompileError{
				Kind:        sfc.KindCustom,
				Filename:    env.filename(),
				Diagnostics: env.collect(err, &resolved),
				Err:         fmt.Errorf("<%s>: %w", resolved.Type, err),
			}
		}
		if code == "" {
			continue
		}
		out = append(out, CustomResult{Type: resolved.Type, Lang: resolved.Lang, Code: code})
	}
	return out, nil
}
