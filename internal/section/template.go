package section

import (
	"errors"
	"fmt"

	"sfcc/internal/diag"
	"sfcc/internal/sfc"
	"sfcc/internal/source"
)

// TemplateAdapter compiles the template section and re-runs the render code
// through the script transpiler.
type TemplateAdapter struct {
	Compiler   TemplateCompiler
	Transpiler ScriptTranspiler
}

func (TemplateAdapter) Policy() Policy { return PolicyFor(sfc.KindTemplate) }

// Compile compiles blk. Template errors and tips go to env.Reporter; only a
// failure of the compiler itself or of the render-code transpilation is
// returned as an error.
func (a TemplateAdapter) Compile(env Env, blk *sfc.Template, functional bool) (*TemplateResult, error) {
	if blk == nil {
		return nil, nil
	}
	resolved, err := env.resolve(sfc.KindTemplate, blk.Block)
	if err != nil {
		return nil, err
	}

	out, err := a.Compiler.Compile(TemplateInput{
		Source:     resolved.Content,
		Filename:   env.filename(),
		Lang:       resolved.Lang,
		Functional: functional,
	})
	if err != nil {
		return nil, &CompileError{
			Kind:        sfc.KindTemplate,
			Filename:    env.filename(),
			Diagnostics: env.collect(err, &resolved),
			Err:         err,
		}
	}

	res := &TemplateResult{
		External:  resolved.External,
		StartLine: env.startLine(&resolved),
	}
	if resolved.External {
		res.ExternalSrc = resolved.Src
	}
	rep := env.reporter()
	for _, list := range [][]diag.Diagnostic{out.Errors, out.Tips} {
		for _, d := range list {
			d = env.locate(d, &resolved)
			res.Diagnostics = append(res.Diagnostics, d)
			rep.Report(d)
		}
	}

	compiled, err := a.Transpiler.Transpile(out.Code, env.filename(), "js")
	if err != nil {
		return nil, &CompileError{
			Kind:     sfc.KindTemplate,
			Filename: env.filename(),
			Err:      fmt.Errorf("render function: %w", err),
		}
	}
	res.Code, _ = StripInlineSourceMap(compiled.Code)
	return res, nil
}

// Fallback is the recoverable-policy substitute for a failed template. The
// failure is reported as a TplCompileFailed diagnostic.
func (TemplateAdapter) Fallback(env Env, blk *sfc.Template) func(error) *TemplateResult {
	return func(err error) *TemplateResult {
		d := diag.NewError(diag.TplCompileFailed, source.Span{}, err.Error())
		if blk != nil {
			d = d.Locate(env.Doc, blk.Start)
		}
		var ce *CompileError
		res := &TemplateResult{Code: TemplatePlaceholder, Failed: true}
		if errors.As(err, &ce) {
			res.Diagnostics = append(res.Diagnostics, ce.Diagnostics...)
			for _, sub := range ce.Diagnostics {
				env.reporter().Report(sub)
			}
		}
		res.Diagnostics = append(res.Diagnostics, d)
		env.reporter().Report(d)
		return res
	}
}
