// Package driver runs the whole compile pipeline for one component document:
// split it into sections, resolve external references, compile every section
// through its adapter, assemble the module and build its source map.
package driver

import (
	"context"
	"errors"
	"fmt"

	"sfcc/internal/assemble"
	"sfcc/internal/cssmod"
	"sfcc/internal/custom"
	"sfcc/internal/diag"
	"sfcc/internal/observ"
	"sfcc/internal/section"
	"sfcc/internal/sfc"
	"sfcc/internal/source"
	"sfcc/internal/sourcemap"
	"sfcc/internal/template"
	"sfcc/internal/trace"
	"sfcc/internal/transpile"
)

// ErrMissingCollaborator is returned by New when a required compiler is nil.
var ErrMissingCollaborator = errors.New("missing collaborator")

// Collaborators are the pluggable compilers the pipeline delegates to.
type Collaborators struct {
	Parser       sfc.Parser       // defaults to sfc.HTMLParser
	Loader       sfc.SourceLoader // defaults to sfc.FileLoader
	Transpiler   section.ScriptTranspiler
	Template     section.TemplateCompiler
	Style        section.StylePreprocessor
	Custom       map[string]section.CustomHandler
	CustomConfig section.CustomConfig
	// Reporter receives every diagnostic in addition to Result.Diagnostics.
	// It must be safe for concurrent use when sections run in parallel.
	Reporter diag.Reporter
}

// Options tune a Compiler.
type Options struct {
	ParallelSections bool
	LegacyMapTrailer bool
	MaxDiagnostics   int
	// DefaultStyleModule replaces "$style" for a bare `module` attribute.
	DefaultStyleModule string
	// ValidatePlainStyles runs non-module styles through the preprocessor.
	ValidatePlainStyles bool
	Observer            PhaseObserver
}

// Compiler is safe for concurrent use as long as its collaborators are.
type Compiler struct {
	parser   sfc.Parser
	loader   sfc.SourceLoader
	reporter diag.Reporter
	script   section.ScriptAdapter
	template section.TemplateAdapter
	style    section.StyleAdapter
	custom   section.CustomAdapter
	opts     Options
}

// New validates the collaborators and builds a Compiler.
func New(c Collaborators, opts Options) (*Compiler, error) {
	switch {
	case c.Transpiler == nil:
		return nil, fmt.Errorf("%w: script transpiler", ErrMissingCollaborator)
	case c.Template == nil:
		return nil, fmt.Errorf("%w: template compiler", ErrMissingCollaborator)
	case c.Style == nil:
		return nil, fmt.Errorf("%w: style preprocessor", ErrMissingCollaborator)
	}
	if c.Parser == nil {
		c.Parser = sfc.HTMLParser{}
	}
	if c.Loader == nil {
		c.Loader = sfc.FileLoader{}
	}
	return &Compiler{
		parser:   c.Parser,
		loader:   c.Loader,
		reporter: c.Reporter,
		script:   section.ScriptAdapter{Transpiler: c.Transpiler},
		template: section.TemplateAdapter{Compiler: c.Template, Transpiler: c.Transpiler},
		style: section.StyleAdapter{
			Preprocessor:  c.Style,
			DefaultModule: opts.DefaultStyleModule,
			ValidatePlain: opts.ValidatePlainStyles,
		},
		custom: section.CustomAdapter{Handlers: c.Custom, Config: c.CustomConfig},
		opts:   opts,
	}, nil
}

// DefaultCollaborators wires the built-in compilers with their default
// settings.
func DefaultCollaborators() (Collaborators, error) {
	tr, err := transpile.New(transpile.DefaultConfig())
	if err != nil {
		return Collaborators{}, err
	}
	tpl, err := template.New(template.WhitespaceCondense)
	if err != nil {
		return Collaborators{}, err
	}
	css, err := cssmod.New(cssmod.Config{})
	if err != nil {
		return Collaborators{}, err
	}
	handlers, err := custom.Handlers(nil)
	if err != nil {
		return Collaborators{}, err
	}
	return Collaborators{Transpiler: tr, Template: tpl, Style: css, Custom: handlers}, nil
}

// Render is the host invocation contract: the compiled module followed by
// its source map trailer.
func (c *Compiler) Render(src, filename string) (string, error) {
	res, err := c.Compile(context.Background(), src, filename)
	if err != nil {
		return "", err
	}
	return res.Output()
}

// Compile runs the pipeline for one document. A fatal section failure is
// returned as a *section.CompileError; its diagnostics have already been
// reported.
func (c *Compiler) Compile(ctx context.Context, src, filename string) (*Result, error) {
	ctx, span := trace.StartFile(ctx, "compile", filename)
	status := "ok"
	defer func() { span.End(status) }()

	bag := diag.NewBag(c.opts.MaxDiagnostics)
	rep := diag.MultiReporter{&diag.BagReporter{Bag: bag}, c.reporter}
	env := section.Env{
		Doc:      source.NewDocument(filename, src),
		Loader:   c.loader,
		Reporter: rep,
	}
	ph := &phases{ctx: ctx, file: filename, timer: observ.NewTimer(), observer: c.opts.Observer}

	res := &Result{Filename: filename, Diagnostics: bag, legacyTrailer: c.opts.LegacyMapTrailer}
	fail := func(err error) (*Result, error) {
		status = "failed"
		var ce *section.CompileError
		if errors.As(err, &ce) {
			for _, d := range ce.Diagnostics {
				rep.Report(d)
			}
		}
		return nil, err
	}

	var desc *sfc.Descriptor
	err := ph.run("parse", func(context.Context) (err error) {
		desc, err = c.parser.Parse(src, filename)
		return err
	})
	if err != nil {
		reportParseError(rep, err)
		return fail(err)
	}

	if err := ph.run("resolve", func(context.Context) (err error) {
		desc, err = env.Resolve(desc)
		return err
	}); err != nil {
		return fail(err)
	}
	res.Descriptor = desc
	res.Functional = desc.IsFunctional()
	if t := desc.Template; t != nil {
		res.TemplateLine = source.LineNumberAt(src, int(t.Start))
		if res.Functional && !t.Functional {
			diag.ReportInfo(rep, diag.TplFunctionalFromScript, source.Span{}, "component is functional: script sets `functional: true`").In(env.Doc, t.Start).Emit()
		}
	}

	var out *sections
	if err := ph.run("sections", func(ctx context.Context) (err error) {
		out, err = c.compileSections(ctx, env, desc, res.Functional)
		return err
	}); err != nil {
		return fail(err)
	}
	res.Script, res.Template, res.Styles, res.Custom = out.script, out.template, out.styles, out.custom

	var asm assemble.Output
	_ = ph.run("assemble", func(context.Context) error {
		asm = assemble.Generate(out.script, out.template, out.styles, out.custom, res.Functional)
		return nil
	})
	res.Code = asm.Code
	res.RenderFnStartLine, res.RenderFnEndLine = asm.RenderFnStartLine, asm.RenderFnEndLine

	if err := ph.run("sourcemap", func(context.Context) (err error) {
		res.Map, err = sourcemap.Build(sourcemap.Input{
			Script:            out.script,
			Source:            src,
			Filename:          filename,
			RenderFnStartLine: asm.RenderFnStartLine,
			RenderFnEndLine:   asm.RenderFnEndLine,
			TemplateLine:      res.TemplateLine,
		})
		return err
	}); err != nil {
		return fail(fmt.Errorf("%s: source map: %w", filename, err))
	}

	res.Timing = ph.timer.Report()
	return res, nil
}

func reportParseError(r diag.Reporter, err error) {
	if d, ok := parseDiagnostic(err); ok {
		r.Report(d)
	}
}

func parseDiagnostic(err error) (diag.Diagnostic, bool) {
	var pe *sfc.ParseError
	if !errors.As(err, &pe) {
		return diag.Diagnostic{}, false
	}
	code := diag.SfcUnclosedBlock
	if errors.Is(pe.Err, sfc.ErrDuplicateBlock) {
		code = diag.SfcDuplicateScript
		if pe.Tag == "template" {
			code = diag.SfcDuplicateTemplate
		}
	}
	d := diag.NewError(code, source.Span{}, fmt.Sprintf("<%s>: %v", pe.Tag, pe.Err))
	d.File = pe.Filename
	d.Pos = pe.Pos
	return d, true
}

// ErrorDiagnostics returns the diagnostics a failed Compile reported, as far
// as they can be recovered from err. A section failure without positioned
// diagnostics yields one error diagnostic carrying its message.
func ErrorDiagnostics(err error) []diag.Diagnostic {
	var ce *section.CompileError
	if errors.As(err, &ce) {
		if len(ce.Diagnostics) > 0 {
			return ce.Diagnostics
		}
		d := diag.NewError(failureCode(ce), source.Span{}, ce.Error())
		d.File = ce.Filename
		return []diag.Diagnostic{d}
	}
	if d, ok := parseDiagnostic(err); ok {
		return []diag.Diagnostic{d}
	}
	return nil
}

func failureCode(ce *section.CompileError) diag.Code {
	if errors.Is(ce, section.ErrLoad) {
		return diag.SfcLoadFailed
	}
	switch ce.Kind {
	case sfc.KindScript:
		return diag.ScrTranspile
	case sfc.KindTemplate:
		return diag.TplCompileFailed
	case sfc.KindStyle:
		return diag.StyMalformed
	default:
		return diag.CusFailed
	}
}
