// Package transpile implements section.ScriptTranspiler on top of the esbuild
// transform API.
package transpile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"sfcc/internal/diag"
	"sfcc/internal/section"
	"sfcc/internal/source"
)

// Config is the `[script]` table of sfcc.toml.
type Config struct {
	Target          string            `toml:"target"`           // es5 .. es2022, esnext
	Format          string            `toml:"format"`           // cjs | esm
	Loader          string            `toml:"loader"`           // forces a loader regardless of lang
	Sourcemap       bool              `toml:"sourcemap"`        // produce an external map
	InlineSourcemap bool              `toml:"inline_sourcemap"` // embed the map as a data URI instead
	Minify          bool              `toml:"minify"`
	Define          map[string]string `toml:"define"`
}

// DefaultConfig returns the settings used when sfcc.toml has no [script].
func DefaultConfig() Config {
	return Config{Target: "es2018", Format: "cjs", Sourcemap: true}
}

var targets = map[string]api.Target{
	"es5":    api.ES5,
	"es2015": api.ES2015,
	"es2016": api.ES2016,
	"es2017": api.ES2017,
	"es2018": api.ES2018,
	"es2019": api.ES2019,
	"es2020": api.ES2020,
	"es2021": api.ES2021,
	"es2022": api.ES2022,
	"esnext": api.ESNext,
}

var formats = map[string]api.Format{
	"":    api.FormatCommonJS,
	"cjs": api.FormatCommonJS,
	"esm": api.FormatESModule,
}

var loaders = map[string]api.Loader{
	"":    api.LoaderJS,
	"js":  api.LoaderJS,
	"jsx": api.LoaderJSX,
	"ts":  api.LoaderTS,
	"tsx": api.LoaderTSX,
}

// Esbuild is a configured transpiler. It holds no mutable state and may be
// shared between goroutines.
type Esbuild struct {
	cfg  Config
	base api.TransformOptions
}

// New validates cfg and builds the base transform options.
func New(cfg Config) (*Esbuild, error) {
	target, ok := targets[strings.ToLower(cfg.Target)]
	if cfg.Target == "" {
		target, ok = api.ES2018, true
	}
	if !ok {
		return nil, fmt.Errorf("unsupported script target %q (expected one of: %s)", cfg.Target, keys(targets))
	}
	format, ok := formats[strings.ToLower(cfg.Format)]
	if !ok {
		return nil, fmt.Errorf("unsupported script format %q (expected cjs|esm)", cfg.Format)
	}
	if cfg.Loader != "" {
		if _, ok := loaders[cfg.Loader]; !ok {
			return nil, fmt.Errorf("unsupported script loader %q (expected one of: %s)", cfg.Loader, keys(loaders))
		}
	}

	base := api.TransformOptions{
		Target:   target,
		Format:   format,
		Define:   cfg.Define,
		LogLevel: api.LogLevelSilent,
	}
	switch {
	case cfg.InlineSourcemap:
		base.Sourcemap = api.SourceMapInline
	case cfg.Sourcemap:
		base.Sourcemap = api.SourceMapExternal
	}
	// Identifiers stay intact: the assembler refers to top-level names of
	// the render fragment.
	if cfg.Minify {
		base.MinifyWhitespace = true
		base.MinifySyntax = true
	}
	return &Esbuild{cfg: cfg, base: base}, nil
}

// Config returns the configuration the transpiler was built with.
func (e *Esbuild) Config() Config { return e.cfg }

// Transpile implements section.ScriptTranspiler.
func (e *Esbuild) Transpile(code, filename, lang string) (*section.TranspileResult, error) {
	name := lang
	if e.cfg.Loader != "" {
		name = e.cfg.Loader
	}
	loader, ok := loaders[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unsupported script lang %q", lang)
	}

	opts := e.base
	opts.Loader = loader
	opts.Sourcefile = filename

	result := api.Transform(code, opts)
	if len(result.Errors) > 0 {
		return nil, &Error{
			Filename: filename,
			Diags:    convertMessages(code, result.Errors, diag.SevError, diag.ScrTranspile),
		}
	}
	return &section.TranspileResult{
		Code:     string(result.Code),
		Map:      result.Map,
		Warnings: convertMessages(code, result.Warnings, diag.SevWarning, diag.ScrTranspileWarn),
	}, nil
}

func convertMessages(code string, msgs []api.Message, sev diag.Severity, c diag.Code) []diag.Diagnostic {
	if len(msgs) == 0 {
		return nil
	}
	doc := source.NewDocument("", code)
	out := make([]diag.Diagnostic, 0, len(msgs))
	for _, m := range msgs {
		sp := source.Span{}
		if loc := m.Location; loc != nil {
			start := lineStart(doc, loc.Line) + source.Offset32(loc.Column)
			sp = source.Span{Start: start, End: start + source.Offset32(loc.Length)}
		}
		d := diag.New(sev, c, sp, m.Text)
		for _, n := range m.Notes {
			d = d.WithNote(n.Text)
		}
		out = append(out, d)
	}
	return out
}

// lineStart returns the byte offset of the 1-based line in doc.
func lineStart(doc *source.Document, line int) uint32 {
	if line <= 1 || len(doc.LineIdx) == 0 {
		return 0
	}
	if line-2 >= len(doc.LineIdx) {
		return doc.Len()
	}
	return doc.LineIdx[line-2] + 1
}

func keys[V any](m map[string]V) string {
	out := make([]string, 0, len(m))
	for k := range m {
		if k != "" {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return strings.Join(out, ", ")
}
