package template

import (
	"fmt"
	"strings"

	"sfcc/internal/diag"
	"sfcc/internal/section"
	"sfcc/internal/source"
)

// Whitespace modes.
const (
	WhitespaceCondense = "condense"
	WhitespacePreserve = "preserve"
)

// Compiler is the default template compiler. The zero value condenses
// whitespace.
type Compiler struct {
	Whitespace string `toml:"whitespace"`
}

// New returns a compiler for the given whitespace mode.
func New(whitespace string) (*Compiler, error) {
	switch whitespace {
	case "", WhitespaceCondense, WhitespacePreserve:
		return &Compiler{Whitespace: whitespace}, nil
	}
	return nil, fmt.Errorf("unsupported template whitespace mode %q (expected condense|preserve)", whitespace)
}

// Compile implements section.TemplateCompiler.
func (c *Compiler) Compile(in section.TemplateInput) (*section.TemplateOutput, error) {
	if lang := strings.ToLower(in.Lang); lang != "" && lang != "html" {
		return nil, &Error{Diags: []diag.Diagnostic{
			diag.NewError(diag.TplUnsupportedLang, spanAll(in.Source), fmt.Sprintf("template lang %q is not supported", in.Lang)),
		}}
	}

	nodes, hard := parse(in.Source)
	if len(hard) > 0 {
		return nil, &Error{Diags: hard}
	}

	g := &generator{preserve: c != nil && c.Whitespace == WhitespacePreserve}
	body := g.root(nodes, nil)
	if len(g.hard) > 0 {
		return nil, &Error{Diags: g.hard}
	}

	return &section.TemplateOutput{
		Code:   renderSource(body, in.Functional),
		Errors: g.errs,
		Tips:   g.tips,
	}, nil
}

func renderSource(body string, functional bool) string {
	var b strings.Builder
	if functional {
		b.WriteString("var render = function render(_h,_vm){var _c=_vm._c;return ")
	} else {
		b.WriteString("var render = function render(){var _vm=this;var _h=_vm.$createElement;var _c=_vm._self._c||_h;return ")
	}
	b.WriteString(body)
	b.WriteString("}\nvar staticRenderFns = []\n")
	return b.String()
}

// Error is a template that could not be compiled. It implements
// section.DiagnosticError.
type Error struct {
	Diags []diag.Diagnostic
}

func (e *Error) Error() string {
	if len(e.Diags) == 0 {
		return "template compilation failed"
	}
	msg := e.Diags[0].Message
	if n := len(e.Diags) - 1; n > 0 {
		msg = fmt.Sprintf("%s (and %d more)", msg, n)
	}
	return msg
}

func (e *Error) Diagnostics() []diag.Diagnostic { return e.Diags }

func spanAll(s string) source.Span {
	return source.Span{End: source.Offset32(len(s))}
}
