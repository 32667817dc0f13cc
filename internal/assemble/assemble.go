// Package assemble splices compiled sections into one CommonJS module body.
//
// Layout of the generated code:
//
//	<script code>;                         or an empty-module preamble
//	var __options__ = ...                  component options binding
//	<render fragment>                      renderFnStartLine..renderFnEndLine
//	__options__.render = render
//	__options__.staticRenderFns = staticRenderFns
//	__options__.functional = true          functional components only
//	;(function() { ... })()                style injection
//	<custom block code>
//
// A template that failed to compile contributes only the placeholder comment;
// nothing is attached to the options and the render range stays empty.
package assemble

import (
	"encoding/json"
	"strings"

	"sfcc/internal/section"
	"sfcc/internal/source"
)

// OptionsVar is the name under which generated code sees the component
// options.
const OptionsVar = "__options__"

const emptyModule = "Object.defineProperty(module.exports, \"__esModule\", {\n" +
	"  value: true\n" +
	"});\n" +
	"module.exports.default = {};\n"

const optionsBinding = "var " + OptionsVar + " = typeof module.exports.default === 'function' " +
	"? module.exports.default.options " +
	": module.exports.default\n"

// Output is the assembled module.
type Output struct {
	Code string
	// RenderFnStartLine and RenderFnEndLine delimit, 1-based and inclusive,
	// the lines of Code holding the render fragment. Both are zero when no
	// render function was spliced in.
	RenderFnStartLine int
	RenderFnEndLine   int
}

// HasRender reports whether a render fragment was spliced in.
func (o Output) HasRender() bool { return o.RenderFnStartLine > 0 }

type writer struct {
	b     strings.Builder
	lines int // completed lines
}

func (w *writer) write(s string) {
	w.b.WriteString(s)
	w.lines += strings.Count(s, "\n")
}

// nextLine is the 1-based number of the line the next write starts on; the
// buffer always ends with a newline between sections.
func (w *writer) nextLine() int { return w.lines + 1 }

// Generate assembles the sections. Any argument may be nil.
func Generate(script *section.ScriptResult, tpl *section.TemplateResult, styles []section.StyleResult, custom []section.CustomResult, functional bool) Output {
	var (
		w   writer
		out Output
	)

	if script != nil {
		w.write(strings.TrimRight(script.Code, "\n") + ";\n")
	} else {
		w.write(emptyModule)
	}
	w.write(optionsBinding)

	if tpl != nil {
		if tpl.Failed {
			w.write(section.TemplatePlaceholder + "\n")
		} else {
			fragment := strings.TrimRight(tpl.Code, "\n")
			out.RenderFnStartLine = w.nextLine()
			out.RenderFnEndLine = out.RenderFnStartLine + source.LineCount(fragment) - 1
			w.write(fragment + "\n")
			w.write(OptionsVar + ".render = render\n")
			w.write(OptionsVar + ".staticRenderFns = staticRenderFns\n")
			if functional {
				w.write(OptionsVar + ".functional = true\n")
				w.write(OptionsVar + "._compiled = true\n")
			}
		}
	}

	if len(styles) > 0 {
		w.write(styleInjection(styles, functional))
	}

	for _, c := range custom {
		w.write(";\n" + strings.TrimRight(c.Code, "\n") + "\n")
	}

	out.Code = w.b.String()
	return out
}

func styleInjection(styles []section.StyleResult, functional bool) string {
	var fn strings.Builder
	for _, s := range styles {
		key := "this[" + quote(s.ModuleName) + "]"
		fn.WriteString("    if(!" + key + ") {\n")
		fn.WriteString("      " + key + " = {};\n")
		fn.WriteString("    }\n")
		fn.WriteString("    " + key + " = Object.assign(" + key + ", " + s.Code + ");\n")
	}

	var b strings.Builder
	b.WriteString(";(function() {\n")
	b.WriteString("  var styleFn = function () {\n")
	b.WriteString(fn.String())
	b.WriteString("  }\n")
	if functional {
		b.WriteString("  var originalRender = " + OptionsVar + ".render\n")
		b.WriteString("  " + OptionsVar + ".render = function renderWithStyleInjection (h, context) {\n")
		b.WriteString("    styleFn.call(context)\n")
		b.WriteString("    return originalRender(h, context)\n")
		b.WriteString("  }\n")
	} else {
		b.WriteString("  var beforeCreate = " + OptionsVar + ".beforeCreate\n")
		b.WriteString("  " + OptionsVar + ".beforeCreate = beforeCreate ? [].concat(beforeCreate, styleFn) : [styleFn]\n")
	}
	b.WriteString("})()\n")
	return b.String()
}

func quote(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(b)
}
