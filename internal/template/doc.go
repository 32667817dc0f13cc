// Package template is the default section.TemplateCompiler. It turns an HTML
// template with the usual directive set into the source of a render function
// written against the runtime helpers of the component framework (_c, _v, _s,
// _l, _e, _t, _b, _k).
//
// The compiler works in three passes over the template content:
//
//   - parse: the x/net/html tokenizer delimits tags and text; tag names and
//     attributes are re-read from the raw bytes so that their case survives.
//     Every node carries a span relative to the template content.
//   - check: roots are grouped into v-if chains; a template must render
//     exactly one root element.
//   - generate: each element becomes a _c(tag, data, children) call. Identifiers
//     in bound expressions are rewritten to members of the component instance
//     (`msg` becomes `_vm.msg`) unless they are locals introduced by v-for,
//     handler arguments or known globals.
//
// Structural problems that leave nothing to generate (unterminated
// interpolation, unbalanced tags, no or several roots, malformed v-for) are
// returned as *Error. Problems that only drop a node are returned in
// TemplateOutput.Errors, and style hints in TemplateOutput.Tips.
package template
