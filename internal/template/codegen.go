package template

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"sfcc/internal/diag"
	"sfcc/internal/source"
)

type generator struct {
	preserve bool

	hard []diag.Diagnostic
	errs []diag.Diagnostic
	tips []diag.Diagnostic
}

func (g *generator) fail(code diag.Code, sp source.Span, format string, args ...any) {
	g.hard = append(g.hard, diag.NewError(code, sp, fmt.Sprintf(format, args...)))
}

func (g *generator) soft(code diag.Code, sp source.Span, format string, args ...any) {
	g.errs = append(g.errs, diag.NewError(code, sp, fmt.Sprintf(format, args...)))
}

func (g *generator) tip(code diag.Code, sp source.Span, format string, args ...any) {
	g.tips = append(g.tips, diag.New(diag.SevWarning, code, sp, fmt.Sprintf(format, args...)))
}

// root generates the expression returned by the render function.
func (g *generator) root(nodes []node, sc scope) string {
	var chains [][]*element
	for _, n := range nodes {
		switch n := n.(type) {
		case *text:
			if strings.TrimSpace(n.Raw) != "" {
				g.soft(diag.TplTextOutsideRoot, n.Span, "text %q outside the root element is ignored", strings.TrimSpace(n.Raw))
			}
		case *element:
			g.analyze(n)
			if (n.ElseIf != "" || n.Else) && len(chains) > 0 {
				prev := chains[len(chains)-1]
				if last := prev[len(prev)-1]; !last.Else {
					chains[len(chains)-1] = append(prev, n)
					continue
				}
			}
			chains = append(chains, []*element{n})
		}
	}

	switch {
	case len(chains) == 0:
		g.fail(diag.TplNoRoot, source.Span{}, "component template requires a root element")
		return ""
	case len(chains) > 1:
		g.fail(diag.TplMultipleRoots, chains[1][0].Span,
			"component template should contain exactly one root element; use v-else-if to chain alternatives")
		return ""
	}
	chain := chains[0]
	if chain[0].Tag == "template" || chain[0].Tag == "slot" {
		g.fail(diag.TplNoRoot, chain[0].Span, "cannot use <%s> as component root element", chain[0].Tag)
		return ""
	}
	if chain[0].ElseIf != "" || chain[0].Else {
		g.soft(diag.TplElseWithoutIf, chain[0].Span, "v-else used on element <%s> without corresponding v-if", chain[0].Tag)
		chain[0].ElseIf, chain[0].Else = "", false
	}
	if chain[0].If == "" || chain[0].For != nil {
		return g.element(chain[0], sc)
	}
	return g.ifChain(chain, sc)
}

// analyze lifts the structural directives off el.
func (g *generator) analyze(el *element) {
	if el.analyzed {
		return
	}
	el.analyzed = true

	if a, ok := el.take("v-for"); ok {
		fc, ok := parseFor(a.Value)
		if !ok {
			g.fail(diag.TplBadFor, a.Span, "invalid v-for expression: %s", a.Value)
		} else {
			el.For = fc
			if _, keyed := el.attr(":key"); !keyed && el.Tag != "template" {
				if _, keyed = el.attr("v-bind:key"); !keyed {
					g.tip(diag.TplForWithoutKey, a.Span, "<%s v-for=%q>: component lists rendered with v-for should have explicit keys", el.Tag, a.Value)
				}
			}
		}
	}
	if a, ok := el.take("v-if"); ok {
		el.If = g.expr(a)
	}
	if a, ok := el.take("v-else-if"); ok {
		el.ElseIf = g.expr(a)
	}
	if _, ok := el.take("v-else"); ok {
		el.Else = true
	}
}

// expr returns the directive value, reporting an empty one.
func (g *generator) expr(a attr) string {
	v := strings.TrimSpace(a.Value)
	if v == "" {
		g.soft(diag.TplEmptyDirective, a.Span, "%s has no expression", a.Name)
		return "false"
	}
	return v
}

func (g *generator) children(nodes []node, sc scope) (string, int) {
	var (
		items     []string
		normalize int
	)
	for i := 0; i < len(nodes); i++ {
		switch n := nodes[i].(type) {
		case *text:
			if t := g.text(n, sc); t != "" {
				items = append(items, t)
			}
		case *element:
			g.analyze(n)
			if n.ElseIf != "" || n.Else {
				g.soft(diag.TplElseWithoutIf, n.Span, "v-else used on element <%s> without corresponding v-if", n.Tag)
				continue
			}
			if n.For != nil || n.Tag == "template" || n.Tag == "slot" {
				normalize = 2
			}
			if n.If == "" || n.For != nil {
				items = append(items, g.element(n, sc))
				continue
			}
			chain := []*element{n}
			j := i + 1
			for ; j < len(nodes); j++ {
				if isBlank(nodes[j]) {
					continue
				}
				next, ok := nodes[j].(*element)
				if !ok {
					break
				}
				g.analyze(next)
				if next.ElseIf == "" && !next.Else {
					break
				}
				chain = append(chain, next)
				i = j
				if next.Else {
					break
				}
			}
			for _, c := range chain {
				if c.Tag == "template" || c.Tag == "slot" {
					normalize = 2
				}
			}
			items = append(items, g.ifChain(chain, sc))
		}
	}
	return "[" + strings.Join(items, ",") + "]", normalize
}

func (g *generator) ifChain(chain []*element, sc scope) string {
	if len(chain) == 0 {
		return "_vm._e()"
	}
	el := chain[0]
	if el.Else {
		return g.element(el, sc)
	}
	cond := el.If
	if cond == "" {
		cond = el.ElseIf
	}
	return "(" + rewrite(cond, sc) + ")?" + g.element(el, sc) + ":" + g.ifChain(chain[1:], sc)
}

func (g *generator) element(el *element, sc scope) string {
	if el.For != nil && !el.forDone {
		el.forDone = true
		fc := el.For
		inner := sc.with(fc.names()...)
		params := fc.Alias
		for _, it := range []string{fc.Iterator1, fc.Iterator2} {
			if it != "" {
				params += "," + it
			}
		}
		body := g.element(el, inner)
		return "_vm._l((" + rewrite(fc.Source, sc) + "),function(" + params + "){return " + body + "})"
	}
	if el.For != nil && el.If != "" {
		cond, c := el.If, *el
		c.If = ""
		return "(" + rewrite(cond, sc) + ")?" + g.element(&c, sc) + ":_vm._e()"
	}

	switch el.Tag {
	case "template":
		out, _ := g.children(el.Children, sc)
		return out
	case "slot":
		return g.slot(el, sc)
	}

	d := g.data(el, sc)
	out := "_c('" + el.Tag + "'"
	if d.code != "" {
		out += "," + d.code
	}
	if !d.ownsChildren && len(el.Children) > 0 {
		kids, norm := g.children(el.Children, sc)
		if kids != "[]" {
			out += "," + kids
			if norm > 0 {
				out += fmt.Sprintf(",%d", norm)
			}
		}
	}
	return out + ")"
}

func (g *generator) slot(el *element, sc scope) string {
	name := `"default"`
	if a, ok := el.take("name"); ok {
		name = jsString(a.Value)
	} else if a, ok := el.take(":name", "v-bind:name"); ok {
		name = rewrite(a.Value, sc)
	}
	out := "_vm._t(" + name
	if len(el.Children) > 0 {
		kids, _ := g.children(el.Children, sc)
		if kids != "[]" {
			out += ",function(){return " + kids + "}"
		}
	}
	return out + ")"
}

// text generates a text node, or "" when the node is dropped.
func (g *generator) text(t *text, sc scope) string {
	raw := t.Raw
	if strings.TrimSpace(raw) == "" {
		switch {
		case g.preserve:
			return "_vm._v(" + jsString(raw) + ")"
		case strings.ContainsAny(raw, "\n\r"):
			return ""
		default:
			return `_vm._v(" ")`
		}
	}

	var parts []string
	rest, off := raw, t.Span.Start
	for {
		i := strings.Index(rest, "{{")
		if i < 0 {
			if rest != "" {
				parts = append(parts, jsString(g.static(rest)))
			}
			break
		}
		j := strings.Index(rest[i+2:], "}}")
		if j < 0 {
			g.fail(diag.TplUnterminatedInterp, source.Span{Start: off + source.Offset32(i), End: t.Span.End},
				"unterminated interpolation %q", strings.TrimSpace(rest[i:]))
			return ""
		}
		if i > 0 {
			parts = append(parts, jsString(g.static(rest[:i])))
		}
		exp := strings.TrimSpace(rest[i+2 : i+2+j])
		if exp == "" {
			g.soft(diag.TplEmptyDirective, source.Span{Start: off + source.Offset32(i), End: off + source.Offset32(i+4+j)}, "empty interpolation")
		} else {
			parts = append(parts, "_vm._s("+rewrite(exp, sc)+")")
		}
		consumed := i + 4 + j
		rest, off = rest[consumed:], off+source.Offset32(consumed)
	}
	if len(parts) == 0 {
		return ""
	}
	return "_vm._v(" + strings.Join(parts, "+") + ")"
}

func (g *generator) static(s string) string {
	s = html.UnescapeString(s)
	if g.preserve {
		return s
	}
	return condense(s)
}

// condense collapses each run of whitespace into one space.
func condense(s string) string {
	var b strings.Builder
	space := false
	for i := 0; i < len(s); i++ {
		if isSpace(s[i]) || s[i] == '\f' {
			if !space {
				b.WriteByte(' ')
			}
			space = true
			continue
		}
		space = false
		b.WriteByte(s[i])
	}
	return b.String()
}

func jsString(s string) string {
	var b strings.Builder
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimSuffix(b.String(), "\n")
}
