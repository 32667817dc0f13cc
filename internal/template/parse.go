package template

import (
	"errors"
	"fmt"
	"html"
	"io"
	"strings"

	xhtml "golang.org/x/net/html"

	"sfcc/internal/diag"
	"sfcc/internal/source"
)

// parse builds the node tree of src. Hard diagnostics make the tree unusable.
func parse(src string) ([]node, []diag.Diagnostic) {
	var (
		roots []node
		stack []*element
		hard  []diag.Diagnostic
	)
	appendNode := func(n node) {
		if len(stack) == 0 {
			roots = append(roots, n)
			return
		}
		top := stack[len(stack)-1]
		top.Children = append(top.Children, n)
	}

	z := xhtml.NewTokenizer(strings.NewReader(src))
	off := 0
	for {
		tt := z.Next()
		raw := string(z.Raw())
		start := off
		off += len(raw)
		sp := source.Span{Start: source.Offset32(start), End: source.Offset32(off)}

		switch tt {
		case xhtml.ErrorToken:
			if !errors.Is(z.Err(), io.EOF) {
				hard = append(hard, diag.NewError(diag.TplInfo, sp, z.Err().Error()))
				return nil, hard
			}
			if len(stack) > 0 {
				open := stack[len(stack)-1]
				hard = append(hard, diag.NewError(diag.TplUnclosedElement, open.Span,
					fmt.Sprintf("element <%s> is missing its end tag", open.Tag)))
			}
			return roots, hard

		case xhtml.TextToken:
			appendNode(&text{Raw: raw, Span: sp})

		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			tag, attrs := scanTag(raw, sp.Start)
			el := &element{Tag: tag, Attrs: attrs, Span: sp}
			appendNode(el)
			if tt == xhtml.StartTagToken && !voidElements[strings.ToLower(tag)] {
				stack = append(stack, el)
			} else {
				el.Closed = true
			}

		case xhtml.EndTagToken:
			tag := endTagName(raw)
			if voidElements[strings.ToLower(tag)] {
				continue
			}
			depth := -1
			for i := len(stack) - 1; i >= 0; i-- {
				if strings.EqualFold(stack[i].Tag, tag) {
					depth = i
					break
				}
			}
			switch {
			case depth < 0:
				hard = append(hard, diag.NewError(diag.TplStrayEndTag, sp,
					fmt.Sprintf("end tag </%s> has no matching start tag", tag)))
			case depth < len(stack)-1:
				open := stack[len(stack)-1]
				hard = append(hard, diag.NewError(diag.TplUnclosedElement, open.Span,
					fmt.Sprintf("element <%s> is closed by </%s>", open.Tag, tag)))
				stack = stack[:depth]
			default:
				stack[depth].Closed = true
				stack[depth].Span = stack[depth].Span.Cover(sp)
				stack = stack[:depth]
			}
		}
		// comments and doctypes are dropped
	}
}

// scanTag reads the tag name and attributes of a raw start tag. base is the
// offset of raw in the template.
func scanTag(raw string, base uint32) (string, []attr) {
	i := 1 // '<'
	n := len(raw)
	nameStart := i
	for i < n && !isTagSpace(raw[i]) && raw[i] != '/' && raw[i] != '>' {
		i++
	}
	tag := raw[nameStart:i]

	var attrs []attr
	for i < n {
		for i < n && (isTagSpace(raw[i]) || raw[i] == '/') {
			i++
		}
		if i >= n || raw[i] == '>' {
			break
		}
		aStart := i
		for i < n && !isTagSpace(raw[i]) && raw[i] != '=' && raw[i] != '>' && !(raw[i] == '/' && i+1 < n && raw[i+1] == '>') {
			i++
		}
		a := attr{Name: raw[aStart:i]}
		j := i
		for j < n && isTagSpace(raw[j]) {
			j++
		}
		if j < n && raw[j] == '=' {
			j++
			for j < n && isTagSpace(raw[j]) {
				j++
			}
			a.HasValue = true
			if j < n && (raw[j] == '"' || raw[j] == '\'') {
				q := raw[j]
				end := strings.IndexByte(raw[j+1:], q)
				if end < 0 {
					end = n - j - 1
				}
				a.Value = raw[j+1 : j+1+end]
				j += end + 2
			} else {
				vStart := j
				for j < n && !isTagSpace(raw[j]) && raw[j] != '>' {
					j++
				}
				a.Value = raw[vStart:j]
			}
			a.Value = html.UnescapeString(a.Value)
			i = min(j, n)
		}
		a.Span = source.Span{Start: base + source.Offset32(aStart), End: base + source.Offset32(i)}
		if a.Name != "" {
			attrs = append(attrs, a)
		}
	}
	return tag, attrs
}

func endTagName(raw string) string {
	s := strings.TrimPrefix(raw, "</")
	end := strings.IndexFunc(s, func(r rune) bool { return r == '>' || r == ' ' || r == '\t' || r == '\n' || r == '\r' })
	if end >= 0 {
		s = s[:end]
	}
	return s
}

func isTagSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}
