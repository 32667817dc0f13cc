package template

import (
	"strings"

	"sfcc/internal/source"
)

type attr struct {
	Name     string
	Value    string
	HasValue bool
	Span     source.Span
}

type node interface {
	span() source.Span
}

type element struct {
	Tag      string
	Attrs    []attr
	Children []node
	Span     source.Span
	Closed   bool

	// directives extracted by analyze
	If, ElseIf string
	Else       bool
	For        *forClause

	analyzed bool
	forDone  bool
}

type text struct {
	Raw  string
	Span source.Span
}

func (e *element) span() source.Span { return e.Span }
func (t *text) span() source.Span    { return t.Span }

func (e *element) attr(name string) (attr, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a, true
		}
	}
	return attr{}, false
}

// take removes and returns the first attribute with one of names.
func (e *element) take(names ...string) (attr, bool) {
	for i, a := range e.Attrs {
		for _, n := range names {
			if a.Name == n {
				e.Attrs = append(e.Attrs[:i:i], e.Attrs[i+1:]...)
				return a, true
			}
		}
	}
	return attr{}, false
}

func (e *element) isComponent() bool {
	return strings.Contains(e.Tag, "-") || (e.Tag != "" && e.Tag[0] >= 'A' && e.Tag[0] <= 'Z')
}

func isBlank(n node) bool {
	t, ok := n.(*text)
	return ok && strings.TrimSpace(t.Raw) == ""
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}
