package sfc

import (
	"regexp"
)

// Kind identifies a block category.
type Kind uint8

const (
	KindTemplate Kind = iota + 1
	KindScript
	KindStyle
	KindCustom
)

func (k Kind) String() string {
	switch k {
	case KindTemplate:
		return "template"
	case KindScript:
		return "script"
	case KindStyle:
		return "style"
	case KindCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// Block is the part every section descriptor shares.
type Block struct {
	Type     string            // tag name, lower-cased
	Content  string            // raw content, or the loaded external text
	Src      string            // external reference, "" when inline
	Lang     string            // lang attribute
	Attrs    map[string]string // all attributes; boolean attributes map to ""
	Start    uint32            // offset of the first content byte
	End      uint32            // offset just past the last content byte
	External bool              // Content was loaded from Src
}

// Has reports whether attribute name is present.
func (b *Block) Has(name string) bool {
	_, ok := b.Attrs[name]
	return ok
}

// Template is the markup section.
type Template struct {
	Block
	Functional bool
}

// Script is the logic section.
type Script struct {
	Block
}

// Style is one style section. Module holds the declared module name; it is
// empty when the block is marked with a bare `module` attribute.
type Style struct {
	Block
	IsModule bool
	Module   string
	Scoped   bool
}

// Custom is any other top-level block.
type Custom struct {
	Block
}

// Descriptor is the parsed document. Nil fields / empty slices mean the
// section is absent.
type Descriptor struct {
	Filename string
	Template *Template
	Script   *Script
	Styles   []*Style
	Custom   []*Custom
}

var functionalRE = regexp.MustCompile(`functional:\s*true`)

// IsFunctional reports whether the component is functional: either the
// template declares the attribute or the script sets `functional: true`
// programmatically.
func (d *Descriptor) IsFunctional() bool {
	if d == nil {
		return false
	}
	if d.Template != nil && d.Template.Functional {
		return true
	}
	return d.Script != nil && functionalRE.MatchString(d.Script.Content)
}

// Blocks returns every block in document order.
func (d *Descriptor) Blocks() []*Block {
	if d == nil {
		return nil
	}
	out := make([]*Block, 0, 2+len(d.Styles)+len(d.Custom))
	if d.Template != nil {
		out = append(out, &d.Template.Block)
	}
	if d.Script != nil {
		out = append(out, &d.Script.Block)
	}
	for _, s := range d.Styles {
		out = append(out, &s.Block)
	}
	for _, c := range d.Custom {
		out = append(out, &c.Block)
	}
	sortByStart(out)
	return out
}

// KindOf maps a top-level tag name to its block kind.
func KindOf(tag string) Kind {
	switch tag {
	case "template":
		return KindTemplate
	case "script":
		return KindScript
	case "style":
		return KindStyle
	default:
		return KindCustom
	}
}
