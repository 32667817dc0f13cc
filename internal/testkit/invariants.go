// Package testkit holds checks shared by tests of several packages.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"sfcc/internal/sfc"
)

// CheckDescriptorInvariants runs a minimal set of invariants on a parsed
// document:
// 1) every block range is non-inverted and within src
// 2) inline content is exactly the text of its range
// 3) blocks do not overlap in document order
// 4) block types agree with the section they were filed under
func CheckDescriptorInvariants(d *sfc.Descriptor, src string) error {
	if d == nil {
		return fmt.Errorf("nil descriptor")
	}
	lenContent, err := safecast.Conv[uint32](len(src))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}

	// 1) и 2) диапазоны и содержимое
	for _, b := range d.Blocks() {
		if b.End < b.Start {
			return fmt.Errorf("<%s> range inverted: %d > %d", b.Type, b.Start, b.End)
		}
		if b.End > lenContent {
			return fmt.Errorf("<%s> range end beyond content: %d > %d", b.Type, b.End, lenContent)
		}
		if b.External {
			if b.Src == "" {
				return fmt.Errorf("<%s> is external without src", b.Type)
			}
			continue
		}
		if got := src[b.Start:b.End]; got != b.Content {
			return fmt.Errorf("<%s> content %q does not match range text %q", b.Type, b.Content, got)
		}
	}

	// 3) no overlap
	var prev *sfc.Block
	for _, b := range d.Blocks() {
		if prev != nil && b.Start < prev.End {
			return fmt.Errorf("<%s> at %d overlaps <%s> ending at %d", b.Type, b.Start, prev.Type, prev.End)
		}
		prev = b
	}

	// 4) kinds
	if d.Template != nil && d.Template.Type != "template" {
		return fmt.Errorf("template section holds <%s>", d.Template.Type)
	}
	if d.Script != nil && d.Script.Type != "script" {
		return fmt.Errorf("script section holds <%s>", d.Script.Type)
	}
	for _, s := range d.Styles {
		if s.Type != "style" {
			return fmt.Errorf("style section holds <%s>", s.Type)
		}
		if s.Module != "" && !s.IsModule {
			return fmt.Errorf("style module %q without module flag", s.Module)
		}
	}
	for _, c := range d.Custom {
		if sfc.KindOf(c.Type) != sfc.KindCustom {
			return fmt.Errorf("custom section holds <%s>", c.Type)
		}
	}
	return nil
}
