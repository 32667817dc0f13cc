package diag

import (
	"cmp"
	"slices"

	"sfcc/internal/source"
)

// Bag collects the diagnostics of one compile. It is not safe for
// concurrent use; concurrent writers go through BagReporter.
type Bag struct {
	items   []Diagnostic
	max     int
	dropped int
}

// NewBag returns a bag holding at most max diagnostics; max <= 0 means
// 65535.
func NewBag(max int) *Bag {
	if max <= 0 || max > 0xFFFF {
		max = 0xFFFF
	}
	return &Bag{items: make([]Diagnostic, 0, min(max, 16)), max: max}
}

// Add stores d unless the bag is full, in which case it is counted in
// Dropped and false is returned.
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) >= b.max {
		b.dropped++
		return false
	}
	b.items = append(b.items, d)
	return true
}

// HasErrors reports whether any diagnostic is SevError.
func (b *Bag) HasErrors() bool {
	return slices.ContainsFunc(b.items, func(d Diagnostic) bool { return d.Severity.AtLeast(SevError) })
}

func (b *Bag) Len() int { return len(b.items) }

// Dropped counts the diagnostics rejected because the bag was full.
func (b *Bag) Dropped() int { return b.dropped }

// Items returns the backing slice. Callers must not modify it.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Filter returns the diagnostics carrying code.
func (b *Bag) Filter(code Code) []Diagnostic {
	var out []Diagnostic
	for _, d := range b.items {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}

// Merge appends every diagnostic of other. The limit grows to fit so that
// merged per-file bags never lose entries.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	if total := len(b.items) + len(other.items); total > b.max {
		b.max = min(total, 0xFFFF)
	}
	room := b.max - len(b.items)
	take := min(room, len(other.items))
	b.items = append(b.items, other.items[:take]...)
	b.dropped += other.dropped + len(other.items) - take
}

// Sort orders by file, span, then most severe first and code.
func (b *Bag) Sort() {
	slices.SortStableFunc(b.items, func(x, y Diagnostic) int {
		return cmp.Or(
			cmp.Compare(x.File, y.File),
			cmp.Compare(x.Primary.Start, y.Primary.Start),
			cmp.Compare(x.Primary.End, y.Primary.End),
			cmp.Compare(y.Severity, x.Severity),
			cmp.Compare(x.Code, y.Code),
		)
	})
}

type dedupKey struct {
	code    Code
	file    string
	span    source.Span
	message string
}

// Dedup drops repeats of the same code, file, span and message, keeping
// the first.
func (b *Bag) Dedup() {
	seen := make(map[dedupKey]struct{}, len(b.items))
	b.items = slices.DeleteFunc(b.items, func(d Diagnostic) bool {
		k := dedupKey{d.Code, d.File, d.Primary, d.Message}
		if _, dup := seen[k]; dup {
			return true
		}
		seen[k] = struct{}{}
		return false
	})
}
