package source

// Span is a half-open byte range [Start, End) of a document. Section
// compilers produce spans relative to the section content; Rebase moves
// them into document coordinates.
type Span struct {
	Start uint32
	End   uint32
}

// Empty reports a zero-width span, used for diagnostics without a location.
func (s Span) Empty() bool { return s.Start == s.End }

// Cover grows s to include other.
func (s Span) Cover(other Span) Span {
	s.Start = min(s.Start, other.Start)
	s.End = max(s.End, other.End)
	return s
}

// Rebase shifts a section-relative span by the section's content offset.
func (s Span) Rebase(base uint32) Span {
	return Span{Start: s.Start + base, End: s.End + base}
}
