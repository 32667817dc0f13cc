package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"sfcc/internal/diag"
	"sfcc/internal/source"
)

type palette struct {
	err, warn, info, code, gutter, caret, note *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		err:    mk(color.FgRed, color.Bold),
		warn:   mk(color.FgYellow, color.Bold),
		info:   mk(color.FgCyan, color.Bold),
		code:   mk(color.Bold),
		gutter: mk(color.FgBlue),
		caret:  mk(color.FgGreen, color.Bold),
		note:   mk(color.FgCyan),
	}
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes.
func Pretty(w io.Writer, bag *diag.Bag, srcs Sources, opts PrettyOpts) {
	if bag == nil {
		return
	}
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		if !d.Severity.AtLeast(opts.MinSeverity) {
			continue
		}
		prettyOne(w, d, srcs, opts, p)
	}
}

func prettyOne(w io.Writer, d diag.Diagnostic, srcs Sources, opts PrettyOpts, p palette) {
	loc := formatPath(d.File, opts.PathMode, opts.BaseDir)
	if d.Pos.Line > 0 {
		loc = fmt.Sprintf("%s:%d:%d", loc, d.Pos.Line, d.Pos.Col)
	}
	sev := p.severity(d.Severity)
	fmt.Fprintf(w, "%s: %s %s: %s\n", loc, sev.Sprint(d.Severity.String()), p.code.Sprint(d.Code.ID()), d.Message)

	if doc := srcs.lookup(d.File); doc != nil && d.Pos.Line > 0 {
		excerpt(w, doc, d, opts, p)
	}
	if opts.ShowNotes {
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  %s %s\n", p.note.Sprint("note:"), n.Msg)
		}
	}
}

func excerpt(w io.Writer, doc *source.Document, d diag.Diagnostic, opts PrettyOpts, p palette) {
	line := d.Pos.Line
	ctx := uint32(max(opts.Context, 0))
	first := uint32(1)
	if line > ctx {
		first = line - ctx
	}
	total := uint32(len(doc.LineIdx)) + 1
	last := min(line+ctx, total)
	width := len(fmt.Sprint(last))

	for n := first; n <= last; n++ {
		text := doc.Line(n)
		fmt.Fprintf(w, "%s %s\n", p.gutter.Sprintf("%*d |", width, n), text)
		if n == line {
			fmt.Fprintf(w, "%s %s\n", p.gutter.Sprintf("%*s |", width, ""), p.caret.Sprint(underline(text, d, doc)))
		}
	}
}

// underline builds the ^~~~ marker under the primary span. Widths are
// measured in terminal cells so wide runes stay aligned.
func underline(text string, d diag.Diagnostic, doc *source.Document) string {
	col := int(d.Pos.Col) - 1
	col = min(max(col, 0), len(text))

	var pad strings.Builder
	for _, r := range text[:col] {
		if r == '\t' {
			pad.WriteByte('\t')
			continue
		}
		pad.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}

	span := 1
	if !d.Primary.Empty() {
		_, end := doc.ResolveSpan(d.Primary)
		if end.Line == d.Pos.Line && int(end.Col)-1 > col {
			span = runewidth.StringWidth(text[col:min(int(end.Col)-1, len(text))])
		} else if end.Line > d.Pos.Line {
			span = runewidth.StringWidth(text[col:])
		}
	}
	span = max(span, 1)
	return pad.String() + "^" + strings.Repeat("~", span-1)
}
