// Package sourcemap builds the v3 source map of an assembled module.
//
// Generated line numbers are those of the assembled code. Lines of the script
// section map through the transpiler's own map when there is one, and one to
// one otherwise; in both cases the original line is shifted by the line the
// script content starts on. Lines of the spliced render fragment map to the
// template line plus their distance from the start of the fragment.
package sourcemap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	gosourcemap "github.com/go-sourcemap/sourcemap"

	"sfcc/internal/section"
	"sfcc/internal/source"
)

// Map is a v3 source map.
type Map struct {
	Version        int      `json:"version"`
	File           string   `json:"file"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`
}

// JSON encodes m without HTML escaping.
func (m *Map) JSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(m); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Input describes what ended up where in the assembled code.
type Input struct {
	Script   *section.ScriptResult // nil when the document has no script
	Source   string                // the whole document
	Filename string

	RenderFnStartLine int
	RenderFnEndLine   int
	TemplateLine      int
}

// Build computes the map. It fails only when the transpiler's map cannot be
// parsed.
func Build(in Input) (*Map, error) {
	file := filepath.Base(in.Filename)
	g := newGenerator()
	g.source(file, in.Source)

	if s := in.Script; s != nil {
		name, shift := file, s.StartLine-1
		if s.External {
			name, shift = s.ExternalSrc, 0
			g.source(name, s.Source)
		}
		if shift < 0 {
			shift = 0
		}
		if err := g.script(s, name, shift); err != nil {
			return nil, err
		}
	}

	if in.RenderFnStartLine > 0 && in.TemplateLine > 0 {
		for line := in.RenderFnStartLine; line <= in.RenderFnEndLine; line++ {
			g.add(line, 0, file, in.TemplateLine+line-in.RenderFnStartLine, 0)
		}
	}

	return &Map{
		Version:        3,
		File:           file,
		Sources:        g.sources,
		SourcesContent: g.contents,
		Names:          []string{},
		Mappings:       g.mappings(),
	}, nil
}

type segment struct {
	genCol  int
	src     int
	srcLine int // 1-based
	srcCol  int
}

type generator struct {
	lines    map[int][]segment // by 1-based generated line
	sources  []string
	contents []string
	index    map[string]int
}

func newGenerator() *generator {
	return &generator{lines: make(map[int][]segment), index: make(map[string]int)}
}

func (g *generator) source(name, content string) int {
	if i, ok := g.index[name]; ok {
		return i
	}
	g.index[name] = len(g.sources)
	g.sources = append(g.sources, name)
	g.contents = append(g.contents, content)
	return len(g.sources) - 1
}

func (g *generator) add(genLine, genCol int, src string, srcLine, srcCol int) {
	seg := segment{genCol: genCol, src: g.source(src, ""), srcLine: srcLine, srcCol: srcCol}
	if segs := g.lines[genLine]; len(segs) > 0 {
		last := segs[len(segs)-1]
		if last.src == seg.src && last.srcLine == seg.srcLine && last.srcCol == seg.srcCol {
			return
		}
	}
	g.lines[genLine] = append(g.lines[genLine], seg)
}

// script maps the lines of the compiled script, which start the assembled
// code.
func (g *generator) script(s *section.ScriptResult, name string, shift int) error {
	lines := source.SplitLines(strings.TrimRight(s.Code, "\n"))
	if len(s.Map) == 0 {
		for i := range lines {
			g.add(i+1, 0, name, i+1+shift, 0)
		}
		return nil
	}

	consumer, err := gosourcemap.Parse(name, s.Map)
	if err != nil {
		return fmt.Errorf("parse script source map: %w", err)
	}
	for i, text := range lines {
		genLine := i + 1
		for _, col := range probes(text) {
			_, _, line, column, ok := consumer.Source(genLine, col)
			if !ok {
				continue
			}
			g.add(genLine, col, name, line+shift, column)
		}
	}
	return nil
}

// probes returns the columns of text where a token starts.
func probes(text string) []int {
	var cols []int
	prevWord := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		word := c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
		space := c == ' ' || c == '\t' || c == '\r'
		if !space && !(word && prevWord) {
			cols = append(cols, i)
		}
		prevWord = word
	}
	if len(cols) == 0 {
		cols = append(cols, 0)
	}
	return cols
}

func (g *generator) mappings() string {
	maxLine := 0
	for l := range g.lines {
		maxLine = max(maxLine, l)
	}

	var (
		b                     strings.Builder
		prevSrc, prevLine, pc int
	)
	for line := 1; line <= maxLine; line++ {
		if line > 1 {
			b.WriteByte(';')
		}
		segs := g.lines[line]
		sort.SliceStable(segs, func(i, j int) bool { return segs[i].genCol < segs[j].genCol })
		prevCol := 0
		for i, s := range segs {
			if i > 0 {
				b.WriteByte(',')
			}
			writeVLQ(&b, s.genCol-prevCol)
			writeVLQ(&b, s.src-prevSrc)
			writeVLQ(&b, s.srcLine-1-prevLine)
			writeVLQ(&b, s.srcCol-pc)
			prevCol, prevSrc, prevLine, pc = s.genCol, s.src, s.srcLine-1, s.srcCol
		}
	}
	return b.String()
}
