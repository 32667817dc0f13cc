package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"sfcc/internal/diag"
	"sfcc/internal/source"
)

func located(doc *source.Document, code diag.Code, start, end uint32, msg string) diag.Diagnostic {
	d := diag.NewError(code, source.Span{Start: start, End: end}, msg)
	d.File = doc.Path
	d.Pos = doc.Resolve(start)
	return d
}

func TestPrettyExcerpt(t *testing.T) {
	doc := source.NewDocument("src/a.vue", "line one\nabc oops xyz\nlast")
	bag := diag.NewBag(10)
	bag.Add(located(doc, diag.TplNoRoot, 13, 17, "bad thing").WithNote("try again"))

	var buf bytes.Buffer
	Pretty(&buf, bag, Sources{doc.Path: doc}, PrettyOpts{ShowNotes: true})
	want := "src/a.vue:2:5: ERROR TPL2002: bad thing\n" +
		"2 | abc oops xyz\n" +
		"  |     ^~~~\n" +
		"  note: try again\n"
	if got := buf.String(); got != want {
		t.Errorf("Pretty =\n%s\nwant\n%s", got, want)
	}
}

func TestPrettyContextAndWideRunes(t *testing.T) {
	doc := source.NewDocument("a.vue", "first\n日本 oops\nthird\n")
	bag := diag.NewBag(10)
	bag.Add(located(doc, diag.TplStrayEndTag, 13, 17, "wide"))

	var buf bytes.Buffer
	Pretty(&buf, bag, Sources{"a.vue": doc}, PrettyOpts{Context: 1, PathMode: PathModeBasename})
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	want := []string{
		"a.vue:2:8: ERROR TPL2005: wide",
		"1 | first",
		"2 | 日本 oops",
		"  |      ^~~~",
		"3 | third",
	}
	if len(lines) < len(want) {
		t.Fatalf("output too short:\n%s", buf.String())
	}
	for i, w := range want {
		if lines[i] != w {
			t.Errorf("line %d = %q, want %q", i, lines[i], w)
		}
	}
}

func TestPrettyWithoutSource(t *testing.T) {
	bag := diag.NewBag(10)
	d := diag.New(diag.SevWarning, diag.TplForWithoutKey, source.Span{}, "missing key")
	bag.Add(d)
	var buf bytes.Buffer
	Pretty(&buf, bag, nil, PrettyOpts{})
	if got, want := buf.String(), "<input>: WARNING TPL2101: missing key\n"; got != want {
		t.Errorf("Pretty = %q, want %q", got, want)
	}
}

func TestFormatPath(t *testing.T) {
	tests := []struct {
		mode PathMode
		base string
		want string
	}{
		{PathModeAuto, "", "proj/src/a.vue"},
		{PathModeBasename, "", "a.vue"},
		{PathModeRelative, "proj", "src/a.vue"},
	}
	for _, tt := range tests {
		if got := formatPath("proj/src/a.vue", tt.mode, tt.base); got != tt.want {
			t.Errorf("formatPath(mode %d) = %q, want %q", tt.mode, got, tt.want)
		}
	}
}

func TestJSON(t *testing.T) {
	doc := source.NewDocument("a.vue", "line one\nabc oops xyz\n")
	bag := diag.NewBag(10)
	bag.Add(located(doc, diag.TplNoRoot, 13, 17, "first").WithNote("hidden"))
	bag.Add(located(doc, diag.TplNoRoot, 0, 1, "second"))

	var buf bytes.Buffer
	if err := JSON(&buf, bag, JSONOpts{IncludePositions: true, Max: 1}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out.Count != 1 || len(out.Diagnostics) != 1 {
		t.Fatalf("count = %d, want 1", out.Count)
	}
	got := out.Diagnostics[0]
	if got.Code != "TPL2002" || got.Severity != "ERROR" || got.Location.Line != 2 || got.Location.Col != 5 {
		t.Errorf("diagnostic = %+v", got)
	}
	if got.Notes != nil {
		t.Errorf("notes included without IncludeNotes: %v", got.Notes)
	}
}

func TestPrettyMinSeverity(t *testing.T) {
	bag := diag.NewBag(10)
	bag.Add(diag.New(diag.SevWarning, diag.TplForWithoutKey, source.Span{}, "missing key"))
	bag.Add(diag.NewError(diag.TplNoRoot, source.Span{}, "no root"))

	var buf bytes.Buffer
	Pretty(&buf, bag, nil, PrettyOpts{MinSeverity: diag.SevError})
	if got, want := buf.String(), "<input>: ERROR TPL2002: no root\n"; got != want {
		t.Errorf("Pretty = %q, want %q", got, want)
	}
}
