package sourcemap

import (
	"strings"
	"testing"

	gosourcemap "github.com/go-sourcemap/sourcemap"
	"github.com/google/go-cmp/cmp"

	"sfcc/internal/section"
)

func TestWriteVLQ(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "A"}, {1, "C"}, {-1, "D"}, {9, "S"}, {15, "e"}, {16, "gB"}, {-16, "hB"}, {1000, "w+B"},
	}
	for _, tt := range tests {
		var b strings.Builder
		writeVLQ(&b, tt.in)
		if got := b.String(); got != tt.want {
			t.Errorf("writeVLQ(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func build(t *testing.T, in Input) (*Map, *gosourcemap.Consumer) {
	t.Helper()
	m, err := Build(in)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	b, err := m.JSON()
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	c, err := gosourcemap.Parse("", b)
	if err != nil {
		t.Fatalf("parse generated map: %v\n%s", err, b)
	}
	return m, c
}

func lookup(t *testing.T, c *gosourcemap.Consumer, genLine int) (string, int) {
	t.Helper()
	src, _, line, _, ok := c.Source(genLine, 0)
	if !ok {
		t.Fatalf("no mapping for generated line %d", genLine)
	}
	return src, line
}

func TestBuildTemplateOnly(t *testing.T) {
	m, c := build(t, Input{
		Source:            "<doc>",
		Filename:          "/src/App.vue",
		RenderFnStartLine: 3,
		RenderFnEndLine:   5,
		TemplateLine:      10,
	})
	if m.Mappings != ";;AASA;AACA;AACA" {
		t.Errorf("Mappings = %q", m.Mappings)
	}
	if m.File != "App.vue" || !cmp.Equal(m.Sources, []string{"App.vue"}) || !cmp.Equal(m.SourcesContent, []string{"<doc>"}) {
		t.Errorf("header = %+v", m)
	}
	for gen, want := range map[int]int{3: 10, 4: 11, 5: 12} {
		if _, line := lookup(t, c, gen); line != want {
			t.Errorf("line %d -> %d, want %d", gen, line, want)
		}
	}
}

func TestBuildScriptWithoutMap(t *testing.T) {
	m, _ := build(t, Input{
		Script:   &section.ScriptResult{Code: "a\nb\n", StartLine: 4},
		Source:   "doc",
		Filename: "S.vue",
	})
	if m.Mappings != "AAMA;AACA" {
		t.Errorf("Mappings = %q, want AAMA;AACA", m.Mappings)
	}
}

func TestBuildScriptThroughInputMap(t *testing.T) {
	input := []byte(`{"version":3,"sources":["S.vue"],"names":[],"mappings":"AAAA;AAAA;AACA"}`)
	_, c := build(t, Input{
		Script:   &section.ScriptResult{Code: "var a = 1;\nvar b = 2;\nvar c = 3;\n", Map: input, StartLine: 3},
		Source:   "doc",
		Filename: "S.vue",
	})
	for gen, want := range map[int]int{1: 3, 2: 3, 3: 4} {
		if _, line := lookup(t, c, gen); line != want {
			t.Errorf("line %d -> %d, want %d", gen, line, want)
		}
	}
}

func TestBuildExternalScript(t *testing.T) {
	m, c := build(t, Input{
		Script: &section.ScriptResult{
			Code:        "x\ny\n",
			Source:      "x\ny\n",
			External:    true,
			ExternalSrc: "./comp.js",
			StartLine:   7,
		},
		Source:            "<template><div/></template>\n<script src=\"./comp.js\"></script>",
		Filename:          "E.vue",
		RenderFnStartLine: 4,
		RenderFnEndLine:   4,
		TemplateLine:      1,
	})
	if diff := cmp.Diff([]string{"E.vue", "./comp.js"}, m.Sources); diff != "" {
		t.Errorf("Sources (-want +got):\n%s", diff)
	}
	if m.SourcesContent[1] != "x\ny\n" {
		t.Errorf("external content = %q", m.SourcesContent[1])
	}
	if src, line := lookup(t, c, 2); !strings.HasSuffix(src, "comp.js") || line != 2 {
		t.Errorf("script line 2 -> %s:%d, want ./comp.js:2", src, line)
	}
	if src, line := lookup(t, c, 4); !strings.HasSuffix(src, "E.vue") || line != 1 {
		t.Errorf("render line -> %s:%d, want E.vue:1", src, line)
	}
}

func TestBuildRejectsBadInputMap(t *testing.T) {
	_, err := Build(Input{Script: &section.ScriptResult{Code: "a", Map: []byte("{not json")}, Filename: "B.vue"})
	if err == nil {
		t.Error("expected an error for an unparsable input map")
	}
}

func TestJSONKeepsMarkup(t *testing.T) {
	m, err := Build(Input{Source: "<template>&</template>", Filename: "M.vue"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := m.JSON()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"sourcesContent":["<template>&</template>"]`) {
		t.Errorf("JSON = %s", b)
	}
	if !strings.HasPrefix(string(b), `{"version":3,`) || strings.HasSuffix(string(b), "\n") {
		t.Errorf("JSON framing = %q", b)
	}
}

func TestProbes(t *testing.T) {
	if diff := cmp.Diff([]int{0, 4, 6, 8, 9}, probes("var a = 1;")); diff != "" {
		t.Errorf("probes (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0}, probes("")); diff != "" {
		t.Errorf("probes of empty line (-want +got):\n%s", diff)
	}
}
