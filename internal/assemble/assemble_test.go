package assemble

import (
	"strings"
	"testing"

	"sfcc/internal/section"
	"sfcc/internal/source"
)

var script = &section.ScriptResult{Code: "a\nb\n"}

func TestGenerateScriptOnly(t *testing.T) {
	out := Generate(script, nil, nil, nil, false)
	want := "a\nb;\n" + optionsBinding
	if out.Code != want {
		t.Errorf("Code =\n%s\nwant\n%s", out.Code, want)
	}
	if out.HasRender() || out.RenderFnStartLine != 0 || out.RenderFnEndLine != 0 {
		t.Errorf("unexpected render range %d..%d", out.RenderFnStartLine, out.RenderFnEndLine)
	}
	if strings.Contains(out.Code, ".functional") {
		t.Error("functional flag must be absent without a template")
	}
}

func TestGenerateRenderRange(t *testing.T) {
	tpl := &section.TemplateResult{Code: "var render = function () {\n  return 1;\n};\nvar staticRenderFns = [];\n"}
	out := Generate(script, tpl, nil, nil, false)
	if out.RenderFnStartLine != 4 || out.RenderFnEndLine != 7 {
		t.Fatalf("render range = %d..%d, want 4..7", out.RenderFnStartLine, out.RenderFnEndLine)
	}
	lines := source.SplitLines(out.Code)
	if lines[3] != "var render = function () {" || lines[6] != "var staticRenderFns = [];" {
		t.Errorf("range does not cover the fragment:\n%s", out.Code)
	}
	for _, want := range []string{"__options__.render = render\n", "__options__.staticRenderFns = staticRenderFns\n"} {
		if !strings.Contains(out.Code, want) {
			t.Errorf("missing %q", want)
		}
	}
}

func TestGenerateFailedTemplate(t *testing.T) {
	tpl := &section.TemplateResult{Code: section.TemplatePlaceholder, Failed: true}
	out := Generate(script, tpl, nil, nil, true)
	if !strings.Contains(out.Code, section.TemplatePlaceholder) {
		t.Errorf("placeholder missing:\n%s", out.Code)
	}
	if strings.Contains(out.Code, ".render = render") || strings.Contains(out.Code, ".functional") {
		t.Errorf("failed template must not attach anything:\n%s", out.Code)
	}
	if out.HasRender() {
		t.Error("failed template has no render range")
	}
	// the script part is unaffected by the failure
	bare := Generate(script, nil, nil, nil, false)
	if !strings.HasPrefix(out.Code, bare.Code) {
		t.Errorf("script portion changed:\n%s\nvs\n%s", out.Code, bare.Code)
	}
}

func TestGenerateEmptyModule(t *testing.T) {
	out := Generate(nil, nil, nil, nil, false)
	if !strings.HasPrefix(out.Code, emptyModule) {
		t.Errorf("empty module preamble missing:\n%s", out.Code)
	}
}

func TestGenerateStyles(t *testing.T) {
	styles := []section.StyleResult{
		{ModuleName: "$style", Code: `{"a":"a_1"}`},
		{ModuleName: "theme", Code: `{}`},
	}
	out := Generate(script, &section.TemplateResult{Code: "var render\nvar staticRenderFns"}, styles, nil, false)
	for _, want := range []string{
		`this["$style"] = Object.assign(this["$style"], {"a":"a_1"});`,
		`this["theme"] = Object.assign(this["theme"], {});`,
		"__options__.beforeCreate = beforeCreate ? [].concat(beforeCreate, styleFn) : [styleFn]",
	} {
		if !strings.Contains(out.Code, want) {
			t.Errorf("missing %q in\n%s", want, out.Code)
		}
	}

	fn := Generate(script, &section.TemplateResult{Code: "var render\nvar staticRenderFns"}, styles, nil, true)
	for _, want := range []string{
		"__options__.functional = true\n",
		"__options__._compiled = true\n",
		"renderWithStyleInjection",
	} {
		if !strings.Contains(fn.Code, want) {
			t.Errorf("functional output missing %q", want)
		}
	}
	if strings.Contains(fn.Code, "beforeCreate") {
		t.Error("functional components inject styles through render")
	}
}

func TestGenerateCustomOrder(t *testing.T) {
	custom := []section.CustomResult{{Type: "i18n", Code: "first()\n"}, {Type: "docs", Code: "second()"}}
	out := Generate(script, nil, nil, custom, false)
	i, j := strings.Index(out.Code, "first()"), strings.Index(out.Code, "second()")
	if i < 0 || j < 0 || i > j {
		t.Errorf("custom code out of order:\n%s", out.Code)
	}
	if !strings.HasSuffix(out.Code, "second()\n") {
		t.Errorf("output should end with the last custom block:\n%s", out.Code)
	}
}
