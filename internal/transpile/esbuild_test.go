package transpile

import (
	"errors"
	"strings"
	"testing"

	"sfcc/internal/section"
)

func mustNew(t *testing.T, cfg Config) *Esbuild {
	t.Helper()
	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New(%+v): %v", cfg, err)
	}
	return e
}

func TestTranspileTypeScript(t *testing.T) {
	e := mustNew(t, DefaultConfig())
	res, err := e.Transpile("const n: number = 1\nexport default { n }\n", "Comp.vue", "ts")
	if err != nil {
		t.Fatalf("Transpile: %v", err)
	}
	if strings.Contains(res.Code, ": number") {
		t.Errorf("type annotation survived:\n%s", res.Code)
	}
	if !strings.Contains(res.Code, "module.exports") {
		t.Errorf("expected CommonJS output:\n%s", res.Code)
	}
	if len(res.Map) == 0 {
		t.Error("expected an external source map")
	}
}

func TestTranspileSyntaxErrorIsLocated(t *testing.T) {
	e := mustNew(t, DefaultConfig())
	_, err := e.Transpile("export default {\n  data() { return { a: } }\n}\n", "Bad.vue", "js")
	var te *Error
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want *Error", err)
	}
	var de section.DiagnosticError
	if !errors.As(err, &de) || len(de.Diagnostics()) == 0 {
		t.Fatal("expected diagnostics on the error")
	}
	d := de.Diagnostics()[0]
	// line 2 starts at byte 17
	if d.Primary.Start < 17 {
		t.Errorf("diagnostic span %v does not point into line 2", d.Primary)
	}
}

func TestTranspileInlineSourcemap(t *testing.T) {
	e := mustNew(t, Config{Target: "es2015", InlineSourcemap: true})
	res, err := e.Transpile("export const a = 1\n", "I.vue", "")
	if err != nil {
		t.Fatalf("Transpile: %v", err)
	}
	if !strings.Contains(res.Code, "sourceMappingURL=data:application/json") {
		t.Errorf("expected inline map comment:\n%s", res.Code)
	}
	code, payload := section.StripInlineSourceMap(res.Code)
	if strings.Contains(code, "sourceMappingURL") || len(payload) == 0 {
		t.Errorf("StripInlineSourceMap left %q (payload %d bytes)", code, len(payload))
	}
}

func TestTranspileForcedLoader(t *testing.T) {
	e := mustNew(t, Config{Loader: "ts"})
	if _, err := e.Transpile("let x: string = 'a'\n", "F.vue", "coffee"); err != nil {
		t.Errorf("forced loader should ignore lang: %v", err)
	}
	plain := mustNew(t, Config{})
	if _, err := plain.Transpile("x", "F.vue", "coffee"); err == nil {
		t.Error("unknown lang should fail")
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	bad := []Config{
		{Target: "es1999"},
		{Format: "amd"},
		{Loader: "coffee"},
	}
	for _, cfg := range bad {
		if _, err := New(cfg); err == nil {
			t.Errorf("New(%+v) should fail", cfg)
		}
	}
}

func TestDefineIsApplied(t *testing.T) {
	e := mustNew(t, Config{Define: map[string]string{"process.env.NODE_ENV": `"test"`}})
	res, err := e.Transpile("module.exports = process.env.NODE_ENV\n", "D.vue", "js")
	if err != nil {
		t.Fatalf("Transpile: %v", err)
	}
	if !strings.Contains(res.Code, `"test"`) {
		t.Errorf("define not applied:\n%s", res.Code)
	}
}
