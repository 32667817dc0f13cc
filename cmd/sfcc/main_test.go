package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"sfcc/internal/buildpipeline"
	"sfcc/internal/driver"
)

const component = "<template>\n  <div>{{ msg }}</div>\n</template>\n\n<script>\nexport default { data() { return { msg: 1 } } }\n</script>\n\n<style module>\n.a { color: red }\n</style>\n"

// resetFlags restores every flag of cmd and its children, since the command
// tree is shared between tests.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	dir := t.TempDir()
	cfg := filepath.Join(dir, "sfcc.toml")
	if err := os.WriteFile(cfg, []byte("[log]\nlevel = \"error\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"--config", cfg, "--color", "off"}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeComponent(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCompileCommand(t *testing.T) {
	path := writeComponent(t, t.TempDir(), "Hello.vue", component)

	out, err := execute(t, "compile", "--emit", "code", path)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if _, m, err := driver.SplitTrailer(strings.TrimSuffix(out, "\n")); err != nil || m == nil {
		t.Errorf("SplitTrailer: %v\n%s", err, out)
	}

	out, err = execute(t, "compile", "--emit", "descriptor", path)
	if err != nil {
		t.Fatalf("compile descriptor: %v", err)
	}
	var view descriptorView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("descriptor JSON: %v\n%s", err, out)
	}
	if len(view.Blocks) != 3 || view.TemplateLine != 1 {
		t.Fatalf("descriptor = %+v", view)
	}
	if b := view.Blocks[1]; b.Type != "script" || b.StartLine != 5 {
		t.Errorf("script block = %+v, want start line 5", b)
	}
	if b := view.Blocks[2]; b.Type != "style" || !b.IsModule {
		t.Errorf("style block = %+v", b)
	}
}

func TestCompileCommandOutputDir(t *testing.T) {
	dir := t.TempDir()
	a := writeComponent(t, dir, "A.vue", component)
	b := writeComponent(t, dir, "B.vue", component)
	outDir := filepath.Join(dir, "out")
	if _, err := execute(t, "compile", "--emit", "map", "-o", outDir, a, b); err != nil {
		t.Fatalf("compile: %v", err)
	}
	for _, name := range []string{"A.js.map", "B.js.map"} {
		data, err := os.ReadFile(filepath.Join(outDir, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if !strings.HasPrefix(string(data), "{") {
			t.Errorf("%s = %q, want JSON", name, data)
		}
	}
	if _, err := execute(t, "compile", a, b); err == nil {
		t.Error("several files without -o accepted")
	}
}

func TestCompileCommandFailure(t *testing.T) {
	path := writeComponent(t, t.TempDir(), "Bad.vue", "<script>export default {</script>\n")
	if _, err := execute(t, "--quiet", "compile", path); err == nil || !strings.Contains(err.Error(), "1 of 1") {
		t.Errorf("err = %v, want failure count", err)
	}
}

func TestBuildCommand(t *testing.T) {
	src := t.TempDir()
	writeComponent(t, src, "a/One.vue", component)
	writeComponent(t, src, "Two.vue", component)
	outDir := filepath.Join(t.TempDir(), "dist")

	out, err := execute(t, "build", "--ui", "off", "--out", outDir, src)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !strings.Contains(out, "built 2 files") {
		t.Errorf("output = %q", out)
	}
	for _, name := range []string{"a/One.js", "Two.js"} {
		if _, err := os.Stat(filepath.Join(outDir, filepath.FromSlash(name))); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestReadFlags(t *testing.T) {
	if _, err := readEmit("ast"); err == nil {
		t.Error("readEmit accepted ast")
	}
	if k, err := readEmit(" MAP "); err != nil || k != emitMap {
		t.Errorf("readEmit = %q, %v", k, err)
	}
	var mode uiMode
	if err := mode.Set("sometimes"); err == nil {
		t.Error("uiMode accepted sometimes")
	}
	if err := mode.Set(" OFF "); err != nil || mode != uiModeOff {
		t.Errorf("uiMode.Set(OFF) = %q, %v", mode, err)
	}
	if got := pickProgress(uiModeOn, true); got != progressNone {
		t.Errorf("pickProgress(on, quiet) = %v, want none", got)
	}
	if got := pickProgress(uiModeOff, false); got != progressPlain {
		t.Errorf("pickProgress(off) = %v, want plain", got)
	}
	if on, err := readColorMode("on"); err != nil || !on {
		t.Errorf("readColorMode(on) = %v, %v", on, err)
	}
	if _, err := readColorMode("rainbow"); err == nil {
		t.Error("readColorMode accepted rainbow")
	}
}

func TestEmitName(t *testing.T) {
	tests := []struct {
		emit emitKind
		want string
	}{
		{emitCode, "Comp.js"},
		{emitMap, "Comp.js.map"},
		{emitDescriptor, "Comp.descriptor.json"},
	}
	for _, tt := range tests {
		if got := emitName("src/Comp.vue", tt.emit, ".js"); got != tt.want {
			t.Errorf("emitName(%s) = %q, want %q", tt.emit, got, tt.want)
		}
	}
}

func TestPrintStageTimings(t *testing.T) {
	var timings buildpipeline.Timings
	timings.Set(buildpipeline.StageParse, 1*time.Millisecond)
	timings.Set(buildpipeline.StageCompile, 3*time.Millisecond)

	var buf bytes.Buffer
	printStageTimings(&buf, timings)
	want := "parse          1.0 ms  25.0%\n" +
		"compile        3.0 ms  75.0%\n" +
		"total          4.0 ms\n"
	if got := buf.String(); got != want {
		t.Errorf("printStageTimings =\n%s\nwant\n%s", got, want)
	}
}

func TestTraceFlag(t *testing.T) {
	dir := t.TempDir()
	path := writeComponent(t, dir, "Hello.vue", component)
	tracePath := filepath.Join(dir, "trace.ndjson")

	if _, err := execute(t, "--trace", tracePath, "--trace-level", "detail", "compile", path); err != nil {
		t.Fatalf("compile: %v", err)
	}
	data, err := os.ReadFile(tracePath)
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)
	for _, want := range []string{`"name":"compile"`, `"name":"sections"`, "Hello.vue"} {
		if !strings.Contains(got, want) {
			t.Errorf("trace missing %s:\n%s", want, got)
		}
	}
	if strings.Contains(got, `"name":"script"`) {
		t.Errorf("detail level traced section compilers:\n%s", got)
	}
}
