package buildpipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sfcc/internal/driver"
	"sfcc/internal/section"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

const goodComponent = "<template>\n  <div>{{ msg }}</div>\n</template>\n<script>\nexport default { data() { return { msg: 1 } } }\n</script>\n"

func TestBuild(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	writeFile(t, src, "a.vue", goodComponent)
	writeFile(t, src, "sub/b.vue", goodComponent)
	writeFile(t, src, "sub/broken.vue", "<script>export default {</script>\n")

	sink := &RecordSink{}
	res, err := Build(context.Background(), &BuildRequest{SrcDir: src, OutDir: out, Jobs: 2, Progress: sink})
	if !errors.Is(err, ErrBuildFailed) {
		t.Fatalf("Build err = %v, want ErrBuildFailed", err)
	}
	if res.Failed != 1 || len(res.Files) != 3 {
		t.Fatalf("Failed = %d, files = %d; want 1 of 3", res.Failed, len(res.Files))
	}

	byPath := map[string]FileOutcome{}
	for _, f := range res.Files {
		byPath[f.Path] = f
	}
	for _, name := range []string{"a.vue", "sub/b.vue"} {
		f, ok := byPath[name]
		if !ok || f.Err != nil {
			t.Errorf("%s: outcome %+v", name, f)
			continue
		}
		want := filepath.Join(out, strings.TrimSuffix(filepath.FromSlash(name), ".vue")+".js")
		if f.OutputPath != want {
			t.Errorf("%s: OutputPath = %q, want %q", name, f.OutputPath, want)
		}
		data, err := os.ReadFile(want)
		if err != nil {
			t.Fatalf("read output: %v", err)
		}
		code, m, err := driver.SplitTrailer(string(data))
		if err != nil || m == nil || code == "" {
			t.Errorf("%s: SplitTrailer = %v", name, err)
		}
	}
	broken := byPath["sub/broken.vue"]
	if !errors.Is(broken.Err, section.ErrScript) || broken.OutputPath != "" {
		t.Errorf("broken: %+v", broken)
	}
	if _, err := os.Stat(filepath.Join(out, "sub", "broken.js")); !os.IsNotExist(err) {
		t.Errorf("broken output written: %v", err)
	}

	final := map[string]Status{}
	queued := 0
	for _, ev := range sink.Events() {
		if ev.Status == StatusQueued {
			queued++
		}
		if ev.File != "" && (ev.Status == StatusDone || ev.Status == StatusError) {
			final[ev.File] = ev.Status
		}
	}
	if queued != 3 {
		t.Errorf("queued events = %d, want 3", queued)
	}
	if final["a.vue"] != StatusDone || final["sub/b.vue"] != StatusDone || final["sub/broken.vue"] != StatusError {
		t.Errorf("final statuses = %v", final)
	}
	events := sink.Events()
	if last := events[len(events)-1]; last.File != "" || last.Status != StatusError {
		t.Errorf("last event = %+v, want overall error", last)
	}
	if !res.Timings.Has(StageParse) || !res.Timings.Has(StageWrite) {
		t.Errorf("timings missing stages: %+v", res.Timings)
	}
}

func TestBuildEmptyTree(t *testing.T) {
	res, err := Build(context.Background(), &BuildRequest{SrcDir: t.TempDir(), OutDir: t.TempDir()})
	if err != nil || len(res.Files) != 0 {
		t.Errorf("Build = %+v, %v", res, err)
	}
}

func TestBuildRequestErrors(t *testing.T) {
	if _, err := Build(context.Background(), nil); err == nil {
		t.Error("nil request accepted")
	}
	if _, err := Build(context.Background(), &BuildRequest{SrcDir: t.TempDir()}); err == nil {
		t.Error("missing OutDir accepted")
	}
}

func TestBuildCanceled(t *testing.T) {
	src := t.TempDir()
	writeFile(t, src, "a.vue", goodComponent)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Build(ctx, &BuildRequest{SrcDir: src, OutDir: t.TempDir()}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestDisplayAndOutputPath(t *testing.T) {
	tests := []struct {
		base, file string
		want       string
	}{
		{"proj", "proj/src/a.vue", "src/a.vue"},
		{"", "src/a.vue", "src/a.vue"},
		{"other", "proj/a.vue", "proj/a.vue"},
		{"", "/abs/dir/a.vue", "a.vue"},
	}
	for _, tt := range tests {
		if got := DisplayPath(tt.base, tt.file); got != tt.want {
			t.Errorf("DisplayPath(%q, %q) = %q, want %q", tt.base, tt.file, got, tt.want)
		}
	}
	if got, want := outputPath("dist", "src/a.vue", ".cjs"), filepath.Join("dist", "src", "a.cjs"); got != want {
		t.Errorf("outputPath = %q, want %q", got, want)
	}
}

func TestTimings(t *testing.T) {
	var a, b Timings
	a.Add(StageParse, 2)
	a.Add(StageParse, 3)
	b.Set(StageWrite, 4)
	a.Merge(b)
	if a.Duration(StageParse) != 5 || a.Sum(Stages...) != 9 || a.Has(StageCompile) {
		t.Errorf("timings = %+v", a)
	}
}
