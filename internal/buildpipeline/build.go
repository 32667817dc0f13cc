// Package buildpipeline compiles a tree of components into an output tree.
package buildpipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"sfcc/internal/diag"
	"sfcc/internal/driver"
	"sfcc/internal/project"
	"sfcc/internal/source"
	"sfcc/internal/trace"
)

// ErrBuildFailed is returned when at least one file did not compile.
var ErrBuildFailed = errors.New("build failed")

// BuildRequest configures a batch build.
type BuildRequest struct {
	SrcDir string
	OutDir string
	// Files defaults to every component under SrcDir.
	Files []string
	// Ext replaces the component extension of written files, ".js" by default.
	Ext    string
	Jobs   int
	Config *project.Config
	// Reporter receives diagnostics of every file. Files compile
	// concurrently, so it must be safe for concurrent use.
	Reporter diag.Reporter
	Progress ProgressSink
}

// FileOutcome is the result of one file of the build.
type FileOutcome struct {
	Path       string // relative to SrcDir, slash separated
	OutputPath string // "" when Err is set
	Result     *driver.Result
	Err        error
}

// BuildResult captures per-file outcomes and summed stage timings.
type BuildResult struct {
	Files   []FileOutcome
	Timings Timings
	Failed  int
}

// Build compiles every file of the request and writes the outputs. A file
// that fails does not stop the others; the returned error wraps
// ErrBuildFailed in that case.
func Build(ctx context.Context, req *BuildRequest) (BuildResult, error) {
	var result BuildResult
	if req == nil {
		return result, fmt.Errorf("missing build request")
	}
	if req.OutDir == "" {
		return result, fmt.Errorf("missing output directory")
	}
	files := req.Files
	if len(files) == 0 {
		if req.SrcDir == "" {
			return result, fmt.Errorf("missing source directory")
		}
		listed, err := driver.ListComponents(req.SrcDir)
		if err != nil {
			return result, fmt.Errorf("failed to list components: %w", err)
		}
		files = listed
	}
	ext := req.Ext
	if ext == "" {
		ext = ".js"
	}
	cfg := req.Config
	if cfg == nil {
		cfg = project.Default()
	}

	obs := newPhaseObserver(req.Progress, req.SrcDir, files)
	compiler, err := cfg.NewCompiler(req.Reporter, obs.OnPhase)
	if err != nil {
		return result, err
	}

	result.Files = make([]FileOutcome, len(files))
	if len(files) == 0 {
		return result, nil
	}
	for i, file := range files {
		result.Files[i].Path = obs.display[file]
	}
	emitQueued(req.Progress, result.Files)

	ctx, span := trace.Start(ctx, trace.ScopeDriver, "build")
	span.WithExtra("files", strconv.Itoa(len(files)))
	defer func() { span.WithExtra("failed", strconv.Itoa(result.Failed)).End("") }()

	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	var writeMu sync.Mutex
	for i, file := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			out := &result.Files[i]
			start := time.Now()
			out.Result, out.Err = compileFile(gctx, compiler, file)
			if out.Err != nil {
				emit(req.Progress, Event{File: out.Path, Stage: obs.stage(file), Status: StatusError, Err: out.Err, Elapsed: time.Since(start)})
				return nil
			}

			emit(req.Progress, Event{File: out.Path, Stage: StageWrite, Status: StatusWorking})
			writeStart := time.Now()
			outPath := outputPath(req.OutDir, out.Path, ext)
			if err := writeOutput(outPath, out.Result); err != nil {
				out.Err = err
				emit(req.Progress, Event{File: out.Path, Stage: StageWrite, Status: StatusError, Err: err, Elapsed: time.Since(start)})
				return nil
			}
			out.OutputPath = outPath
			writeMu.Lock()
			result.Timings.Add(StageWrite, time.Since(writeStart))
			writeMu.Unlock()
			emit(req.Progress, Event{File: out.Path, Stage: StageWrite, Status: StatusDone, Elapsed: time.Since(start)})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		emit(req.Progress, Event{Stage: StageWrite, Status: StatusError, Err: err})
		return result, err
	}
	result.Timings.Merge(obs.snapshot())

	for _, f := range result.Files {
		if f.Err != nil {
			result.Failed++
		}
	}
	if result.Failed > 0 {
		err := fmt.Errorf("%w: %d of %d files", ErrBuildFailed, result.Failed, len(files))
		emit(req.Progress, Event{Stage: StageWrite, Status: StatusError, Err: err})
		return result, err
	}
	emit(req.Progress, Event{Stage: StageWrite, Status: StatusDone, Elapsed: result.Timings.Sum(Stages...)})
	return result, nil
}

func compileFile(ctx context.Context, c *driver.Compiler, path string) (*driver.Result, error) {
	doc, err := source.Load(path)
	if err != nil {
		return nil, err
	}
	return c.Compile(ctx, doc.Content, path)
}

func writeOutput(path string, res *driver.Result) error {
	code, err := res.Output()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(code), 0o600); err != nil {
		return fmt.Errorf("failed to write build output %q: %w", path, err)
	}
	return nil
}

// outputPath mirrors the display path of a component below outDir with the
// extension replaced.
func outputPath(outDir, display, ext string) string {
	rel := filepath.FromSlash(display)
	return filepath.Join(outDir, strings.TrimSuffix(rel, filepath.Ext(rel))+ext)
}

// DisplayPath returns file relative to baseDir with forward slashes, or the
// cleaned path when it lies outside baseDir.
func DisplayPath(baseDir, file string) string {
	path := filepath.Clean(file)
	base := strings.TrimSpace(baseDir)
	if base != "" {
		absBase, errBase := filepath.Abs(base)
		absPath, errPath := filepath.Abs(path)
		if errBase == nil && errPath == nil {
			if rel, err := filepath.Rel(absBase, absPath); err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
				path = rel
			}
		}
	}
	if filepath.IsAbs(path) || strings.HasPrefix(path, "..") {
		path = filepath.Base(path)
	}
	return filepath.ToSlash(path)
}

func emitQueued(sink ProgressSink, files []FileOutcome) {
	if sink == nil {
		return
	}
	for _, file := range files {
		sink.OnEvent(Event{File: file.Path, Stage: StageParse, Status: StatusQueued})
	}
}

func emit(sink ProgressSink, ev Event) {
	if sink == nil {
		return
	}
	sink.OnEvent(ev)
}
