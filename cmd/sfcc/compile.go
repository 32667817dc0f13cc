package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sfcc/internal/diag"
	"sfcc/internal/driver"
	"sfcc/internal/observ"
	"sfcc/internal/sfc"
	"sfcc/internal/source"
)

var compileCmd = &cobra.Command{
	Use:   "compile [flags] <file.vue>...",
	Short: "Compile components to CommonJS modules",
	Long: `Compile one or more components. A single file is written to stdout or -o;
several files need -o to name an output directory.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCompile,
}

func init() {
	compileCmd.Flags().String("emit", "code", "what to print (code|map|descriptor)")
	compileCmd.Flags().StringP("output", "o", "", "output file, or directory for several inputs")
	compileCmd.Flags().Int("jobs", 0, "max parallel workers for several inputs (0=auto)")
}

type emitKind string

const (
	emitCode       emitKind = "code"
	emitMap        emitKind = "map"
	emitDescriptor emitKind = "descriptor"
)

func readEmit(value string) (emitKind, error) {
	switch k := emitKind(strings.ToLower(strings.TrimSpace(value))); k {
	case emitCode, emitMap, emitDescriptor:
		return k, nil
	default:
		return "", fmt.Errorf("invalid --emit value %q (expected code|map|descriptor)", value)
	}
}

func runCompile(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.log.Sync() }()

	emitStr, err := cmd.Flags().GetString("emit")
	if err != nil {
		return fmt.Errorf("failed to get emit flag: %w", err)
	}
	emit, err := readEmit(emitStr)
	if err != nil {
		return err
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if jobs == 0 {
		jobs = a.cfg.Compile.Jobs
	}
	if len(args) > 1 && output == "" {
		return fmt.Errorf("compiling %d files needs -o <dir>", len(args))
	}

	compiler, err := a.cfg.NewCompiler(nil, nil)
	if err != nil {
		return err
	}
	results, err := compiler.CompileFiles(cmd.Context(), args, jobs)
	if err != nil {
		return err
	}

	bag := diag.NewBag(a.cfg.Compile.MaxDiagnostics)
	failed := 0
	for _, fr := range results {
		collectDiagnostics(bag, resultDiagnostics(fr.Result), fr.Err)
		if fr.Err != nil {
			failed++
			a.log.Debug("compile failed", zap.String("file", fr.Path), zap.Error(fr.Err))
			continue
		}
		var w io.Writer = cmd.OutOrStdout()
		if output != "" {
			target := output
			if len(args) > 1 {
				target = filepath.Join(output, emitName(fr.Path, emit, a.cfg.Output.Ext))
			}
			f, err := createOutput(target)
			if err != nil {
				return err
			}
			err = writeEmit(f, fr.Result, emit)
			if closeErr := f.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				return err
			}
			continue
		}
		if err := writeEmit(w, fr.Result, emit); err != nil {
			return err
		}
	}
	if a.timings {
		var reports []observ.Report
		for _, fr := range results {
			if fr.Result != nil {
				bag.Add(driver.TimingDiagnostic("compile", fr.Path, fr.Result.Timing))
				reports = append(reports, fr.Result.Timing)
			}
		}
		if len(reports) > 1 {
			bag.Add(driver.TimingDiagnostic("batch", "", observ.Merge(reports...)))
		}
	}
	a.printDiagnostics(bag, loadSources(args...))

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to compile", failed, len(results))
	}
	return nil
}

func resultDiagnostics(res *driver.Result) *diag.Bag {
	if res == nil {
		return nil
	}
	return res.Diagnostics
}

func createOutput(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}
	// #nosec G304 -- path comes from the -o flag
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output: %w", err)
	}
	return f, nil
}

func emitName(input string, emit emitKind, ext string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	switch emit {
	case emitMap:
		return base + ext + ".map"
	case emitDescriptor:
		return base + ".descriptor.json"
	default:
		return base + ext
	}
}

func writeEmit(w io.Writer, res *driver.Result, emit emitKind) error {
	switch emit {
	case emitMap:
		data, err := res.Map.JSON()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	case emitDescriptor:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(describe(res))
	default:
		out, err := res.Output()
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out+"\n")
		return err
	}
}

type blockView struct {
	Type      string            `json:"type"`
	Lang      string            `json:"lang,omitempty"`
	Src       string            `json:"src,omitempty"`
	StartLine int               `json:"start_line"`
	Attrs     map[string]string `json:"attrs,omitempty"`
	IsModule  bool              `json:"is_module,omitempty"`
	Module    string            `json:"module,omitempty"`
	Scoped    bool              `json:"scoped,omitempty"`
}

type descriptorView struct {
	Filename          string      `json:"filename"`
	Functional        bool        `json:"functional"`
	TemplateLine      int         `json:"template_line,omitempty"`
	RenderFnStartLine int         `json:"render_fn_start_line,omitempty"`
	RenderFnEndLine   int         `json:"render_fn_end_line,omitempty"`
	Blocks            []blockView `json:"blocks"`
}

// describe summarises the parsed document for --emit descriptor. Start
// lines are 1-based lines of the first content byte in the component.
func describe(res *driver.Result) descriptorView {
	view := descriptorView{
		Filename:          res.Filename,
		Functional:        res.Functional,
		TemplateLine:      res.TemplateLine,
		RenderFnStartLine: res.RenderFnStartLine,
		RenderFnEndLine:   res.RenderFnEndLine,
		Blocks:            []blockView{},
	}
	d := res.Descriptor
	if d == nil {
		return view
	}
	styles := make(map[*sfc.Block]*sfc.Style, len(d.Styles))
	for _, s := range d.Styles {
		styles[&s.Block] = s
	}
	var src string
	if doc, err := source.Load(res.Filename); err == nil {
		src = doc.Content
	}
	for _, b := range d.Blocks() {
		bv := blockView{Type: b.Type, Lang: b.Lang, Src: b.Src, Attrs: b.Attrs}
		if src != "" {
			bv.StartLine = source.LineNumberAt(src, int(b.Start))
		}
		if s, ok := styles[b]; ok {
			bv.IsModule, bv.Module, bv.Scoped = s.IsModule, s.Module, s.Scoped
		}
		view.Blocks = append(view.Blocks, bv)
	}
	return view
}
