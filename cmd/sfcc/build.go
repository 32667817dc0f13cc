package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sfcc/internal/buildpipeline"
	"sfcc/internal/diag"
	"sfcc/internal/driver"
	"sfcc/internal/ui"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] <dir>",
	Short: "Compile every component under a directory",
	Long:  "Compile every .vue file under <dir> in parallel and mirror the tree into --out.",
	Args:  cobra.ExactArgs(1),
	RunE:  buildExecution,
}

var buildUI = uiModeAuto

func init() {
	buildCmd.Flags().String("out", "dist", "output directory")
	buildCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	buildCmd.Flags().Var(&buildUI, "ui", "progress display")
}

func buildExecution(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.log.Sync() }()

	outDir, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	if jobs == 0 {
		jobs = a.cfg.Compile.Jobs
	}

	srcDir := args[0]
	info, err := os.Stat(srcDir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory (use sfcc compile for single files)", srcDir)
	}
	files, err := driver.ListComponents(srcDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		if !a.quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "no %s files under %s\n", driver.ComponentExt, srcDir)
		}
		return nil
	}
	displayFiles := make([]string, 0, len(files))
	for _, f := range files {
		displayFiles = append(displayFiles, buildpipeline.DisplayPath(srcDir, f))
	}
	a.log.Debug("build", zap.String("src", srcDir), zap.String("out", outDir), zap.Int("files", len(files)))

	req := buildpipeline.BuildRequest{
		SrcDir: srcDir,
		OutDir: outDir,
		Files:  files,
		Ext:    a.cfg.Output.Ext,
		Jobs:   jobs,
		Config: a.cfg,
	}

	var buildRes buildpipeline.BuildResult
	switch pickProgress(buildUI, a.quiet) {
	case progressTUI:
		buildRes, err = runBuildWithUI(cmd.Context(), "sfcc build", displayFiles, &req)
	case progressPlain:
		req.Progress = &ui.PlainSink{W: cmd.OutOrStdout()}
		buildRes, err = buildpipeline.Build(cmd.Context(), &req)
	default:
		buildRes, err = buildpipeline.Build(cmd.Context(), &req)
	}

	bag := diag.NewBag(a.cfg.Compile.MaxDiagnostics)
	for _, f := range buildRes.Files {
		collectDiagnostics(bag, resultDiagnostics(f.Result), f.Err)
		if f.Err != nil {
			a.log.Debug("build failed", zap.String("file", f.Path), zap.Error(f.Err))
		}
	}
	a.printDiagnostics(bag, loadSources(files...))
	if a.timings {
		printStageTimings(cmd.OutOrStdout(), buildRes.Timings)
	}
	if err != nil {
		return err
	}
	if !a.quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "built %d files into %s\n", len(buildRes.Files), formatPathForOutput(".", outDir))
	}
	return nil
}

func formatPathForOutput(root, path string) string {
	if root == "" || path == "" {
		return path
	}
	absRoot, err1 := filepath.Abs(root)
	absPath, err2 := filepath.Abs(path)
	if err1 != nil || err2 != nil {
		return path
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil {
		return path
	}
	if strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}
