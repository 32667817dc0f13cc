package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sfcc/internal/diag"
	"sfcc/internal/diagfmt"
	"sfcc/internal/driver"
	"sfcc/internal/logging"
	"sfcc/internal/project"
	"sfcc/internal/source"
)

// app is the state every command derives from the persistent flags.
type app struct {
	cfg     *project.Config
	log     *zap.Logger
	color   bool
	quiet   bool
	timings bool
}

func loadApp(cmd *cobra.Command) (*app, error) {
	flags := cmd.Root().PersistentFlags()

	configPath, err := flags.GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	var cfg *project.Config
	if configPath != "" {
		cfg, err = project.Load(configPath)
	} else {
		var cwd string
		cwd, err = os.Getwd()
		if err == nil {
			cfg, err = project.Discover(cwd)
		}
	}
	if err != nil {
		return nil, err
	}

	if flags.Changed("max-diagnostics") {
		maxDiagnostics, err := flags.GetInt("max-diagnostics")
		if err != nil {
			return nil, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
		}
		cfg.Compile.MaxDiagnostics = maxDiagnostics
	}
	logLevel, err := flags.GetString("log-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get log-level flag: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	if cfg.Path != "" {
		log.Debug("config loaded", zap.String("path", cfg.Path))
	}

	colorMode, err := flags.GetString("color")
	if err != nil {
		return nil, fmt.Errorf("failed to get color flag: %w", err)
	}
	useColor, err := readColorMode(colorMode)
	if err != nil {
		return nil, err
	}
	color.NoColor = !useColor

	quiet, err := flags.GetBool("quiet")
	if err != nil {
		return nil, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	timings, err := flags.GetBool("timings")
	if err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}
	return &app{cfg: cfg, log: log, color: useColor, quiet: quiet, timings: timings}, nil
}

func readColorMode(value string) (bool, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return isTerminal(os.Stderr), nil
	case "on":
		return true, nil
	case "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
	}
}

// printDiagnostics pretty-prints bag to stderr. Warnings and infos are
// skipped in quiet mode.
func (a *app) printDiagnostics(bag *diag.Bag, srcs diagfmt.Sources) {
	if bag == nil || bag.Len() == 0 {
		return
	}
	opts := diagfmt.PrettyOpts{
		Color:     a.color,
		Context:   1,
		ShowNotes: true,
	}
	if a.quiet {
		opts.MinSeverity = diag.SevError
	}
	bag.Sort()
	diagfmt.Pretty(os.Stderr, bag, srcs, opts)
	if n := bag.Dropped(); n > 0 && !a.quiet {
		fmt.Fprintf(os.Stderr, "%d more diagnostics not shown (raise --max-diagnostics)\n", n)
	}
}

// collectDiagnostics merges the diagnostics of one compile outcome into bag.
func collectDiagnostics(bag *diag.Bag, diags *diag.Bag, err error) {
	if diags != nil {
		bag.Merge(diags)
	}
	for _, d := range driver.ErrorDiagnostics(err) {
		bag.Add(d)
	}
}

func loadSources(paths ...string) diagfmt.Sources {
	srcs := make(diagfmt.Sources, len(paths))
	for _, p := range paths {
		if doc, err := source.Load(p); err == nil {
			srcs[p], srcs[doc.Path] = doc, doc
		}
	}
	return srcs
}
