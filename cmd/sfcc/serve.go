package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sfcc/internal/bridge"
	"sfcc/internal/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Answer compile requests from a host loader on stdin/stdout",
	Long: `Read msgpack compile requests from stdin and write one response per request
to stdout. Diagnostics are also logged to stderr.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("jobs", 0, "max concurrent requests (0=auto)")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.log.Sync() }()

	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	if jobs == 0 {
		jobs = a.cfg.Compile.Jobs
	}
	compiler, err := a.cfg.NewCompiler(logging.Reporter{Logger: a.log}, nil)
	if err != nil {
		return err
	}
	srv := &bridge.Server{Compiler: compiler, Jobs: jobs, Logger: a.log}
	a.log.Info("serving", zap.Int("jobs", jobs))
	return srv.Serve(cmd.Context(), os.Stdin, os.Stdout)
}
