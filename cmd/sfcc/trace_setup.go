package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"sfcc/internal/trace"
)

var traceFlags struct {
	output    string
	level     string
	mode      string
	ringSize  int
	heartbeat time.Duration
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&traceFlags.output, "trace", "", "trace output file (- for stderr, .ndjson for JSON lines)")
	f.StringVar(&traceFlags.level, "trace-level", "off", "trace level (off|phase|detail|debug)")
	f.StringVar(&traceFlags.mode, "trace-mode", "stream", "trace storage mode (stream|ring|both)")
	f.IntVar(&traceFlags.ringSize, "trace-ring-size", 4096, "events kept in ring mode")
	f.DurationVar(&traceFlags.heartbeat, "trace-heartbeat", 0, "report in-flight files every interval (0 disables)")
}

// setupTracing attaches the tracer chosen by the --trace flags to the
// command context. The returned cleanup is safe to call more than once.
func setupTracing(cmd *cobra.Command) (func(), error) {
	level, err := trace.ParseLevel(traceFlags.level)
	if err != nil {
		return nil, err
	}
	// --trace alone means "phase"
	if level == trace.LevelOff && traceFlags.output != "" {
		level = trace.LevelPhase
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}
	mode, err := trace.ParseMode(traceFlags.mode)
	if err != nil {
		return nil, err
	}

	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		OutputPath: traceFlags.output,
		RingSize:   traceFlags.ringSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(ctx)
	cmd.Root().SetContext(ctx)

	stopHeartbeat := trace.StartHeartbeat(tracer, traceFlags.heartbeat)
	var once sync.Once
	return func() {
		once.Do(func() { closeTracer(cmd, tracer, stopHeartbeat) })
	}, nil
}

// closeTracer stops the heartbeat, dumps a ring-only recorder to stderr and
// closes the tracer.
func closeTracer(cmd *cobra.Command, tracer trace.Tracer, stopHeartbeat func()) {
	stopHeartbeat()
	if rec, ok := tracer.(*trace.Recorder); ok && rec.Mode() == trace.ModeRing {
		if err := rec.Dump(cmd.ErrOrStderr(), trace.FormatText); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: dump error: %v\n", err)
		}
	}
	if err := tracer.Close(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
	}
}
