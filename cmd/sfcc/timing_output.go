package main

import (
	"fmt"
	"io"
	"time"

	"sfcc/internal/buildpipeline"
)

// printStageTimings prints one line per recorded stage with its share of
// the summed time. Stage durations add up across workers, so the total is
// CPU time spent in the pipeline, not wall time.
func printStageTimings(out io.Writer, timings buildpipeline.Timings) {
	total := timings.Sum(buildpipeline.Stages...)
	for _, stage := range buildpipeline.Stages {
		if !timings.Has(stage) {
			continue
		}
		d := timings.Duration(stage)
		share := 0.0
		if total > 0 {
			share = 100 * float64(d) / float64(total)
		}
		fmt.Fprintf(out, "%-9s %8.1f ms %5.1f%%\n", stage, ms(d), share)
	}
	fmt.Fprintf(out, "%-9s %8.1f ms\n", "total", ms(total))
}

func ms(d time.Duration) float64 { return d.Seconds() * 1000 }
