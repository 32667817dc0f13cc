package driver

import (
	"encoding/json"
	"fmt"

	"sfcc/internal/diag"
	"sfcc/internal/observ"
	"sfcc/internal/source"
)

type timingPayload struct {
	Kind    string               `json:"kind"`
	Path    string               `json:"path,omitempty"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

// TimingDiagnostic renders a timer report as an info diagnostic whose note
// carries the JSON payload.
func TimingDiagnostic(kind, path string, report observ.Report) diag.Diagnostic {
	if kind == "" {
		kind = "compile"
	}
	msg := fmt.Sprintf("timings (%s): total %.2f ms", kind, report.TotalMS)
	if slow, ok := report.Slowest(); ok {
		msg += fmt.Sprintf(", slowest %s %.2f ms", slow.Name, slow.DurationMS)
	}
	d := diag.New(diag.SevInfo, diag.SfcInfo, source.Span{}, msg)
	d.File = path

	data, err := json.Marshal(timingPayload{Kind: kind, Path: path, TotalMS: report.TotalMS, Phases: report.Phases})
	if err != nil {
		return d
	}
	return d.WithNote(string(data))
}

// AppendTiming adds the timing diagnostic of r to its bag. Merge grows the
// bag past its limit if necessary.
func AppendTiming(r *Result) {
	if r == nil || r.Diagnostics == nil {
		return
	}
	extra := diag.NewBag(1)
	extra.Add(TimingDiagnostic("compile", r.Filename, r.Timing))
	r.Diagnostics.Merge(extra)
}
