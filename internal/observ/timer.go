// Package observ measures how long the pipeline phases of a compile take.
package observ

import (
	"sync"
	"time"
)

// Timer collects phase durations for one document. Begin and End may be
// called from different goroutines.
type Timer struct {
	mu     sync.Mutex
	now    func() time.Time
	phases []phase
}

type phase struct {
	name    string
	started time.Time
	dur     time.Duration
	done    bool
	failed  bool
}

// NewTimer returns a timer reading the wall clock.
func NewTimer() *Timer {
	return &Timer{now: time.Now, phases: make([]phase, 0, 5)}
}

// Begin opens a phase and returns the handle End expects.
func (t *Timer) Begin(name string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phases = append(t.phases, phase{name: name, started: t.now()})
	return len(t.phases) - 1
}

// End closes the phase opened by Begin. Unknown or already closed handles
// are ignored.
func (t *Timer) End(idx int, failed bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if idx < 0 || idx >= len(t.phases) || t.phases[idx].done {
		return
	}
	p := &t.phases[idx]
	p.dur = t.now().Sub(p.started)
	p.done = true
	p.failed = failed
}

// PhaseReport is the serialized form of one phase.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Failed     bool    `json:"failed,omitempty"`
	Count      int     `json:"count,omitempty"` // documents folded in by Merge
}

// Report lists the closed phases in the order they were opened.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report snapshots the closed phases. Open phases are left out.
func (t *Timer) Report() Report {
	t.mu.Lock()
	defer t.mu.Unlock()
	var r Report
	for _, p := range t.phases {
		if !p.done {
			continue
		}
		ms := millis(p.dur)
		r.Phases = append(r.Phases, PhaseReport{Name: p.name, DurationMS: ms, Failed: p.failed})
		r.TotalMS += ms
	}
	return r
}

// Slowest returns the phase with the largest duration.
func (r Report) Slowest() (PhaseReport, bool) {
	if len(r.Phases) == 0 {
		return PhaseReport{}, false
	}
	best := r.Phases[0]
	for _, p := range r.Phases[1:] {
		if p.DurationMS > best.DurationMS {
			best = p
		}
	}
	return best, true
}

// Merge sums reports of several documents phase by phase. Phases keep the
// order of first appearance; a phase is failed if it failed anywhere.
func Merge(reports ...Report) Report {
	var out Report
	index := make(map[string]int)
	for _, r := range reports {
		for _, p := range r.Phases {
			i, ok := index[p.Name]
			if !ok {
				i = len(out.Phases)
				index[p.Name] = i
				out.Phases = append(out.Phases, PhaseReport{Name: p.Name})
			}
			agg := &out.Phases[i]
			agg.DurationMS += p.DurationMS
			agg.Failed = agg.Failed || p.Failed
			agg.Count += max(p.Count, 1)
		}
		out.TotalMS += r.TotalMS
	}
	return out
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
