package driver

import (
	"context"
	"time"

	"sfcc/internal/observ"
	"sfcc/internal/trace"
)

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus int

const (
	// PhaseStart indicates that a pipeline phase has begun.
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

// PhaseEvent describes a timing phase boundary.
type PhaseEvent struct {
	File    string
	Name    string
	Status  PhaseStatus
	Elapsed time.Duration
	Failed  bool
}

// PhaseObserver receives phase events emitted during Compile. It is called
// from the goroutine running Compile.
type PhaseObserver func(PhaseEvent)

// phases feeds the timer, the tracer and the observer from one place.
type phases struct {
	ctx      context.Context // carries the file span
	file     string
	timer    *observ.Timer
	observer PhaseObserver
}

func (p *phases) run(name string, fn func(ctx context.Context) error) error {
	if p.observer != nil {
		p.observer(PhaseEvent{File: p.file, Name: name, Status: PhaseStart})
	}
	ctx, span := trace.Start(p.ctx, trace.ScopeSection, name)
	idx := p.timer.Begin(name)
	start := time.Now()

	err := fn(ctx)

	p.timer.End(idx, err != nil)
	if err != nil {
		span.End("failed")
	} else {
		span.End("")
	}
	if p.observer != nil {
		p.observer(PhaseEvent{File: p.file, Name: name, Status: PhaseEnd, Elapsed: time.Since(start), Failed: err != nil})
	}
	return err
}
