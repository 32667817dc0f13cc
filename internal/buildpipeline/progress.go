package buildpipeline

import (
	"sync"

	"sfcc/internal/driver"
)

// stageOf maps a driver phase to the build stage it belongs to.
func stageOf(phase string) (Stage, bool) {
	switch phase {
	case "parse", "resolve":
		return StageParse, true
	case "sections":
		return StageCompile, true
	case "assemble", "sourcemap":
		return StageAssemble, true
	}
	return "", false
}

// phaseObserver turns driver phase events into progress events and sums
// the time spent per stage across files.
type phaseObserver struct {
	sink    ProgressSink
	display map[string]string // read-only after construction

	mu      sync.Mutex
	current map[string]Stage
	timings Timings
}

func newPhaseObserver(sink ProgressSink, baseDir string, files []string) *phaseObserver {
	display := make(map[string]string, len(files))
	for _, file := range files {
		display[file] = DisplayPath(baseDir, file)
	}
	return &phaseObserver{
		sink:    sink,
		display: display,
		current: make(map[string]Stage, len(files)),
	}
}

// OnPhase updates the progress UI based on compiler phase events.
func (p *phaseObserver) OnPhase(ev driver.PhaseEvent) {
	stage, ok := stageOf(ev.Name)
	if !ok {
		return
	}
	p.mu.Lock()
	if ev.Status == driver.PhaseEnd {
		p.timings.Add(stage, ev.Elapsed)
		p.mu.Unlock()
		return
	}
	if p.current[ev.File] == stage {
		p.mu.Unlock()
		return
	}
	p.current[ev.File] = stage
	p.mu.Unlock()

	name, ok := p.display[ev.File]
	if !ok {
		name = DisplayPath("", ev.File)
	}
	emit(p.sink, Event{File: name, Stage: stage, Status: StatusWorking})
}

// stage returns the last stage file entered, StageParse before any.
func (p *phaseObserver) stage(file string) Stage {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s, ok := p.current[file]; ok {
		return s
	}
	return StageParse
}

func (p *phaseObserver) snapshot() Timings {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.timings
}
