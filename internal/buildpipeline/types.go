package buildpipeline

import "time"

// Stage describes a high-level pipeline phase of one file.
type Stage string

const (
	// StageParse covers parsing and external source resolution.
	StageParse Stage = "parse"
	// StageCompile covers the section compilers.
	StageCompile Stage = "compile"
	// StageAssemble covers module assembly and the source map.
	StageAssemble Stage = "assemble"
	// StageWrite covers writing the output file.
	StageWrite Stage = "write"
)

// Stages lists the stages in execution order.
var Stages = []Stage{StageParse, StageCompile, StageAssemble, StageWrite}

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the task is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the task is currently working.
	StatusWorking Status = "working"
	// StatusDone indicates the task is done.
	StatusDone Status = "done"
	// StatusError indicates the task encountered an error.
	StatusError Status = "error"
)

// Event reports progress for a file (or for the overall pipeline when File is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Build calls it from several
// goroutines.
type ProgressSink interface {
	OnEvent(Event)
}

// Timings sums durations per stage. The zero value is empty and a Timings
// is copied by value.
type Timings struct {
	d    [len(stageOrder)]time.Duration
	seen [len(stageOrder)]bool
}

var stageOrder = [...]Stage{StageParse, StageCompile, StageAssemble, StageWrite}

func stageIndex(s Stage) int {
	for i, st := range stageOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// Set replaces the duration of stage. Unknown stages are ignored.
func (t *Timings) Set(stage Stage, dur time.Duration) {
	if i := stageIndex(stage); i >= 0 {
		t.d[i], t.seen[i] = dur, true
	}
}

// Add accumulates dur into stage.
func (t *Timings) Add(stage Stage, dur time.Duration) {
	if i := stageIndex(stage); i >= 0 {
		t.d[i] += dur
		t.seen[i] = true
	}
}

// Merge adds every recorded stage of other into t.
func (t *Timings) Merge(other Timings) {
	for i := range stageOrder {
		if other.seen[i] {
			t.d[i] += other.d[i]
			t.seen[i] = true
		}
	}
}

// Has reports whether stage was recorded, even with a zero duration.
func (t Timings) Has(stage Stage) bool {
	i := stageIndex(stage)
	return i >= 0 && t.seen[i]
}

func (t Timings) Duration(stage Stage) time.Duration {
	if i := stageIndex(stage); i >= 0 {
		return t.d[i]
	}
	return 0
}

// Sum adds the durations of stages.
func (t Timings) Sum(stages ...Stage) time.Duration {
	var total time.Duration
	for _, s := range stages {
		total += t.Duration(s)
	}
	return total
}
