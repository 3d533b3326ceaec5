package buildpipeline

import (
	"slices"
	"time"

	"tensa/internal/driver"
)

// Stage is one step a file goes through during a build.
type Stage string

const (
	StageParse    Stage = "parse"
	StageCheck    Stage = "check"
	StageGenerate Stage = "generate"
	// StagePrint renders and gofmt-checks the generated source.
	StagePrint Stage = "print"
	// StageWrite stores the source below the output directory.
	StageWrite Stage = "write"
)

// Stages lists every stage in pipeline order.
var Stages = []Stage{StageParse, StageCheck, StageGenerate, StagePrint, StageWrite}

// stageOf maps a driver phase name to its stage. Every driver phase has a
// stage of the same name; StageWrite has no driver phase.
func stageOf(phase driver.Phase) (Stage, bool) {
	s := Stage(phase)
	if s == StageWrite || !slices.Contains(Stages, s) {
		return "", false
	}
	return s, true
}

// Progress is the fraction of a file's work that is behind it once it has
// entered s; unknown stages count as not started.
func (s Stage) Progress() float64 {
	i := slices.Index(Stages, s)
	if i < 0 {
		return 0
	}
	return float64(i+1) / float64(len(Stages)+1)
}

// Status of a file (or of the whole build) within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Finished reports whether no more events follow for the file.
func (s Status) Finished() bool {
	return s == StatusDone || s == StatusError
}

// Event reports progress of File, or of the whole build when File is empty.
// Elapsed is set on the final overall event and on phase ends.
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}

// Timings sums stage durations over all files of a build.
type Timings struct {
	stages map[Stage]time.Duration
}

// Add accumulates d into stage.
func (t *Timings) Add(stage Stage, d time.Duration) {
	if t.stages == nil {
		t.stages = make(map[Stage]time.Duration, len(Stages))
	}
	t.stages[stage] += d
}

// Has reports whether stage was recorded at all.
func (t Timings) Has(stage Stage) bool {
	_, ok := t.stages[stage]
	return ok
}

// Duration returns the summed duration of stage.
func (t Timings) Duration(stage Stage) time.Duration {
	return t.stages[stage]
}

// Total sums every recorded stage.
func (t Timings) Total() time.Duration {
	var total time.Duration
	for _, d := range t.stages {
		total += d
	}
	return total
}
