// Package observ measures how long each pipeline phase takes.
package observ

import (
	"fmt"
	"time"

	"tensa/internal/diag"
	"tensa/internal/source"
)

// Phase is one measured step of a run.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
}

// Timer tracks the phases of one pipeline run. It is not safe for
// concurrent use; every file gets its own Timer.
type Timer struct {
	phases []Phase
	now    func() time.Time
}

// NewTimer creates a new empty Timer.
func NewTimer() *Timer { return &Timer{phases: make([]Phase, 0, 8), now: time.Now} }

// Begin opens a phase and returns its index for End.
func (t *Timer) Begin(name string) int {
	t.phases = append(t.phases, Phase{Name: name, Start: t.now()})
	return len(t.phases) - 1
}

// End closes the phase at idx; unknown indexes are ignored.
func (t *Timer) End(idx int, note string) {
	if idx >= 0 && idx < len(t.phases) {
		p := &t.phases[idx]
		p.Dur, p.Note = t.now().Sub(p.Start), note
	}
}

// Track begins name and returns the function that ends it:
//
//	done := timer.Track("parse")
//	defer done("")
func (t *Timer) Track(name string) func(note string) {
	idx := t.Begin(name)
	return func(note string) { t.End(idx, note) }
}

// Phases returns a copy of the recorded phases.
func (t *Timer) Phases() []Phase {
	return append([]Phase(nil), t.phases...)
}

// Diagnostic packs the timings into an informational OBS6001 diagnostic
// anchored at sp, one note per phase.
func (t *Timer) Diagnostic(sp source.Span) diag.Diagnostic {
	report := t.Report()
	d := diag.New(diag.SevInfo, diag.ObsTimings, sp, fmt.Sprintf("pipeline timings: %.2f ms total", report.TotalMS))
	for _, p := range report.Phases {
		msg := fmt.Sprintf("%s: %.2f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			msg += " (" + p.Note + ")"
		}
		d = d.WithNote(sp, msg)
	}
	return d
}

// PhaseReport is one phase in milliseconds, as written to JSON output.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report is the serializable form of a Timer.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report converts the recorded phases; an unused timer yields the zero Report.
func (t *Timer) Report() Report {
	var r Report
	var total time.Duration
	for _, p := range t.phases {
		total += p.Dur
		r.Phases = append(r.Phases, PhaseReport{Name: p.Name, DurationMS: millis(p.Dur), Note: p.Note})
	}
	r.TotalMS = millis(total)
	return r
}

func millis(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }
