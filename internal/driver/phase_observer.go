package driver

import "time"

// Phase names one pass of Run. The names double as trace span names and
// timer phase names.
type Phase string

const (
	PhaseParse    Phase = "parse"
	PhaseCheck    Phase = "check"
	PhaseGenerate Phase = "generate"
	// PhasePrint wraps the fragments into a file and gofmts it.
	PhasePrint Phase = "print"
)

// Phases lists every phase in the order Run executes them. A run stopped
// early by Stage or by a failure reports a prefix of this list.
var Phases = []Phase{PhaseParse, PhaseCheck, PhaseGenerate, PhasePrint}

type PhaseStatus uint8

const (
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

// PhaseEvent is sent to the observer when a phase starts and again when it
// ends; Elapsed is only set on PhaseEnd.
type PhaseEvent struct {
	Name    Phase
	Status  PhaseStatus
	Elapsed time.Duration
}

type PhaseObserver func(PhaseEvent)
