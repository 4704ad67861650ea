package upload

import (
	"time"

	"github.com/nao1215/mediclaim/internal/model"
)

// Phase is the position of a session in the upload state machine.
//
//	Idle -> Validating -> Submitting -> AwaitingResult -> Complete
//	             |             |               |
//	             +-------------+---------------+--> Failed
type Phase int

const (
	// PhaseIdle means no analysis is running.
	PhaseIdle Phase = iota

	// PhaseValidating means the document is being checked locally.
	PhaseValidating

	// PhaseSubmitting means the request is being written.
	PhaseSubmitting

	// PhaseAwaitingResult means the request was sent and the response is pending.
	PhaseAwaitingResult

	// PhaseComplete means a result was received. Terminal.
	PhaseComplete

	// PhaseFailed means the session ended with an error. Terminal.
	PhaseFailed
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseValidating:
		return "validating"
	case PhaseSubmitting:
		return "submitting"
	case PhaseAwaitingResult:
		return "awaiting_result"
	case PhaseComplete:
		return "complete"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the phase ends a session.
func (p Phase) Terminal() bool {
	return p == PhaseComplete || p == PhaseFailed
}

// InFlight reports whether an analysis is running in this phase.
func (p Phase) InFlight() bool {
	return p == PhaseValidating || p == PhaseSubmitting || p == PhaseAwaitingResult
}

// Session is a snapshot of one upload. The Controller owns the live copy;
// everything handed out is a value copy.
type Session struct {
	// ID identifies the session in logs.
	ID string

	// Phase is the current state.
	Phase Phase

	// Progress is the displayed progress in [0,100]. It is synthetic while
	// the request is pending and never exceeds the configured ceiling then.
	Progress int

	// Stage is the label for Progress, or "" outside an active upload.
	Stage string

	// Err is set only in PhaseFailed.
	Err *model.AnalysisError

	// DocumentName is the name of the document being analyzed.
	DocumentName string

	// StartedAt is when Analyze was called.
	StartedAt time.Time

	// FinishedAt is when the session reached a terminal phase.
	FinishedAt time.Time
}

// Elapsed returns how long the session ran, or has been running.
func (s Session) Elapsed() time.Duration {
	if s.StartedAt.IsZero() {
		return 0
	}
	if s.FinishedAt.IsZero() {
		return time.Since(s.StartedAt)
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// Observer receives a snapshot after every phase or progress change.
// It is called with the controller's lock held and must not call back into
// the controller.
type Observer interface {
	Observe(Session)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Session)

// Observe implements Observer.
func (f ObserverFunc) Observe(s Session) {
	f(s)
}
