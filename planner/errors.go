package planner

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/motionlab/farrt/geometry"
)

// Kind identifies one of the five error-taxonomy variants from spec.md §7.
type Kind int

const (
	// InvariantViolation is fatal: a bug in tree bookkeeping was detected.
	// It aborts the current Driver.Step call.
	InvariantViolation Kind = iota
	// PlanInfeasible: build-RRT* exhausted its caps without reaching goal.
	PlanInfeasible
	// ReplanStale: FARRT* rewiring could not reach curr_pos; the previous
	// plan is kept and the failure is deferred to the next observation.
	ReplanStale
	// EmptyPath: step_through_plan was called with an empty planned_path.
	EmptyPath
	// QueueRace: the inconsistency queue popped a stale entry; recoverable,
	// the caller's loop simply continues.
	QueueRace
)

func (k Kind) String() string {
	switch k {
	case InvariantViolation:
		return "InvariantViolation"
	case PlanInfeasible:
		return "PlanInfeasible"
	case ReplanStale:
		return "ReplanStale"
	case EmptyPath:
		return "EmptyPath"
	case QueueRace:
		return "QueueRace"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is the planner's error-taxonomy result type (spec.md §7):
// every non-nil error the driver surfaces carries a Kind and the
// vertices involved, for inclusion in a diagnostic.
type Error struct {
	Kind     Kind
	Vertices []geometry.Point
	error
}

// newError wraps msg with github.com/pkg/errors, attaching kind and the
// implicated vertices.
func newError(kind Kind, vertices []geometry.Point, msg string) *Error {
	return &Error{Kind: kind, Vertices: vertices, error: errors.New(msg)}
}

// newErrorf is newError with fmt-style formatting.
func newErrorf(kind Kind, vertices []geometry.Point, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Vertices: vertices, error: errors.Errorf(format, args...)}
}

// Fatal reports whether this error kind should abort the current step
// rather than be logged and skipped (spec.md §7's propagation rule).
func (e *Error) Fatal() bool { return e.Kind == InvariantViolation }
