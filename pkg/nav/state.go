package nav

import (
	"time"

	"github.com/vango-dev/navcore/pkg/router"
)

// Trigger identifies what started a navigation.
type Trigger int

const (
	// TriggerProgrammatic is a Navigate or NavigateTo call.
	TriggerProgrammatic Trigger = iota

	// TriggerPop is a back/forward traversal.
	TriggerPop

	// TriggerInitial is the navigation to the initial location at Start.
	TriggerInitial
)

func (t Trigger) String() string {
	switch t {
	case TriggerProgrammatic:
		return "programmatic"
	case TriggerPop:
		return "pop"
	case TriggerInitial:
		return "initial"
	default:
		return "unknown"
	}
}

// Outcome is the terminal state of a navigation.
type Outcome int

const (
	// OutcomeCommitted means the resolved route became current.
	OutcomeCommitted Outcome = iota

	// OutcomeCancelled means current was left unchanged.
	OutcomeCancelled

	// OutcomeFailed means no route matched and the not-found view was committed.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCommitted:
		return "committed"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Request is one navigation attempt.
type Request struct {
	// ID uniquely identifies the attempt.
	ID string

	// Seq is the sequence token; later requests have larger tokens.
	Seq uint64

	// Path is the requested application path, query included.
	Path string

	// Replace overwrites the current history entry instead of pushing.
	Replace bool

	// Trigger is what started the navigation.
	Trigger Trigger

	// Redirects counts guard redirects that led to this request.
	Redirects int

	// popped marks a redirect out of a back/forward traversal. The
	// browser already sits on the popped entry.
	popped bool
}

// State is a snapshot of the navigation state.
type State struct {
	// Current is the committed route, nil before the first commit.
	Current *router.ResolvedRoute

	// Pending is the in-flight request, nil when idle.
	Pending *Request
}

// Resolving reports whether a navigation is in flight.
func (s State) Resolving() bool {
	return s.Pending != nil
}

// Transition describes a finished navigation. Observers receive one per
// request, including cancelled ones.
type Transition struct {
	Request  Request
	From     *router.ResolvedRoute
	To       *router.ResolvedRoute
	Outcome  Outcome
	Err      error
	Duration time.Duration
}
