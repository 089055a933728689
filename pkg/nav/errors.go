package nav

import (
	"errors"
	"fmt"

	"github.com/vango-dev/navcore/pkg/router"
)

// Navigation errors.
var (
	// ErrCancelled is matched by every *CancelledError.
	ErrCancelled = errors.New("navigation cancelled")

	// ErrSuperseded means a newer request replaced the navigation.
	ErrSuperseded = errors.New("superseded by a newer navigation")

	// ErrRedirectLimit means guards redirected too many times in a row.
	ErrRedirectLimit = errors.New("too many guard redirects")

	// ErrClosed means the controller was closed.
	ErrClosed = errors.New("navigation controller closed")

	// ErrNotStarted means Start has not been called.
	ErrNotStarted = errors.New("navigation controller not started")

	// ErrNilTable is returned by New without a route table.
	ErrNilTable = errors.New("nil route table")
)

// CancelledError reports a navigation that ended in Cancelled.
type CancelledError struct {
	// Path is the requested path.
	Path string

	// Cause says why: ErrSuperseded, *GuardRejection, *RedirectError,
	// ErrRedirectLimit, a guard error, or a path validation error.
	Cause error
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("navigation to %q cancelled: %v", e.Path, e.Cause)
}

// Unwrap matches both ErrCancelled and the cause.
func (e *CancelledError) Unwrap() []error {
	return []error{ErrCancelled, e.Cause}
}

// GuardRejection is the cause of a navigation a guard rejected.
type GuardRejection struct {
	ViewID string
	Reason string
}

func (e *GuardRejection) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("guard rejected %s", e.ViewID)
	}
	return fmt.Sprintf("guard rejected %s: %s", e.ViewID, e.Reason)
}

// RedirectError is the cause of a navigation a guard redirected. The
// redirect target runs as a new navigation.
type RedirectError struct {
	To string
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("redirected to %q", e.To)
}

// OutcomeOf maps an error returned by Navigate to its terminal outcome.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeCommitted
	case errors.Is(err, router.ErrNoMatch):
		return OutcomeFailed
	default:
		return OutcomeCancelled
	}
}
