package nav

import (
	"context"

	"github.com/vango-dev/navcore/pkg/router"
)

type decisionKind int

const (
	decisionAllow decisionKind = iota
	decisionReject
	decisionRedirect
)

// Decision is a guard verdict.
type Decision struct {
	kind   decisionKind
	reason string
	target string
}

// Allow lets the navigation continue to the next guard or commit.
func Allow() Decision {
	return Decision{kind: decisionAllow}
}

// Reject cancels the navigation.
func Reject(reason string) Decision {
	return Decision{kind: decisionReject, reason: reason}
}

// Redirect cancels the navigation and starts a new one to path.
func Redirect(path string) Decision {
	return Decision{kind: decisionRedirect, target: path}
}

// Allowed reports whether the decision lets the navigation continue.
func (d Decision) Allowed() bool {
	return d.kind == decisionAllow
}

// Target returns the redirect path, or "" for other decisions.
func (d Decision) Target() string {
	return d.target
}

// Guard approves or rejects a navigation before it commits.
//
// Check may block (an auth lookup, say). ctx is cancelled when a newer
// navigation supersedes this one; the result is then discarded whatever it
// is. from is nil for the initial navigation. An error cancels the
// navigation like a rejection.
type Guard interface {
	Check(ctx context.Context, to router.ResolvedRoute, from *router.ResolvedRoute) (Decision, error)
}

// GuardFunc is a function adapter for Guard.
type GuardFunc func(ctx context.Context, to router.ResolvedRoute, from *router.ResolvedRoute) (Decision, error)

// Check implements Guard.
func (f GuardFunc) Check(ctx context.Context, to router.ResolvedRoute, from *router.ResolvedRoute) (Decision, error) {
	return f(ctx, to, from)
}

// MetaGuard applies g only to routes whose meta key equals value.
func MetaGuard(key, value string, g Guard) Guard {
	return GuardFunc(func(ctx context.Context, to router.ResolvedRoute, from *router.ResolvedRoute) (Decision, error) {
		if to.Meta[key] != value {
			return Allow(), nil
		}
		return g.Check(ctx, to, from)
	})
}
