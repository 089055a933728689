package app

import (
	"context"
	"fmt"

	"github.com/vango-dev/navcore/pkg/nav"
	"github.com/vango-dev/navcore/pkg/router"
)

// Role is a user's privilege level.
type Role int

const (
	RoleGuest Role = iota
	RoleUser
	RoleAdmin
)

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAdmin:
		return "admin"
	default:
		return "guest"
	}
}

// ParseRole parses "guest", "user" or "admin".
func ParseRole(s string) (Role, error) {
	switch s {
	case "guest", "":
		return RoleGuest, nil
	case "user":
		return RoleUser, nil
	case "admin":
		return RoleAdmin, nil
	}
	return RoleGuest, fmt.Errorf("unknown role %q", s)
}

// Authorizer decides whether the current user may open routes with the
// given access level. It may block.
type Authorizer interface {
	Authorize(ctx context.Context, access string) (bool, error)
}

// StaticAuthorizer grants access by a fixed role.
type StaticAuthorizer struct {
	Role Role
}

// Authorize implements Authorizer.
func (a StaticAuthorizer) Authorize(_ context.Context, access string) (bool, error) {
	switch access {
	case "":
		return true, nil
	case AccessAdmin:
		return a.Role >= RoleAdmin, nil
	case "user":
		return a.Role >= RoleUser, nil
	}
	return false, fmt.Errorf("unknown access level %q", access)
}

// AccessGuard redirects navigations to admin routes to LoginPath unless
// auth grants admin access.
func AccessGuard(auth Authorizer) nav.Guard {
	return nav.MetaGuard(MetaAccess, AccessAdmin, nav.GuardFunc(
		func(ctx context.Context, to router.ResolvedRoute, _ *router.ResolvedRoute) (nav.Decision, error) {
			ok, err := auth.Authorize(ctx, to.Meta[MetaAccess])
			if err != nil {
				return nav.Decision{}, err
			}
			if !ok {
				return nav.Redirect(LoginPath), nil
			}
			return nav.Allow(), nil
		}))
}
