package nav

import "context"

// Observer receives navigation lifecycle notifications.
//
// Both methods run on the controller's event loop and must not block.
// NavigationStart may return a derived context (carrying a span, say);
// that context is passed to guards and to NavigationEnd.
type Observer interface {
	NavigationStart(ctx context.Context, req Request) context.Context
	NavigationEnd(ctx context.Context, t Transition)
}
