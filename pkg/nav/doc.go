// Package nav implements the navigation controller: the single writer of
// navigation state.
//
// Every navigation runs through one state machine:
//
//	Idle → Resolving → Committed | Cancelled | Failed → Idle
//
// Requests come from programmatic calls (Navigate, NavigateTo), from
// back/forward traversals reported by the history adapter, and from the
// initial location at Start. All state changes happen on one event loop
// goroutine. Guards run off the loop and post their decision back; each
// request carries a sequence token, and a decision whose token is no
// longer the latest is discarded, so a superseded navigation never
// commits after a newer one.
//
// # Usage
//
//	c, err := nav.New(table, history.NewAdapter(backend),
//	    nav.WithNotFound("NotFoundPage"),
//	    nav.WithViewGuard("UserManagePage", adminOnly),
//	)
//	if err := c.Start(ctx); err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	route, err := c.Navigate(ctx, "/app/edit/42")
//	switch nav.OutcomeOf(err) {
//	case nav.OutcomeCommitted: // route is now current
//	case nav.OutcomeFailed:    // not-found view committed
//	case nav.OutcomeCancelled: // route is the unchanged current route
//	}
package nav
