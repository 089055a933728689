package nav

import "log/slog"

// DefaultNotFoundView is committed when no route matches.
const DefaultNotFoundView = "NotFoundPage"

// DefaultMaxRedirects bounds consecutive guard redirects.
const DefaultMaxRedirects = 8

// Option configures a Controller.
type Option func(*Controller)

// WithNotFound sets the view committed when no route matches.
func WithNotFound(viewID string) Option {
	return func(c *Controller) {
		if viewID != "" {
			c.notFound = viewID
		}
	}
}

// WithGuard adds guards that run for every route, before view guards.
func WithGuard(g ...Guard) Option {
	return func(c *Controller) {
		c.guards = append(c.guards, g...)
	}
}

// WithViewGuard adds guards that run only for routes rendering viewID.
func WithViewGuard(viewID string, g ...Guard) Option {
	return func(c *Controller) {
		c.viewGuards[viewID] = append(c.viewGuards[viewID], g...)
	}
}

// WithObserver adds lifecycle observers.
func WithObserver(o ...Observer) Option {
	return func(c *Controller) {
		c.observers = append(c.observers, o...)
	}
}

// WithMaxRedirects bounds consecutive guard redirects.
func WithMaxRedirects(n int) Option {
	return func(c *Controller) {
		if n >= 0 {
			c.maxRedirects = n
		}
	}
}

// WithLogger sets the controller logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NavigateOptions configures a single navigation.
type NavigateOptions struct {
	// Replace overwrites the current history entry instead of pushing.
	Replace bool
}

// NavigateOption is a functional option for Navigate.
type NavigateOption func(*NavigateOptions)

// WithReplace replaces the current history entry instead of pushing.
func WithReplace() NavigateOption {
	return func(o *NavigateOptions) {
		o.Replace = true
	}
}
