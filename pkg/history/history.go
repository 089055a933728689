package history

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/vango-dev/navcore/pkg/routepath"
)

// ErrUnavailable is matched by *UnavailableWarning.
var ErrUnavailable = errors.New("session history unavailable")

// UnavailableWarning is surfaced once when no history backend exists.
// Routing continues in memory without address-bar synchronization.
type UnavailableWarning struct {
	Reason string
}

func (w *UnavailableWarning) Error() string {
	return fmt.Sprintf("session history unavailable: %s", w.Reason)
}

// Unwrap lets errors.Is(err, ErrUnavailable) match.
func (w *UnavailableWarning) Unwrap() error {
	return ErrUnavailable
}

// Backend is a session history implementation.
type Backend interface {
	// Location returns the location of the current entry.
	Location() string

	// PushState adds a new entry after the current one.
	PushState(location string) error

	// ReplaceState overwrites the current entry.
	ReplaceState(location string) error

	// Listen registers fn for back/forward traversals. fn receives the
	// location of the entry that became current.
	Listen(fn func(location string)) (cancel func())
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithBase sets the application base path (e.g. "/console").
func WithBase(base string) Option {
	return func(a *Adapter) {
		a.base = routepath.CleanBase(base)
	}
}

// WithLogger sets the adapter logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithFallback sets the location reported when no backend is present.
func WithFallback(path string) Option {
	return func(a *Adapter) {
		a.fallback = path
	}
}

// Adapter is the history interface used by the navigation controller.
type Adapter struct {
	backend  Backend
	base     string
	fallback string
	logger   *slog.Logger
	warning  error
}

// NewAdapter wraps backend. A nil backend yields an in-memory-only adapter.
func NewAdapter(backend Backend, opts ...Option) *Adapter {
	a := &Adapter{
		backend:  backend,
		fallback: "/",
		logger:   slog.Default().With("component", "history"),
	}
	for _, opt := range opts {
		opt(a)
	}

	if backend == nil {
		a.warning = &UnavailableWarning{Reason: "no history backend on this host"}
		a.logger.Warn("history unavailable, routing in memory only", "error", a.warning)
	}
	return a
}

// Available reports whether a backend is attached.
func (a *Adapter) Available() bool {
	return a.backend != nil
}

// Warning returns the UnavailableWarning raised at construction, if any.
func (a *Adapter) Warning() error {
	return a.warning
}

// Base returns the cleaned base path.
func (a *Adapter) Base() string {
	return a.base
}

// Push adds a history entry for an application path.
func (a *Adapter) Push(path string) error {
	if a.backend == nil {
		return nil
	}
	if err := a.backend.PushState(routepath.WithBase(a.base, path)); err != nil {
		a.logger.Warn("history push failed", "path", path, "error", err)
		return fmt.Errorf("history push %s: %w", path, err)
	}
	return nil
}

// Replace overwrites the current history entry.
func (a *Adapter) Replace(path string) error {
	if a.backend == nil {
		return nil
	}
	if err := a.backend.ReplaceState(routepath.WithBase(a.base, path)); err != nil {
		a.logger.Warn("history replace failed", "path", path, "error", err)
		return fmt.Errorf("history replace %s: %w", path, err)
	}
	return nil
}

// Location returns the application path of the current entry.
func (a *Adapter) Location() string {
	if a.backend == nil {
		return a.fallback
	}
	return a.strip(a.backend.Location())
}

// OnPopState subscribes to back/forward traversals.
// The handler receives application paths.
func (a *Adapter) OnPopState(fn func(path string)) (cancel func()) {
	if a.backend == nil {
		return func() {}
	}
	return a.backend.Listen(func(location string) {
		fn(a.strip(location))
	})
}

func (a *Adapter) strip(location string) string {
	path, ok := routepath.TrimBase(a.base, location)
	if !ok {
		a.logger.Warn("location outside base path", "location", location, "base", a.base)
	}
	if path == "" {
		return "/"
	}
	return path
}
