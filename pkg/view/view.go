// Package view maps view identifiers to the handlers that render them.
//
// The route table only names views. A Registry supplies the handlers and is
// checked against the table at startup, so a route can never resolve to a
// view nobody can render.
package view

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/vango-dev/navcore/pkg/router"
)

// Registry errors.
var (
	ErrEmptyViewID   = errors.New("empty view id")
	ErrDuplicateView = errors.New("view already registered")
	ErrUnknownView   = errors.New("view not registered")
)

// Page is what a view produces for a committed route.
type Page struct {
	View   string
	Title  string
	Path   string
	Params map[string]string
}

// Handler renders a view for a committed route.
type Handler interface {
	Render(ctx context.Context, route router.ResolvedRoute) (Page, error)
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc func(ctx context.Context, route router.ResolvedRoute) (Page, error)

// Render implements Handler.
func (f HandlerFunc) Render(ctx context.Context, route router.ResolvedRoute) (Page, error) {
	return f(ctx, route)
}

// MissingViewError lists views referenced by routes but never registered.
type MissingViewError struct {
	Views []string
}

func (e *MissingViewError) Error() string {
	return fmt.Sprintf("views referenced but not registered: %v", e.Views)
}

// Unwrap lets errors.Is(err, ErrUnknownView) match.
func (e *MissingViewError) Unwrap() error {
	return ErrUnknownView
}

// Registry is a concurrency-safe view handler registry.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register adds h under viewID.
func (r *Registry) Register(viewID string, h Handler) error {
	if viewID == "" {
		return ErrEmptyViewID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.handlers[viewID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateView, viewID)
	}
	r.handlers[viewID] = h
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(viewID string, h Handler) {
	if err := r.Register(viewID, h); err != nil {
		panic(err)
	}
}

// Lookup returns the handler for viewID.
func (r *Registry) Lookup(viewID string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[viewID]
	return h, ok
}

// IDs returns the registered view identifiers, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.handlers))
	for id := range r.handlers {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// Validate checks that every view in table, plus notFound, is registered.
func (r *Registry) Validate(table *router.Table, notFound string) error {
	ids := table.ViewIDs()
	if notFound != "" {
		ids = append(ids, notFound)
	}

	var missing []string
	seen := make(map[string]bool)
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, ok := r.Lookup(id); !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return &MissingViewError{Views: missing}
	}
	return nil
}

// Render renders route with its registered handler.
func (r *Registry) Render(ctx context.Context, route router.ResolvedRoute) (Page, error) {
	h, ok := r.Lookup(route.ViewID)
	if !ok {
		return Page{}, fmt.Errorf("%w: %s", ErrUnknownView, route.ViewID)
	}
	page, err := h.Render(ctx, route)
	if err != nil {
		return Page{}, fmt.Errorf("render %s: %w", route.ViewID, err)
	}
	if page.View == "" {
		page.View = route.ViewID
	}
	if page.Path == "" {
		page.Path = route.Path
	}
	if page.Params == nil {
		page.Params = route.Params
	}
	return page, nil
}
