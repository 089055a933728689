package router

import (
	"errors"
	"fmt"
)

// Table construction errors.
var (
	ErrMissingView   = errors.New("route has no view")
	ErrDuplicateName = errors.New("duplicate route name")
	ErrUnknownRoute  = errors.New("unknown route name")
)

// Definition is the input form of a route table entry.
type Definition struct {
	// Path is the pattern (e.g. "/app/edit/:appId").
	Path string `json:"path" toml:"path"`

	// ViewID identifies the view handler rendered for this route.
	ViewID string `json:"view" toml:"view"`

	// Name is an optional unique route name.
	Name string `json:"name,omitempty" toml:"name"`

	// Meta is opaque route metadata.
	Meta map[string]string `json:"meta,omitempty" toml:"meta"`
}

// Table is an ordered, immutable list of compiled patterns.
// Insertion order is priority order: the first matching pattern wins.
// A Table is safe for concurrent use.
type Table struct {
	patterns []*Pattern
	byName   map[string]*Pattern
}

// NewTable compiles every definition in order.
//
// All malformed entries are reported together (joined with errors.Join),
// each wrapped with its position, so an operator sees the whole list of
// problems at once. Any error means the table must not be used.
func NewTable(defs []Definition) (*Table, error) {
	t := &Table{
		patterns: make([]*Pattern, 0, len(defs)),
		byName:   make(map[string]*Pattern),
	}

	var errs []error
	for i, def := range defs {
		p, err := Compile(def.Path, def.ViewID)
		if err != nil {
			errs = append(errs, fmt.Errorf("route %d: %w", i, err))
			continue
		}
		if def.ViewID == "" {
			errs = append(errs, fmt.Errorf("route %d (%s): %w", i, def.Path, ErrMissingView))
			continue
		}
		if def.Name != "" {
			if prev, ok := t.byName[def.Name]; ok {
				errs = append(errs, fmt.Errorf("route %d (%s): %w %q (already used by %s)",
					i, def.Path, ErrDuplicateName, def.Name, prev.Raw))
				continue
			}
			p.Name = def.Name
			t.byName[def.Name] = p
		}
		if len(def.Meta) > 0 {
			p.Meta = make(map[string]string, len(def.Meta))
			for k, v := range def.Meta {
				p.Meta[k] = v
			}
		}
		t.patterns = append(t.patterns, p)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return t, nil
}

// MustTable is like NewTable but panics on error.
func MustTable(defs []Definition) *Table {
	t, err := NewTable(defs)
	if err != nil {
		panic(err)
	}
	return t
}

// Len returns the number of routes.
func (t *Table) Len() int {
	return len(t.patterns)
}

// Patterns returns the compiled patterns in priority order.
// The returned slice is a copy; the patterns must not be modified.
func (t *Table) Patterns() []*Pattern {
	out := make([]*Pattern, len(t.patterns))
	copy(out, t.patterns)
	return out
}

// Lookup returns the pattern registered under name.
func (t *Table) Lookup(name string) (*Pattern, bool) {
	p, ok := t.byName[name]
	return p, ok
}

// ViewIDs returns the distinct view identifiers in table order.
func (t *Table) ViewIDs() []string {
	seen := make(map[string]bool, len(t.patterns))
	var ids []string
	for _, p := range t.patterns {
		if !seen[p.ViewID] {
			seen[p.ViewID] = true
			ids = append(ids, p.ViewID)
		}
	}
	return ids
}
