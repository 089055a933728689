package router

import (
	"errors"
	"fmt"

	"github.com/vango-dev/navcore/pkg/routepath"
)

// ErrNoMatch is matched by every *NoMatchError.
var ErrNoMatch = errors.New("no route matches")

// NoMatchError reports a path that no pattern in the table matches.
// It is recoverable: the navigation layer falls back to a not-found view.
type NoMatchError struct {
	Path string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no route matches %q", e.Path)
}

// Unwrap lets errors.Is(err, ErrNoMatch) match.
func (e *NoMatchError) Unwrap() error {
	return ErrNoMatch
}

// ResolvedRoute is the result of a successful resolution.
type ResolvedRoute struct {
	// ViewID identifies the view to render.
	ViewID string `json:"view"`

	// Params maps parameter names to raw (undecoded) segment values.
	// It is never nil.
	Params map[string]string `json:"params"`

	// Path is the requested path exactly as given.
	Path string `json:"path"`

	// Name is the matched route name, if any.
	Name string `json:"name,omitempty"`

	// Query is the raw query string without the leading "?".
	Query string `json:"query,omitempty"`

	// Meta is a copy of the matched route's metadata.
	Meta map[string]string `json:"meta,omitempty"`
}

// Param returns a raw parameter value.
func (r ResolvedRoute) Param(name string) string {
	return r.Params[name]
}

// Clone returns a deep copy of the route.
func (r ResolvedRoute) Clone() ResolvedRoute {
	out := r
	out.Params = copyMap(r.Params)
	if out.Params == nil {
		out.Params = map[string]string{}
	}
	out.Meta = copyMap(r.Meta)
	return out
}

// Resolve resolves path against the table. See (*Table).Resolve.
func Resolve(path string, table *Table) (ResolvedRoute, error) {
	return table.Resolve(path)
}

// Resolve finds the first pattern, in table order, that matches path.
//
// A query string or fragment in path is split off before matching and kept
// in the result. Literal segments compare case-sensitively and exactly;
// parameter segments always match and capture the raw segment. No
// percent-decoding takes place. Resolve never mutates the table.
func (t *Table) Resolve(path string) (ResolvedRoute, error) {
	pathOnly, query := routepath.SplitPathAndQuery(path)
	segments := routepath.Split(pathOnly)

	for _, p := range t.patterns {
		params, ok := p.match(segments)
		if !ok {
			continue
		}
		return ResolvedRoute{
			ViewID: p.ViewID,
			Params: params,
			Path:   path,
			Name:   p.Name,
			Query:  query,
			Meta:   copyMap(p.Meta),
		}, nil
	}

	return ResolvedRoute{}, &NoMatchError{Path: path}
}

// Match reports whether the pattern matches path and returns the captured
// parameters.
func (p *Pattern) Match(path string) (map[string]string, bool) {
	pathOnly, _ := routepath.SplitPathAndQuery(path)
	return p.match(routepath.Split(pathOnly))
}

func (p *Pattern) match(segments []string) (map[string]string, bool) {
	if len(segments) != len(p.Segments) {
		return nil, false
	}
	for i, seg := range p.Segments {
		if !seg.Param && seg.Text != segments[i] {
			return nil, false
		}
	}
	params := make(map[string]string, len(p.Segments))
	for i, seg := range p.Segments {
		if seg.Param {
			params[seg.Text] = segments[i]
		}
	}
	return params, true
}

func copyMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
