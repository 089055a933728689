package router

import (
	"fmt"
	"net/url"
	"strings"
)

// MissingParamError reports a parameter absent from a reverse-routing call.
type MissingParamError struct {
	Route string
	Param string
}

func (e *MissingParamError) Error() string {
	return fmt.Sprintf("route %q: missing parameter %q", e.Route, e.Param)
}

// Build returns the path of the named route with params substituted.
// Values are path-escaped, so Resolve followed by DecodeParams returns
// them unchanged. Extra params are ignored.
func (t *Table) Build(name string, params map[string]string) (string, error) {
	p, ok := t.byName[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRoute, name)
	}
	return p.Build(params)
}

// Build substitutes params into the pattern.
func (p *Pattern) Build(params map[string]string) (string, error) {
	if len(p.Segments) == 0 {
		return "/", nil
	}
	parts := make([]string, len(p.Segments))
	for i, seg := range p.Segments {
		if !seg.Param {
			parts[i] = seg.Text
			continue
		}
		v := params[seg.Text]
		if v == "" {
			route := p.Name
			if route == "" {
				route = p.Raw
			}
			return "", &MissingParamError{Route: route, Param: seg.Text}
		}
		parts[i] = url.PathEscape(v)
	}
	return "/" + strings.Join(parts, "/"), nil
}
