package router

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedPattern is matched by every *MalformedPatternError.
var ErrMalformedPattern = errors.New("malformed route pattern")

// MalformedPatternError reports a route pattern that cannot be compiled.
// It is a configuration error: a table containing one must not be used.
type MalformedPatternError struct {
	// Pattern is the raw pattern string.
	Pattern string

	// Segment is the index of the offending segment, or -1 when the
	// pattern as a whole is invalid.
	Segment int

	// Reason describes the problem.
	Reason string
}

func (e *MalformedPatternError) Error() string {
	if e.Segment >= 0 {
		return fmt.Sprintf("malformed route pattern %q: segment %d: %s", e.Pattern, e.Segment, e.Reason)
	}
	return fmt.Sprintf("malformed route pattern %q: %s", e.Pattern, e.Reason)
}

// Unwrap lets errors.Is(err, ErrMalformedPattern) match.
func (e *MalformedPatternError) Unwrap() error {
	return ErrMalformedPattern
}

// Segment is one compiled path segment: a literal or a named parameter.
type Segment struct {
	// Text is the literal text, or the parameter name for params.
	Text string

	// Param marks a parameter segment.
	Param bool
}

// Literal returns a literal segment.
func Literal(text string) Segment {
	return Segment{Text: text}
}

// Param returns a parameter segment.
func Param(name string) Segment {
	return Segment{Text: name, Param: true}
}

func (s Segment) String() string {
	if s.Param {
		return ":" + s.Text
	}
	return s.Text
}

// Pattern is a compiled path template.
type Pattern struct {
	// Raw is the pattern as written (e.g. "/app/generate/:appId").
	Raw string

	// Segments are the compiled segments in path order.
	Segments []Segment

	// ViewID identifies the external view handler.
	ViewID string

	// Name is an optional unique route name used for reverse routing.
	Name string

	// Meta is opaque route metadata, typically consumed by guards.
	Meta map[string]string
}

// ParamNames returns the parameter names in path order.
func (p *Pattern) ParamNames() []string {
	var names []string
	for _, seg := range p.Segments {
		if seg.Param {
			names = append(names, seg.Text)
		}
	}
	return names
}

// Compile compiles a raw pattern bound to a view.
//
// The pattern must start with "/". Leading and trailing slashes are
// dropped the same way request paths are normalized; interior empty
// segments, duplicate parameter names and ":" tokens without a valid
// identifier are rejected with a *MalformedPatternError.
func Compile(raw, viewID string) (*Pattern, error) {
	if raw == "" {
		return nil, &MalformedPatternError{Pattern: raw, Segment: -1, Reason: "empty pattern"}
	}
	if !strings.HasPrefix(raw, "/") {
		return nil, &MalformedPatternError{Pattern: raw, Segment: -1, Reason: `pattern must start with "/"`}
	}

	p := &Pattern{Raw: raw, ViewID: viewID}

	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		if raw != "/" {
			return nil, &MalformedPatternError{Pattern: raw, Segment: 0, Reason: "empty segment"}
		}
		return p, nil
	}

	seen := make(map[string]bool)
	for i, seg := range strings.Split(trimmed, "/") {
		if seg == "" {
			return nil, &MalformedPatternError{Pattern: raw, Segment: i, Reason: "empty segment"}
		}
		if !strings.HasPrefix(seg, ":") {
			p.Segments = append(p.Segments, Literal(seg))
			continue
		}
		name := seg[1:]
		if name == "" {
			return nil, &MalformedPatternError{Pattern: raw, Segment: i, Reason: "unterminated parameter token"}
		}
		if !isIdentifier(name) {
			return nil, &MalformedPatternError{Pattern: raw, Segment: i, Reason: fmt.Sprintf("invalid parameter name %q", name)}
		}
		if seen[name] {
			return nil, &MalformedPatternError{Pattern: raw, Segment: i, Reason: fmt.Sprintf("duplicate parameter %q", name)}
		}
		seen[name] = true
		p.Segments = append(p.Segments, Param(name))
	}

	return p, nil
}

// MustCompile is like Compile but panics on error.
// It is intended for patterns fixed at build time.
func MustCompile(raw, viewID string) *Pattern {
	p, err := Compile(raw, viewID)
	if err != nil {
		panic(err)
	}
	return p
}

// isIdentifier reports whether s matches [A-Za-z_][A-Za-z0-9_]*.
func isIdentifier(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return s != ""
}
