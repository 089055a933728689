package routepath

import (
	"errors"
	"net/url"
	"strings"
)

// Path validation errors.
var (
	ErrInvalidPath           = errors.New("invalid path")
	ErrBackslashInPath       = errors.New("path contains backslash")
	ErrNullByteInPath        = errors.New("path contains null byte")
	ErrInvalidPercentEscape  = errors.New("invalid percent escape sequence")
	ErrEncodedSlashInSegment = errors.New("encoded slash (%2F) in segment")
)

// Split splits a path into its segments.
// Leading and trailing slashes are dropped; "/" and "" yield no segments.
func Split(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// SplitPathAndQuery splits a navigation target into path and query.
// The query is returned without the leading "?". A fragment is discarded.
func SplitPathAndQuery(input string) (path, query string) {
	input, _, _ = strings.Cut(input, "#")
	path, query, _ = strings.Cut(input, "?")
	return path, query
}

// ValidateNavPath checks that a navigation target is an in-app path.
//
// Navigation targets MUST start with "/" and MUST NOT be a full or
// protocol-relative URL, so a redirect supplied by a guard can never leave
// the application.
func ValidateNavPath(input string) error {
	if strings.HasPrefix(input, "//") || !strings.HasPrefix(input, "/") {
		return ErrInvalidPath
	}
	path, _ := SplitPathAndQuery(input)
	if strings.Contains(path, "\\") {
		return ErrBackslashInPath
	}
	if strings.Contains(path, "\x00") || strings.Contains(strings.ToUpper(path), "%00") {
		return ErrNullByteInPath
	}
	if strings.Contains(path, "%") {
		if err := validatePercentEscapes(path); err != nil {
			return err
		}
	}
	return nil
}

// validatePercentEscapes checks that all percent-escapes are valid.
// Valid escapes are %XX where X is a hex digit (0-9, a-f, A-F).
func validatePercentEscapes(path string) error {
	i := 0
	for i < len(path) {
		if path[i] == '%' {
			if i+2 >= len(path) {
				return ErrInvalidPercentEscape
			}
			if !isHexDigit(path[i+1]) || !isHexDigit(path[i+2]) {
				return ErrInvalidPercentEscape
			}
			i += 3
		} else {
			i++
		}
	}
	return nil
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// DecodeSegment percent-decodes a single captured segment.
// A decoded "/" is rejected: a parameter never spans segments.
func DecodeSegment(segment string) (string, error) {
	decoded, err := url.PathUnescape(segment)
	if err != nil {
		return "", ErrInvalidPercentEscape
	}
	if strings.Contains(decoded, "/") {
		return "", ErrEncodedSlashInSegment
	}
	return decoded, nil
}

// CleanBase normalizes an application base path.
// "", "/" and "//" all mean "no base"; otherwise the result starts with "/"
// and has no trailing slash.
func CleanBase(base string) string {
	base = strings.Trim(base, "/")
	if base == "" {
		return ""
	}
	return "/" + base
}

// WithBase prefixes an application path with a cleaned base.
func WithBase(base, path string) string {
	if base == "" {
		return path
	}
	if path == "/" || path == "" {
		return base + "/"
	}
	return base + path
}

// TrimBase strips a cleaned base from a full location.
// It reports false when the location lies outside the base.
func TrimBase(base, location string) (string, bool) {
	if base == "" {
		return location, true
	}
	if location == base {
		return "/", true
	}
	rest, ok := strings.CutPrefix(location, base)
	if !ok {
		return location, false
	}
	if rest == "" || rest[0] == '/' || rest[0] == '?' || rest[0] == '#' {
		if rest == "" || rest[0] != '/' {
			rest = "/" + rest
		}
		return rest, true
	}
	return location, false
}
