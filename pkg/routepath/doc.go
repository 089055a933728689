// Package routepath holds the low-level path handling shared by the route
// compiler, the resolver and the history adapters.
//
// Request paths are split on "/" after dropping leading and trailing
// slashes. Interior empty segments are kept as-is: "/a//b" has three
// segments and never matches a compiled pattern literal. No
// percent-decoding happens during splitting; callers that want decoded
// parameter values use DecodeSegment explicitly.
package routepath
