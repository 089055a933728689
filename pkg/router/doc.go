// Package router implements the route table of a single-page application:
// pattern compilation, first-match resolution and reverse routing.
//
// The router provides:
//   - A pattern compiler for "/"-separated templates with named parameters
//   - An immutable, ordered route table built once at startup
//   - A pure resolver that selects the first matching pattern
//   - Shadowed-pattern analysis for table authors
//   - Reverse routing for named routes and typed parameter binding
//
// # Patterns
//
// A segment prefixed with ":" is a named parameter, every other segment is
// literal:
//
//	/                      → zero segments
//	/user/login            → literal "user", literal "login"
//	/app/edit/:appId       → literal "app", literal "edit", param appId
//
// # Priority
//
// Table order is priority order. A more literal pattern must be declared
// before a more general one to take precedence:
//
//	table, err := router.NewTable([]router.Definition{
//	    {Path: "/app/edit/new", ViewID: "AppCreatePage"},
//	    {Path: "/app/edit/:appId", ViewID: "AppEditPage"},
//	})
//
//	route, err := table.Resolve("/app/edit/42")
//	// route.ViewID == "AppEditPage", route.Params["appId"] == "42"
//
// Parameter values are returned raw. Use DecodeParams or Bind to obtain
// percent-decoded or typed values.
package router
