// Package errors provides coded, actionable errors for the navcore CLI.
//
// Startup problems (a malformed route table, a view nobody registered, an
// unreadable manifest, bad configuration) are reported once, before any
// navigation happens, so they carry more than a message: a code, a plain
// explanation, the thing at fault, and a hint.
//
// # Error Codes
//
//	N001  malformed route pattern
//	N002  duplicate route name
//	N003  view without handler
//	N004  route manifest unreadable
//	N005  invalid configuration
//	N006  unsupported manifest format
//	N007  route can never match
//	N008  server failed
//	N009  invalid arguments
//
// # Usage
//
//	table, err := router.NewTable(defs)
//	if err != nil {
//	    errors.PrintError(os.Stderr, errors.FromError(err, errors.CodeMalformedPattern).
//	        WithSubject("routes.toml"))
//	}
//
//	// ERROR N001: Malformed route pattern
//	//
//	//   routes.toml
//	//
//	//   → route 2: malformed route pattern "/app/:id/:id": segment 2: duplicate parameter "id"
//	//
//	//   Hint: Fix the listed entries and run `navcore check` again.
package errors
