// Package history bridges navigation decisions to a session history.
//
// An Adapter wraps a Backend: the in-memory Memory backend for headless
// hosts and tests, the wsbridge backend for a real browser tab, or nothing
// at all. Without a backend the adapter degrades to in-memory-only routing:
// Push and Replace become no-ops and a single UnavailableWarning is logged
// when the adapter is created.
//
// The adapter also applies the application base path, so the navigation
// layer always works with application paths ("/user/login") while the
// backend sees full locations ("/console/user/login").
package history
