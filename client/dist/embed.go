package clientdist

import _ "embed"

// NavJS is the browser side of the history bridge.
//
// It is served at "/_nav/client.js".
//
//go:embed navcore.js
var NavJS []byte
