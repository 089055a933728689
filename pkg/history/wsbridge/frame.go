// Package wsbridge is a history.Backend backed by a browser tab over a
// WebSocket.
//
// The browser owns the real session history. It opens a socket, announces
// its location with a hello frame and reports back/forward traversals with
// pop frames. The server answers with push and replace frames when the
// navigation controller writes history, and render frames when a route
// commits.
//
// Wire format is one JSON object per text message:
//
//	client -> server   {"op":"hello","path":"/app/edit/7"}
//	client -> server   {"op":"pop","path":"/user/login"}
//	server -> client   {"op":"push","path":"/admin/userManage"}
//	server -> client   {"op":"replace","path":"/user/login"}
//	server -> client   {"op":"render","path":"/app/edit/7","view":"AppEditPage","params":{"appId":"7"},"title":"Edit app"}
package wsbridge

import (
	"encoding/json"
	"fmt"
)

// Op names a frame kind.
type Op string

const (
	OpHello   Op = "hello"
	OpPop     Op = "pop"
	OpPush    Op = "push"
	OpReplace Op = "replace"
	OpRender  Op = "render"
	OpError   Op = "error"
)

// Frame is a single bridge message.
type Frame struct {
	Op     Op                `json:"op"`
	Path   string            `json:"path,omitempty"`
	View   string            `json:"view,omitempty"`
	Params map[string]string `json:"params,omitempty"`
	Title  string            `json:"title,omitempty"`
	Error  string            `json:"error,omitempty"`
}

func decodeFrame(data []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Frame{}, fmt.Errorf("wsbridge: decode frame: %w", err)
	}
	if f.Op == "" {
		return Frame{}, fmt.Errorf("wsbridge: frame without op")
	}
	return f, nil
}
