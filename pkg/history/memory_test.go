package history

import (
	"reflect"
	"testing"
)

func TestMemoryBackForward(t *testing.T) {
	m := NewMemory("")
	if m.Location() != "/" {
		t.Fatalf("Location() = %q", m.Location())
	}

	_ = m.PushState("/x")
	_ = m.PushState("/y")

	var got []string
	cancel := m.Listen(func(loc string) { got = append(got, loc) })

	if !m.Back() || m.Location() != "/x" {
		t.Fatalf("Back() -> %q", m.Location())
	}
	if !m.Back() || m.Location() != "/" {
		t.Fatalf("Back() -> %q", m.Location())
	}
	if m.Back() {
		t.Error("Back() at first entry should report false")
	}
	if !m.Forward() || m.Location() != "/x" {
		t.Fatalf("Forward() -> %q", m.Location())
	}

	if !reflect.DeepEqual(got, []string{"/x", "/", "/x"}) {
		t.Errorf("listener saw %v", got)
	}
	if len(m.Entries()) != 3 {
		t.Errorf("traversal changed entry count: %v", m.Entries())
	}

	cancel()
	if m.Listeners() != 0 {
		t.Errorf("Listeners() = %d after cancel", m.Listeners())
	}
	m.Forward()
	if len(got) != 3 {
		t.Error("cancelled listener was called")
	}
}

func TestMemoryPushDropsForward(t *testing.T) {
	m := NewMemory("/")
	_ = m.PushState("/a")
	_ = m.PushState("/b")
	m.Back()
	_ = m.PushState("/c")

	if got := m.Entries(); !reflect.DeepEqual(got, []string{"/", "/a", "/c"}) {
		t.Errorf("Entries() = %v", got)
	}
	if m.Index() != 2 {
		t.Errorf("Index() = %d", m.Index())
	}
	if m.Forward() {
		t.Error("Forward() after push should report false")
	}
}

func TestMemoryGo(t *testing.T) {
	m := NewMemory("/0")
	for _, p := range []string{"/1", "/2", "/3"} {
		_ = m.PushState(p)
	}

	if !m.Go(-3) || m.Location() != "/0" {
		t.Errorf("Go(-3) -> %q", m.Location())
	}
	if m.Go(0) || m.Go(-1) || m.Go(4) {
		t.Error("invalid deltas should be ignored")
	}
	if !m.Go(2) || m.Location() != "/2" {
		t.Errorf("Go(2) -> %q", m.Location())
	}

	_ = m.ReplaceState("/two")
	if got := m.Entries(); got[2] != "/two" || len(got) != 4 {
		t.Errorf("Entries() = %v", got)
	}
}
