package history

import (
	"bytes"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"testing"
)

func newTestLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, nil)), &buf
}

func TestAdapterPushReplace(t *testing.T) {
	mem := NewMemory("/")
	a := NewAdapter(mem)

	if !a.Available() || a.Warning() != nil {
		t.Fatal("adapter with backend should be available")
	}

	if err := a.Push("/x"); err != nil {
		t.Fatalf("Push error: %v", err)
	}
	if err := a.Push("/y"); err != nil {
		t.Fatalf("Push error: %v", err)
	}
	if err := a.Replace("/z"); err != nil {
		t.Fatalf("Replace error: %v", err)
	}

	if got := mem.Entries(); !reflect.DeepEqual(got, []string{"/", "/x", "/z"}) {
		t.Errorf("Entries() = %v", got)
	}
	if a.Location() != "/z" {
		t.Errorf("Location() = %q", a.Location())
	}
}

func TestAdapterUnavailableWarnsOnce(t *testing.T) {
	logger, buf := newTestLogger()
	a := NewAdapter(nil, WithLogger(logger), WithFallback("/user/login"))

	if a.Available() {
		t.Fatal("nil backend should be unavailable")
	}
	var w *UnavailableWarning
	if !errors.As(a.Warning(), &w) || !errors.Is(a.Warning(), ErrUnavailable) {
		t.Fatalf("Warning() = %v", a.Warning())
	}

	for i := 0; i < 3; i++ {
		if err := a.Push("/x"); err != nil {
			t.Errorf("Push should be a no-op, got %v", err)
		}
		if err := a.Replace("/x"); err != nil {
			t.Errorf("Replace should be a no-op, got %v", err)
		}
	}
	cancel := a.OnPopState(func(string) { t.Error("unexpected pop") })
	cancel()

	if a.Location() != "/user/login" {
		t.Errorf("Location() = %q, want fallback", a.Location())
	}
	if n := strings.Count(buf.String(), "level=WARN"); n != 1 {
		t.Errorf("warning logged %d times, want 1:\n%s", n, buf.String())
	}
}

func TestAdapterBasePath(t *testing.T) {
	mem := NewMemory("/console/app/edit/1")
	a := NewAdapter(mem, WithBase("/console/"))

	if a.Base() != "/console" {
		t.Errorf("Base() = %q", a.Base())
	}
	if a.Location() != "/app/edit/1" {
		t.Errorf("Location() = %q", a.Location())
	}

	_ = a.Push("/")
	_ = a.Push("/user/login")
	if got := mem.Entries(); !reflect.DeepEqual(got, []string{"/console/app/edit/1", "/console/", "/console/user/login"}) {
		t.Errorf("Entries() = %v", got)
	}

	var popped []string
	a.OnPopState(func(path string) { popped = append(popped, path) })
	mem.Back()
	mem.Back()
	if !reflect.DeepEqual(popped, []string{"/", "/app/edit/1"}) {
		t.Errorf("popped = %v", popped)
	}
}

func TestAdapterLocationOutsideBase(t *testing.T) {
	logger, buf := newTestLogger()
	a := NewAdapter(NewMemory("/other"), WithBase("/console"), WithLogger(logger))

	if a.Location() != "/other" {
		t.Errorf("Location() = %q", a.Location())
	}
	if !strings.Contains(buf.String(), "outside base") {
		t.Error("expected warning for location outside base")
	}
}

type failingBackend struct{ *Memory }

func (failingBackend) PushState(string) error    { return errors.New("closed") }
func (failingBackend) ReplaceState(string) error { return errors.New("closed") }

func TestAdapterBackendErrors(t *testing.T) {
	logger, buf := newTestLogger()
	a := NewAdapter(failingBackend{NewMemory("/")}, WithLogger(logger))

	if err := a.Push("/x"); err == nil || !strings.Contains(err.Error(), "closed") {
		t.Errorf("Push error = %v", err)
	}
	if err := a.Replace("/x"); err == nil {
		t.Error("Replace should fail")
	}
	if !strings.Contains(buf.String(), "history push failed") {
		t.Error("expected push failure to be logged")
	}
}
