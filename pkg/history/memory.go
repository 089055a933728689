package history

import "sync"

// Memory is an in-memory session history.
//
// It behaves like a browser tab: PushState drops forward entries, Back and
// Forward move the cursor and notify listeners synchronously on the
// calling goroutine.
type Memory struct {
	mu        sync.Mutex
	entries   []string
	index     int
	listeners map[int]func(string)
	nextID    int
}

// NewMemory returns a history holding a single entry.
func NewMemory(initial string) *Memory {
	if initial == "" {
		initial = "/"
	}
	return &Memory{
		entries:   []string{initial},
		listeners: make(map[int]func(string)),
	}
}

// Location returns the current entry.
func (m *Memory) Location() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[m.index]
}

// PushState adds an entry and drops any forward entries.
func (m *Memory) PushState(location string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries[:m.index+1], location)
	m.index++
	return nil
}

// ReplaceState overwrites the current entry.
func (m *Memory) ReplaceState(location string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[m.index] = location
	return nil
}

// Listen registers a traversal listener.
func (m *Memory) Listen(fn func(location string)) (cancel func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// Back moves one entry back. It reports false at the first entry.
func (m *Memory) Back() bool {
	return m.Go(-1)
}

// Forward moves one entry forward. It reports false at the last entry.
func (m *Memory) Forward() bool {
	return m.Go(1)
}

// Go moves the cursor by delta entries and notifies listeners.
// Out-of-range and zero deltas are ignored.
func (m *Memory) Go(delta int) bool {
	m.mu.Lock()
	target := m.index + delta
	if delta == 0 || target < 0 || target >= len(m.entries) {
		m.mu.Unlock()
		return false
	}
	m.index = target
	location := m.entries[target]
	listeners := make([]func(string), 0, len(m.listeners))
	for _, fn := range m.listeners {
		listeners = append(listeners, fn)
	}
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(location)
	}
	return true
}

// Entries returns a copy of all entries.
func (m *Memory) Entries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.entries))
	copy(out, m.entries)
	return out
}

// Index returns the cursor position.
func (m *Memory) Index() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.index
}

// Listeners returns the number of registered traversal listeners.
func (m *Memory) Listeners() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.listeners)
}
