// Package connectivity tracks whether the upstream weather service is
// reachable and notifies subscribers when that changes.
package connectivity

import "sync"

// Monitor is a process-wide online/offline flag.
type Monitor struct {
	mu     sync.Mutex
	online bool
	subs   map[uint64]func(online bool)
	nextID uint64
}

// New creates a monitor with the given initial state.
func New(online bool) *Monitor {
	return &Monitor{online: online, subs: make(map[uint64]func(bool))}
}

// Online reports the current state.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Set updates the state. Subscribers are called only on a change, outside
// the monitor's lock.
func (m *Monitor) Set(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	fns := make([]func(bool), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(online)
	}
}

// Subscribe registers fn for state changes and returns a function that
// removes it.
func (m *Monitor) Subscribe(fn func(online bool)) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.subs, id)
		})
	}
}

// Subscribers returns the number of registered subscribers.
func (m *Monitor) Subscribers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}
