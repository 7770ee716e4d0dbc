// Package maid collects cleanup work so whoever owns a handful of resources
// can release them all with a single call, in reverse registration order,
// the way deferred calls unwind.
package maid

import (
	"io"
	"sync"
)

// Maid holds cleanup tasks until Clean or Destroy runs them. Methods are safe
// for concurrent use; the tasks themselves run outside the Maid's lock, so a
// task may hand new work to the same Maid without deadlocking.
type Maid struct {
	mu        sync.Mutex
	tasks     []task
	destroyed bool
}

type task struct {
	key     string
	cleanup func()
}

// New returns an empty Maid.
func New() *Maid {
	return &Maid{}
}

// Give hands the Maid a cleanup task. A nil task is ignored. Giving to a
// destroyed Maid runs the task immediately, so resources created after
// teardown are still released.
func (m *Maid) Give(cleanup func()) {
	if cleanup == nil {
		return
	}

	m.mu.Lock()
	if m.destroyed {
		m.mu.Unlock()
		cleanup()
		return
	}
	m.tasks = append(m.tasks, task{cleanup: cleanup})
	m.mu.Unlock()
}

// GiveKeyed registers cleanup under key, replacing any task already held
// there. The displaced task runs immediately: a key names one live resource,
// and a replacement means the old one is due for release. An empty key is
// the same as Give.
func (m *Maid) GiveKeyed(key string, cleanup func()) {
	if key == "" {
		m.Give(cleanup)
		return
	}
	if cleanup == nil {
		m.CleanKey(key)
		return
	}

	m.mu.Lock()
	if m.destroyed {
		m.mu.Unlock()
		cleanup()
		return
	}
	displaced := m.removeLocked(key)
	m.tasks = append(m.tasks, task{key: key, cleanup: cleanup})
	m.mu.Unlock()

	if displaced != nil {
		displaced()
	}
}

// GiveCloser is Give for anything with a Close method. The close error is
// discarded; teardown has nowhere to report it.
func (m *Maid) GiveCloser(c io.Closer) {
	if c == nil {
		return
	}
	m.Give(func() { _ = c.Close() })
}

// Has reports whether a task is currently held under key.
func (m *Maid) Has(key string) bool {
	if key == "" {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.tasks {
		if m.tasks[i].key == key {
			return true
		}
	}
	return false
}

// CleanKey runs and removes the task held under key, reporting whether one
// was present.
func (m *Maid) CleanKey(key string) bool {
	if key == "" {
		return false
	}

	m.mu.Lock()
	cleanup := m.removeLocked(key)
	m.mu.Unlock()

	if cleanup == nil {
		return false
	}
	cleanup()
	return true
}

// Clean runs every held task in reverse registration order and empties the
// Maid, which stays usable for new work.
func (m *Maid) Clean() {
	m.mu.Lock()
	tasks := m.tasks
	m.tasks = nil
	m.mu.Unlock()

	runReversed(tasks)
}

// Destroy cleans the Maid and retires it: from then on Give runs tasks
// immediately instead of holding them. Calling Destroy again is a no-op.
func (m *Maid) Destroy() {
	m.mu.Lock()
	if m.destroyed {
		m.mu.Unlock()
		return
	}
	m.destroyed = true
	tasks := m.tasks
	m.tasks = nil
	m.mu.Unlock()

	runReversed(tasks)
}

// IsDestroyed reports whether Destroy has run.
func (m *Maid) IsDestroyed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.destroyed
}

// Len reports how many tasks the Maid currently holds.
func (m *Maid) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

// removeLocked unlinks the task under key and returns its cleanup, or nil.
// Callers hold m.mu.
func (m *Maid) removeLocked(key string) func() {
	for i := range m.tasks {
		if m.tasks[i].key == key {
			cleanup := m.tasks[i].cleanup
			m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
			return cleanup
		}
	}
	return nil
}

func runReversed(tasks []task) {
	for i := len(tasks) - 1; i >= 0; i-- {
		tasks[i].cleanup()
	}
}
