package fsm

import (
	"fmt"
	"sync"
	"time"
)

// State is the constraint for enum types driven by a Machine.
type State interface {
	comparable
	fmt.Stringer
}

// Table maps each state to the set of states legally reachable from it.
// States absent from the table are terminal.
type Table[S State] map[S][]S

// TransitionError reports an attempt to perform a transition the table
// does not allow. It is always fatal to the call that triggered it.
type TransitionError struct {
	Machine string
	From    string
	To      string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("fsm: %s: illegal transition %s -> %s", e.Machine, e.From, e.To)
}

// Transition is a single recorded state change.
type Transition struct {
	From string
	To   string
	At   time.Time
}

// maxHistory bounds the per-machine transition trace.
const maxHistory = 16

// Machine is a finite-state machine driven by a declarative transition
// table. State reads and writes are guarded internally so the state may
// be observed from a goroutine other than the one driving transitions.
// Concurrent writers from both sides are not a supported mode; the table
// guard turns the resulting illegal transition into an error rather than
// silent corruption.
type Machine[S State] struct {
	mu      sync.RWMutex
	name    string
	current S
	table   Table[S]
	history []Transition
}

// New creates a machine in the given initial state.
func New[S State](name string, initial S, table Table[S]) *Machine[S] {
	return &Machine[S]{
		name:    name,
		current: initial,
		table:   table,
	}
}

// Name returns the machine name used in errors and diagnostics.
func (m *Machine[S]) Name() string {
	return m.name
}

// Current returns the current state.
func (m *Machine[S]) Current() S {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Is reports whether the machine is currently in state s.
func (m *Machine[S]) Is(s S) bool {
	return m.Current() == s
}

// To transitions the machine to target. The transition must be listed in
// the table for the current state, otherwise a *TransitionError is
// returned and the state is left unchanged.
func (m *Machine[S]) To(target S) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, allowed := range m.table[m.current] {
		if allowed == target {
			m.record(m.current, target)
			m.current = target
			return nil
		}
	}
	return &TransitionError{
		Machine: m.name,
		From:    m.current.String(),
		To:      target.String(),
	}
}

// record appends to the bounded transition trace. Caller holds mu.
func (m *Machine[S]) record(from, to S) {
	if len(m.history) >= maxHistory {
		m.history = m.history[1:]
	}
	m.history = append(m.history, Transition{
		From: from.String(),
		To:   to.String(),
		At:   time.Now(),
	})
}

// History returns a copy of the recent transition trace, oldest first.
// Useful for diagnosing where a stuck handoff got blocked.
func (m *Machine[S]) History() []Transition {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Transition, len(m.history))
	copy(out, m.history)
	return out
}
