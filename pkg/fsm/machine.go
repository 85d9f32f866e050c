package fsm

import (
	"fmt"
	"sync"
)

type State string
type Event string

// Handler is executed when a transition occurs
type Handler func(event Event, args ...interface{}) error

type StateMachine struct {
	mu          sync.RWMutex
	initial     State
	current     State
	transitions map[State]map[Event]State
	callbacks   map[State]map[Event]Handler
	terminal    map[State]bool
}

func New(initial State) *StateMachine {
	return &StateMachine{
		initial:     initial,
		current:     initial,
		transitions: make(map[State]map[Event]State),
		callbacks:   make(map[State]map[Event]Handler),
		terminal:    make(map[State]bool),
	}
}

func (sm *StateMachine) Current() State {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.current
}

func (sm *StateMachine) AddTransition(from, to State, event Event, callback Handler) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if _, ok := sm.transitions[from]; !ok {
		sm.transitions[from] = make(map[Event]State)
		sm.callbacks[from] = make(map[Event]Handler)
	}
	sm.transitions[from][event] = to
	sm.callbacks[from][event] = callback
}

// MarkTerminal flags a state as terminal. Fire refuses to leave a terminal
// state; only Reset can.
func (sm *StateMachine) MarkTerminal(s State) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.terminal[s] = true
}

// Fire triggers a state transition. It is thread-safe.
func (sm *StateMachine) Fire(event Event, args ...interface{}) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.terminal[sm.current] {
		return fmt.Errorf("state %s is terminal, no transition via %s", sm.current, event)
	}

	next, ok := sm.transitions[sm.current][event]
	if !ok {
		return fmt.Errorf("invalid transition from %s via %s", sm.current, event)
	}

	// Execute callback if exists
	if handler, exists := sm.callbacks[sm.current][event]; exists && handler != nil {
		if err := handler(event, args...); err != nil {
			return err
		}
	}

	sm.current = next
	return nil
}

// Reset returns the machine to its initial state. Used by the supervisor to
// allow a retry after a Failed outcome.
func (sm *StateMachine) Reset() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.current = sm.initial
}

// Personal.AI order the ending
