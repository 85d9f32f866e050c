package fsm

import (
	"fmt"
	"testing"
)

func TestStateMachine_Basic(t *testing.T) {
	sm := New(State("off"))
	sm.AddTransition(State("off"), State("on"), Event("push"), nil)

	if sm.Current() != State("off") {
		t.Errorf("Expected off, got %s", sm.Current())
	}

	err := sm.Fire(Event("push"))
	if err != nil {
		t.Fatal(err)
	}

	if sm.Current() != State("on") {
		t.Errorf("Expected on, got %s", sm.Current())
	}
}

func TestStateMachine_InvalidTransition(t *testing.T) {
	sm := New(State("start"))
	err := sm.Fire(Event("unknown"))
	if err == nil {
		t.Fatal("Expected error for unknown event")
	}
	if sm.Current() != State("start") {
		t.Errorf("State must not change on invalid transition, got %s", sm.Current())
	}
}

func TestStateMachine_HandlerErrorBlocksTransition(t *testing.T) {
	sm := New(State("A"))
	sm.AddTransition(State("A"), State("B"), Event("go"), func(event Event, args ...interface{}) error {
		return fmt.Errorf("handler failed")
	})

	err := sm.Fire(Event("go"))
	if err == nil || err.Error() != "handler failed" {
		t.Fatalf("Expected handler failed error, got %v", err)
	}

	if sm.Current() != State("A") {
		t.Errorf("Failed handler must keep the machine in A, got %s", sm.Current())
	}
}

func TestStateMachine_CallbackReceivesArgs(t *testing.T) {
	sm := New(State("A"))
	var got interface{}
	sm.AddTransition(State("A"), State("B"), Event("go"), func(event Event, args ...interface{}) error {
		if len(args) > 0 {
			got = args[0]
		}
		return nil
	})

	if err := sm.Fire(Event("go"), 42); err != nil {
		t.Fatal(err)
	}
	if got != 42 {
		t.Errorf("Expected callback arg 42, got %v", got)
	}
}

func TestStateMachine_TerminalStateRefusesEvents(t *testing.T) {
	sm := New(State("running"))
	sm.AddTransition(State("running"), State("done"), Event("finish"), nil)
	sm.AddTransition(State("done"), State("running"), Event("restart"), nil)
	sm.MarkTerminal(State("done"))

	if err := sm.Fire(Event("finish")); err != nil {
		t.Fatal(err)
	}
	if err := sm.Fire(Event("restart")); err == nil {
		t.Error("Terminal state must refuse transitions")
	}
	if sm.Current() != State("done") {
		t.Errorf("Expected done, got %s", sm.Current())
	}
}

func TestStateMachine_Reset(t *testing.T) {
	sm := New(State("idle"))
	sm.AddTransition(State("idle"), State("failed"), Event("fail"), nil)

	if err := sm.Fire(Event("fail")); err != nil {
		t.Fatal(err)
	}
	sm.Reset()
	if sm.Current() != State("idle") {
		t.Errorf("Expected idle after reset, got %s", sm.Current())
	}

	// The same transition works again after reset.
	if err := sm.Fire(Event("fail")); err != nil {
		t.Errorf("Transition after reset failed: %v", err)
	}
}
