package supervisor

import (
	"context"
	"sync"
	"time"

	"github.com/turtacn/inventa/pkg/logger"
)

// ReadyOutcome is the resolution of one readiness wait.
type ReadyOutcome string

const (
	OutcomeReady     ReadyOutcome = "ready"
	OutcomeCrashed   ReadyOutcome = "crashed_before_ready"
	OutcomeTimedOut  ReadyOutcome = "timed_out"
	OutcomeCancelled ReadyOutcome = "cancelled"
)

// Resolution carries the outcome plus whatever context the supervisor needs
// to classify a failure: the bound port on success, the exit event on a
// crash, and the last error-level line observed before resolution.
type Resolution struct {
	Outcome   ReadyOutcome
	Port      int
	Exit      ExitEvent
	LastError string
}

// ReadinessMonitor races the first ready token against the child's exit,
// the startup deadline, and caller cancellation. The resolution is latched:
// a second Await returns the identical Resolution without re-observing the
// stream, so duplicate ready tokens can never re-trigger a transition.
type ReadinessMonitor struct {
	once sync.Once
	res  Resolution
}

// NewReadinessMonitor returns an unresolved monitor.
func NewReadinessMonitor() *ReadinessMonitor {
	return &ReadinessMonitor{}
}

// Await blocks until one of the four outcomes and returns it. Precedence is
// deterministic: an exit already observable when the deadline fires wins
// over the timeout, so a crash racing a slow timer never reports
// StartupTimeout. Non-ready output seen during the wait is logged, never
// dropped.
func (m *ReadinessMonitor) Await(ctx context.Context, h *Handle, deadline time.Duration) Resolution {
	m.once.Do(func() {
		m.res = m.wait(ctx, h, deadline)
	})
	return m.res
}

func (m *ReadinessMonitor) wait(ctx context.Context, h *Handle, deadline time.Duration) Resolution {
	timer := time.NewTimer(deadline)
	defer timer.Stop()

	var lastError string

	for {
		select {
		case ev, ok := <-h.Events():
			if !ok {
				// Stream closed: the exit event is already buffered.
				exit := <-h.Exit()
				return Resolution{Outcome: OutcomeCrashed, Exit: exit, LastError: lastError}
			}
			logBackendEvent(ev)
			switch ev.Level {
			case LevelReady:
				if port, ok := readyPort(ev.Message); ok {
					return Resolution{Outcome: OutcomeReady, Port: port, LastError: lastError}
				}
				logger.Log.Warn("Readiness: malformed ready token ignored", "line", ev.Message)
			case LevelError:
				lastError = ev.Message
			}

		case exit := <-h.Exit():
			return m.resolveExit(h, exit, &lastError)

		case <-timer.C:
			// Exit-before-timeout wins: if the child is already gone when
			// the timer fires, report the crash, not the timeout.
			select {
			case exit := <-h.Exit():
				return m.resolveExit(h, exit, &lastError)
			default:
			}
			return Resolution{Outcome: OutcomeTimedOut, LastError: lastError}

		case <-ctx.Done():
			return Resolution{Outcome: OutcomeCancelled, LastError: lastError}
		}
	}
}

// resolveExit decides between Ready and CrashedBeforeReady once the exit
// event has been observed. The exit is only ever delivered after the event
// stream closed, so the scanners may have buffered a ready token the select
// never got to: a ready token already in the backlog means the listener was
// bound before the exit, and readiness wins. The exit is put back on the
// channel in that case so the post-ready watcher still observes it.
func (m *ReadinessMonitor) resolveExit(h *Handle, exit ExitEvent, lastError *string) Resolution {
	for ev := range h.Events() {
		logBackendEvent(ev)
		switch ev.Level {
		case LevelReady:
			if port, ok := readyPort(ev.Message); ok {
				h.exit <- exit
				return Resolution{Outcome: OutcomeReady, Port: port, LastError: *lastError}
			}
			logger.Log.Warn("Readiness: malformed ready token ignored", "line", ev.Message)
		case LevelError:
			*lastError = ev.Message
		}
	}
	return Resolution{Outcome: OutcomeCrashed, Exit: exit, LastError: *lastError}
}

func logBackendEvent(ev BackendEvent) {
	switch ev.Level {
	case LevelError:
		logger.Log.Error("Backend: "+ev.Message, "at", ev.When.Format(time.RFC3339Nano))
	case LevelWarning:
		logger.Log.Warn("Backend: "+ev.Message, "at", ev.When.Format(time.RFC3339Nano))
	default:
		logger.Log.Info("Backend: "+ev.Message, "at", ev.When.Format(time.RFC3339Nano))
	}
}

// Personal.AI order the ending
