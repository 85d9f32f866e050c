package supervisor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/turtacn/inventa/internal/monitor"
	"github.com/turtacn/inventa/internal/pathres"
	"github.com/turtacn/inventa/internal/resource"
	"github.com/turtacn/inventa/pkg/consts"
	ierrors "github.com/turtacn/inventa/pkg/errors"
	"github.com/turtacn/inventa/pkg/fsm"
	"github.com/turtacn/inventa/pkg/logger"
)

const (
	evLocate     fsm.Event = "locate"
	evSpawn      fsm.Event = "spawn"
	evAwait      fsm.Event = "await"
	evReady      fsm.Event = "ready"
	evFail       fsm.Event = "fail"
	evShutdown   fsm.Event = "shutdown"
	evTerminated fsm.Event = "terminated"
)

// Options configures one Supervisor. Candidate lists left empty fall back
// to the built-in defaults for the deployment mode.
type Options struct {
	Mode              consts.DeploymentMode
	RuntimeCandidates []string
	DataDirCandidates []string
	StaticCandidates  []string
	PreferredPort     int
	PinPort           bool
	ExtraArgs         []string
	StartupTimeout    time.Duration // 0 means the per-mode default
	GraceTimeout      time.Duration // 0 means the default grace deadline
	LogFilePath       string        // included in every FailureReport
}

// Outcome is the result of one Start attempt.
type Outcome struct {
	Ready     bool
	Cancelled bool
	BaseURL   string
	Report    *ierrors.FailureReport
}

// Supervisor orchestrates one backend child per application instance:
// resolve paths, pick a port, spawn, await readiness, classify failures,
// and expose the lifecycle to the application shell. Exactly one exists
// per host process, guarded externally by the instance lock.
type Supervisor struct {
	opts Options
	fsm  *fsm.StateMachine

	mu        sync.Mutex
	handle    *Handle
	paths     pathres.ResolvedPaths
	port      int
	baseURL   string
	report    *ierrors.FailureReport
	unhealthy chan *ierrors.FailureReport
}

// New builds a Supervisor in the Idle state.
func New(opts Options) *Supervisor {
	s := &Supervisor{
		opts:      opts,
		fsm:       fsm.New(fsm.State(consts.StateIdle)),
		unhealthy: make(chan *ierrors.FailureReport, 1),
	}
	s.setupFSM()
	return s
}

func (s *Supervisor) setupFSM() {
	idle := fsm.State(consts.StateIdle)
	locating := fsm.State(consts.StateLocating)
	spawning := fsm.State(consts.StateSpawning)
	awaiting := fsm.State(consts.StateAwaitingReady)
	ready := fsm.State(consts.StateReady)
	failed := fsm.State(consts.StateFailed)
	shutting := fsm.State(consts.StateShuttingDown)
	terminated := fsm.State(consts.StateTerminated)

	s.fsm.AddTransition(idle, locating, evLocate, nil)
	s.fsm.AddTransition(locating, spawning, evSpawn, nil)
	s.fsm.AddTransition(spawning, awaiting, evAwait, nil)
	s.fsm.AddTransition(awaiting, ready, evReady, nil)

	s.fsm.AddTransition(locating, failed, evFail, nil)
	s.fsm.AddTransition(spawning, failed, evFail, nil)
	s.fsm.AddTransition(awaiting, failed, evFail, nil)
	// Post-startup crash detected by the health probe or the drain loop.
	s.fsm.AddTransition(ready, failed, evFail, nil)

	// Explicit shutdown is reachable from every non-terminal state.
	for _, st := range []fsm.State{idle, locating, spawning, awaiting, ready, failed} {
		s.fsm.AddTransition(st, shutting, evShutdown, nil)
	}
	s.fsm.AddTransition(shutting, terminated, evTerminated, nil)
	s.fsm.MarkTerminal(terminated)
}

// State returns the current lifecycle state.
func (s *Supervisor) State() consts.SupervisorState {
	return consts.SupervisorState(s.fsm.Current())
}

// Report returns the failure report of the last Failed transition, nil
// before any failure.
func (s *Supervisor) Report() *ierrors.FailureReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.report
}

// BaseURL returns the backend base URL once Ready, empty before.
func (s *Supervisor) BaseURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseURL
}

// Unhealthy delivers at most one post-startup failure report per Ready run,
// produced by the health probe or by an unexpected backend exit.
func (s *Supervisor) Unhealthy() <-chan *ierrors.FailureReport {
	return s.unhealthy
}

// Start drives one full startup attempt. It is cancellable through ctx: a
// cancellation while the wait is in flight terminates any spawned child so
// no orphan outlives the host. After a Failed outcome the caller may Reset
// and call Start again.
func (s *Supervisor) Start(ctx context.Context) Outcome {
	began := time.Now()

	if err := s.fsm.Fire(evLocate); err != nil {
		return s.fail(ierrors.FailureUnknownCrash, err.Error())
	}
	logger.Log.Info("Supervisor: Locating backend resources", "mode", string(s.opts.Mode))

	runtime, err := pathres.Resolve(pathres.KindRuntime, s.candidates(pathres.KindRuntime, s.opts.RuntimeCandidates))
	if err != nil {
		// No spawn is ever attempted without a validated runtime.
		return s.fail(ierrors.FailureRuntimeMissing, err.Error())
	}

	dataDir, derr := pathres.Resolve(pathres.KindDataDir, s.candidates(pathres.KindDataDir, s.opts.DataDirCandidates))
	if derr != nil {
		logger.Log.Warn("Supervisor: no data directory resolved, child will use its own fallbacks", "err", derr)
	}
	static, serr := pathres.Resolve(pathres.KindStaticAssets, s.candidates(pathres.KindStaticAssets, s.opts.StaticCandidates))
	if serr != nil {
		logger.Log.Warn("Supervisor: no static assets resolved, child will use its own fallbacks", "err", serr)
	}

	s.mu.Lock()
	s.paths = pathres.ResolvedPaths{RuntimeBinary: runtime, DataDir: dataDir, StaticAssets: static}
	s.mu.Unlock()

	port, err := resource.SelectPort(s.opts.PreferredPort, s.opts.PinPort)
	if err != nil {
		if resource.IsAddrInUse(err) {
			return s.fail(ierrors.FailurePortInUse, err.Error())
		}
		return s.fail(ierrors.FailureUnknownCrash, err.Error())
	}

	if err := s.fsm.Fire(evSpawn); err != nil {
		return s.fail(ierrors.FailureUnknownCrash, err.Error())
	}
	h, err := Spawn(runtime, s.opts.ExtraArgs, s.childEnv(port, dataDir, static))
	if err != nil {
		return s.fail(spawnCategory(err), err.Error())
	}
	s.mu.Lock()
	s.handle = h
	s.port = port
	s.mu.Unlock()

	if err := s.fsm.Fire(evAwait); err != nil {
		return s.fail(ierrors.FailureUnknownCrash, err.Error())
	}
	res := NewReadinessMonitor().Await(ctx, h, s.startupDeadline())

	switch res.Outcome {
	case OutcomeReady:
		if err := s.fsm.Fire(evReady); err != nil {
			return s.fail(ierrors.FailureUnknownCrash, err.Error())
		}
		s.mu.Lock()
		s.baseURL = fmt.Sprintf("http://127.0.0.1:%d", res.Port)
		url := s.baseURL
		s.mu.Unlock()
		monitor.StartupDuration.Observe(time.Since(began).Seconds())
		monitor.BackendUp.Set(1)
		logger.Log.Info("Supervisor: Backend ready", "url", url, "pid", h.Pid())
		go s.drain(h)
		return Outcome{Ready: true, BaseURL: url}

	case OutcomeCrashed:
		raw := res.LastError
		if raw == "" {
			raw = fmt.Sprintf("backend exited with code %d before readiness", res.Exit.Code)
			if res.Exit.Signal != "" {
				raw = fmt.Sprintf("backend killed by %s before readiness", res.Exit.Signal)
			}
		}
		return s.fail(ClassifyCrash(res.LastError), raw)

	case OutcomeTimedOut:
		forced, terr := h.Terminate(s.graceDeadline())
		if terr != nil {
			logger.Log.Error("Supervisor: terminate after timeout failed", "err", terr)
		}
		logger.Log.Warn("Supervisor: startup deadline elapsed, child terminated", "forced", forced)
		return s.fail(ierrors.FailureStartupTimeout,
			fmt.Sprintf("no readiness signal within %s", s.startupDeadline()))

	default: // OutcomeCancelled
		logger.Log.Info("Supervisor: startup cancelled, terminating child")
		if _, terr := h.Terminate(s.graceDeadline()); terr != nil {
			logger.Log.Error("Supervisor: terminate after cancel failed", "err", terr)
		}
		s.fsm.Fire(evShutdown)
		s.fsm.Fire(evTerminated)
		return Outcome{Cancelled: true}
	}
}

// Shutdown terminates any running child and drives the state machine to
// Terminated. Safe to call from any non-terminal state.
func (s *Supervisor) Shutdown() {
	if err := s.fsm.Fire(evShutdown); err != nil {
		// Already terminated, or never started.
		return
	}
	monitor.BackendUp.Set(0)

	s.mu.Lock()
	h := s.handle
	s.mu.Unlock()
	if h != nil && h.Running() {
		forced, err := h.Terminate(s.graceDeadline())
		if err != nil {
			logger.Log.Error("Supervisor: shutdown terminate failed", "err", err)
		}
		logger.Log.Info("Supervisor: backend stopped", "forced", forced)
	}
	s.fsm.Fire(evTerminated)
}

// Reset returns a Failed supervisor to Idle so the shell can retry Start,
// typically after the user performed the suggested remedy.
func (s *Supervisor) Reset() error {
	if s.State() != consts.StateFailed {
		return ierrors.New(ierrors.ErrCodeUnknown, "Reset",
			fmt.Sprintf("cannot reset from state %s", s.State()), nil)
	}
	s.mu.Lock()
	s.handle = nil
	s.report = nil
	s.baseURL = ""
	s.port = 0
	s.mu.Unlock()
	s.fsm.Reset()
	return nil
}

// drain keeps consuming backend output after Ready so late lines are still
// logged, and watches for an unexpected exit, classified from the last
// error-level line the same way a pre-ready crash is. A duplicate ready
// token is logged and ignored: the state machine has no Ready-to-Ready edge.
func (s *Supervisor) drain(h *Handle) {
	var lastError string
	for ev := range h.Events() {
		if ev.Level == LevelReady {
			logger.Log.Warn("Supervisor: duplicate readiness line ignored", "line", ev.Message)
			continue
		}
		if ev.Level == LevelError {
			lastError = ev.Message
		}
		logBackendEvent(ev)
	}
	exit := <-h.Exit()
	raw := lastError
	if raw == "" {
		raw = fmt.Sprintf("backend exited unexpectedly with code %d", exit.Code)
	}
	s.failAfterReady(ClassifyCrash(lastError), raw)
}

// failAfterReady reports a post-startup crash. It is a no-op unless the
// supervisor is currently Ready, so a graceful shutdown never produces a
// spurious failure report.
func (s *Supervisor) failAfterReady(cat ierrors.FailureCategory, raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if consts.SupervisorState(s.fsm.Current()) != consts.StateReady {
		return
	}
	if err := s.fsm.Fire(evFail); err != nil {
		return
	}
	monitor.BackendUp.Set(0)
	monitor.StartFailures.WithLabelValues(string(cat)).Inc()
	s.report = ierrors.NewFailureReport(cat, raw, s.opts.LogFilePath)
	logger.Log.Error("Supervisor: backend failed after ready", "category", string(cat), "raw", raw)
	select {
	case s.unhealthy <- s.report:
	default:
	}
}

func (s *Supervisor) fail(cat ierrors.FailureCategory, raw string) Outcome {
	s.fsm.Fire(evFail)
	s.mu.Lock()
	s.report = ierrors.NewFailureReport(cat, raw, s.opts.LogFilePath)
	report := s.report
	s.mu.Unlock()
	monitor.StartFailures.WithLabelValues(string(cat)).Inc()
	logger.Log.Error("Supervisor: startup failed",
		"category", string(cat), "raw", raw, "log", s.opts.LogFilePath)
	return Outcome{Report: report}
}

func (s *Supervisor) candidates(kind pathres.Kind, configured []string) []string {
	if len(configured) > 0 {
		return configured
	}
	return pathres.DefaultCandidates(kind, s.opts.Mode)
}

func (s *Supervisor) childEnv(port int, dataDir, static string) []string {
	env := []string{
		fmt.Sprintf("%s=%s", consts.EnvMode, string(s.opts.Mode)),
		fmt.Sprintf("%s=%d", consts.EnvPort, port),
		fmt.Sprintf("%s=%t", consts.EnvPackaged, s.opts.Mode == consts.ModePackaged),
	}
	if dataDir != "" {
		env = append(env, fmt.Sprintf("%s=%s", consts.EnvDataDir, dataDir))
	}
	if static != "" {
		env = append(env, fmt.Sprintf("%s=%s", consts.EnvStaticDir, static))
	}
	return env
}

func (s *Supervisor) startupDeadline() time.Duration {
	if s.opts.StartupTimeout > 0 {
		return s.opts.StartupTimeout
	}
	return consts.StartupDeadline(s.opts.Mode)
}

func (s *Supervisor) graceDeadline() time.Duration {
	if s.opts.GraceTimeout > 0 {
		return s.opts.GraceTimeout
	}
	return consts.DefaultGraceDeadline
}

func spawnCategory(err error) ierrors.FailureCategory {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return ierrors.FailureRuntimeMissing
	case errors.Is(err, os.ErrPermission):
		return ierrors.FailurePermissionDenied
	default:
		return ierrors.FailureUnknownCrash
	}
}

// Personal.AI order the ending
