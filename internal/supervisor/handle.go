package supervisor

import (
	"bufio"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	ierrors "github.com/turtacn/inventa/pkg/errors"
	"github.com/turtacn/inventa/pkg/logger"
)

// Handle owns one spawned backend process: its OS handle, the asynchronous
// line-buffered reading of its output, and termination. The event stream is
// line-ordered per pipe and stays open for the lifetime of the child, so
// output after readiness is still delivered and logged.
type Handle struct {
	cmd    *exec.Cmd
	events chan BackendEvent
	exit   chan ExitEvent

	done     chan struct{} // closed after the process has been reaped
	exitInfo ExitEvent     // valid after done is closed

	mu      sync.Mutex
	forced  bool
	drainer sync.Once
}

// Spawn starts the backend binary with the given args and extra environment
// entries (appended to the host environment) and begins reading its
// stdout/stderr into the event stream.
func Spawn(binary string, args []string, env []string) (*Handle, error) {
	cmd := exec.Command(binary, args...)
	cmd.Env = append(os.Environ(), env...)
	// Own process group, so termination reaches any grandchildren that
	// would otherwise hold the output pipes open and outlive the backend.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, ierrors.New(ierrors.ErrCodeSpawnFailed, "Spawn", "cannot pipe stdout", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, ierrors.New(ierrors.ErrCodeSpawnFailed, "Spawn", "cannot pipe stderr", err)
	}

	logger.Log.Info("Supervisor: Forking backend", "binary", binary, "args", args)
	if err := cmd.Start(); err != nil {
		return nil, ierrors.New(ierrors.ErrCodeSpawnFailed, "Spawn", "cannot start process", err)
	}

	h := &Handle{
		cmd:    cmd,
		events: make(chan BackendEvent, 64),
		exit:   make(chan ExitEvent, 1),
		done:   make(chan struct{}),
	}

	var readers sync.WaitGroup
	readers.Add(2)
	go h.scan(stdout, &readers)
	go h.scan(stderr, &readers)

	go func() {
		readers.Wait()
		err := cmd.Wait()
		h.exitInfo = exitEventFrom(cmd, err)
		close(h.events)
		h.exit <- h.exitInfo
		close(h.done)
		logger.Log.Info("Supervisor: Backend exited", "code", h.exitInfo.Code, "signal", h.exitInfo.Signal)
	}()

	return h, nil
}

func (h *Handle) scan(r io.Reader, wg *sync.WaitGroup) {
	defer wg.Done()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		h.events <- decodeLine(scanner.Text())
	}
}

// Events returns the ordered stream of decoded output lines. The channel is
// closed once the child has exited and both pipes are drained.
func (h *Handle) Events() <-chan BackendEvent { return h.events }

// Exit delivers the terminal exit event exactly once.
func (h *Handle) Exit() <-chan ExitEvent { return h.exit }

// Pid returns the OS process id of the child.
func (h *Handle) Pid() int {
	if h.cmd.Process == nil {
		return 0
	}
	return h.cmd.Process.Pid
}

// Running reports whether the child has not yet been reaped.
func (h *Handle) Running() bool {
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}

// Terminate requests a graceful stop (SIGTERM) and waits up to grace for
// the child to exit; past the deadline it force-kills. The return reports
// whether the forced path was taken.
func (h *Handle) Terminate(grace time.Duration) (forced bool, err error) {
	if h.cmd.Process == nil {
		return false, nil
	}

	select {
	case <-h.done:
		return false, nil
	default:
	}

	// A chatty child can have the scanners wedged on a full event buffer
	// with no consumer left, which would keep the pipes open and make the
	// wait below never return. Keep the stream flowing; lines still land
	// in the log.
	h.drainer.Do(func() {
		go func() {
			for ev := range h.events {
				logBackendEvent(ev)
			}
		}()
	})

	logger.Log.Info("Supervisor: Sending SIGTERM", "pid", h.Pid())
	if serr := h.signalGroup(syscall.SIGTERM); serr != nil {
		// Already gone between the done check and the signal.
		select {
		case <-h.done:
			return false, nil
		default:
		}
		return false, ierrors.New(ierrors.ErrCodeTerminateFailed, "Terminate", "cannot signal process", serr)
	}

	select {
	case <-h.done:
		return false, nil
	case <-time.After(grace):
	}

	logger.Log.Warn("Supervisor: Grace deadline elapsed, sending SIGKILL", "pid", h.Pid())
	h.mu.Lock()
	h.forced = true
	h.mu.Unlock()
	if kerr := h.signalGroup(syscall.SIGKILL); kerr != nil {
		select {
		case <-h.done:
			return true, nil
		default:
		}
		return true, ierrors.New(ierrors.ErrCodeTerminateFailed, "Terminate", "cannot kill process", kerr)
	}
	<-h.done
	return true, nil
}

// signalGroup delivers sig to the child's whole process group, falling back
// to the single process when the group is already gone.
func (h *Handle) signalGroup(sig syscall.Signal) error {
	if err := syscall.Kill(-h.Pid(), sig); err == nil {
		return nil
	}
	return h.cmd.Process.Signal(sig)
}

// ForcedKill reports whether Terminate had to escalate to SIGKILL.
func (h *Handle) ForcedKill() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.forced
}

func exitEventFrom(cmd *exec.Cmd, err error) ExitEvent {
	ev := ExitEvent{Code: -1, Err: err}
	state := cmd.ProcessState
	if state == nil {
		return ev
	}
	ev.Code = state.ExitCode()
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		ev.Signal = ws.Signal().String()
	}
	return ev
}

// Personal.AI order the ending
