package resource

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/turtacn/inventa/pkg/consts"
	ierrors "github.com/turtacn/inventa/pkg/errors"
	"github.com/turtacn/inventa/pkg/logger"
)

// InstanceLock enforces single-instance semantics via a PID file in the
// data directory. A second host instance would otherwise spawn a second
// backend contending for the same port and data directory.
type InstanceLock struct {
	path string
}

// AcquireLock writes the current PID into the lock file. A lock file whose
// recorded PID still names a live process fails the acquisition; a stale
// file (dead PID, unreadable content) is replaced.
func AcquireLock(dataDir string) (*InstanceLock, error) {
	path := filepath.Join(dataDir, consts.LockFileName)

	if data, err := os.ReadFile(path); err == nil {
		pid, perr := strconv.Atoi(strings.TrimSpace(string(data)))
		if perr == nil && pidAlive(pid) {
			return nil, ierrors.New(ierrors.ErrCodeLockHeld, "AcquireLock",
				fmt.Sprintf("another instance is running (pid %d)", pid), nil)
		}
		logger.Log.Warn("Lock: replacing stale lock file", "path", path)
	}

	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644); err != nil {
		return nil, ierrors.New(ierrors.ErrCodeLockHeld, "AcquireLock", "cannot write lock file", err)
	}
	return &InstanceLock{path: path}, nil
}

// Release removes the lock file. Safe to call once at shutdown.
func (l *InstanceLock) Release() {
	if l == nil {
		return
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		logger.Log.Warn("Lock: cannot remove lock file", "path", l.path, "err", err)
	}
}

// Path returns the lock file location.
func (l *InstanceLock) Path() string { return l.path }

func pidAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// Signal 0 probes existence without delivering anything.
	return proc.Signal(syscall.Signal(0)) == nil
}

// Personal.AI order the ending
