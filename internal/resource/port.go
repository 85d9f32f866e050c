package resource

import (
	"errors"
	"fmt"
	"net"
	"syscall"

	ierrors "github.com/turtacn/inventa/pkg/errors"
	"github.com/turtacn/inventa/pkg/logger"
)

// SelectPort picks the TCP port the backend will bind. The preferred port
// is probed first; if it is busy and not pinned, a kernel-assigned free
// port is used instead. The probe listener is closed before returning, so
// there is a small window in which another process could steal the port —
// the backend's own bind failure is still classified downstream.
func SelectPort(preferred int, pinned bool) (int, error) {
	if preferred > 0 {
		port, err := probe(preferred)
		if err == nil {
			return port, nil
		}
		if pinned {
			if IsAddrInUse(err) {
				return 0, ierrors.New(ierrors.ErrCodePortProbeFail, "SelectPort",
					fmt.Sprintf("pinned port %d is already in use", preferred), err)
			}
			return 0, ierrors.New(ierrors.ErrCodePortProbeFail, "SelectPort",
				fmt.Sprintf("cannot bind pinned port %d", preferred), err)
		}
		logger.Log.Warn("Port: preferred port busy, falling back to a free one", "preferred", preferred, "err", err)
	}

	port, err := probe(0)
	if err != nil {
		return 0, ierrors.New(ierrors.ErrCodePortProbeFail, "SelectPort", "cannot bind any port", err)
	}
	return port, nil
}

func probe(port int) (int, error) {
	l, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return 0, err
	}
	bound := l.Addr().(*net.TCPAddr).Port
	l.Close()
	return bound, nil
}

// IsAddrInUse reports whether err is an address-in-use bind failure.
func IsAddrInUse(err error) bool {
	return errors.Is(err, syscall.EADDRINUSE)
}

// Personal.AI order the ending
