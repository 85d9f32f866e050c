package supervisor

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/turtacn/inventa/pkg/consts"
	ierrors "github.com/turtacn/inventa/pkg/errors"
	"github.com/turtacn/inventa/pkg/logger"
)

// healthFailThreshold is the number of consecutive probe failures before a
// Ready backend is declared crashed. A single miss is tolerated so a busy
// backend is not torn down over one slow response.
const healthFailThreshold = 2

// WatchHealth polls the backend's liveness endpoint while the supervisor is
// Ready. Repeated failures are mapped through the same failure taxonomy as
// startup crashes, best effort, and surface on the Unhealthy channel. The
// loop ends on ctx cancellation or when the supervisor leaves Ready.
func (s *Supervisor) WatchHealth(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = consts.DefaultHealthInterval
	}
	client := &http.Client{Timeout: 3 * time.Second}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		misses := 0
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			if s.State() != consts.StateReady {
				return
			}

			url := s.BaseURL() + "/healthz"
			resp, err := client.Get(url)
			if err == nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
				resp.Body.Close()
				misses = 0
				continue
			}

			var raw string
			if err != nil {
				raw = err.Error()
			} else {
				raw = fmt.Sprintf("liveness endpoint returned %s", resp.Status)
				resp.Body.Close()
			}
			misses++
			logger.Log.Warn("Health: probe failed", "url", url, "misses", misses, "raw", raw)
			if misses < healthFailThreshold {
				continue
			}

			s.failAfterReady(ierrors.FailureUnknownCrash, raw)
			return
		}
	}()
}

// Personal.AI order the ending
