package supervisor

import (
	"strconv"
	"strings"
	"time"

	"github.com/turtacn/inventa/pkg/consts"
)

// EventLevel categorizes one line of backend output.
type EventLevel string

const (
	LevelInfo         EventLevel = "info"
	LevelWarning      EventLevel = "warning"
	LevelError        EventLevel = "error"
	LevelReady        EventLevel = "ready"
	LevelUnclassified EventLevel = "unclassified"
)

// BackendEvent is a timestamped, leveled line parsed from the child's
// stdout/stderr. Events are ephemeral: consumed by the readiness wait and
// appended to the log sink, nothing more.
type BackendEvent struct {
	When    time.Time
	Level   EventLevel
	Message string
}

// ExitEvent is the terminal event for a child process.
type ExitEvent struct {
	Code   int    // -1 when the process was killed by a signal
	Signal string // empty when the process exited on its own
	Err    error  // raw wait error, if any
}

// decodeLine turns a raw output line into a BackendEvent. Lines that match
// no known prefix are kept with the unclassified level — output is never
// silently dropped.
func decodeLine(line string) BackendEvent {
	ev := BackendEvent{When: time.Now(), Message: line}

	trimmed := strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(trimmed, consts.ReadyTokenPrefix):
		ev.Level = LevelReady
	case hasLevelMarker(trimmed, "ERROR"), hasLevelMarker(trimmed, "ERR"):
		ev.Level = LevelError
	case hasLevelMarker(trimmed, "WARNING"), hasLevelMarker(trimmed, "WARN"):
		ev.Level = LevelWarning
	case hasLevelMarker(trimmed, "INFO"):
		ev.Level = LevelInfo
	default:
		ev.Level = LevelUnclassified
	}
	return ev
}

// hasLevelMarker matches both plain "ERROR: ..." prefixes and the
// "level":"ERROR" field of a JSON log line.
func hasLevelMarker(line, marker string) bool {
	upper := strings.ToUpper(line)
	if strings.HasPrefix(upper, marker+":") || strings.HasPrefix(upper, marker+" ") {
		return true
	}
	return strings.Contains(upper, `"LEVEL":"`+marker+`"`)
}

// readyPort extracts the bound port from a ready-token line. The second
// return is false when the line is malformed.
func readyPort(line string) (int, bool) {
	trimmed := strings.TrimSpace(line)
	rest := strings.TrimPrefix(trimmed, consts.ReadyTokenPrefix)
	port, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil || port <= 0 || port > 65535 {
		return 0, false
	}
	return port, true
}

// Personal.AI order the ending
