package consts

import "time"

// DeploymentMode describes which filesystem layout the application runs from.
// It is determined once at process start and threaded through as a parameter,
// never read from ambient state.
type DeploymentMode string

const (
	ModeDevelopment DeploymentMode = "development" // unpacked source tree
	ModePackaged    DeploymentMode = "packaged"    // archived production tree
)

// SupervisorState defines the detailed lifecycle state of the supervised
// backend, as driven by the ProcessSupervisor's state machine.
type SupervisorState string

const (
	StateIdle          SupervisorState = "IDLE"
	StateLocating      SupervisorState = "LOCATING"       // resolving runtime + data paths
	StateSpawning      SupervisorState = "SPAWNING"       // fork & exec
	StateAwaitingReady SupervisorState = "AWAITING_READY" // waiting for the ready token
	StateReady         SupervisorState = "READY"
	StateFailed        SupervisorState = "FAILED"
	StateShuttingDown  SupervisorState = "SHUTTING_DOWN"
	StateTerminated    SupervisorState = "TERMINATED"
)

// Environment contract passed from the supervisor to the backend child.
// The child treats every value as optional and falls back to its own
// candidate-path resolution when one is absent.
const (
	EnvMode      = "INVENTA_MODE"
	EnvPort      = "INVENTA_PORT"
	EnvDataDir   = "INVENTA_DATA_DIR"
	EnvStaticDir = "INVENTA_STATIC_DIR"
	EnvPackaged  = "INVENTA_PACKAGED"
)

// ReadyTokenPrefix is the authoritative readiness marker. The backend emits
// exactly "INVENTA_READY:<port>" on stdout once its listener is bound; only
// a line with this prefix is parsed for readiness, everything else is
// recorded as a plain log line.
const ReadyTokenPrefix = "INVENTA_READY:"

// Startup and shutdown deadlines. Packaged installs get a longer readiness
// window because first-run schema setup runs on unpredictable hardware.
const (
	DevStartupDeadline      = 20 * time.Second
	PackagedStartupDeadline = 60 * time.Second
	DefaultGraceDeadline    = 5 * time.Second
	DefaultHealthInterval   = 15 * time.Second
)

// RuntimeMinSize is the sanity floor for a runtime binary candidate. A file
// below this size is treated as a truncated or corrupt copy, not a runtime.
const RuntimeMinSize int64 = 1 << 20

// StaticMarkerFile must exist inside a static-assets candidate for it to
// validate.
const StaticMarkerFile = "index.html"

// LogFileName is the append-only sink under <dataDir>/logs. The supervisor
// never truncates it; rotation is an external concern.
const LogFileName = "inventa.log"

// LockFileName guards single-instance semantics inside the data directory.
const LockFileName = "inventa.lock"

// StartupDeadline returns the readiness window for the given mode.
func StartupDeadline(mode DeploymentMode) time.Duration {
	if mode == ModePackaged {
		return PackagedStartupDeadline
	}
	return DevStartupDeadline
}

// Personal.AI order the ending
