package protocol

// Config represents the root host configuration.
type Config struct {
	Version       string              `yaml:"version"`
	Backend       BackendConfig       `yaml:"backend"`
	Paths         PathsConfig         `yaml:"paths"`
	Observability ObservabilityConfig `yaml:"observability"`
}

type BackendConfig struct {
	// PreferredPort is tried first; 0 means always pick a free port.
	PreferredPort int `yaml:"preferred_port"`
	// PinPort refuses to fall back to a kernel-assigned port when the
	// preferred one is busy.
	PinPort bool `yaml:"pin_port"`
	// Mode overrides auto-detection: "development" or "packaged".
	Mode string `yaml:"mode"`
	// StartupTimeout overrides the per-mode default, e.g. "45s".
	StartupTimeout string `yaml:"startup_timeout"`
	// GraceTimeout bounds voluntary exit after a stop request, e.g. "5s".
	GraceTimeout string `yaml:"grace_timeout"`
	// ExtraArgs are appended to the runtime invocation.
	ExtraArgs []string `yaml:"extra_args"`
}

// PathsConfig lists the candidate locations tried in order for each
// resource. Empty lists fall back to the built-in candidates for the
// deployment mode.
type PathsConfig struct {
	Runtime      []string `yaml:"runtime"`       // backend runtime binary
	DataDir      []string `yaml:"data_dir"`      // writable data directory
	StaticAssets []string `yaml:"static_assets"` // bundled UI assets
}

type ObservabilityConfig struct {
	MetricsPort string `yaml:"metrics_port"`
	LogLevel    string `yaml:"log_level"`
	// HealthInterval sets the post-ready liveness poll period, e.g. "15s".
	HealthInterval string `yaml:"health_interval"`
}

// Personal.AI order the ending
