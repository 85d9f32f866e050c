package backend

import (
	"github.com/caarlos0/env/v11"

	"github.com/turtacn/inventa/internal/pathres"
	"github.com/turtacn/inventa/pkg/consts"
	ierrors "github.com/turtacn/inventa/pkg/errors"
	"github.com/turtacn/inventa/pkg/logger"
)

// Config is the backend's side of the environment contract. Every value is
// optional: when the supervisor could not resolve a path (or the backend is
// launched by hand), the backend falls back to its own candidate lists, the
// same probe-and-confirm resolution the host uses.
type Config struct {
	Mode      string `env:"INVENTA_MODE" envDefault:"development"`
	Port      int    `env:"INVENTA_PORT" envDefault:"0"`
	DataDir   string `env:"INVENTA_DATA_DIR"`
	StaticDir string `env:"INVENTA_STATIC_DIR"`
	Packaged  bool   `env:"INVENTA_PACKAGED" envDefault:"false"`
}

// LoadConfig parses the environment and fills missing paths via candidate
// resolution. A missing data directory is fatal (the store needs one); a
// missing static directory only disables static file serving.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, ierrors.New(ierrors.ErrCodeConfigInvalid, "LoadConfig", "cannot parse environment", err)
	}

	mode := consts.DeploymentMode(cfg.Mode)
	if mode != consts.ModePackaged {
		mode = consts.ModeDevelopment
	}
	if cfg.Packaged {
		mode = consts.ModePackaged
	}

	if cfg.DataDir == "" {
		dir, err := pathres.Resolve(pathres.KindDataDir, pathres.DefaultCandidates(pathres.KindDataDir, mode))
		if err != nil {
			return nil, err
		}
		cfg.DataDir = dir
	} else if err := pathres.ValidateDataDir(cfg.DataDir); err != nil {
		return nil, ierrors.New(ierrors.ErrCodeProbeFailed, "LoadConfig", "supplied data dir unusable", err)
	}

	if cfg.StaticDir == "" {
		dir, err := pathres.Resolve(pathres.KindStaticAssets, pathres.DefaultCandidates(pathres.KindStaticAssets, mode))
		if err != nil {
			logger.Log.Warn("Backend: no static assets found, UI serving disabled", "err", err)
		} else {
			cfg.StaticDir = dir
		}
	}

	return cfg, nil
}

// Personal.AI order the ending
