package pathres

import (
	"os"
	"path/filepath"

	"github.com/turtacn/inventa/pkg/consts"
)

// ResolvedPaths is the outcome of one resolution pass, produced once per
// supervisor run and consumed read-only afterwards. An empty string means
// the resource could not be resolved (only the runtime binary is mandatory
// host-side).
type ResolvedPaths struct {
	RuntimeBinary string
	DataDir       string
	StaticAssets  string
}

// DefaultCandidates returns the built-in ordered candidate list for a kind
// under the given deployment mode. Callers with config-supplied lists use
// those instead; both sides of the process boundary share this table so the
// host and the backend cannot drift apart.
func DefaultCandidates(kind Kind, mode consts.DeploymentMode) []string {
	exeDir := executableDir()
	home, _ := os.UserHomeDir()

	switch kind {
	case KindRuntime:
		if mode == consts.ModePackaged {
			return []string{
				filepath.Join(exeDir, "resources", "backend", "inventad"),
				filepath.Join(exeDir, "inventad"),
			}
		}
		return []string{
			filepath.Join(exeDir, "inventad"),
			filepath.Join(exeDir, "..", "inventad", "inventad"),
			filepath.Join("bin", "inventad"),
		}
	case KindDataDir:
		if mode == consts.ModePackaged {
			cfg, err := os.UserConfigDir()
			if err == nil {
				return []string{
					filepath.Join(cfg, "inventa"),
					filepath.Join(home, ".inventa"),
				}
			}
			return []string{filepath.Join(home, ".inventa")}
		}
		return []string{
			filepath.Join("data"),
			filepath.Join(home, ".inventa-dev"),
		}
	case KindStaticAssets:
		if mode == consts.ModePackaged {
			return []string{
				filepath.Join(exeDir, "resources", "app", "dist"),
				filepath.Join(exeDir, "static"),
			}
		}
		return []string{
			filepath.Join("web", "dist"),
			filepath.Join(exeDir, "..", "web", "dist"),
		}
	}
	return nil
}

func executableDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// DetectMode auto-detects the deployment mode from packaging markers: a
// resources/ directory next to the executable marks a packaged tree.
func DetectMode() consts.DeploymentMode {
	marker := filepath.Join(executableDir(), "resources")
	if info, err := os.Stat(marker); err == nil && info.IsDir() {
		return consts.ModePackaged
	}
	return consts.ModeDevelopment
}

// Personal.AI order the ending
