package supervisor

import (
	"strings"

	ierrors "github.com/turtacn/inventa/pkg/errors"
)

// crashRule maps a lowercase substring of the child's last error line to a
// failure category. The table is ordered: the first matching rule wins, so
// more specific patterns sit above generic ones.
type crashRule struct {
	pattern  string
	category ierrors.FailureCategory
}

var crashRules = []crashRule{
	{"address already in use", ierrors.FailurePortInUse},
	{"eaddrinuse", ierrors.FailurePortInUse},
	{"only one usage of each socket address", ierrors.FailurePortInUse},

	{"permission denied", ierrors.FailurePermissionDenied},
	{"eacces", ierrors.FailurePermissionDenied},
	{"read-only file system", ierrors.FailurePermissionDenied},
	{"operation not permitted", ierrors.FailurePermissionDenied},

	{"cannot open shared object", ierrors.FailureDependencyMissing},
	{"no such file or directory", ierrors.FailureDependencyMissing},
	{"library not loaded", ierrors.FailureDependencyMissing},
	{"cannot find module", ierrors.FailureDependencyMissing},
	{"module not found", ierrors.FailureDependencyMissing},
}

// ClassifyCrash maps the last error-level output line of a crashed child to
// the closed failure taxonomy. An unmatched (or empty) line yields
// UnknownCrash; the raw line is preserved verbatim by the caller either way.
func ClassifyCrash(lastError string) ierrors.FailureCategory {
	needle := strings.ToLower(lastError)
	if needle == "" {
		return ierrors.FailureUnknownCrash
	}
	for _, r := range crashRules {
		if strings.Contains(needle, r.pattern) {
			return r.category
		}
	}
	return ierrors.FailureUnknownCrash
}

// Personal.AI order the ending
