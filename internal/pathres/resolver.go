package pathres

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/turtacn/inventa/pkg/consts"
	ierrors "github.com/turtacn/inventa/pkg/errors"
	"github.com/turtacn/inventa/pkg/logger"
)

// Kind names a resource the resolver can locate. Each kind has its own
// validator; resolution is always probe-and-confirm, never assume-and-proceed.
type Kind string

const (
	KindRuntime      Kind = "runtime"       // backend runtime binary
	KindDataDir      Kind = "data_dir"      // writable data directory
	KindStaticAssets Kind = "static_assets" // bundled UI assets
)

// Attempt records one candidate that failed validation.
type Attempt struct {
	Path   string
	Reason string
}

// NotFoundError is returned when no candidate validates. It carries every
// attempted path with the specific reason it failed, for diagnostics.
type NotFoundError struct {
	Kind     Kind
	Attempts []Attempt
}

func (e *NotFoundError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "no valid %s among %d candidates:", e.Kind, len(e.Attempts))
	for _, a := range e.Attempts {
		fmt.Fprintf(&b, " [%s: %s]", a.Path, a.Reason)
	}
	return b.String()
}

// Validator probes a single candidate path. A nil return means the
// candidate is usable.
type Validator func(path string) error

// Resolve tries candidates in order with the kind's default validator and
// returns the first one that validates. Ordering is authoritative: a later
// candidate is never preferred over an earlier passing one.
func Resolve(kind Kind, candidates []string) (string, error) {
	return ResolveWith(kind, candidates, validatorFor(kind))
}

// ResolveWith is Resolve with an explicit validator, for callers (and tests)
// that need a non-default probe.
func ResolveWith(kind Kind, candidates []string, validate Validator) (string, error) {
	attempts := make([]Attempt, 0, len(candidates))
	for _, c := range candidates {
		if err := validate(c); err != nil {
			logger.Log.Debug("Resolver: candidate rejected", "kind", string(kind), "path", c, "reason", err.Error())
			attempts = append(attempts, Attempt{Path: c, Reason: err.Error()})
			continue
		}
		logger.Log.Info("Resolver: candidate accepted", "kind", string(kind), "path", c)
		return c, nil
	}
	nf := &NotFoundError{Kind: kind, Attempts: attempts}
	return "", ierrors.New(ierrors.ErrCodePathNotFound, "Resolve", fmt.Sprintf("cannot locate %s", kind), nf)
}

func validatorFor(kind Kind) Validator {
	switch kind {
	case KindRuntime:
		return ValidateRuntime
	case KindDataDir:
		return ValidateDataDir
	case KindStaticAssets:
		return ValidateStaticAssets
	default:
		return func(path string) error {
			_, err := os.Stat(path)
			return err
		}
	}
}

// ValidateRuntime accepts a regular file whose size clears the corruption
// sanity floor.
func ValidateRuntime(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("not a regular file")
	}
	if info.Size() < consts.RuntimeMinSize {
		return fmt.Errorf("file too small (%d bytes), likely truncated", info.Size())
	}
	return nil
}

// ValidateDataDir accepts a directory that exists or can be created, and in
// which a probe file can be written and removed.
func ValidateDataDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("cannot create: %v", err)
	}
	probe := filepath.Join(path, ".inventa-probe")
	f, err := os.OpenFile(probe, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("not writable: %v", err)
	}
	f.Close()
	if err := os.Remove(probe); err != nil {
		return fmt.Errorf("cannot remove probe file: %v", err)
	}
	return nil
}

// ValidateStaticAssets accepts a directory containing the entry document.
func ValidateStaticAssets(path string) error {
	marker := filepath.Join(path, consts.StaticMarkerFile)
	info, err := os.Stat(marker)
	if err != nil {
		return fmt.Errorf("marker %s missing: %v", consts.StaticMarkerFile, err)
	}
	if info.IsDir() {
		return fmt.Errorf("marker %s is a directory", consts.StaticMarkerFile)
	}
	return nil
}

// Personal.AI order the ending
