package pathres

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/turtacn/inventa/pkg/consts"
)

// writeRuntimeFile creates a file large enough to clear the sanity floor.
func writeRuntimeFile(t *testing.T, path string) {
	t.Helper()
	data := make([]byte, consts.RuntimeMinSize+1)
	if err := os.WriteFile(path, data, 0o755); err != nil {
		t.Fatalf("writeRuntimeFile failed: %v", err)
	}
}

func TestResolve_FirstValidCandidateWins(t *testing.T) {
	tmpDir := t.TempDir()
	missing := filepath.Join(tmpDir, "missing", "inventad")
	valid := filepath.Join(tmpDir, "inventad")
	writeRuntimeFile(t, valid)

	got, err := Resolve(KindRuntime, []string{missing, valid})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != valid {
		t.Errorf("Expected %s, got %s", valid, got)
	}
}

func TestResolve_OrderingIsRespected(t *testing.T) {
	tmpDir := t.TempDir()
	first := filepath.Join(tmpDir, "first")
	second := filepath.Join(tmpDir, "second")
	writeRuntimeFile(t, first)
	writeRuntimeFile(t, second)

	got, err := Resolve(KindRuntime, []string{first, second})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != first {
		t.Errorf("Expected first candidate %s to win, got %s", first, got)
	}
}

func TestResolve_NeverReturnsFailingCandidate(t *testing.T) {
	tmpDir := t.TempDir()
	truncated := filepath.Join(tmpDir, "truncated")
	if err := os.WriteFile(truncated, []byte("stub"), 0o755); err != nil {
		t.Fatal(err)
	}
	valid := filepath.Join(tmpDir, "valid")
	writeRuntimeFile(t, valid)

	got, err := Resolve(KindRuntime, []string{truncated, valid})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != valid {
		t.Errorf("Truncated candidate must be skipped, got %s", got)
	}
}

func TestResolve_NotFoundListsEveryAttempt(t *testing.T) {
	tmpDir := t.TempDir()
	cands := []string{
		filepath.Join(tmpDir, "a", "inventad"),
		filepath.Join(tmpDir, "b", "inventad"),
	}

	_, err := Resolve(KindRuntime, cands)
	if err == nil {
		t.Fatal("Expected error for all-missing candidates")
	}

	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("Expected NotFoundError in chain, got %v", err)
	}
	if len(nf.Attempts) != len(cands) {
		t.Errorf("Expected %d attempts, got %d", len(cands), len(nf.Attempts))
	}
	for i, a := range nf.Attempts {
		if a.Path != cands[i] {
			t.Errorf("Attempt %d: expected path %s, got %s", i, cands[i], a.Path)
		}
		if a.Reason == "" {
			t.Errorf("Attempt %d: reason must not be empty", i)
		}
	}
}

func TestResolve_EmptyCandidates(t *testing.T) {
	_, err := Resolve(KindRuntime, nil)
	if err == nil {
		t.Fatal("Expected error for empty candidate list")
	}
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("Expected NotFoundError, got %v", err)
	}
	if len(nf.Attempts) != 0 {
		t.Errorf("Expected 0 attempts, got %d", len(nf.Attempts))
	}
}

func TestValidateRuntime_RejectsSmallFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "small")
	if err := os.WriteFile(path, []byte("tiny"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := ValidateRuntime(path); err == nil {
		t.Error("Expected rejection of a file below the sanity floor")
	}
}

func TestValidateRuntime_RejectsDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	if err := ValidateRuntime(tmpDir); err == nil {
		t.Error("Expected rejection of a directory")
	}
}

func TestValidateDataDir_CreatesAndProbes(t *testing.T) {
	tmpDir := t.TempDir()
	target := filepath.Join(tmpDir, "nested", "data")

	if err := ValidateDataDir(target); err != nil {
		t.Fatalf("ValidateDataDir failed: %v", err)
	}
	if _, err := os.Stat(target); err != nil {
		t.Errorf("Directory should have been created: %v", err)
	}
	// Probe file must be cleaned up.
	if _, err := os.Stat(filepath.Join(target, ".inventa-probe")); !os.IsNotExist(err) {
		t.Error("Probe file should have been removed")
	}
}

func TestValidateStaticAssets(t *testing.T) {
	tmpDir := t.TempDir()
	if err := ValidateStaticAssets(tmpDir); err == nil {
		t.Error("Expected rejection without marker file")
	}

	marker := filepath.Join(tmpDir, consts.StaticMarkerFile)
	if err := os.WriteFile(marker, []byte("<html></html>"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ValidateStaticAssets(tmpDir); err != nil {
		t.Errorf("Expected acceptance with marker present: %v", err)
	}
}

func TestResolveWith_CustomValidator(t *testing.T) {
	calls := 0
	validator := func(path string) error {
		calls++
		if path == "good" {
			return nil
		}
		return fmt.Errorf("bad path")
	}

	got, err := ResolveWith(KindRuntime, []string{"bad1", "bad2", "good", "never"}, validator)
	if err != nil {
		t.Fatalf("ResolveWith failed: %v", err)
	}
	if got != "good" {
		t.Errorf("Expected good, got %s", got)
	}
	if calls != 3 {
		t.Errorf("Expected 3 probes (stop at first success), got %d", calls)
	}
}

func TestDefaultCandidates_NeverEmpty(t *testing.T) {
	for _, kind := range []Kind{KindRuntime, KindDataDir, KindStaticAssets} {
		dev := DefaultCandidates(kind, consts.ModeDevelopment)
		pkg := DefaultCandidates(kind, consts.ModePackaged)
		if len(dev) == 0 || len(pkg) == 0 {
			t.Errorf("Kind %s: candidate lists must not be empty", kind)
		}
	}
}
