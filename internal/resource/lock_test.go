package resource

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/turtacn/inventa/pkg/consts"
)

func TestAcquireLock_FirstInstance(t *testing.T) {
	tmpDir := t.TempDir()

	lock, err := AcquireLock(tmpDir)
	if err != nil {
		t.Fatalf("AcquireLock failed: %v", err)
	}
	defer lock.Release()

	data, err := os.ReadFile(lock.Path())
	if err != nil {
		t.Fatalf("Lock file should exist: %v", err)
	}
	pid, err := strconv.Atoi(string(data))
	if err != nil || pid != os.Getpid() {
		t.Errorf("Lock file should hold our pid %d, got %q", os.Getpid(), string(data))
	}
}

func TestAcquireLock_SecondInstanceRefused(t *testing.T) {
	tmpDir := t.TempDir()

	lock, err := AcquireLock(tmpDir)
	if err != nil {
		t.Fatalf("AcquireLock failed: %v", err)
	}
	defer lock.Release()

	// Our own pid is alive, so a second acquisition must fail.
	if _, err := AcquireLock(tmpDir); err == nil {
		t.Error("Expected second AcquireLock to fail while the first holds")
	}
}

func TestAcquireLock_StaleLockReplaced(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, consts.LockFileName)

	// A pid beyond the kernel's default pid_max cannot be alive.
	if err := os.WriteFile(path, []byte("4194304"), 0o644); err != nil {
		t.Fatal(err)
	}

	lock, err := AcquireLock(tmpDir)
	if err != nil {
		t.Fatalf("Stale lock should be replaced: %v", err)
	}
	lock.Release()
}

func TestAcquireLock_GarbageContentReplaced(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, consts.LockFileName)
	if err := os.WriteFile(path, []byte("not-a-pid"), 0o644); err != nil {
		t.Fatal(err)
	}

	lock, err := AcquireLock(tmpDir)
	if err != nil {
		t.Fatalf("Garbage lock should be replaced: %v", err)
	}
	lock.Release()
}

func TestRelease_RemovesFile(t *testing.T) {
	tmpDir := t.TempDir()

	lock, err := AcquireLock(tmpDir)
	if err != nil {
		t.Fatalf("AcquireLock failed: %v", err)
	}
	lock.Release()

	if _, err := os.Stat(lock.Path()); !os.IsNotExist(err) {
		t.Error("Lock file should be removed after Release")
	}

	// Releasing twice is harmless.
	lock.Release()
}
