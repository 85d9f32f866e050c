package cli

import (
	"testing"
)

func TestCommands(t *testing.T) {
	if rootCmd.Name() != "inventa" {
		t.Errorf("Expected root command name inventa, got %s", rootCmd.Name())
	}

	if len(rootCmd.Commands()) < 2 {
		t.Errorf("Expected at least 2 subcommands, got %d", len(rootCmd.Commands()))
	}
}

func TestParseDuration(t *testing.T) {
	if d := parseDuration(""); d != 0 {
		t.Errorf("Empty string must mean unset, got %v", d)
	}
	if d := parseDuration("45s"); d.Seconds() != 45 {
		t.Errorf("Expected 45s, got %v", d)
	}
}
