package errors

import (
	"strings"
	"testing"
)

func TestRemedy_EveryCategoryDistinct(t *testing.T) {
	categories := []FailureCategory{
		FailureRuntimeMissing,
		FailurePortInUse,
		FailurePermissionDenied,
		FailureDependencyMissing,
		FailureStartupTimeout,
		FailureUnknownCrash,
	}

	seen := make(map[string]FailureCategory)
	for _, c := range categories {
		r := Remedy(c)
		if r == "" {
			t.Errorf("Category %s has no remedy", c)
		}
		if prev, dup := seen[r]; dup {
			t.Errorf("Categories %s and %s share remedy %q", prev, c, r)
		}
		seen[r] = c
	}
}

func TestRemedy_UnknownCategoryFallsBack(t *testing.T) {
	if Remedy(FailureCategory("NoSuchCategory")) != Remedy(FailureUnknownCrash) {
		t.Error("Unknown category must fall back to the UnknownCrash remedy")
	}
}

func TestNewFailureReport(t *testing.T) {
	r := NewFailureReport(FailurePortInUse, "bind: address already in use", "/data/logs/inventa.log")

	if r.Category != FailurePortInUse {
		t.Errorf("Expected PortInUse, got %s", r.Category)
	}
	if r.RawMessage != "bind: address already in use" {
		t.Errorf("Raw message must be verbatim, got %q", r.RawMessage)
	}
	if r.Remedy != Remedy(FailurePortInUse) {
		t.Errorf("Remedy must come from the category table, got %q", r.Remedy)
	}
	if r.LogFilePath != "/data/logs/inventa.log" {
		t.Errorf("Log path must be carried, got %q", r.LogFilePath)
	}
}

func TestFailureReport_String(t *testing.T) {
	r := NewFailureReport(FailureStartupTimeout, "no readiness within 60s", "/tmp/inventa.log")
	s := r.String()

	for _, want := range []string{"StartupTimeout", "no readiness within 60s", "/tmp/inventa.log"} {
		if !strings.Contains(s, want) {
			t.Errorf("Report string missing %q: %s", want, s)
		}
	}
}
