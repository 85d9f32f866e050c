package errors

import "fmt"

// FailureCategory is the closed, user-facing taxonomy for a startup that did
// not reach Ready. The supervisor is the only place where raw OS errors are
// translated into one of these; nothing below it surfaces raw errors to the
// application shell.
type FailureCategory string

const (
	FailureRuntimeMissing    FailureCategory = "RuntimeMissing"
	FailurePortInUse         FailureCategory = "PortInUse"
	FailurePermissionDenied  FailureCategory = "PermissionDenied"
	FailureDependencyMissing FailureCategory = "DependencyMissing"
	FailureStartupTimeout    FailureCategory = "StartupTimeout"
	FailureUnknownCrash      FailureCategory = "UnknownCrash"
)

// remedies maps each category to the short action the user can take. The
// raw message and log file path carry the detail; this string is what the
// dialog shows first.
var remedies = map[FailureCategory]string{
	FailureRuntimeMissing:    "Reinstall the application; the backend runtime is missing or corrupt.",
	FailurePortInUse:         "Close other running instances of the application and try again.",
	FailurePermissionDenied:  "Check that the data directory is writable by your user account.",
	FailureDependencyMissing: "Reinstall the application; a bundled component could not be loaded.",
	FailureStartupTimeout:    "The backend did not start in time. Retry, or check the log file for details.",
	FailureUnknownCrash:      "The backend stopped unexpectedly. Check the log file for details.",
}

// Remedy returns the user-facing remedy string for a category. Unknown
// categories fall back to the UnknownCrash remedy.
func Remedy(c FailureCategory) string {
	if r, ok := remedies[c]; ok {
		return r
	}
	return remedies[FailureUnknownCrash]
}

// FailureReport is the structured, user-facing description of why startup
// did not reach Ready. It is produced exactly once per Failed transition
// and is immutable after creation; ownership passes to the application
// shell for display.
type FailureReport struct {
	Category    FailureCategory
	RawMessage  string
	Remedy      string
	LogFilePath string
}

// String renders the report the way the diagnostic dialog presents it.
func (r *FailureReport) String() string {
	return fmt.Sprintf("Backend startup failed (%s): %s\n%s\nFull log: %s",
		r.Category, r.RawMessage, r.Remedy, r.LogFilePath)
}

// NewFailureReport builds a report with the remedy filled in from the
// category table.
func NewFailureReport(c FailureCategory, raw, logPath string) *FailureReport {
	return &FailureReport{
		Category:    c,
		RawMessage:  raw,
		Remedy:      Remedy(c),
		LogFilePath: logPath,
	}
}

// Personal.AI order the ending
