package errors

import "fmt"

// ErrorCode represents a unique identifier for specific error conditions in inventa.
type ErrorCode int

const (
	ErrCodeUnknown       ErrorCode = 1000
	ErrCodeConfigInvalid ErrorCode = 1001

	// Phase 1: Path resolution
	ErrCodePathNotFound  ErrorCode = 2001
	ErrCodeProbeFailed   ErrorCode = 2002
	ErrCodeLockHeld      ErrorCode = 2003
	ErrCodePortProbeFail ErrorCode = 2004

	// Phase 2: Spawn & readiness
	ErrCodeSpawnFailed     ErrorCode = 3001
	ErrCodeStartupTimeout  ErrorCode = 3002
	ErrCodeCrashedEarly    ErrorCode = 3003
	ErrCodeWaitCancelled   ErrorCode = 3004
	ErrCodeTerminateFailed ErrorCode = 3005

	// Phase 3: Running backend
	ErrCodeStoreOpenFail ErrorCode = 4001
	ErrCodeHealthProbe   ErrorCode = 4002
)

// InventaError is a custom error type that provides structured error
// information, including an error code, the operation being performed, and
// the underlying cause.
type InventaError struct {
	// Code is the specific error code.
	Code ErrorCode
	// Msg is a human-readable description of the error.
	Msg string
	// Operation describes the action being performed when the error occurred.
	Operation string
	// Err is the underlying error that caused this error, if any.
	Err error
}

// Error returns a formatted string representation of the error.
func (e *InventaError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %s (cause: %v)", e.Code, e.Operation, e.Msg, e.Err)
	}
	return fmt.Sprintf("[%d] %s: %s", e.Code, e.Operation, e.Msg)
}

// Unwrap returns the underlying error.
func (e *InventaError) Unwrap() error {
	return e.Err
}

// New creates a new InventaError with the specified code, operation, message,
// and underlying error.
func New(code ErrorCode, op, msg string, err error) error {
	return &InventaError{
		Code:      code,
		Msg:       msg,
		Operation: op,
		Err:       err,
	}
}

// Personal.AI order the ending
