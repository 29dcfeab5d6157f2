// Package errors defines the application's error taxonomy.
//
// The taxonomy mirrors the five tagged variants a succession-diagram
// analysis can raise: BudgetExceeded, OracleFailure, Timeout, Inconsistent,
// and MalformedInput. The first three are recoverable — callers attach them
// to the affected node and keep going; only Inconsistent and MalformedInput
// are meant to propagate out of an analysis.
package errors

import (
	"errors"
	"fmt"
)

// Error codes for the application.
const (
	CodeUnknown        = "UNKNOWN_ERROR"
	CodeBudgetExceeded = "BUDGET_EXCEEDED"
	CodeOracleFailure  = "ORACLE_FAILURE"
	CodeTimeout        = "TIMEOUT"
	CodeInconsistent   = "INCONSISTENT"
	CodeMalformedInput = "MALFORMED_INPUT"
)

// AppError represents an application error with a code, message, and
// optional wrapped cause.
type AppError struct {
	Code    string
	Message string
	Err     error

	// Recoverable marks errors that must never escape expansion/pruning:
	// BudgetExceeded, OracleFailure, and Timeout are recoverable;
	// Inconsistent and MalformedInput are not.
	Recoverable bool
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches the target by code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError with no wrapped cause.
func New(code string, message string, recoverable bool) *AppError {
	return &AppError{Code: code, Message: message, Recoverable: recoverable}
}

// Wrap wraps an existing error with an AppError.
func Wrap(code string, message string, err error, recoverable bool) *AppError {
	return &AppError{Code: code, Message: message, Err: err, Recoverable: recoverable}
}

// BudgetExceeded reports that a resource cap (node count, BDD size,
// candidate-set size, ...) was hit. Recoverable by raising the cap or
// narrowing scope; the partial result is still returned to the caller.
func BudgetExceeded(what string, limit int) *AppError {
	return New(CodeBudgetExceeded, fmt.Sprintf("%s exceeded limit %d", what, limit), true)
}

// OracleFailure reports that an external solver (trap-space oracle or
// unfolding tool) returned unparseable output or a non-zero status. The
// affected node is marked Unknown; analysis continues on other branches.
func OracleFailure(tool string, detail string) *AppError {
	return New(CodeOracleFailure, fmt.Sprintf("oracle %q failed: %s", tool, detail), true)
}

// Timeout reports that a per-call wall-clock budget elapsed.
func Timeout(op string) *AppError {
	return New(CodeTimeout, fmt.Sprintf("operation %q timed out", op), true)
}

// Inconsistent reports that the symbolic and unfolding reachability oracles
// disagreed on a (source, target) query. This indicates an implementation
// bug and is never recoverable — it is surfaced with full diagnostic state.
func Inconsistent(detail string) *AppError {
	return New(CodeInconsistent, detail, false)
}

// MalformedInput reports a parse failure in the network description.
func MalformedInput(detail string) *AppError {
	return New(CodeMalformedInput, detail, false)
}

// IsRecoverable reports whether err (or a wrapped *AppError within it) is
// one of the three recoverable variants.
func IsRecoverable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Recoverable
	}
	return false
}

// GetErrorCode extracts the error code from an error, or CodeUnknown.
func GetErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetErrorMessage extracts the error message from an error.
func GetErrorMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
