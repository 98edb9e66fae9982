package apperrors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Application exit codes define the standard exit statuses for the application.
// These codes are used to signal the outcome of the program execution to the OS.
const (
	ExitSuccess           = 0   // Indicates successful execution.
	ExitErrorGeneric      = 1   // Indicates a generic error.
	ExitErrorTimeout      = 2   // Indicates the operation timed out.
	ExitErrorShape        = 3   // Indicates inconsistent state and policy grid dimensions.
	ExitErrorConfig       = 4   // Indicates a configuration error.
	ExitErrorUnknownModel = 5   // Indicates no routine is registered for the model.
	ExitErrorCanceled     = 130 // Indicates the operation was canceled (e.g., SIGINT).
)

var (
	// ErrUnknownModel is matched by every UnknownModelError.
	ErrUnknownModel = errors.New("unknown model")

	// ErrShapeMismatch is matched by every ShapeError.
	ErrShapeMismatch = errors.New("grid shape mismatch")
)

// ConfigError represents a user configuration error, such as invalid flags or
// values. It indicates that the application cannot proceed due to incorrect user input.
type ConfigError struct {
	// Message explains the specific configuration error.
	Message string
	// Cause is the underlying error, if any.
	Cause error
}

// Error returns the error message for a ConfigError.
func (e ConfigError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

// Unwrap returns the underlying cause, which may be nil.
func (e ConfigError) Unwrap() error { return e.Cause }

// NewConfigError creates a new ConfigError with a formatted message.
//
// Parameters:
//   - format: A format string (see fmt.Sprintf).
//   - a: Arguments to be formatted into the string.
//
// Returns:
//   - error: A new ConfigError instance containing the formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// SolveError encapsulates a failure of a model's iteration routine while
// preserving the original cause and the model it belongs to.
type SolveError struct {
	// Model is the identifier of the model whose routine failed.
	Model string
	// Cause is the underlying error returned by the routine.
	Cause error
}

// Error returns the model-qualified error message.
func (e SolveError) Error() string {
	return fmt.Sprintf("model %q: %v", e.Model, e.Cause)
}

// Unwrap returns the original wrapped error, allowing for error chain
// inspection (e.g., using errors.Is or errors.As).
func (e SolveError) Unwrap() error { return e.Cause }

// UnknownModelError is returned when no iteration routine is registered under
// the routine name derived from a model identifier.
type UnknownModelError struct {
	// Routine is the routine name that could not be resolved.
	Routine string
	// Known lists the registered routine names, sorted.
	Known []string
}

// Error returns a message naming the routine and the registered alternatives.
func (e *UnknownModelError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("unknown model: no routine %q registered", e.Routine)
	}
	return fmt.Sprintf("unknown model: no routine %q registered (available: %s)",
		e.Routine, strings.Join(e.Known, ", "))
}

// Is reports whether target is ErrUnknownModel.
func (e *UnknownModelError) Is(target error) bool { return target == ErrUnknownModel }

// ShapeError reports a dimension mismatch between the state grid and a
// policy row, or a policy grid with the wrong number of rows.
type ShapeError struct {
	// What names the offending dimension (e.g. "policy row 1").
	What string
	// Want is the expected length.
	Want int
	// Got is the observed length.
	Got int
}

// Error returns a message describing the mismatch.
func (e *ShapeError) Error() string {
	return fmt.Sprintf("grid shape mismatch: %s has length %d, want %d", e.What, e.Got, e.Want)
}

// Is reports whether target is ErrShapeMismatch.
func (e *ShapeError) Is(target error) bool { return target == ErrShapeMismatch }

// TimeoutError represents a solver timeout. It captures the operation
// name and the duration limit that was exceeded.
type TimeoutError struct {
	// Operation is the name of the operation that timed out.
	Operation string
	// Limit is the duration after which the operation was considered timed out.
	Limit time.Duration
}

// Error returns a formatted message describing the timeout.
func (e TimeoutError) Error() string {
	return fmt.Sprintf("operation %q timed out after %s", e.Operation, e.Limit)
}

// Unwrap returns context.DeadlineExceeded so timeouts keep their exit code.
func (e TimeoutError) Unwrap() error { return context.DeadlineExceeded }

// ValidationError represents an input validation failure. It identifies which
// field failed validation and provides a human-readable explanation.
type ValidationError struct {
	// Field is the name of the field that failed validation.
	Field string
	// Message explains the validation failure.
	Message string
}

// Error returns a formatted message describing the validation failure.
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error for %q: %s", e.Field, e.Message)
}

// WrapError wraps an error with additional context using fmt.Errorf and %w.
// This allows the wrapped error to be unwrapped with errors.Unwrap() and
// checked with errors.Is() and errors.As().
//
// Returns nil if err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsContextError checks if the error is a context cancellation or deadline exceeded error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
