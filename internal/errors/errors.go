package apperrors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// Application exit codes define the standard exit statuses for the application.
// These codes are used to signal the outcome of the program execution to the OS.
const (
	ExitSuccess       = 0   // Indicates successful execution.
	ExitErrorGeneric  = 1   // Indicates a generic error.
	ExitErrorTimeout  = 2   // Indicates the operation timed out.
	ExitErrorUnit     = 3   // Indicates a unit of work reported an Error outcome.
	ExitErrorConfig   = 4   // Indicates a configuration error.
	ExitErrorCanceled = 130 // Indicates the operation was canceled (e.g., SIGINT).
)

// Configuration error kinds. A ConfigError always carries one of these as its
// Kind so callers can branch with errors.Is.
var (
	ErrInvalidConfig       = errors.New("invalid configuration")
	ErrMalformedPayload    = errors.New("malformed payload")
	ErrInvalidRequest      = errors.New("invalid simulation request")
	ErrInvalidSubtaskCount = errors.New("invalid subtask count")
	ErrUnknownUseCase      = errors.New("use case not found")
)

// ConfigError represents a configuration error: invalid flags, a malformed
// wire payload, an unknown use case or request values the engine refuses.
// A unit failing with a ConfigError has produced no side effects.
type ConfigError struct {
	// Kind is the sentinel class of the error (ErrMalformedPayload, ...).
	Kind error
	// Message explains the specific configuration error.
	Message string
}

// Error returns the error message for a ConfigError.
//
// Returns:
//   - string: The error message string.
func (e ConfigError) Error() string {
	kind := e.Kind
	if kind == nil {
		kind = ErrInvalidConfig
	}
	if e.Message == "" {
		return kind.Error()
	}
	if kind == ErrInvalidConfig {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", kind.Error(), e.Message)
}

// Unwrap returns the error kind so that errors.Is can match sentinels.
func (e ConfigError) Unwrap() error {
	if e.Kind == nil {
		return ErrInvalidConfig
	}
	return e.Kind
}

// NewConfigError creates a new ConfigError with a formatted message.
// It allows for the creation of configuration-specific errors with dynamic
// content.
//
// Parameters:
//   - format: A format string (see fmt.Sprintf).
//   - a: Arguments to be formatted into the string.
//
// Returns:
//   - error: A new ConfigError instance containing the formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Kind: ErrInvalidConfig, Message: fmt.Sprintf(format, a...)}
}

// NewConfigErrorKind creates a ConfigError of the given kind.
func NewConfigErrorKind(kind error, format string, a ...any) error {
	return ConfigError{Kind: kind, Message: fmt.Sprintf(format, a...)}
}

// IsConfigError reports whether err is, or wraps, a ConfigError.
func IsConfigError(err error) bool {
	var ce ConfigError
	return errors.As(err, &ce)
}

// AggregationError is raised by the joiner when the dependency payloads it
// observes do not match the dependency list it was declared with. It is always
// fatal: missing partials are never padded and extra ones are never dropped.
type AggregationError struct {
	// Declared is the number of dependencies recorded at decomposition time.
	Declared int
	// Observed is the number of dependency payloads delivered by the platform.
	Observed int
	// Missing lists declared dependency IDs with no delivered payload.
	Missing []string
	// Unexpected lists delivered IDs that were never declared.
	Unexpected []string
}

// Error returns a formatted message describing the mismatch.
func (e AggregationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "aggregation order error: declared %d dependencies, observed %d", e.Declared, e.Observed)
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, "; missing %s", strings.Join(e.Missing, ","))
	}
	if len(e.Unexpected) > 0 {
		fmt.Fprintf(&b, "; unexpected %s", strings.Join(e.Unexpected, ","))
	}
	return b.String()
}

// UnitError reports that a unit of work finished with an Error outcome.
// Details is the human-readable string the unit handed to the platform.
type UnitError struct {
	// TaskID identifies the failed unit.
	TaskID string
	// UseCase is the tag the unit was dispatched with.
	UseCase string
	// Details is the failure detail reported by the unit.
	Details string
}

// Error returns a formatted message describing the unit failure.
func (e UnitError) Error() string {
	return fmt.Sprintf("unit %s (%s) failed: %s", e.TaskID, e.UseCase, e.Details)
}

// TimeoutError represents a run timeout. It captures the operation
// name and the duration limit that was exceeded.
type TimeoutError struct {
	// Operation is the name of the operation that timed out.
	Operation string
	// Limit is the duration after which the operation was considered timed out.
	Limit time.Duration
}

// Error returns a formatted message describing the timeout.
//
// Returns:
//   - string: The error message string.
func (e TimeoutError) Error() string {
	return fmt.Sprintf("operation %q timed out after %s", e.Operation, e.Limit)
}

// ValidationError represents an input validation failure. It identifies which
// field failed validation and provides a human-readable explanation.
type ValidationError struct {
	// Field is the name of the field that failed validation.
	Field string
	// Message explains the validation failure.
	Message string
}

// Error returns a formatted message describing the validation failure.
//
// Returns:
//   - string: The error message string.
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error for %q: %s", e.Field, e.Message)
}

// WrapError wraps an error with additional context using fmt.Errorf and %w.
// This allows the wrapped error to be unwrapped with errors.Unwrap() and
// checked with errors.Is() and errors.As().
//
// Parameters:
//   - err: The error to wrap.
//   - format: A format string for the context message.
//   - args: Arguments for the format string.
//
// Returns:
//   - error: The wrapped error, or nil if err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsContextError reports whether err stems from a canceled or expired context.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ExitCodeFor maps an error to the process exit code.
func ExitCodeFor(err error) int {
	var (
		timeoutErr TimeoutError
		unitErr    UnitError
	)
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &timeoutErr), errors.Is(err, context.DeadlineExceeded):
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	case IsConfigError(err):
		return ExitErrorConfig
	case errors.As(err, &unitErr):
		return ExitErrorUnit
	default:
		return ExitErrorGeneric
	}
}

// ColorProvider supplies the ANSI sequences used when reporting errors.
type ColorProvider interface {
	Red() string
	Yellow() string
	Reset() string
}

// HandleRunError prints a run failure and returns the matching exit code.
func HandleRunError(err error, duration time.Duration, out io.Writer, colors ColorProvider) int {
	code := ExitCodeFor(err)
	switch code {
	case ExitSuccess:
		return code
	case ExitErrorTimeout:
		fmt.Fprintf(out, "%sStatus: Failure (Timeout). The execution limit was reached after %s.%s\n",
			colors.Red(), duration, colors.Reset())
	case ExitErrorCanceled:
		fmt.Fprintf(out, "%sStatus: Canceled after %s.%s\n", colors.Yellow(), duration, colors.Reset())
	default:
		fmt.Fprintf(out, "%sStatus: Failure. %v%s\n", colors.Red(), err, colors.Reset())
	}
	return code
}
