// Package errors provides the error taxonomy for the bridge.
//
// The bridge distinguishes three kinds of failure, and this package models
// the two that are represented as Go errors:
//
//   - ValidationError: caller-supplied input failed validation. These are
//     user-facing and surface to the UI as INVALID_ARGUMENT.
//   - HostError: a host collaborator (call store, launch platform, inbox)
//     failed. These are never surfaced to the UI; a boundary adapter logs
//     them and converts them to the documented benign value.
//
// Protocol errors (unknown command) are not errors at all; the dispatcher
// reports them as "not implemented".
//
// # Usage
//
//	err := errors.NewHostError("calllog", "query", errors.ErrStoreUnavailable).
//	    WithTarget("calls.db")
//
//	if errors.IsHostError(err) {
//	    logger.Warn("downgrading host failure", "error", err)
//	}
//
//	var verr *errors.ValidationError
//	if errors.As(err, &verr) {
//	    fmt.Println(verr.Field)
//	}
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Call store sentinel errors
var (
	// ErrStoreUnavailable indicates the call-history store could not be reached.
	ErrStoreUnavailable = New("call store unavailable")
	// ErrPermissionDenied indicates the host refused access to a resource.
	ErrPermissionDenied = New("permission denied")
)

// Launch sentinel errors
var (
	// ErrNoLaunchTarget indicates no strategy resolved a launchable entry.
	ErrNoLaunchTarget = New("no launch target")
	// ErrLaunchDenied indicates the launch policy rejected the application id.
	ErrLaunchDenied = New("launch denied by policy")
	// ErrStartFailed indicates the platform failed to start a resolved entry.
	ErrStartFailed = New("start failed")
)

// Activation sentinel errors
var (
	// ErrMalformedActivation indicates an inbound activation could not be decoded.
	ErrMalformedActivation = New("malformed activation")
)

// General sentinel errors
var (
	// ErrInvalidArgument indicates caller input failed validation.
	ErrInvalidArgument = New("invalid argument")
	// ErrPanic indicates a host collaborator panicked and was recovered.
	ErrPanic = New("recovered panic")
)

// -----------------------------------------------------------------------------
// Base Error
// -----------------------------------------------------------------------------

// BridgeError is implemented by every error type in this package.
type BridgeError interface {
	error

	Unwrap() error
	Is(target error) bool

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRetryable returns true if the failure is transient.
	IsRetryable() bool

	// IsUserFacing returns true if the message may be shown to the UI.
	IsUserFacing() bool
}

type baseError struct {
	message    string
	cause      error
	severity   Severity
	retryable  bool
	userFacing bool
}

func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *baseError) Unwrap() error { return e.cause }

func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

func (e *baseError) Severity() Severity { return e.severity }
func (e *baseError) IsRetryable() bool  { return e.retryable }
func (e *baseError) IsUserFacing() bool { return e.userFacing }

// -----------------------------------------------------------------------------
// HostError
// -----------------------------------------------------------------------------

// HostError is a failure inside a host collaborator. It is the tagged
// internal error that boundary adapters downgrade to a benign result.
//
// Example:
//
//	err := errors.NewHostError("launcher", "start", cause).WithTarget("org.example.app")
//	fmt.Println(err) // "host error [service=launcher, op=start, target=org.example.app]: ..."
type HostError struct {
	baseError
	Service   string
	Operation string
	Target    string
}

// NewHostError creates a HostError for the given service and operation.
// Host errors default to retryable and not user-facing.
func NewHostError(service, operation string, cause error) *HostError {
	return &HostError{
		baseError: baseError{
			message:    fmt.Sprintf("%s %s failed", service, operation),
			cause:      cause,
			severity:   SeverityError,
			retryable:  true,
			userFacing: false,
		},
		Service:   service,
		Operation: operation,
	}
}

// WithTarget records the resource the operation was acting on.
func (e *HostError) WithTarget(target string) *HostError {
	e.Target = target
	return e
}

// WithSeverity sets the error severity.
func (e *HostError) WithSeverity(s Severity) *HostError {
	e.severity = s
	return e
}

// WithRetryable sets whether the error is retryable.
func (e *HostError) WithRetryable(r bool) *HostError {
	e.retryable = r
	return e
}

// Error returns the formatted error message.
func (e *HostError) Error() string {
	parts := []string{"service=" + e.Service}
	if e.Operation != "" {
		parts = append(parts, "op="+e.Operation)
	}
	if e.Target != "" {
		parts = append(parts, "target="+e.Target)
	}

	prefix := fmt.Sprintf("host error [%s]", strings.Join(parts, ", "))
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", prefix, e.cause)
	}
	return prefix
}

// Is matches any *HostError target, then falls back to the cause chain.
func (e *HostError) Is(target error) bool {
	if _, ok := target.(*HostError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// ValidationError
// -----------------------------------------------------------------------------

// ValidationError represents invalid caller input.
//
// Example:
//
//	err := errors.NewValidationError("timestamp is required").WithField("timestamp")
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:    message,
			severity:   SeverityWarning,
			userFacing: true,
		},
	}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause adds a cause to the error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

// Message returns the bare human-readable message, without field context.
func (e *ValidationError) Message() string {
	return e.message
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, "field="+e.Field)
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}

	prefix := "validation error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("validation error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is matches *ValidationError and ErrInvalidArgument targets.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	if target == ErrInvalidArgument {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable reports whether err is a BridgeError marked retryable.
func IsRetryable(err error) bool {
	var be BridgeError
	if As(err, &be) {
		return be.IsRetryable()
	}
	return false
}

// IsUserFacing reports whether err's message may be shown to the UI.
// Errors outside this package are treated as internal.
func IsUserFacing(err error) bool {
	var be BridgeError
	if As(err, &be) {
		return be.IsUserFacing()
	}
	return false
}

// GetSeverity returns the severity of err, SeverityError for foreign errors
// and SeverityDebug for nil.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}
	var be BridgeError
	if As(err, &be) {
		return be.Severity()
	}
	return SeverityError
}

// IsHostError reports whether err is, or wraps, a *HostError.
func IsHostError(err error) bool {
	var he *HostError
	return As(err, &he)
}

// FromPanic converts a recovered panic value into a HostError.
func FromPanic(service, operation string, recovered any) *HostError {
	return NewHostError(service, operation, fmt.Errorf("%w: %v", ErrPanic, recovered)).
		WithRetryable(false).
		WithSeverity(SeverityCritical)
}

// Wrap wraps an error with additional context message.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
