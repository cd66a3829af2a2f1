// Package errors provides standardized error handling patterns for SurfaceMap
// components. It includes error classification, standard error variables, and
// helper functions for consistent error wrapping across the system.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorClass represents the classification of errors for handling purposes
type ErrorClass int

const (
	// ErrorTransient represents expected, recoverable conditions (a target
	// that cannot currently be resolved, a full task channel). Processing
	// always continues after a transient error.
	ErrorTransient ErrorClass = iota
	// ErrorInvalid represents errors due to invalid input or a violated
	// invariant (an unknown mapping id, a malformed source pattern).
	// Handled as a logged no-op, never as a panic.
	ErrorInvalid
	// ErrorHost represents failures of the host integration (a host API
	// call returned an error or an unsupported result). Logged; the
	// triggering event counts as applied with no effect.
	ErrorHost
)

// String returns the string representation of ErrorClass
func (ec ErrorClass) String() string {
	switch ec {
	case ErrorTransient:
		return "transient"
	case ErrorInvalid:
		return "invalid"
	case ErrorHost:
		return "host"
	default:
		return "unknown"
	}
}

// Standard error variables for common conditions
var (
	// Target resolution and dispatch errors
	ErrTargetUnresolved = errors.New("target cannot be resolved against host state")
	ErrMappingNotFound  = errors.New("mapping not found")
	ErrMappingDisabled  = errors.New("mapping not enabled for control")
	ErrGroupNotFound    = errors.New("group not found")

	// Task channel errors
	ErrChannelFull   = errors.New("task channel full")
	ErrChannelClosed = errors.New("task channel closed")

	// Bootstrap and lifecycle errors
	ErrSessionNotReady  = errors.New("session not ready")
	ErrAlreadyScheduled = errors.New("session creation already scheduled")
	ErrAlreadyFilled    = errors.New("cell already filled")
	ErrIdentityUnknown  = errors.New("plugin identity not yet queryable")

	// Source and learning errors
	ErrInvalidSource   = errors.New("invalid source pattern")
	ErrNotLearning     = errors.New("no learning in progress")
	ErrLearningTimeout = errors.New("learning timed out")

	// Wire decoding errors
	ErrInvalidMode        = errors.New("invalid mode descriptor")
	ErrInvalidTarget      = errors.New("invalid target descriptor")
	ErrInvalidCompartment = errors.New("invalid compartment name")

	// Host integration errors
	ErrHostCallFailed  = errors.New("host API call failed")
	ErrHostUnsupported = errors.New("operation unsupported by host")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrMissingConfig = errors.New("missing required configuration")
)

// ClassifiedError wraps an error with its classification
type ClassifiedError struct {
	Class     ErrorClass
	Err       error
	Message   string
	Component string
	Operation string
}

// Error implements the error interface
func (ce *ClassifiedError) Error() string {
	if ce.Message != "" {
		return ce.Message
	}
	return ce.Err.Error()
}

// Unwrap returns the underlying error
func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// IsTransient checks if an error is an expected, recoverable condition
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorTransient
	}

	if errors.Is(err, ErrTargetUnresolved) ||
		errors.Is(err, ErrChannelFull) ||
		errors.Is(err, ErrChannelClosed) ||
		errors.Is(err, ErrSessionNotReady) ||
		errors.Is(err, ErrIdentityUnknown) ||
		errors.Is(err, ErrLearningTimeout) {
		return true
	}

	// Check error message for common transient patterns
	errStr := strings.ToLower(err.Error())
	transientPatterns := []string{
		"not ready",
		"not yet",
		"unavailable",
		"busy",
		"removed",
		"renamed",
	}
	for _, pattern := range transientPatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}

// IsInvalid checks if an error is due to invalid input or a violated invariant
func IsInvalid(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorInvalid
	}

	return errors.Is(err, ErrMappingNotFound) ||
		errors.Is(err, ErrGroupNotFound) ||
		errors.Is(err, ErrInvalidSource) ||
		errors.Is(err, ErrInvalidMode) ||
		errors.Is(err, ErrInvalidTarget) ||
		errors.Is(err, ErrInvalidCompartment) ||
		errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrMissingConfig)
}

// IsHost checks if an error came from the host integration
func IsHost(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorHost
	}

	return errors.Is(err, ErrHostCallFailed) || errors.Is(err, ErrHostUnsupported)
}

// Classify returns the error class for an error
func Classify(err error) ErrorClass {
	if IsInvalid(err) {
		return ErrorInvalid
	}
	if IsHost(err) {
		return ErrorHost
	}
	// Default to transient: the dispatch loop must keep going for
	// anything it cannot positively identify as a programming error.
	return ErrorTransient
}

// newClassified creates a new classified error.
// This is an internal helper - use WrapTransient(), WrapInvalid(), or WrapHost() instead.
func newClassified(class ErrorClass, err error, component, operation, message string) *ClassifiedError {
	return &ClassifiedError{
		Class:     class,
		Err:       err,
		Message:   message,
		Component: component,
		Operation: operation,
	}
}

// Wrap creates a standardized error with context following the pattern:
// "component.method: action failed: %w"
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}

// WrapTransient wraps an error as transient with context
func WrapTransient(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorTransient, wrappedErr, component, method, wrappedErr.Error())
}

// WrapInvalid wraps an error as invalid with context
func WrapInvalid(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorInvalid, wrappedErr, component, method, wrappedErr.Error())
}

// WrapHost wraps an error as a host-integration failure with context
func WrapHost(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorHost, wrappedErr, component, method, wrappedErr.Error())
}

// Is reports whether any error in err's chain matches target.
// Re-exported so callers don't need both this package and the stdlib one.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// New returns an error that formats as the given text
func New(text string) error {
	return errors.New(text)
}
