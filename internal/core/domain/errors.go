package domain

import (
	"errors"
	"fmt"
)

// FabricError represents a fabric-layer error with a structured error code.
// Errors reported by component backends are never translated into this type;
// they pass through unmodified.
type FabricError struct {
	Code    string // Error code (e.g., "FM-ARG-1001")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *FabricError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *FabricError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support; two FabricErrors match on Code.
func (e *FabricError) Is(target error) bool {
	t, ok := target.(*FabricError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewFabricError creates a new FabricError with the given code and message.
func NewFabricError(code, message string) *FabricError {
	return &FabricError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *FabricError) WithDetails(details string) *FabricError {
	return &FabricError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *FabricError) WithCause(cause error) *FabricError {
	return &FabricError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsFabricError checks if an error is a FabricError with the given code.
// If code is empty, it only checks if the error is a FabricError.
func IsFabricError(err error, code string) bool {
	var fe *FabricError
	if errors.As(err, &fe) {
		if code == "" {
			return true
		}
		return fe.Code == code
	}
	return false
}

// ============================================================================
// Parameter and lookup errors (ARG / DEV)
// ============================================================================

var (
	// ErrInvalidParam indicates a parameter-contract violation detected at
	// the fabric layer, before any component backend is invoked.
	ErrInvalidParam = NewFabricError("FM-ARG-1001", "invalid parameter")

	// ErrNoDevice indicates no transport matched the lookup. Recoverable:
	// the caller may retry with different parameters.
	ErrNoDevice = NewFabricError("FM-DEV-4040", "no such device or transport")
)

// ============================================================================
// Configuration errors (CONF)
// ============================================================================

var (
	// ErrOptionNotFound indicates the named option is not in the bundle's
	// field table. Distinct from a value parse failure.
	ErrOptionNotFound = NewFabricError("FM-CONF-4040", "configuration option not found")

	// ErrOptionParse indicates an option value failed to parse according to
	// its field's type tag.
	ErrOptionParse = NewFabricError("FM-CONF-4000", "configuration value parse failed")

	// ErrBundleReleased indicates use of a configuration bundle after Release.
	ErrBundleReleased = NewFabricError("FM-CONF-4100", "configuration bundle already released")
)

// ============================================================================
// Registry errors (REG)
// ============================================================================

var (
	// ErrComponentExists indicates a component with the same name is
	// already registered.
	ErrComponentExists = NewFabricError("FM-REG-4090", "component already registered")

	// ErrComponentUnknown indicates a transport registration named a
	// component that is not in the registry.
	ErrComponentUnknown = NewFabricError("FM-REG-4040", "component not registered")

	// ErrRegistrySealed indicates a registration attempt after Seal.
	ErrRegistrySealed = NewFabricError("FM-REG-4100", "registry is sealed")
)

// ============================================================================
// System errors (SYS)
// ============================================================================

var (
	// ErrNoMemory indicates resource exhaustion during bundle or result
	// aggregation. Always accompanied by full rollback of partial state.
	ErrNoMemory = NewFabricError("FM-SYS-5001", "out of memory")

	// ErrUnsupported indicates the component does not implement the
	// requested optional operation.
	ErrUnsupported = NewFabricError("FM-SYS-5010", "operation not supported")
)
