// Package errors provides structured error handling for the native bridge.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindValidation indicates a codec rejected a value.
	KindValidation
	// KindUsage indicates lenient application misuse that was tolerated.
	KindUsage
	// KindDispatch indicates a listener failed while handling a notification.
	KindDispatch
	// KindProtocol indicates an unexpected message from the native side.
	KindProtocol
	// KindTransport indicates the native client failed to accept a batch.
	KindTransport
	// KindPanic indicates a recovered panic.
	KindPanic
	// KindInit indicates an initialization error.
	KindInit
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUsage:
		return "usage"
	case KindDispatch:
		return "dispatch"
	case KindProtocol:
		return "protocol"
	case KindTransport:
		return "transport"
	case KindPanic:
		return "panic"
	case KindInit:
		return "init"
	default:
		return "unknown"
	}
}

// BridgeError represents a structured error raised inside the bridge.
type BridgeError struct {
	// Op is the operation that failed (e.g., "core.Notify").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// ID is the native object identifier, if applicable.
	ID string
	// Err is the underlying error.
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *BridgeError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s [%s] id=%s: %v", e.Op, e.Kind, e.ID, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *BridgeError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "core.dispatch").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ValidationError is returned when a codec refuses to encode a value.
// It is the only error category that escapes to the caller.
type ValidationError struct {
	// Type is the codec name, when known.
	Type string
	// Property is the property or parameter being encoded, when known.
	Property string
	// Message describes the offending value and the expected domain.
	Message string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Property != "" && e.Type != "":
		return fmt.Sprintf("failed to set %s (%s): %s", e.Property, e.Type, e.Message)
	case e.Property != "":
		return fmt.Sprintf("failed to set %s: %s", e.Property, e.Message)
	default:
		return e.Message
	}
}

// Invalid creates a ValidationError from a formatted message.
func Invalid(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// Hint is a non-fatal usage warning. The offending operation has already
// been dropped or adjusted when a hint is emitted.
type Hint struct {
	// Source describes the emitter, usually an object such as "tabris.Button $3".
	Source string
	// Message is the human readable hint.
	Message string
	// Timestamp is when the hint was emitted.
	Timestamp time.Time
}

func (h *Hint) String() string {
	if h.Source != "" {
		return h.Source + ": " + h.Message
	}
	return h.Message
}

// ErrorHandler receives errors reported by the bridge.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *BridgeError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
	// HandleHint is called for usage warnings.
	HandleHint(h *Hint)
}
