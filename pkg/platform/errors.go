package platform

import "errors"

// Standard errors for platform channel operations.
var (
	// ErrPlatformUnavailable indicates no native bridge is attached.
	ErrPlatformUnavailable = errors.New("platform: native bridge unavailable")

	// ErrMethodNotFound indicates the method is not implemented.
	ErrMethodNotFound = errors.New("platform: method not implemented")

	// ErrInvalidArguments indicates a malformed message from the native side.
	ErrInvalidArguments = errors.New("platform: invalid arguments")

	// ErrClosed is returned once the loop has stopped.
	ErrClosed = errors.New("platform: channel closed")
)

// ChannelError represents an error returned from native code.
type ChannelError struct {
	Code    string `json:"code" msgpack:"code"`
	Message string `json:"message" msgpack:"message"`
	Details any    `json:"details,omitempty" msgpack:"details,omitempty"`
}

func (e *ChannelError) Error() string {
	if e.Message != "" {
		return e.Code + ": " + e.Message
	}
	return e.Code
}

// NewChannelError creates a new ChannelError with the given code and message.
func NewChannelError(code, message string) *ChannelError {
	return &ChannelError{Code: code, Message: message}
}
