package bridge

import "errors"

// ErrNotConnected is returned by Flush when no native client is attached.
var ErrNotConnected = errors.New("bridge: not connected")
