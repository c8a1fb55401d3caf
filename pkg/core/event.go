package core

import (
	"fmt"

	"github.com/go-drift/nativebridge/pkg/errors"
)

// Event is the record passed to listeners.
type Event struct {
	// Target is the object the event was dispatched on.
	Target *Object
	// Type is the event name.
	Type string
	// Value is the decoded "value" entry of the payload, if any.
	Value any
	// Data is the decoded payload.
	Data map[string]any
	// ReturnValue is handed back to the native side by Notify.
	ReturnValue any
}

// Listener handles an event. A returned error is reported through the
// error channel and does not stop other listeners.
type Listener func(e *Event) error

// Subscription represents a registered listener.
type Subscription struct {
	target   *Object
	event    string
	fn       Listener
	once     bool
	canceled bool
}

// Cancel removes the listener. Cancelling twice is a no-op.
func (s *Subscription) Cancel() {
	if s.canceled {
		return
	}
	s.canceled = true
	if s.target != nil {
		s.target.removeSubscription(s)
	}
}

// IsCanceled reports whether the listener was removed.
func (s *Subscription) IsCanceled() bool {
	return s.canceled
}

// invoke runs a single listener in isolation: errors and panics are
// reported and never reach the caller.
func invoke(op string, fn Listener, e *Event) {
	defer errors.Recover(op)
	if err := fn(e); err != nil {
		id := ""
		if e.Target != nil {
			id = e.Target.cid
		}
		errors.Report(&errors.BridgeError{
			Op:   op,
			Kind: errors.KindDispatch,
			ID:   id,
			Err:  fmt.Errorf("%s listener: %w", e.Type, err),
		})
	}
}
