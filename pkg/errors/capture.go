package errors

import "sync"

// Capture is an ErrorHandler that records everything it receives.
type Capture struct {
	mu     sync.Mutex
	Errors []*BridgeError
	Panics []*PanicError
	Hints  []*Hint
}

func (c *Capture) HandleError(err *BridgeError) {
	c.mu.Lock()
	c.Errors = append(c.Errors, err)
	c.mu.Unlock()
}

func (c *Capture) HandlePanic(err *PanicError) {
	c.mu.Lock()
	c.Panics = append(c.Panics, err)
	c.mu.Unlock()
}

func (c *Capture) HandleHint(h *Hint) {
	c.mu.Lock()
	c.Hints = append(c.Hints, h)
	c.mu.Unlock()
}

// Count returns the total number of errors and panics recorded.
func (c *Capture) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Errors) + len(c.Panics)
}

// HintMessages returns the recorded hint messages in order.
func (c *Capture) HintMessages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.Hints))
	for i, h := range c.Hints {
		out[i] = h.Message
	}
	return out
}

// CaptureForTest installs a Capture as the global handler. The cleanup
// function should be testing.T.Cleanup or equivalent; it restores the
// previous handler.
//
//	captured := errors.CaptureForTest(t.Cleanup)
func CaptureForTest(cleanup func(func())) *Capture {
	c := &Capture{}
	old := getHandler()
	SetHandler(c)
	cleanup(func() { SetHandler(old) })
	return c
}
