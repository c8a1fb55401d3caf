package testing

import (
	"testing"

	"github.com/go-drift/nativebridge/pkg/bridge"
	"github.com/go-drift/nativebridge/pkg/core"
	"github.com/go-drift/nativebridge/pkg/errors"
)

// Tester drives a Runtime against an in-memory native client.
type Tester struct {
	runtime  *core.Runtime
	recorder *bridge.Recorder
	capture  *errors.Capture
	prev     errors.ErrorHandler
	flushed  []bridge.Operation
}

// NewTester creates a started runtime with a recording client and a
// capturing error handler. Call Cleanup() when done, or use
// NewTesterWithT() instead.
func NewTester(opts ...core.Option) *Tester {
	t := &Tester{
		capture: &errors.Capture{},
		prev:    errors.DefaultHandler,
	}
	errors.SetHandler(t.capture)
	t.runtime = core.NewRuntime(opts...)
	t.recorder = bridge.NewRecorder(t.runtime.Bridge().Codec())
	if err := t.runtime.Start(t.recorder, nil); err != nil {
		panic(err)
	}
	t.Flush()
	t.flushed = nil
	return t
}

// NewTesterWithT creates a tester that auto-cleans up via t.Cleanup().
// This is the recommended constructor for tests.
func NewTesterWithT(t *testing.T, opts ...core.Option) *Tester {
	tester := NewTester(opts...)
	t.Cleanup(tester.Cleanup)
	return tester
}

// Cleanup restores the previous error handler.
func (t *Tester) Cleanup() {
	errors.SetHandler(t.prev)
}

// Runtime returns the runtime under test.
func (t *Tester) Runtime() *core.Runtime {
	return t.runtime
}

// Recorder returns the recording native client.
func (t *Tester) Recorder() *bridge.Recorder {
	return t.recorder
}

// Flush delivers the pending queue and returns the operations of that
// batch. They are also appended to the transcript used by Find and
// CaptureSnapshot.
func (t *Tester) Flush() []bridge.Operation {
	before := len(t.recorder.Batches())
	if err := t.runtime.Flush(); err != nil {
		panic(err)
	}
	batches := t.recorder.Batches()
	if len(batches) == before {
		return nil
	}
	ops := batches[len(batches)-1]
	t.flushed = append(t.flushed, ops...)
	return ops
}

// Notify delivers a native notification and returns the listener result.
func (t *Tester) Notify(id, event string, payload map[string]any) any {
	return t.runtime.Notify(id, event, payload)
}

// Transcript returns every operation flushed through Flush so far,
// excluding the creation of the runtime object.
func (t *Tester) Transcript() []bridge.Operation {
	out := make([]bridge.Operation, len(t.flushed))
	copy(out, t.flushed)
	return out
}

// ResetTranscript forgets the flushed operations.
func (t *Tester) ResetTranscript() {
	t.flushed = nil
}

// Find evaluates finder against the transcript.
func (t *Tester) Find(finder Finder) FinderResult {
	return FinderResult{ops: finder.Evaluate(t.Transcript()), finder: finder}
}

// Errors returns the reported errors.
func (t *Tester) Errors() []*errors.BridgeError {
	return t.capture.Errors
}

// Panics returns the recovered panics.
func (t *Tester) Panics() []*errors.PanicError {
	return t.capture.Panics
}

// Hints returns the emitted hint messages.
func (t *Tester) Hints() []string {
	return t.capture.HintMessages()
}
