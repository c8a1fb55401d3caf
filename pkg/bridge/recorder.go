package bridge

import (
	"sync"

	"github.com/go-drift/nativebridge/pkg/wire"
)

// Recorder is a NativeClient that decodes and keeps every batch it
// receives. It is meant for tests and for the replay tooling.
type Recorder struct {
	mu      sync.Mutex
	codec   wire.MessageCodec
	batches [][]Operation
	// Err, when set, is returned from Send and the batch is not recorded.
	Err error
}

// NewRecorder creates a Recorder decoding batches with codec, or JSON when nil.
func NewRecorder(codec wire.MessageCodec) *Recorder {
	if codec == nil {
		codec = wire.DefaultCodec
	}
	return &Recorder{codec: codec}
}

// Send implements NativeClient.
func (r *Recorder) Send(batch []byte) error {
	if r.Err != nil {
		return r.Err
	}
	var ops []Operation
	if err := r.codec.DecodeInto(batch, &ops); err != nil {
		return err
	}
	r.mu.Lock()
	r.batches = append(r.batches, ops)
	r.mu.Unlock()
	return nil
}

// Batches returns the recorded batches.
func (r *Recorder) Batches() [][]Operation {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]Operation, len(r.batches))
	copy(out, r.batches)
	return out
}

// Operations returns all recorded operations in delivery order.
func (r *Recorder) Operations() []Operation {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Operation
	for _, batch := range r.batches {
		out = append(out, batch...)
	}
	return out
}

// Calls returns the recorded operations of the given kind.
func (r *Recorder) Calls(kind OpKind) []Operation {
	var out []Operation
	for _, op := range r.Operations() {
		if op.Op == kind {
			out = append(out, op)
		}
	}
	return out
}

// Reset forgets all recorded batches.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.batches = nil
	r.mu.Unlock()
}
