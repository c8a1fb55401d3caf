// Package bridge provides the outgoing transport to the native side.
//
// Every operation issued by the core (create, set, call, listen, destroy)
// is appended to an ordered pending queue and delivered to the platform
// adapter in batches by Flush. The queue is strictly FIFO across all
// objects, so calls for one identifier reach the native side in the order
// they were issued and a destroy is never delivered ahead of earlier
// operations for the same object.
//
// Delivery is fire-and-forget: a batch rejected by the client is reported
// and dropped, never retried here. Retries belong to the platform adapter.
package bridge

import (
	"fmt"

	"github.com/go-drift/nativebridge/pkg/errors"
	"github.com/go-drift/nativebridge/pkg/wire"
)

// OpKind names an outgoing operation.
type OpKind string

const (
	OpCreate  OpKind = "create"
	OpSet     OpKind = "set"
	OpCall    OpKind = "call"
	OpListen  OpKind = "listen"
	OpDestroy OpKind = "destroy"
)

// Operation is one entry of the pending call queue.
type Operation struct {
	Op OpKind `json:"op" msgpack:"op"`
	ID string `json:"id" msgpack:"id"`
	// Type is the native type of a create.
	Type string `json:"type,omitempty" msgpack:"type,omitempty"`
	// Name is the property of a set, the method of a call or the event of a listen.
	Name  string         `json:"name,omitempty" msgpack:"name,omitempty"`
	Value any            `json:"value,omitempty" msgpack:"value,omitempty"`
	Props map[string]any `json:"props,omitempty" msgpack:"props,omitempty"`
	Args  map[string]any `json:"args,omitempty" msgpack:"args,omitempty"`
	// Enabled is the listen state.
	Enabled bool `json:"enabled,omitempty" msgpack:"enabled,omitempty"`
}

func (o Operation) String() string {
	switch o.Op {
	case OpCreate:
		return fmt.Sprintf("create(%s, %s)", o.ID, o.Type)
	case OpSet:
		return fmt.Sprintf("set(%s, %s, %v)", o.ID, o.Name, o.Value)
	case OpCall:
		return fmt.Sprintf("call(%s, %s)", o.ID, o.Name)
	case OpListen:
		return fmt.Sprintf("listen(%s, %s, %t)", o.ID, o.Name, o.Enabled)
	default:
		return fmt.Sprintf("%s(%s)", o.Op, o.ID)
	}
}

// NativeClient is implemented by platform adapters. Send receives one
// encoded batch of operations.
type NativeClient interface {
	Send(batch []byte) error
}

// ClientFunc adapts a function to the NativeClient interface.
type ClientFunc func(batch []byte) error

func (f ClientFunc) Send(batch []byte) error { return f(batch) }

// Bridge queues outgoing operations and flushes them to a NativeClient.
type Bridge struct {
	client NativeClient
	codec  wire.MessageCodec
	queue  []Operation
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithCodec sets the codec used to encode batches.
func WithCodec(codec wire.MessageCodec) Option {
	return func(b *Bridge) {
		if codec != nil {
			b.codec = codec
		}
	}
}

// New creates a bridge. The client may be nil and attached later with
// SetClient; operations queue up until then.
func New(client NativeClient, opts ...Option) *Bridge {
	b := &Bridge{
		client: client,
		codec:  wire.DefaultCodec,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SetClient attaches the platform adapter.
func (b *Bridge) SetClient(client NativeClient) {
	b.client = client
}

// Codec returns the batch codec.
func (b *Bridge) Codec() wire.MessageCodec {
	return b.codec
}

// Create queues the creation of a native object. Undefined properties are
// left out of the payload.
func (b *Bridge) Create(id, nativeType string, props map[string]any) error {
	normalized, err := normalizeMap(props)
	if err != nil {
		return fmt.Errorf("create %s: %w", id, err)
	}
	b.queue = append(b.queue, Operation{Op: OpCreate, ID: id, Type: nativeType, Props: normalized})
	return nil
}

// Set queues a property write. Undefined is sent as null.
func (b *Bridge) Set(id, property string, value any) error {
	normalized, err := wire.Normalize(value)
	if err != nil {
		return fmt.Errorf("set %s.%s: %w", id, property, err)
	}
	if wire.IsUndefined(normalized) {
		normalized = nil
	}
	b.queue = append(b.queue, Operation{Op: OpSet, ID: id, Name: property, Value: normalized})
	return nil
}

// Call queues a method invocation.
func (b *Bridge) Call(id, method string, args map[string]any) error {
	normalized, err := normalizeMap(args)
	if err != nil {
		return fmt.Errorf("call %s.%s: %w", id, method, err)
	}
	b.queue = append(b.queue, Operation{Op: OpCall, ID: id, Name: method, Args: normalized})
	return nil
}

// Listen queues a change of the native listen state for event.
func (b *Bridge) Listen(id, event string, enabled bool) {
	b.queue = append(b.queue, Operation{Op: OpListen, ID: id, Name: event, Enabled: enabled})
}

// Destroy queues the destruction of a native object.
func (b *Bridge) Destroy(id string) {
	b.queue = append(b.queue, Operation{Op: OpDestroy, ID: id})
}

// Pending returns a copy of the queued operations.
func (b *Bridge) Pending() []Operation {
	out := make([]Operation, len(b.queue))
	copy(out, b.queue)
	return out
}

// Len returns the number of queued operations.
func (b *Bridge) Len() int {
	return len(b.queue)
}

// Flush delivers all queued operations as one batch. Without a client the
// queue is kept and ErrNotConnected returned. A batch the client rejects is
// reported and dropped.
func (b *Bridge) Flush() error {
	if len(b.queue) == 0 {
		return nil
	}
	if b.client == nil {
		return ErrNotConnected
	}
	batch := b.queue
	b.queue = nil

	data, err := b.codec.Encode(batch)
	if err == nil {
		err = b.client.Send(data)
	}
	if err != nil {
		errors.Report(&errors.BridgeError{
			Op:   "bridge.Flush",
			Kind: errors.KindTransport,
			Err:  fmt.Errorf("dropped batch of %d operations: %w", len(batch), err),
		})
		return err
	}
	return nil
}

func normalizeMap(m map[string]any) (map[string]any, error) {
	if len(m) == 0 {
		return nil, nil
	}
	normalized, err := wire.Normalize(m)
	if err != nil {
		return nil, err
	}
	return normalized.(map[string]any), nil
}
