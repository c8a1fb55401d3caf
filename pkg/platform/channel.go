// Package platform connects a core runtime to native platform code.
//
// The native side is reached through a NativeBridge, the same narrow
// method-channel interface platform embedders implement for other
// services. Outgoing batches are delivered as a "flush" call on the
// bridge channel. Notifications travel the other way through
// HandleEvent (fire and forget) or HandleMethodCall (when the native side
// waits for a listener's return value) and are confined to the runtime's
// Loop.
//
// Start and HandleMethodCall are traced with OpenTelemetry. Spans go to the
// global tracer provider unless WithTracerProvider is given, so tracing
// costs nothing until an embedder installs a provider.
package platform

import (
	"context"
	"fmt"

	"github.com/go-drift/nativebridge/pkg/core"
	"github.com/go-drift/nativebridge/pkg/errors"
	"github.com/go-drift/nativebridge/pkg/wire"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/go-drift/nativebridge/pkg/platform"

// DefaultChannel is the channel name used for bridge traffic.
const DefaultChannel = "nativebridge"

// Method names on the bridge channel.
const (
	MethodFlush   = "flush"
	MethodVersion = "protocolVersion"
	MethodNotify  = "notify"
)

// NativeBridge defines the interface for calling native platform code.
type NativeBridge interface {
	// InvokeMethod calls a method on the native side.
	InvokeMethod(channel, method string, args []byte) ([]byte, error)
}

// Notification is an inbound event message.
type Notification struct {
	ID      string         `json:"id" msgpack:"id"`
	Event   string         `json:"event" msgpack:"event"`
	Payload map[string]any `json:"payload,omitempty" msgpack:"payload,omitempty"`
}

// Adapter is the native client of a runtime and the entry point for
// notifications coming back from native code.
type Adapter struct {
	native  NativeBridge
	loop    *core.Loop
	channel string
	codec   wire.MessageCodec
	tracer  trace.Tracer
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithChannel overrides the channel name.
func WithChannel(name string) AdapterOption {
	return func(a *Adapter) { a.channel = name }
}

// WithTracerProvider traces with tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) AdapterOption {
	return func(a *Adapter) { a.tracer = tp.Tracer(tracerName) }
}

// NewAdapter creates an adapter for the runtime confined to loop. Messages
// use the runtime's batch codec.
func NewAdapter(native NativeBridge, loop *core.Loop, opts ...AdapterOption) *Adapter {
	a := &Adapter{
		native:  native,
		loop:    loop,
		channel: DefaultChannel,
		codec:   loop.Runtime().Bridge().Codec(),
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Channel returns the channel name.
func (a *Adapter) Channel() string {
	return a.channel
}

// Send delivers an encoded batch of operations.
func (a *Adapter) Send(batch []byte) error {
	if a.native == nil {
		return ErrPlatformUnavailable
	}
	_, err := a.native.InvokeMethod(a.channel, MethodFlush, batch)
	return err
}

// ProtocolVersion asks the native side for the protocol version it speaks.
// Failures yield an empty string, which Start rejects.
func (a *Adapter) ProtocolVersion() string {
	if a.native == nil {
		return ""
	}
	data, err := a.native.InvokeMethod(a.channel, MethodVersion, nil)
	if err != nil {
		errors.Report(&errors.BridgeError{Op: "platform.ProtocolVersion", Kind: errors.KindInit, Err: err})
		return ""
	}
	var version string
	if err := a.codec.DecodeInto(data, &version); err != nil {
		return ""
	}
	return version
}

// Start starts the runtime with the adapter as its native client. It runs
// on the loop goroutine, so Loop.Run must be active.
func (a *Adapter) Start(ctx context.Context, options map[string]any) error {
	ctx, span := a.tracer.Start(ctx, "platform.Start",
		trace.WithAttributes(attribute.String("bridge.channel", a.channel)))
	defer span.End()
	err := a.loop.Do(ctx, func(rt *core.Runtime) error {
		return rt.Start(a, options)
	})
	record(span, err)
	return err
}

func record(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// HandleEvent queues a notification on the loop without waiting for it.
func (a *Adapter) HandleEvent(data []byte) error {
	n, err := a.decode(data)
	if err != nil {
		return err
	}
	if !a.loop.PostNotify(n.ID, n.Event, n.Payload) {
		return ErrClosed
	}
	return nil
}

// HandleMethodCall serves synchronous calls from the native side. The only
// method is "notify", which waits for dispatch and returns the encoded
// listener return value.
func (a *Adapter) HandleMethodCall(ctx context.Context, method string, args []byte) ([]byte, error) {
	if method != MethodNotify {
		return nil, fmt.Errorf("%w: %s", ErrMethodNotFound, method)
	}
	n, err := a.decode(args)
	if err != nil {
		return nil, err
	}
	ctx, span := a.tracer.Start(ctx, "platform.notify", trace.WithAttributes(
		attribute.String("bridge.id", n.ID),
		attribute.String("bridge.event", n.Event),
	))
	defer span.End()
	result, err := a.notify(ctx, n)
	record(span, err)
	return result, err
}

func (a *Adapter) notify(ctx context.Context, n Notification) ([]byte, error) {
	var result any
	err := a.loop.Do(ctx, func(rt *core.Runtime) error {
		result = rt.Notify(n.ID, n.Event, n.Payload)
		return nil
	})
	if err != nil {
		return nil, err
	}
	normalized, err := wire.Normalize(result)
	if err != nil {
		return nil, err
	}
	if wire.IsUndefined(normalized) {
		normalized = nil
	}
	return a.codec.Encode(normalized)
}

func (a *Adapter) decode(data []byte) (Notification, error) {
	var n Notification
	if err := a.codec.DecodeInto(data, &n); err != nil {
		errors.Report(&errors.BridgeError{Op: "platform.decode", Kind: errors.KindProtocol, Err: err})
		return n, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	if n.ID == "" || n.Event == "" {
		return n, fmt.Errorf("%w: notification needs id and event", ErrInvalidArguments)
	}
	return n, nil
}
