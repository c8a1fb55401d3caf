package platform

import (
	"context"
	"testing"

	"github.com/go-drift/nativebridge/pkg/core"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestAdapterTracesNativeRoundTrips(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	native := &fakeNative{version: core.ProtocolVersion}
	a := NewAdapter(native, newTestLoop(t, core.NewRuntime()), WithTracerProvider(tp))
	if err := a.Start(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	if _, err := a.HandleMethodCall(context.Background(), MethodNotify, []byte(`{"id":"$1","event":"pause"}`)); err != nil {
		t.Fatal(err)
	}

	spans := rec.Ended()
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}
	if spans[0].Name() != "platform.Start" || spans[1].Name() != "platform.notify" {
		t.Errorf("spans = %q, %q", spans[0].Name(), spans[1].Name())
	}
	attrs := map[attribute.Key]string{}
	for _, kv := range spans[1].Attributes() {
		attrs[kv.Key] = kv.Value.AsString()
	}
	if attrs["bridge.id"] != "$1" || attrs["bridge.event"] != "pause" {
		t.Errorf("notify attributes = %v", attrs)
	}
}
