package platform

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/go-drift/nativebridge/pkg/bridge"
	"github.com/go-drift/nativebridge/pkg/core"
	"github.com/go-drift/nativebridge/pkg/errors"
	"github.com/go-drift/nativebridge/pkg/types"
	"github.com/go-drift/nativebridge/pkg/wire"
)

type invocation struct {
	channel string
	method  string
	args    []byte
}

// fakeNative records calls and answers protocolVersion.
type fakeNative struct {
	mu      sync.Mutex
	calls   []invocation
	version string
	err     error
}

func (f *fakeNative) InvokeMethod(channel, method string, args []byte) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, invocation{channel, method, args})
	if f.err != nil {
		return nil, f.err
	}
	if method == MethodVersion {
		return wire.JSONCodec{}.Encode(f.version)
	}
	return nil, nil
}

func (f *fakeNative) flushed(t *testing.T) []bridge.Operation {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	var ops []bridge.Operation
	for _, c := range f.calls {
		if c.method != MethodFlush {
			continue
		}
		var batch []bridge.Operation
		if err := (wire.JSONCodec{}).DecodeInto(c.args, &batch); err != nil {
			t.Fatal(err)
		}
		ops = append(ops, batch...)
	}
	return ops
}

var switchSchema = core.Define(core.SchemaDef{
	Type: "tabris.Switch",
	Properties: []core.Property{
		{Name: "checked", Type: types.T("boolean"), NativeChange: true, Default: false},
	},
	Events: []core.EventType{{Name: "select", Native: true}},
})

func startAdapter(t *testing.T, native *fakeNative) (*Adapter, *core.Loop) {
	t.Helper()
	rt := core.NewRuntime(core.WithAutoFlush(true))
	loop := newTestLoop(t, rt)
	a := NewAdapter(native, loop)
	if err := a.Start(context.Background(), nil); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return a, loop
}

// newTestLoop runs a loop for the duration of the test.
func newTestLoop(t *testing.T, rt *core.Runtime) *core.Loop {
	t.Helper()
	loop := core.NewLoop(rt)
	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-loop.Stopped()
	})
	return loop
}

func TestAdapterDeliversBatchesAndNotifications(t *testing.T) {
	native := &fakeNative{version: core.ProtocolVersion}
	a, loop := startAdapter(t, native)

	var sw *core.Object
	err := loop.Do(context.Background(), func(rt *core.Runtime) error {
		var err error
		sw, err = rt.New(switchSchema, core.WithID("s1"))
		if err != nil {
			return err
		}
		sw.On("select", func(e *core.Event) error {
			e.ReturnValue = "handled"
			return nil
		})
		return rt.Flush()
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := a.HandleEvent([]byte(`{"id":"s1","event":"checkedChanged","payload":{"value":true}}`)); err != nil {
		t.Fatal(err)
	}
	result, err := a.HandleMethodCall(context.Background(), MethodNotify, []byte(`{"id":"s1","event":"select"}`))
	if err != nil {
		t.Fatal(err)
	}
	if string(result) != `"handled"` {
		t.Errorf("result = %s", result)
	}

	var checked any
	_ = loop.Do(context.Background(), func(rt *core.Runtime) error {
		checked = sw.Get("checked")
		return nil
	})
	if checked != true {
		t.Errorf("checked = %v", checked)
	}

	ops := native.flushed(t)
	if len(ops) < 3 || ops[0].Type != core.DefaultRootType || ops[1].ID != "s1" {
		t.Fatalf("ops = %v", ops)
	}
	if native.calls[0].method != MethodVersion || native.calls[0].channel != DefaultChannel {
		t.Errorf("first call = %+v, want version check", native.calls[0])
	}
}

func TestAdapterRejectsIncompatibleNative(t *testing.T) {
	errors.CaptureForTest(t.Cleanup)
	native := &fakeNative{version: "v9.0.0"}
	rt := core.NewRuntime()
	a := NewAdapter(native, newTestLoop(t, rt))
	err := a.Start(context.Background(), nil)
	if !stderrors.Is(err, core.ErrIncompatibleProtocol) {
		t.Errorf("Start = %v", err)
	}
}

func TestAdapterRejectsMalformedMessages(t *testing.T) {
	captured := errors.CaptureForTest(t.Cleanup)
	a, _ := startAdapter(t, &fakeNative{version: core.ProtocolVersion})

	if err := a.HandleEvent([]byte(`not json`)); !stderrors.Is(err, ErrInvalidArguments) {
		t.Errorf("HandleEvent = %v", err)
	}
	if err := a.HandleEvent([]byte(`{"id":"s1"}`)); !stderrors.Is(err, ErrInvalidArguments) {
		t.Errorf("HandleEvent without event = %v", err)
	}
	if _, err := a.HandleMethodCall(context.Background(), "reboot", nil); !stderrors.Is(err, ErrMethodNotFound) {
		t.Errorf("HandleMethodCall = %v", err)
	}
	if len(captured.Errors) != 1 || captured.Errors[0].Kind != errors.KindProtocol {
		t.Errorf("errors = %v", captured.Errors)
	}
}

func TestAdapterSendFailureIsReported(t *testing.T) {
	captured := errors.CaptureForTest(t.Cleanup)
	native := &fakeNative{version: core.ProtocolVersion}
	a, loop := startAdapter(t, native)

	native.mu.Lock()
	native.err = NewChannelError("unavailable", "renderer gone")
	native.mu.Unlock()

	err := loop.Do(context.Background(), func(rt *core.Runtime) error {
		return rt.Flush()
	})
	var chErr *ChannelError
	if !stderrors.As(err, &chErr) || chErr.Code != "unavailable" {
		t.Errorf("Flush = %v", err)
	}
	if len(captured.Errors) != 1 || captured.Errors[0].Kind != errors.KindTransport {
		t.Errorf("errors = %v", captured.Errors)
	}
	if a.Channel() != DefaultChannel {
		t.Errorf("Channel() = %q", a.Channel())
	}
}

func TestAdapterClosedLoop(t *testing.T) {
	rt := core.NewRuntime()
	loop := core.NewLoop(rt)
	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx)
	cancel()
	select {
	case <-loop.Stopped():
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}
	a := NewAdapter(&fakeNative{}, loop)
	if err := a.HandleEvent([]byte(`{"id":"$1","event":"x"}`)); !stderrors.Is(err, ErrClosed) {
		t.Errorf("HandleEvent = %v", err)
	}
}

func TestNilNativeBridge(t *testing.T) {
	a := NewAdapter(nil, core.NewLoop(core.NewRuntime()))
	if err := a.Send([]byte("[]")); !stderrors.Is(err, ErrPlatformUnavailable) {
		t.Errorf("Send = %v", err)
	}
	if v := a.ProtocolVersion(); v != "" {
		t.Errorf("ProtocolVersion = %q", v)
	}
}
