package core

import (
	"context"
	stderrors "errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/go-drift/nativebridge/pkg/bridge"
	"github.com/go-drift/nativebridge/pkg/errors"
)

type versionedRecorder struct {
	*bridge.Recorder
	version string
}

func (v versionedRecorder) ProtocolVersion() string { return v.version }

func TestStartCreatesRuntimeObject(t *testing.T) {
	rec := bridge.NewRecorder(nil)
	rt := NewRuntime()
	var started map[string]any
	rt.Root().On("start", func(e *Event) error {
		started = e.Data
		return nil
	})
	if err := rt.Start(rec, map[string]any{"debug": true}); err != nil {
		t.Fatal(err)
	}
	if !rt.Started() {
		t.Error("Started() = false")
	}
	if started["debug"] != true {
		t.Errorf("start data = %v", started)
	}
	if err := rt.Flush(); err != nil {
		t.Fatal(err)
	}
	ops := rec.Operations()
	if len(ops) != 1 || ops[0].Op != bridge.OpCreate || ops[0].Type != DefaultRootType || ops[0].ID != "$1" {
		t.Fatalf("operations = %v", ops)
	}
	if err := rt.Start(rec, nil); !stderrors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start = %v", err)
	}
}

func TestStartChecksProtocolVersion(t *testing.T) {
	captured := errors.CaptureForTest(t.Cleanup)
	tests := []struct {
		remote  string
		wantErr bool
	}{
		{"v1.0.0", false},
		{"v1.9.3", false},
		{"v2.0.0", true},
		{"1.0", true},
	}
	for _, tt := range tests {
		t.Run(tt.remote, func(t *testing.T) {
			rt := NewRuntime()
			err := rt.Start(versionedRecorder{bridge.NewRecorder(nil), tt.remote}, nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Start = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !stderrors.Is(err, ErrIncompatibleProtocol) {
				t.Errorf("err = %v", err)
			}
			if rt.Started() == tt.wantErr {
				t.Errorf("Started() = %v", rt.Started())
			}
		})
	}
	if len(captured.Errors) != 2 {
		t.Errorf("reported %d errors, want 2", len(captured.Errors))
	}
}

func TestNotifyDispatchesInRegistrationOrder(t *testing.T) {
	captured := errors.CaptureForTest(t.Cleanup)
	rt, _ := newTestRuntime(t)
	o, _ := rt.New(testSchema)

	var order []string
	o.On("select", func(e *Event) error {
		order = append(order, "first")
		return fmt.Errorf("listener failed")
	})
	o.On("select", func(e *Event) error {
		order = append(order, "second")
		panic("boom")
	})
	o.On("select", func(e *Event) error {
		order = append(order, fmt.Sprint("third:", e.Data["index"]))
		if e.Target != o || e.Type != "select" {
			t.Errorf("event = %+v", e)
		}
		return nil
	})

	rt.Notify(o.Cid(), "select", map[string]any{"index": 2.0})

	if want := []string{"first", "second", "third:2"}; !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
	if len(captured.Errors) != 1 || captured.Errors[0].Kind != errors.KindDispatch {
		t.Errorf("errors = %v", captured.Errors)
	}
	if len(captured.Panics) != 1 {
		t.Errorf("panics = %v", captured.Panics)
	}
}

func TestNotifyUnknownTargetStillFlushes(t *testing.T) {
	captured := errors.CaptureForTest(t.Cleanup)
	rt, _ := newTestRuntime(t)
	flushes := 0
	cancel := rt.OnFlush(func() { flushes++ })

	if got := rt.Notify("$404", "select", nil); got != nil {
		t.Errorf("Notify = %v", got)
	}
	if flushes != 1 {
		t.Errorf("flushes = %d, want 1", flushes)
	}
	cancel()
	rt.Notify("$404", "select", nil)
	if flushes != 1 {
		t.Errorf("flushes after cancel = %d", flushes)
	}
	if captured.Count() != 0 {
		t.Errorf("unknown target should not be reported: %v", captured.Errors)
	}
}

func TestNotifyAfterDisposeIsDropped(t *testing.T) {
	rt, _ := newTestRuntime(t)
	o, _ := rt.New(testSchema)
	calls := 0
	o.On("select", func(*Event) error {
		calls++
		return nil
	})
	id := o.Cid()
	o.Dispose()
	rt.Notify(id, "select", nil)
	if calls != 0 {
		t.Errorf("calls = %d", calls)
	}
}

func TestNotifyReturnsListenerValue(t *testing.T) {
	rt, _ := newTestRuntime(t)
	o, _ := rt.New(testSchema)
	o.On("select", func(e *Event) error {
		e.ReturnValue = true
		return nil
	})
	if got := rt.Notify(o.Cid(), "select", nil); got != true {
		t.Errorf("Notify = %v, want true", got)
	}
}

func TestNativeChangeUpdatesCache(t *testing.T) {
	rt, rec := newTestRuntime(t)
	o, _ := rt.New(testSchema)
	flushOps(t, rt, rec)

	var seen []any
	o.On("selectionChanged", func(e *Event) error {
		seen = append(seen, e.Value)
		return nil
	})
	rt.Notify(o.Cid(), "selectionChanged", map[string]any{"value": 3.0})

	if got := o.Get("selection"); got != 3.0 {
		t.Errorf("Get(selection) = %v", got)
	}
	if !reflect.DeepEqual(seen, []any{3.0}) {
		t.Errorf("seen = %v", seen)
	}
	if err := o.Set("selection", 3); err != nil {
		t.Fatal(err)
	}
	ops := flushOps(t, rt, rec)
	if len(ops) != 0 {
		t.Errorf("operations = %v, value is already cached", ops)
	}
}

func TestAutoFlushAfterNotify(t *testing.T) {
	rt, rec := newTestRuntime(t, WithAutoFlush(true))
	o, _ := rt.New(testSchema)
	o.On("select", func(e *Event) error {
		return o.Set("text", "selected")
	})
	rt.Notify(o.Cid(), "select", nil)

	if rt.Bridge().Len() != 0 {
		t.Errorf("pending = %v", rt.Bridge().Pending())
	}
	ops := rec.Operations()
	if len(rec.Batches()) != 1 || ops[len(ops)-1].Name != "text" {
		t.Errorf("batches = %v", rec.Batches())
	}
}

func TestFlushListenersCoalesce(t *testing.T) {
	rt, _ := newTestRuntime(t)
	o, _ := rt.New(testSchema)
	changes := 0
	reactions := 0
	o.On("selectionChanged", func(*Event) error {
		changes++
		return nil
	})
	rt.Root().On("flush", func(*Event) error {
		if changes > 0 {
			reactions++
			changes = 0
		}
		return nil
	})
	rt.Notify(o.Cid(), "selectionChanged", map[string]any{"value": 1.0})
	rt.Notify(o.Cid(), "selectionChanged", map[string]any{"value": 2.0})
	if reactions != 2 {
		t.Errorf("reactions = %d, want one per notification", reactions)
	}
}

func TestCloseDisposesEverything(t *testing.T) {
	rt, rec := newTestRuntime(t)
	a, _ := rt.New(testSchema)
	b, _ := rt.New(testSchema, WithParent(a))
	if err := rt.Close(); err != nil {
		t.Fatal(err)
	}
	if !a.IsDisposed() || !b.IsDisposed() || !rt.Root().IsDisposed() {
		t.Error("all objects should be disposed")
	}
	if rt.Len() != 0 {
		t.Errorf("Len = %d", rt.Len())
	}
	destroyed := rec.Calls(bridge.OpDestroy)
	if len(destroyed) != 3 {
		t.Errorf("destroyed = %v", destroyed)
	}
}

func TestCheckProtocol(t *testing.T) {
	if err := CheckProtocol("v1.2.0", "v1.0.7"); err != nil {
		t.Errorf("CheckProtocol = %v", err)
	}
	if err := CheckProtocol("v1.2.0", "v0.9.0"); err == nil {
		t.Error("major mismatch should fail")
	}
}

func TestLoopConfinesCalls(t *testing.T) {
	rt, rec := newTestRuntime(t)
	loop := NewLoop(rt)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	var obj *Object
	err := loop.Do(ctx, func(rt *Runtime) error {
		o, err := rt.New(testSchema)
		if err != nil {
			return err
		}
		obj = o
		o.On("select", func(e *Event) error {
			return o.Set("text", "from native")
		})
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if !loop.PostNotify(obj.Cid(), "select", nil) {
		t.Fatal("PostNotify rejected")
	}
	waitCtx, waitCancel := context.WithTimeout(ctx, time.Second)
	defer waitCancel()
	var text any
	err = loop.Do(waitCtx, func(rt *Runtime) error {
		text = obj.Get("text")
		return rt.Flush()
	})
	if err != nil {
		t.Fatal(err)
	}
	if text != "from native" {
		t.Errorf("text = %v", text)
	}
	sets := rec.Calls(bridge.OpSet)
	if len(sets) != 1 || sets[0].Value != "from native" {
		t.Errorf("sets = %v", sets)
	}

	cancel()
	if err := <-done; !stderrors.Is(err, context.Canceled) {
		t.Errorf("Run = %v", err)
	}
	<-loop.Stopped()
	if loop.Post(func() {}) {
		t.Error("Post after stop should fail")
	}
}

func TestContentViewIsSetOnce(t *testing.T) {
	rt, rec := newTestRuntime(t)
	first, err := rt.New(testSchema)
	if err != nil {
		t.Fatal(err)
	}
	second, err := rt.New(testSchema)
	if err != nil {
		t.Fatal(err)
	}
	flushOps(t, rt, rec)

	if err := rt.SetContentView(first); err != nil {
		t.Fatal(err)
	}
	if err := rt.SetContentView(second); err != nil {
		t.Fatal(err)
	}
	ops := flushOps(t, rt, rec)
	if len(ops) != 1 || ops[0].Op != bridge.OpSet || ops[0].ID != rt.Root().Cid() ||
		ops[0].Name != "contentView" || ops[0].Value != first.Cid() {
		t.Fatalf("operations = %v, want one contentView set", ops)
	}
	if got := rt.ContentView(); got != first {
		t.Errorf("ContentView() = %v, want %v", got, first)
	}
	if err := rt.SetContentView("not an object"); err == nil {
		t.Error("expected validation error for a non-object content view")
	}
}

func TestContentViewBeforeStartIsFoldedIntoCreate(t *testing.T) {
	rec := bridge.NewRecorder(nil)
	rt := NewRuntime()
	view, err := rt.New(testSchema)
	if err != nil {
		t.Fatal(err)
	}
	if err := rt.SetContentView(view); err != nil {
		t.Fatal(err)
	}
	if err := rt.Start(rec, nil); err != nil {
		t.Fatal(err)
	}
	if err := rt.Flush(); err != nil {
		t.Fatal(err)
	}
	var root *bridge.Operation
	for _, op := range rec.Operations() {
		if op.Op == bridge.OpCreate && op.ID == rt.Root().Cid() {
			root = &op
		}
		if op.Op == bridge.OpSet {
			t.Errorf("unexpected set %v", op)
		}
	}
	if root == nil || root.Props["contentView"] != view.Cid() {
		t.Fatalf("root create = %v", root)
	}
}
