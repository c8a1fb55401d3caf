package core

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"sort"

	"github.com/go-drift/nativebridge/pkg/errors"
	"github.com/go-drift/nativebridge/pkg/types"
)

type lifecycle int

const (
	uncreated lifecycle = iota
	live
	disposed
)

// Object is the local proxy of a native object. Objects move from
// uncreated to live atomically inside Runtime.New and end disposed.
//
// Widget types embed *Object and pass themselves as owner so that
// notifications and NativeObject decoding resolve to the widget.
type Object struct {
	rt     *Runtime
	cid    string
	schema *Schema
	state  lifecycle
	owner  any

	values      map[string]any
	createProps map[string]any
	listeners   map[string][]*Subscription

	parent   *Object
	children []*Object
	// disposing guards against re-entrant Dispose from dispose listeners.
	disposing bool
}

// ObjectOption configures an object at creation.
type ObjectOption func(*objectConfig)

type objectConfig struct {
	id     string
	props  map[string]any
	parent *Object
	owner  any
}

// WithID wraps a native object under a known identifier instead of
// allocating a fresh one.
func WithID(id string) ObjectOption {
	return func(c *objectConfig) { c.id = id }
}

// WithProps sets initial property values. They are folded into the
// create operation; const properties can only be set this way.
func WithProps(props map[string]any) ObjectOption {
	return func(c *objectConfig) { c.props = props }
}

// WithParent makes the object a child of parent. Disposing the parent
// disposes its children.
func WithParent(parent *Object) ObjectOption {
	return func(c *objectConfig) { c.parent = parent }
}

// WithOwner sets the value NativeObject references resolve to.
func WithOwner(owner any) ObjectOption {
	return func(c *objectConfig) { c.owner = owner }
}

// Cid returns the native identifier.
func (o *Object) Cid() string {
	return o.cid
}

// Type returns the native type tag.
func (o *Object) Type() string {
	return o.schema.Type()
}

// Schema returns the property table.
func (o *Object) Schema() *Schema {
	return o.schema
}

// Runtime returns the runtime the object belongs to.
func (o *Object) Runtime() *Runtime {
	return o.rt
}

// Owner returns the value registered with WithOwner, or the object itself.
func (o *Object) Owner() any {
	if o.owner != nil {
		return o.owner
	}
	return o
}

// Parent returns the parent object, if any.
func (o *Object) Parent() *Object {
	return o.parent
}

// Children returns a copy of the child list.
func (o *Object) Children() []*Object {
	out := make([]*Object, len(o.children))
	copy(out, o.children)
	return out
}

// IsDisposed reports whether the object was disposed.
func (o *Object) IsDisposed() bool {
	return o.state == disposed
}

func (o *Object) String() string {
	return o.schema.Type() + " " + o.cid
}

// Hint emits a usage warning attributed to the object.
func (o *Object) Hint(format string, args ...any) {
	errors.Warn(o.String(), format, args...)
}

// Set validates and writes a property. Validation failures are returned;
// writes to disposed objects and to const properties after creation are
// dropped with a hint.
func (o *Object) Set(name string, value any) error {
	if o.state == disposed {
		o.Hint("Cannot set property %q on disposed object", name)
		return nil
	}
	p, ok := o.schema.Property(name)
	if !ok {
		return &errors.ValidationError{Property: name, Message: fmt.Sprintf("unknown property of %s", o.Type())}
	}
	if p.Const && o.state == live {
		o.Hint("Can not set const property %q after creation", name)
		return nil
	}
	encoded, err := o.rt.types.Encode(p.Type, value)
	if err != nil {
		var verr *errors.ValidationError
		if stderrors.As(err, &verr) {
			verr.Property = name
		}
		return err
	}
	if p.Set != nil {
		p.Set(o, name, encoded)
		return nil
	}
	if !p.NoCache {
		if cached, ok := o.values[name]; ok && reflect.DeepEqual(cached, encoded) {
			return nil
		}
	}
	if !p.Local {
		if err := o.NativeSet(name, encoded); err != nil {
			return err
		}
	}
	o.StoreProperty(name, encoded)
	return nil
}

// SetProps sets several properties, const ones first and the rest in key
// order. It stops at the first validation error.
func (o *Object) SetProps(props map[string]any) error {
	for _, name := range o.orderedKeys(props) {
		if err := o.Set(name, props[name]); err != nil {
			return err
		}
	}
	return nil
}

func (o *Object) orderedKeys(props map[string]any) []string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		pi, _ := o.schema.Property(keys[i])
		pj, _ := o.schema.Property(keys[j])
		if pi.Const != pj.Const {
			return pi.Const
		}
		return keys[i] < keys[j]
	})
	return keys
}

// Get returns the cached value decoded through the property's codec, or
// the default when nothing is cached. Get never queries the native side.
func (o *Object) Get(name string) any {
	p, ok := o.schema.Property(name)
	if !ok {
		return nil
	}
	if p.NoCache {
		return p.Default
	}
	cached, ok := o.values[name]
	if !ok {
		return p.Default
	}
	decoded, err := o.rt.types.Decode(p.Type, cached)
	if err != nil {
		errors.Report(&errors.BridgeError{Op: "core.Get", Kind: errors.KindProtocol, ID: o.cid, Err: err})
		return cached
	}
	return decoded
}

// NativeSet forwards an encoded value to the native side. Before the
// object is created the value is folded into the create payload.
func (o *Object) NativeSet(name string, encoded any) error {
	switch o.state {
	case uncreated:
		o.createProps[name] = encoded
		return nil
	case disposed:
		return nil
	}
	return o.rt.bridge.Set(o.cid, name, encoded)
}

// StoreProperty caches an encoded value if the property is cacheable and
// fires "<name>Changed" when the value differs from the cached one.
func (o *Object) StoreProperty(name string, encoded any) {
	p, ok := o.schema.Property(name)
	if !ok || p.NoCache {
		return
	}
	old, had := o.values[name]
	o.values[name] = encoded
	if had && reflect.DeepEqual(old, encoded) {
		return
	}
	if o.state == live {
		o.Trigger(p.ChangeEvent(), map[string]any{"value": o.Get(name)})
	}
}

// Call invokes a native method. Declared parameters are encoded with their
// codecs; validation failures are returned.
func (o *Object) Call(method string, args map[string]any) error {
	if o.state == disposed {
		o.Hint("Cannot call %q on disposed object", method)
		return nil
	}
	encoded := args
	if m, ok := o.schema.Method(method); ok && len(m.Params) > 0 {
		encoded = make(map[string]any, len(args))
		for k, v := range args {
			ref, declared := m.Params[k]
			if !declared {
				encoded[k] = v
				continue
			}
			e, err := o.rt.types.Encode(ref, v)
			if err != nil {
				var verr *errors.ValidationError
				if stderrors.As(err, &verr) {
					verr.Property = method + "." + k
				}
				return err
			}
			encoded[k] = e
		}
	}
	return o.rt.bridge.Call(o.cid, method, encoded)
}

// On registers a listener. The first listener of a native event enables
// it on the native side.
func (o *Object) On(event string, fn Listener) *Subscription {
	return o.subscribe(event, fn, false)
}

// Once registers a listener that is removed before its first invocation.
func (o *Object) Once(event string, fn Listener) *Subscription {
	return o.subscribe(event, fn, true)
}

func (o *Object) subscribe(event string, fn Listener, once bool) *Subscription {
	sub := &Subscription{target: o, event: event, fn: fn, once: once}
	if o.state == disposed {
		o.Hint("Cannot listen to %q on disposed object", event)
		sub.canceled = true
		return sub
	}
	first := len(o.listeners[event]) == 0
	o.listeners[event] = append(o.listeners[event], sub)
	if first && o.togglesNative(event) {
		o.rt.bridge.Listen(o.cid, event, true)
	}
	return sub
}

// Off removes all listeners of event.
func (o *Object) Off(event string) {
	for _, sub := range append([]*Subscription(nil), o.listeners[event]...) {
		sub.Cancel()
	}
}

func (o *Object) removeSubscription(sub *Subscription) {
	subs := o.listeners[sub.event]
	for i, s := range subs {
		if s == sub {
			o.listeners[sub.event] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(o.listeners[sub.event]) > 0 {
		return
	}
	delete(o.listeners, sub.event)
	if o.state == live && !o.disposing && o.togglesNative(sub.event) {
		o.rt.bridge.Listen(o.cid, sub.event, false)
	}
}

// togglesNative reports whether listener changes for event must be
// mirrored by listen operations. Change events of native-writable
// properties stay enabled for the object's whole life.
func (o *Object) togglesNative(event string) bool {
	ev, ok := o.schema.Event(event)
	if !ok || !ev.Native {
		return false
	}
	_, isChange := o.schema.changedProperty(event)
	return !isChange
}

// ListenerCount returns the number of listeners registered for event.
func (o *Object) ListenerCount(event string) int {
	return len(o.listeners[event])
}

// Trigger dispatches an event locally and returns the listeners' return value.
func (o *Object) Trigger(event string, data map[string]any) any {
	e := &Event{Target: o, Type: event, Data: data}
	if data != nil {
		e.Value = data["value"]
	}
	o.dispatch(e)
	return e.ReturnValue
}

// dispatch invokes the listeners registered at the time of the call in
// registration order.
func (o *Object) dispatch(e *Event) {
	subs := append([]*Subscription(nil), o.listeners[e.Type]...)
	for _, sub := range subs {
		if sub.canceled {
			continue
		}
		if sub.once {
			sub.Cancel()
		}
		invoke("core.dispatch", sub.fn, e)
	}
}

// receive handles a notification from the native side.
func (o *Object) receive(event string, payload map[string]any) any {
	if name, ok := o.schema.changedProperty(event); ok {
		if p, _ := o.schema.Property(name); !p.NoCache {
			o.values[name] = payload["value"]
		}
	}
	data := payload
	if ev, ok := o.schema.Event(event); ok && len(ev.Params) > 0 {
		data = make(map[string]any, len(payload))
		for k, v := range payload {
			data[k] = v
			ref, declared := ev.Params[k]
			if !declared {
				continue
			}
			decoded, err := o.rt.types.Decode(ref, v)
			if err != nil {
				errors.Report(&errors.BridgeError{
					Op:   "core.Notify",
					Kind: errors.KindProtocol,
					ID:   o.cid,
					Err:  fmt.Errorf("decode %s.%s: %w", event, k, err),
				})
				continue
			}
			data[k] = decoded
		}
	}
	return o.Trigger(event, data)
}

// Dispose destroys the object and its children. It fires "dispose" first,
// then queues destroy operations and removes the objects from the registry.
func (o *Object) Dispose() {
	if o.state == disposed || o.disposing {
		return
	}
	o.disposing = true
	o.Trigger("dispose", nil)
	for _, child := range o.Children() {
		child.Dispose()
	}
	if o.parent != nil {
		o.parent.removeChild(o)
	}
	if o.state == live {
		o.rt.bridge.Destroy(o.cid)
	}
	o.rt.objects.Remove(o.cid)
	o.state = disposed
	o.listeners = nil
	o.disposing = false
}

func (o *Object) removeChild(child *Object) {
	for i, c := range o.children {
		if c == child {
			o.children = append(o.children[:i:i], o.children[i+1:]...)
			return
		}
	}
}

var _ types.Identified = (*Object)(nil)
