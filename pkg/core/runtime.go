package core

import (
	stderrors "errors"
	"fmt"

	"golang.org/x/mod/semver"

	"github.com/go-drift/nativebridge/pkg/bridge"
	"github.com/go-drift/nativebridge/pkg/errors"
	"github.com/go-drift/nativebridge/pkg/registry"
	"github.com/go-drift/nativebridge/pkg/types"
	"github.com/go-drift/nativebridge/pkg/wire"
)

const (
	// ProtocolVersion is the bridge protocol spoken by this runtime.
	ProtocolVersion = "v1.2.0"
	// DefaultRootType is the native type of the runtime object.
	DefaultRootType = "tabris.Tabris"
)

var (
	// ErrAlreadyStarted is returned when Start is called twice.
	ErrAlreadyStarted = stderrors.New("core: runtime already started")
	// ErrIncompatibleProtocol is returned when the native client speaks
	// another major protocol version.
	ErrIncompatibleProtocol = stderrors.New("core: incompatible protocol version")
)

// VersionedClient is implemented by native clients that announce the
// protocol version they speak.
type VersionedClient interface {
	bridge.NativeClient
	ProtocolVersion() string
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithCodec sets the codec used to encode outgoing batches.
func WithCodec(codec wire.MessageCodec) Option {
	return func(rt *Runtime) { rt.codec = codec }
}

// WithAutoFlush flushes the pending queue after every notification.
func WithAutoFlush(enabled bool) Option {
	return func(rt *Runtime) { rt.autoFlush = enabled }
}

// WithProtocolVersion overrides the protocol version checked at Start.
func WithProtocolVersion(version string) Option {
	return func(rt *Runtime) { rt.version = version }
}

// WithRootType overrides the native type of the runtime object.
func WithRootType(nativeType string) Option {
	return func(rt *Runtime) { rt.rootType = nativeType }
}

// WithTypes registers additional codecs.
func WithTypes(register func(*types.Registry)) Option {
	return func(rt *Runtime) { rt.typeHooks = append(rt.typeHooks, register) }
}

// Runtime owns the identity registry, the type registry and the outgoing
// queue of one native session. All methods must be called from a single
// goroutine; use Loop to confine calls from other goroutines.
type Runtime struct {
	objects *registry.Registry[Object]
	types   *types.Registry
	bridge  *bridge.Bridge

	codec     wire.MessageCodec
	autoFlush bool
	version   string
	rootType  string
	typeHooks []func(*types.Registry)

	root          *Object
	started       bool
	flushHandlers []*flushHandler
}

type flushHandler struct {
	fn func()
}

// NewRuntime creates a runtime. The runtime object is registered right
// away and created on the native side by Start.
func NewRuntime(opts ...Option) *Runtime {
	rt := &Runtime{
		objects:  registry.New[Object](),
		version:  ProtocolVersion,
		rootType: DefaultRootType,
	}
	for _, opt := range opts {
		opt(rt)
	}
	rt.types = types.NewRegistry(types.ResolverFunc(rt.resolve))
	for _, hook := range rt.typeHooks {
		hook(rt.types)
	}
	rt.bridge = bridge.New(nil, bridge.WithCodec(rt.codec))

	rt.root = rt.newObject(Define(SchemaDef{
		Type: rt.rootType,
		Properties: []Property{
			{Name: "contentView", Type: types.T("NativeObject"), Set: setOnce},
		},
		Events: []EventType{{Name: "start"}, {Name: "flush"}},
	}), objectConfig{})
	rt.root.cid = rt.objects.Register(rt.root)
	return rt
}

// setOnce forwards the first assignment and ignores later ones.
func setOnce(o *Object, name string, encoded any) {
	if _, ok := o.values[name]; ok || encoded == nil {
		return
	}
	if err := o.NativeSet(name, encoded); err != nil {
		o.Hint("%v", err)
		return
	}
	o.StoreProperty(name, encoded)
}

func (rt *Runtime) resolve(id string) any {
	o := rt.objects.Find(id)
	if o == nil {
		return nil
	}
	return o.Owner()
}

func (rt *Runtime) newObject(schema *Schema, cfg objectConfig) *Object {
	return &Object{
		rt:          rt,
		schema:      schema,
		owner:       cfg.owner,
		values:      make(map[string]any),
		createProps: make(map[string]any),
		listeners:   make(map[string][]*Subscription),
	}
}

// Start attaches the native client, creates the runtime object and fires
// its "start" event.
func (rt *Runtime) Start(client bridge.NativeClient, options map[string]any) error {
	if rt.started {
		return ErrAlreadyStarted
	}
	if v, ok := client.(VersionedClient); ok {
		if err := CheckProtocol(rt.version, v.ProtocolVersion()); err != nil {
			errors.Report(&errors.BridgeError{Op: "core.Start", Kind: errors.KindInit, Err: err})
			return err
		}
	}
	rt.bridge.SetClient(client)
	var props map[string]any
	if len(rt.root.createProps) > 0 {
		props = rt.root.createProps
	}
	if err := rt.bridge.Create(rt.root.cid, rt.rootType, props); err != nil {
		return err
	}
	rt.root.createProps = nil
	rt.root.state = live
	rt.root.Trigger("start", options)
	rt.started = true
	return nil
}

// CheckProtocol reports whether remote is compatible with local. Versions
// are compatible when their semver major versions match.
func CheckProtocol(local, remote string) error {
	if !semver.IsValid(local) || !semver.IsValid(remote) {
		return fmt.Errorf("%w: invalid version %q or %q", ErrIncompatibleProtocol, local, remote)
	}
	if semver.Major(local) != semver.Major(remote) {
		return fmt.Errorf("%w: runtime %s, client %s", ErrIncompatibleProtocol, local, remote)
	}
	return nil
}

// New creates a bridged object. Initial properties are validated and
// folded into a single create operation; on failure nothing is registered
// or queued.
func (rt *Runtime) New(schema *Schema, opts ...ObjectOption) (*Object, error) {
	var cfg objectConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.parent != nil && cfg.parent.IsDisposed() {
		return nil, errors.Invalid("Cannot create %s in disposed parent %s", schema.Type(), cfg.parent.cid)
	}
	o := rt.newObject(schema, cfg)
	if err := o.SetProps(cfg.props); err != nil {
		return nil, err
	}

	if cfg.id != "" {
		if err := rt.objects.RegisterID(cfg.id, o); err != nil {
			return nil, err
		}
		o.cid = cfg.id
	} else {
		o.cid = rt.objects.Register(o)
	}
	if err := rt.bridge.Create(o.cid, schema.Type(), o.createProps); err != nil {
		rt.objects.Remove(o.cid)
		return nil, err
	}
	o.createProps = nil
	o.state = live

	for _, p := range schema.Properties() {
		if p.NativeChange {
			rt.bridge.Listen(o.cid, p.ChangeEvent(), true)
		}
	}
	if cfg.parent != nil {
		o.parent = cfg.parent
		cfg.parent.children = append(cfg.parent.children, o)
	}
	return o, nil
}

// Notify delivers a native notification. Unknown identifiers are ignored.
// The flush signal fires afterwards in every case.
func (rt *Runtime) Notify(id, event string, payload map[string]any) any {
	defer rt.signalFlush()
	o := rt.objects.Find(id)
	if o == nil || o.IsDisposed() {
		return nil
	}
	return o.receive(event, payload)
}

// OnFlush subscribes to the flush signal. The returned function removes
// the subscription.
func (rt *Runtime) OnFlush(fn func()) (cancel func()) {
	h := &flushHandler{fn: fn}
	rt.flushHandlers = append(rt.flushHandlers, h)
	return func() {
		for i, existing := range rt.flushHandlers {
			if existing == h {
				rt.flushHandlers = append(rt.flushHandlers[:i:i], rt.flushHandlers[i+1:]...)
				return
			}
		}
	}
}

func (rt *Runtime) signalFlush() {
	for _, h := range append([]*flushHandler(nil), rt.flushHandlers...) {
		runFlushHandler(h.fn)
	}
	if rt.root.state == live {
		rt.root.Trigger("flush", nil)
	}
	if rt.autoFlush {
		// Rejected batches are reported by the bridge itself.
		_ = rt.bridge.Flush()
	}
}

func runFlushHandler(fn func()) {
	defer errors.Recover("core.flush")
	fn()
}

// Flush delivers the pending operations to the native client.
func (rt *Runtime) Flush() error {
	return rt.bridge.Flush()
}

// Find returns the live object registered under id.
func (rt *Runtime) Find(id string) *Object {
	o := rt.objects.Find(id)
	if o == nil || o.IsDisposed() {
		return nil
	}
	return o
}

// Len returns the number of registered objects, the runtime object included.
func (rt *Runtime) Len() int {
	return rt.objects.Len()
}

// Types returns the type registry.
func (rt *Runtime) Types() *types.Registry {
	return rt.types
}

// Bridge returns the outgoing transport.
func (rt *Runtime) Bridge() *bridge.Bridge {
	return rt.bridge
}

// Root returns the runtime object.
func (rt *Runtime) Root() *Object {
	return rt.root
}

// SetContentView sets the top-level object shown by the native side. Only
// the first call has an effect.
func (rt *Runtime) SetContentView(view any) error {
	return rt.root.Set("contentView", view)
}

// ContentView returns the value passed to the first SetContentView.
func (rt *Runtime) ContentView() any {
	return rt.root.Get("contentView")
}

// Version returns the protocol version of the runtime.
func (rt *Runtime) Version() string {
	return rt.version
}

// Started reports whether Start succeeded.
func (rt *Runtime) Started() bool {
	return rt.started
}

// Close disposes every registered object and flushes the resulting
// destroy operations.
func (rt *Runtime) Close() error {
	for _, id := range rt.objects.IDs() {
		if o := rt.objects.Find(id); o != nil && o != rt.root && o.parent == nil {
			o.Dispose()
		}
	}
	rt.root.Dispose()
	err := rt.bridge.Flush()
	if stderrors.Is(err, bridge.ErrNotConnected) {
		return nil
	}
	return err
}
