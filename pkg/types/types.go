// Package types implements the property type system of the bridge: named
// codecs that validate application values and convert them to and from
// their wire representation.
//
// Codecs are pure. Encode failures are synchronous and surface as
// *errors.ValidationError at the call site; Decode is total over values
// that an Encode produced.
package types

import (
	stderrors "errors"
	"fmt"
	"sort"

	"github.com/go-drift/nativebridge/pkg/errors"
)

// EncodeFunc validates v and returns its wire form. Extra args carry
// codec parameters such as the allowed values of a choice.
type EncodeFunc func(v any, args ...any) (any, error)

// DecodeFunc converts a wire value back into its application form.
type DecodeFunc func(v any) (any, error)

// Codec pairs the encode and decode directions of a property type.
// A nil Decode is the identity.
type Codec struct {
	Encode EncodeFunc
	Decode DecodeFunc
}

// TypeRef names a codec together with its encode arguments.
type TypeRef struct {
	Name string
	Args []any
}

// T is shorthand for building a TypeRef.
func T(name string, args ...any) TypeRef {
	return TypeRef{Name: name, Args: args}
}

func (r TypeRef) String() string {
	if len(r.Args) == 0 {
		return r.Name
	}
	return fmt.Sprintf("%s%v", r.Name, r.Args)
}

// IsZero reports whether the reference names no codec.
func (r TypeRef) IsZero() bool {
	return r.Name == ""
}

// Resolver maps native object identifiers back to live objects.
type Resolver interface {
	Resolve(id string) any
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(id string) any

func (f ResolverFunc) Resolve(id string) any { return f(id) }

// ErrUnknownType is returned when a TypeRef names an unregistered codec.
var ErrUnknownType = stderrors.New("unknown type")

// Registry holds the named codecs. Populate it before objects are created;
// it is not safe for concurrent registration.
type Registry struct {
	codecs   map[string]Codec
	resolver Resolver
}

// NewRegistry returns a registry with all built-in codecs. The resolver
// backs the NativeObject codec's decode direction and may be nil.
func NewRegistry(resolver Resolver) *Registry {
	r := &Registry{
		codecs:   make(map[string]Codec),
		resolver: resolver,
	}
	r.registerBuiltins()
	return r
}

// Register adds or replaces a codec.
func (r *Registry) Register(name string, c Codec) {
	r.codecs[name] = c
}

// Lookup returns the codec registered under name.
func (r *Registry) Lookup(name string) (Codec, bool) {
	c, ok := r.codecs[name]
	return c, ok
}

// Names returns the registered codec names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.codecs))
	for name := range r.codecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Encode runs the codec named by ref on v.
func (r *Registry) Encode(ref TypeRef, v any) (any, error) {
	c, ok := r.codecs[ref.Name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownType, ref.Name)
	}
	out, err := c.Encode(v, ref.Args...)
	if err != nil {
		var verr *errors.ValidationError
		if stderrors.As(err, &verr) && verr.Type == "" {
			verr.Type = ref.Name
		}
		return nil, err
	}
	return out, nil
}

// Decode runs the decode direction of the codec named by ref on v.
func (r *Registry) Decode(ref TypeRef, v any) (any, error) {
	c, ok := r.codecs[ref.Name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownType, ref.Name)
	}
	if c.Decode == nil {
		return v, nil
	}
	return c.Decode(v)
}

func (r *Registry) registerBuiltins() {
	r.Register("any", Codec{Encode: encodeAny})
	r.Register("number", Codec{Encode: encodeNumber})
	r.Register("integer", Codec{Encode: encodeInteger})
	r.Register("natural", Codec{Encode: encodeNatural})
	r.Register("opacity", Codec{Encode: encodeOpacity})
	r.Register("dimension", Codec{Encode: encodeDimension})
	r.Register("string", Codec{Encode: encodeString})
	r.Register("boolean", Codec{Encode: encodeBoolean})
	r.Register("choice", Codec{Encode: encodeChoice})
	r.Register("function", Codec{Encode: encodeFunction})
	r.Register("object", Codec{Encode: encodeObject})
	r.Register("nullable", Codec{Encode: r.encodeNullable, Decode: r.decodeNullable})
	r.Register("array", Codec{Encode: r.encodeArray})
	r.Register("ImageValue", Codec{Encode: encodeImage})
	r.Register("ColorValue", Codec{Encode: encodeColorValue, Decode: decodeColorValue})
	r.Register("FontValue", Codec{Encode: encodeFontValue, Decode: decodeFontValue})
	r.Register("shader", Codec{Encode: encodeShader, Decode: decodeShader})
	r.Register("NativeObject", Codec{Encode: encodeNativeObject, Decode: r.decodeNativeObject})
	r.Register("boxDimensions", Codec{Encode: encodeBoxDimensions})
	r.Register("transform", Codec{Encode: encodeTransform})
}

func encodeAny(v any, _ ...any) (any, error) {
	return v, nil
}

// stringArg returns args[i] as a string, or "" when absent.
func stringArg(args []any, i int) string {
	if i >= len(args) {
		return ""
	}
	s, _ := args[i].(string)
	return s
}
