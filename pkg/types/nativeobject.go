package types

import (
	"github.com/go-drift/nativebridge/pkg/errors"
	"github.com/go-drift/nativebridge/pkg/wire"
)

// Identified is implemented by bridged objects.
type Identified interface {
	Cid() string
}

// encodeNativeObject converts objects to their identifiers. Sequences
// encode to the identifier of their first element.
func encodeNativeObject(v any, _ ...any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case Identified:
		return t.Cid(), nil
	case map[string]any:
		if _, ok := t["id"]; ok {
			return t, nil
		}
	}
	if items, ok := wire.ToSlice(v); ok {
		if len(items) == 0 {
			return nil, nil
		}
		if first, ok := items[0].(Identified); ok {
			return first.Cid(), nil
		}
	}
	return nil, errors.Invalid("Not a native object: %s", wire.Format(v))
}

func (r *Registry) decodeNativeObject(v any) (any, error) {
	id, ok := v.(string)
	if !ok || r.resolver == nil {
		return v, nil
	}
	obj := r.resolver.Resolve(id)
	if obj == nil {
		return nil, nil
	}
	return obj, nil
}
