package wire

import (
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// MessageCodec encodes and decodes batches exchanged with the native side.
type MessageCodec interface {
	// Name identifies the codec in configuration ("json", "msgpack").
	Name() string

	// Encode converts a Go value to bytes for transmission to native code.
	Encode(value any) ([]byte, error)

	// Decode converts bytes received from native code to a Go value.
	Decode(data []byte) (any, error)

	// DecodeInto deserializes bytes into a specific type.
	DecodeInto(data []byte, v any) error
}

// JSONCodec implements MessageCodec using JSON encoding.
// JSON prioritizes interoperability and minimal native dependencies.
type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }

// Encode serializes the value to JSON bytes.
func (JSONCodec) Encode(value any) ([]byte, error) {
	return json.Marshal(value)
}

// Decode deserializes JSON bytes to a Go value.
func (JSONCodec) Decode(data []byte) (any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var result any
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// DecodeInto deserializes JSON bytes into a specific type.
func (JSONCodec) DecodeInto(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// MsgpackCodec implements MessageCodec using MessagePack, trading
// readability for smaller batches.
type MsgpackCodec struct{}

func (MsgpackCodec) Name() string { return "msgpack" }

// Encode serializes the value to MessagePack bytes.
func (MsgpackCodec) Encode(value any) ([]byte, error) {
	return msgpack.Marshal(value)
}

// Decode deserializes MessagePack bytes to a Go value.
func (MsgpackCodec) Decode(data []byte) (any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var result any
	if err := msgpack.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// DecodeInto deserializes MessagePack bytes into a specific type.
func (MsgpackCodec) DecodeInto(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}

// DefaultCodec is the codec used when none is configured.
var DefaultCodec MessageCodec = JSONCodec{}

// CodecByName returns the codec registered under name.
func CodecByName(name string) (MessageCodec, error) {
	switch name {
	case "", "json":
		return JSONCodec{}, nil
	case "msgpack":
		return MsgpackCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown message codec %q", name)
	}
}
