package main

import (
	"context"
	"fmt"
	"log"

	"github.com/go-drift/nativebridge/pkg/bridge"
	"github.com/go-drift/nativebridge/pkg/core"
	"github.com/go-drift/nativebridge/pkg/platform"
	"github.com/go-drift/nativebridge/pkg/wire"
)

// echoNative stands in for the platform: it prints every batch and can
// raise notifications for widgets it created.
type echoNative struct {
	codec   wire.MessageCodec
	adapter *platform.Adapter
	// ids maps the local "id" property to native identifiers.
	ids map[string]string
}

func newEchoNative(codec wire.MessageCodec) *echoNative {
	return &echoNative{codec: codec, ids: make(map[string]string)}
}

func (n *echoNative) attach(a *platform.Adapter) {
	n.adapter = a
}

func (n *echoNative) InvokeMethod(channel, method string, args []byte) ([]byte, error) {
	switch method {
	case platform.MethodVersion:
		return n.codec.Encode(core.ProtocolVersion)
	case platform.MethodFlush:
		var ops []bridge.Operation
		if err := n.codec.DecodeInto(args, &ops); err != nil {
			return nil, err
		}
		for _, op := range ops {
			fmt.Printf("native <- %s\n", op)
		}
		return nil, nil
	}
	return nil, platform.NewChannelError("unimplemented", method)
}

func (n *echoNative) tap(ctx context.Context, name string) {
	id, ok := n.ids[name]
	if !ok {
		log.Printf("no widget named %q", name)
		return
	}
	msg, err := n.codec.Encode(platform.Notification{ID: id, Event: "select"})
	if err != nil {
		log.Printf("encode: %v", err)
		return
	}
	fmt.Printf("native -> select(%s)\n", id)
	if _, err := n.adapter.HandleMethodCall(ctx, platform.MethodNotify, msg); err != nil {
		log.Printf("notify: %v", err)
	}
}
