// Package main provides the bridge demo application.
// It runs a scripted native side against the Go runtime and prints the
// traffic in both directions.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/go-drift/nativebridge/pkg/config"
	"github.com/go-drift/nativebridge/pkg/core"
	"github.com/go-drift/nativebridge/pkg/platform"
)

func main() {
	cfg, err := config.Resolve(".")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	rt := cfg.Apply()
	loop := core.NewLoop(rt)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go func() {
		if err := loop.Run(ctx); err != nil && ctx.Err() == nil {
			log.Printf("loop: %v", err)
		}
	}()

	native := newEchoNative(cfg.Codec)
	adapter := platform.NewAdapter(native, loop)
	native.attach(adapter)
	if err := adapter.Start(ctx, map[string]any{"app": cfg.AppName}); err != nil {
		log.Fatalf("start: %v", err)
	}

	if err := loop.Do(ctx, buildButtonsPage(native)); err != nil {
		log.Fatalf("build: %v", err)
	}

	native.tap(ctx, "submit")
	native.tap(ctx, "submit")

	timeout, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := loop.Do(timeout, func(rt *core.Runtime) error { return rt.Close() }); err != nil {
		log.Fatalf("close: %v", err)
	}
}
