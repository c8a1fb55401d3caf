package core

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/go-drift/nativebridge/pkg/errors"
)

// ErrLoopStarted is returned by Run when the loop already ran.
var ErrLoopStarted = stderrors.New("core: loop already started")

// Loop confines a Runtime to one goroutine. Native adapters call Post or
// PostNotify from any goroutine; Run executes the callbacks one at a time
// in arrival order.
type Loop struct {
	rt *Runtime

	mu      sync.Mutex
	queue   []func()
	closed  bool
	started bool
	wake    chan struct{}
	stopped chan struct{}
}

// NewLoop creates a loop for rt.
func NewLoop(rt *Runtime) *Loop {
	return &Loop{
		rt:      rt,
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
}

// Runtime returns the confined runtime.
func (l *Loop) Runtime() *Runtime {
	return l.rt
}

// Post schedules fn on the loop goroutine. It returns false once the loop
// has stopped or when fn is nil.
func (l *Loop) Post(fn func()) bool {
	if fn == nil {
		return false
	}
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// PostNotify schedules a native notification.
func (l *Loop) PostNotify(id, event string, payload map[string]any) bool {
	return l.Post(func() {
		l.rt.Notify(id, event, payload)
	})
}

// Do runs fn on the loop goroutine and waits for it to return. A panic in
// fn is reported like any other loop panic and returned as an error. When
// the loop stops before fn runs, Do returns context.Canceled.
func (l *Loop) Do(ctx context.Context, fn func(rt *Runtime) error) error {
	done := make(chan error, 1)
	posted := l.Post(func() {
		defer errors.RecoverWithCallback("core.Loop", func(r any) {
			done <- fmt.Errorf("core: panic in loop callback: %v", r)
		})
		done <- fn(l.rt)
	})
	if !posted {
		return context.Canceled
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.stopped:
		select {
		case err := <-done:
			return err
		default:
			return context.Canceled
		}
	}
}

// Run drains scheduled callbacks until ctx is done. Callbacks still queued
// at that point are dropped. A loop runs at most once; later calls return
// ErrLoopStarted.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.started {
		l.mu.Unlock()
		return ErrLoopStarted
	}
	l.started = true
	l.mu.Unlock()

	defer close(l.stopped)
	for {
		for _, fn := range l.drain() {
			if ctx.Err() != nil {
				break
			}
			l.run(fn)
		}
		select {
		case <-ctx.Done():
			l.mu.Lock()
			l.closed = true
			l.queue = nil
			l.mu.Unlock()
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// Stopped is closed when Run returns.
func (l *Loop) Stopped() <-chan struct{} {
	return l.stopped
}

func (l *Loop) drain() []func() {
	l.mu.Lock()
	callbacks := l.queue
	l.queue = nil
	l.mu.Unlock()
	return callbacks
}

func (l *Loop) run(fn func()) {
	defer errors.Recover("core.Loop")
	fn()
}
