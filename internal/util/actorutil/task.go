package actorutil

import (
	"errors"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/primetalk/goio/io"
)

var ErrNilTaskResult = errors.New("background task returned nil")

// SafeBackgroundTask runs a blocking function (device I/O) and delivers its
// result as a message, so the calling actor never blocks on it.
type SafeBackgroundTask[T any] struct {
	ctx       actor.Context
	fn        func() (*T, error)
	timeout   *time.Duration
	recover   func(error) T
	onSuccess func(T)
}

func NewBackgroundTask[T any](ctx actor.Context, fn func() (*T, error)) *SafeBackgroundTask[T] {
	return &SafeBackgroundTask[T]{
		ctx: ctx,
		fn:  fn,
	}
}

func (t *SafeBackgroundTask[T]) WithTimeout(timeout time.Duration) *SafeBackgroundTask[T] {
	t.timeout = &timeout
	return t
}

func (t *SafeBackgroundTask[T]) Recover(fn func(error) T) *SafeBackgroundTask[T] {
	t.recover = fn
	return t
}

// PipeTo runs the task in its own goroutine and sends the outcome to pid.
// A task that fails without a Recover mapping sends nothing.
func (t *SafeBackgroundTask[T]) PipeTo(pid *actor.PID) {
	root := t.ctx.ActorSystem().Root
	t.onSuccess = func(value T) {
		root.Send(pid, value)
	}
	go t.Run()
}

// Run executes the task synchronously.
func (t *SafeBackgroundTask[T]) Run() {
	bg := io.Map(io.Eval(t.fn), func(a *T) T {
		if a != nil {
			return *a
		}
		panic(ErrNilTaskResult)
	})
	if t.timeout != nil {
		bg = io.WithTimeout[T](*t.timeout)(bg)
	}
	result := io.RunSync(bg)

	value := result.Value
	if result.Error != nil {
		if t.recover == nil {
			return
		}
		value = t.recover(result.Error)
	}
	if t.onSuccess != nil {
		t.onSuccess(value)
	}
}

func MapBackgroundTask[T, T2 any](bgt *SafeBackgroundTask[T], mapFn func(*T) *T2) *SafeBackgroundTask[T2] {
	return &SafeBackgroundTask[T2]{
		ctx: bgt.ctx,
		fn: func() (*T2, error) {
			r, err := bgt.fn()
			if err != nil {
				return nil, err
			}
			return mapFn(r), nil
		},
	}
}
