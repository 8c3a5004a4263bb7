package expensecache

import (
	"context"
	"errors"
	"sync/atomic"
)

// ErrDiscarded is returned by Task.Wait after Discard.
var ErrDiscarded = errors.New("task result discarded")

// Task is a handle on an operation running in the background.
type Task[T any] struct {
	done      chan struct{}
	discarded atomic.Bool
	val       T
	err       error
}

// Go runs op in a new goroutine. The operation keeps ctx's values but not
// its cancellation: once started it runs to completion, and its effect on
// the cache is applied even if the caller stops waiting.
func Go[T any](ctx context.Context, op func(context.Context) (T, error)) *Task[T] {
	t := &Task[T]{done: make(chan struct{})}
	runCtx := context.WithoutCancel(ctx)
	go func() {
		defer close(t.done)
		t.val, t.err = op(runCtx)
	}()
	return t
}

// Done is closed when the operation has finished.
func (t *Task[T]) Done() <-chan struct{} { return t.done }

// Wait blocks until the operation finishes or ctx ends. Ending ctx only
// stops the wait.
func (t *Task[T]) Wait(ctx context.Context) (T, error) {
	var zero T
	if t.discarded.Load() {
		return zero, ErrDiscarded
	}
	select {
	case <-t.done:
		if t.discarded.Load() {
			return zero, ErrDiscarded
		}
		return t.val, t.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Discard drops interest in the result. The operation is not cancelled.
func (t *Task[T]) Discard() { t.discarded.Store(true) }
