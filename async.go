package unleash

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// CancelledError is returned when waiting for an asynchronous operation
// gives up before the operation completes.
type CancelledError struct{}

// Error returns with the error message.
func (c *CancelledError) Error() string {
	return "the wait was cancelled before completion"
}

// Async is a one-shot completion signal. It moves from pending to
// completed exactly once; every waiter observes the same completion.
// Usage:
// async := NewAsync()
// async.Accept(func() {
//     fmt.Print("operation completed")
// })
// go func() { async.Complete() }()
type Async struct {
	state       uint32
	completions []func()
	done        chan struct{}
	mu          sync.Mutex
}

// NewAsync initializes a new pending async object.
func NewAsync() *Async {
	return &Async{state: pending, done: make(chan struct{})}
}

// AsCompletedAsync creates an already completed async object.
func AsCompletedAsync() *Async {
	async := NewAsync()
	async.Complete()
	return async
}

// IsCompleted returns true if the async operation is marked as completed, otherwise false.
func (async *Async) IsCompleted() bool {
	return atomic.LoadUint32(&async.state) == completed
}

// Done returns a channel that's closed when the operation completes.
func (async *Async) Done() <-chan struct{} {
	return async.done
}

// Accept subscribes a callback that's called when the operation
// completes. If the operation has already completed, the callback
// is called immediately on the calling goroutine.
func (async *Async) Accept(completion func()) *Async {
	async.mu.Lock()
	if !async.IsCompleted() {
		async.completions = append(async.completions, completion)
		async.mu.Unlock()
		return async
	}
	async.mu.Unlock()
	completion()
	return async
}

// Apply subscribes a callback that produces a toggle set when the
// operation completes, and returns an AsyncResult that holds it.
func (async *Async) Apply(completion func() ToggleSet) *AsyncResult {
	result := NewAsyncResult()
	async.Accept(func() {
		result.Complete(completion())
	})
	return result
}

// Complete moves the async operation into the completed state and runs
// the subscribed callbacks. Only the first call has any effect.
func (async *Async) Complete() {
	async.completeWith(nil)
}

// completeWith is like Complete but runs publish before any waiter is
// released. It reports whether this call completed the operation.
func (async *Async) completeWith(publish func()) bool {
	async.mu.Lock()
	if !atomic.CompareAndSwapUint32(&async.state, pending, completed) {
		async.mu.Unlock()
		return false
	}
	if publish != nil {
		publish()
	}
	completions := async.completions
	async.completions = nil
	close(async.done)
	async.mu.Unlock()
	for _, comp := range completions {
		comp()
	}
	return true
}

// Wait blocks until the async operation is completed.
func (async *Async) Wait() {
	<-async.done
}

// WaitContext blocks until the async operation is completed or
// the context is done.
func (async *Async) WaitContext(ctx context.Context) error {
	select {
	case <-async.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitOrTimeout blocks until the async operation is completed or until
// the given timeout duration expires.
func (async *Async) WaitOrTimeout(duration time.Duration) error {
	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-timer.C:
		return &CancelledError{}
	case <-async.done:
		return nil
	}
}
