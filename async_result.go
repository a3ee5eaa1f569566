package unleash

import (
	"context"
	"time"
)

// AsyncResult is a future holding a toggle set. It is returned by
// Client.AwaitReady and completes once the client has been initialized.
type AsyncResult struct {
	async  *Async
	result ToggleSet
}

// NewAsyncResult initializes a new pending async result.
func NewAsyncResult() *AsyncResult {
	return &AsyncResult{async: NewAsync()}
}

// AsCompletedAsyncResult creates an already completed async result.
func AsCompletedAsyncResult(result ToggleSet) *AsyncResult {
	asyncResult := NewAsyncResult()
	asyncResult.Complete(result)
	return asyncResult
}

// Complete stores the result and moves the async result into the
// completed state. Only the first call has any effect.
func (asyncResult *AsyncResult) Complete(result ToggleSet) {
	asyncResult.async.completeWith(func() {
		asyncResult.result = result
	})
}

// IsCompleted returns true if the result is available.
func (asyncResult *AsyncResult) IsCompleted() bool {
	return asyncResult.async.IsCompleted()
}

// Done returns a channel that's closed when the result is available.
func (asyncResult *AsyncResult) Done() <-chan struct{} {
	return asyncResult.async.Done()
}

// Accept subscribes a callback that gets the result as argument.
func (asyncResult *AsyncResult) Accept(completion func(result ToggleSet)) *AsyncResult {
	asyncResult.async.Accept(func() {
		completion(asyncResult.result)
	})
	return asyncResult
}

// Get blocks until the result is available and returns it.
func (asyncResult *AsyncResult) Get() ToggleSet {
	asyncResult.async.Wait()
	return asyncResult.result
}

// GetContext is like Get but gives up when the context is done.
func (asyncResult *AsyncResult) GetContext(ctx context.Context) (ToggleSet, error) {
	if err := asyncResult.async.WaitContext(ctx); err != nil {
		return ToggleSet{}, err
	}
	return asyncResult.result, nil
}

// GetOrTimeout blocks until the result is available or until
// the given timeout duration expires.
func (asyncResult *AsyncResult) GetOrTimeout(duration time.Duration) (ToggleSet, error) {
	if err := asyncResult.async.WaitOrTimeout(duration); err != nil {
		return ToggleSet{}, err
	}
	return asyncResult.result, nil
}
