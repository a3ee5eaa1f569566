package unleash

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// refreshPolicy describes the rules by which the cached toggles are kept up to date.
type refreshPolicy interface {
	// start begins refreshing. Calling it more than once has no effect.
	start()
	// getTogglesAsync returns the cached toggles once the policy is initialized.
	getTogglesAsync() *AsyncResult
	// ready returns a channel that's closed when the policy is initialized.
	ready() <-chan struct{}
	// refresh fetches the latest toggles without waiting for the next poll.
	refresh(ctx context.Context) error
	// close shuts down the policy.
	close()
}

// RefreshMode specifies how the toggles are kept up to date.
// Use AutoPoll or ManualPoll to create one.
type RefreshMode interface {
	// getModeIdentifier returns the mode identifier sent in the unleash-sdk header.
	getModeIdentifier() string
	accept(visitor pollingModeVisitor) refreshPolicy
	validate() error
}

// toggleRefresher holds the fetch, compare and update pipeline
// shared by the refresh policies.
type toggleRefresher struct {
	fetcher   ToggleFetcher
	cache     ToggleCache
	listeners *listenerRegistry
	logger    *leveledLogger
	onError   func(err error)
	closed    uint32

	mu   sync.Mutex
	user UserContext
}

func newToggleRefresher(fetcher ToggleFetcher, cache ToggleCache, logger *leveledLogger, hooks *Hooks, listeners []ToggleListener, user UserContext) *toggleRefresher {
	var onError func(err error)
	if hooks != nil {
		onError = hooks.OnError
	}
	return &toggleRefresher{
		fetcher:   fetcher,
		cache:     cache,
		listeners: newListenerRegistry(logger, onError, listeners),
		logger:    logger,
		onError:   onError,
		user:      user.clone(),
	}
}

func (r *toggleRefresher) userContext() UserContext {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.user
}

func (r *toggleRefresher) setUserContext(user UserContext) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.user = user.clone()
}

func (r *toggleRefresher) isClosed() bool {
	return atomic.LoadUint32(&r.closed) == yes
}

// markClosed reports whether this call is the one that closed the refresher.
func (r *toggleRefresher) markClosed() bool {
	return atomic.CompareAndSwapUint32(&r.closed, no, yes)
}

// fetchAndUpdate fetches the latest toggles and, if they differ from the
// cached ones, writes them to the cache and notifies the listeners.
// Nothing is written or broadcast once the refresher is closed.
func (r *toggleRefresher) fetchAndUpdate(ctx context.Context) (changed bool, err error) {
	response, err := r.fetch(ctx)
	if err != nil {
		return false, err
	}
	if response.IsNotModified() {
		r.logger.Debugf("toggle fetch succeeded: not modified")
		return false, nil
	}
	if !response.IsFetched() {
		return false, fmt.Errorf("toggle fetch returned unknown status %d", response.Status)
	}
	if !togglesChanged(r.cache.Read(), response.Toggles) {
		r.logger.Debugf("toggle fetch succeeded: toggles unchanged")
		return false, nil
	}
	if r.isClosed() {
		return false, nil
	}
	r.cache.Write(response.Toggles)
	r.logger.Infof("toggles updated, %d toggle(s) now cached", response.Toggles.Len())
	r.listeners.broadcast()
	return true, nil
}

// fetch calls the fetcher and turns every kind of failure,
// including a panic, into an error.
func (r *toggleRefresher) fetch(ctx context.Context) (_ FetchResponse, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("toggle fetch panicked: %v", p)
		}
	}()
	response, err := r.fetcher.FetchToggles(ctx, r.userContext())
	if err != nil {
		return FetchResponse{}, fmt.Errorf("toggle fetch failed: %w", err)
	}
	if response.IsFailed() {
		return FetchResponse{}, fmt.Errorf("toggle fetch failed with status %v", response.Status)
	}
	return response, nil
}

func (r *toggleRefresher) reportError(err error) {
	r.logger.Warnf("%v", err)
	callErrorHook(r.logger, r.onError, err)
}

// callErrorHook passes err to the OnError hook, if any. A panic in the
// hook is logged and does not reach the polling goroutine.
func callErrorHook(logger *leveledLogger, onError func(err error), err error) {
	if onError == nil {
		return
	}
	defer func() {
		if p := recover(); p != nil {
			logger.Errorf("error hook panicked: %v", p)
		}
	}()
	onError(err)
}
