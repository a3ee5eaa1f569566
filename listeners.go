package unleash

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// ToggleListener is notified whenever the cached toggle set changes.
//
// OnTogglesUpdated is called on the polling goroutine, so it should
// return quickly. It may register further listeners; those only see
// later changes.
type ToggleListener interface {
	OnTogglesUpdated()
}

// ListenerFunc adapts an ordinary function to a ToggleListener.
type ListenerFunc func()

// OnTogglesUpdated calls f().
func (f ListenerFunc) OnTogglesUpdated() {
	f()
}

// listenerRegistry holds the registered listeners. Broadcasts iterate over
// a copy taken under the lock, so listeners may be added at any time,
// including from inside a listener.
type listenerRegistry struct {
	logger  *leveledLogger
	onError func(err error)

	mu        sync.Mutex
	listeners []ToggleListener
	cleared   uint32
}

func newListenerRegistry(logger *leveledLogger, onError func(err error), initial []ToggleListener) *listenerRegistry {
	r := &listenerRegistry{
		logger:  logger,
		onError: onError,
	}
	for _, l := range initial {
		if l != nil {
			r.listeners = append(r.listeners, l)
		}
	}
	return r
}

func (r *listenerRegistry) add(l ToggleListener) {
	if l == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if atomic.LoadUint32(&r.cleared) == yes {
		r.logger.Debugf("ignoring listener registered after close")
		return
	}
	r.listeners = append(r.listeners, l)
}

func (r *listenerRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.listeners)
}

// broadcast calls every listener registered at the time of the call,
// in registration order. A listener that panics does not prevent the
// remaining ones from being called.
func (r *listenerRegistry) broadcast() {
	r.mu.Lock()
	listeners := make([]ToggleListener, len(r.listeners))
	copy(listeners, r.listeners)
	r.mu.Unlock()

	r.logger.Debugf("notifying %d listener(s) of toggle changes", len(listeners))
	for i, l := range listeners {
		if atomic.LoadUint32(&r.cleared) == yes {
			return
		}
		r.notify(i, l)
	}
}

func (r *listenerRegistry) notify(i int, l ToggleListener) {
	defer func() {
		if p := recover(); p != nil {
			err := fmt.Errorf("toggle listener %d panicked: %v", i, p)
			r.logger.Errorf("%v", err)
			callErrorHook(r.logger, r.onError, err)
		}
	}()
	l.OnTogglesUpdated()
}

// clear drops all listeners. Listeners added afterwards are ignored
// and a broadcast in progress stops before calling the next listener.
func (r *listenerRegistry) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	atomic.StoreUint32(&r.cleared, yes)
	r.listeners = nil
}
