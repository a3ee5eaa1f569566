package unleash

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

var errNotStarted = errors.New("polling has not been started")

// autoPollingPolicy describes a refreshPolicy which polls the latest toggles
// and updates the local cache repeatedly.
type autoPollingPolicy struct {
	*toggleRefresher
	interval    time.Duration
	init        *Async
	initialized uint32
	started     uint32
	onReady     func()

	// ctx is passed to the fetcher and canceled on close.
	ctx    context.Context
	cancel context.CancelFunc
	stop   chan struct{}

	// refreshc carries out-of-band refresh requests to the polling goroutine
	// so that they're serialized with the scheduled polls.
	refreshc chan chan error
}

// autoPollConfig describes the configuration for auto polling.
type autoPollConfig struct {
	// The auto polling interval.
	interval time.Duration
}

// AutoPoll creates an auto polling refresh mode. The toggles are fetched
// as soon as the client is started and then at the given interval.
func AutoPoll(interval time.Duration) RefreshMode {
	return autoPollConfig{interval: interval}
}

// getModeIdentifier returns the mode identifier sent in the unleash-sdk header.
func (config autoPollConfig) getModeIdentifier() string {
	return "a"
}

func (config autoPollConfig) accept(visitor pollingModeVisitor) refreshPolicy {
	return visitor.visitAutoPoll(config)
}

func (config autoPollConfig) validate() error {
	if config.interval <= 0 {
		return fmt.Errorf("auto poll interval must be positive, got %v", config.interval)
	}
	return nil
}

// newAutoPollingPolicy initializes a new autoPollingPolicy.
// Polling doesn't begin until start is called.
func newAutoPollingPolicy(refresher *toggleRefresher, config autoPollConfig, onReady func()) *autoPollingPolicy {
	policy := &autoPollingPolicy{
		toggleRefresher: refresher,
		interval:        config.interval,
		init:            NewAsync(),
		initialized:     no,
		onReady:         onReady,
		stop:            make(chan struct{}),
		refreshc:        make(chan chan error),
	}
	policy.ctx, policy.cancel = context.WithCancel(context.Background())
	return policy
}

func (policy *autoPollingPolicy) start() {
	if policy.isClosed() || !atomic.CompareAndSwapUint32(&policy.started, no, yes) {
		return
	}
	policy.logger.Debugf("auto polling started with %v interval", policy.interval)
	go policy.run()
}

// run is the polling goroutine. The first poll happens immediately; the
// ticker keeps a fixed rate, so a slow poll is followed by at most one
// catch-up poll.
func (policy *autoPollingPolicy) run() {
	ticker := time.NewTicker(policy.interval)
	defer ticker.Stop()
	policy.tick()
	for {
		select {
		case <-policy.stop:
			policy.logger.Debugf("auto polling stopped")
			return
		case <-ticker.C:
			policy.tick()
		case done := <-policy.refreshc:
			done <- policy.poll()
		}
	}
}

// tick runs one scheduled poll. Failures are reported and never stop
// the polling; the first tick initializes the policy whatever its outcome.
func (policy *autoPollingPolicy) tick() {
	if policy.isClosed() {
		return
	}
	if err := policy.poll(); err != nil && !policy.isClosed() {
		policy.reportError(err)
	}
	policy.completeInit()
}

func (policy *autoPollingPolicy) poll() error {
	if policy.isClosed() {
		return ErrClientClosed
	}
	policy.logger.Debugf("polling the latest toggles")
	_, err := policy.fetchAndUpdate(policy.ctx)
	return err
}

func (policy *autoPollingPolicy) completeInit() {
	if atomic.CompareAndSwapUint32(&policy.initialized, no, yes) {
		policy.init.Complete()
		if policy.onReady != nil {
			policy.onReady()
		}
	}
}

// getTogglesAsync reads the cached toggles, waiting for the first poll if needed.
func (policy *autoPollingPolicy) getTogglesAsync() *AsyncResult {
	if policy.init.IsCompleted() {
		return AsCompletedAsyncResult(policy.cache.Read())
	}
	return policy.init.Apply(func() ToggleSet {
		return policy.cache.Read()
	})
}

func (policy *autoPollingPolicy) ready() <-chan struct{} {
	return policy.init.Done()
}

func (policy *autoPollingPolicy) refresh(ctx context.Context) error {
	if policy.isClosed() {
		return ErrClientClosed
	}
	if atomic.LoadUint32(&policy.started) == no {
		return errNotStarted
	}
	done := make(chan error, 1)
	select {
	case policy.refreshc <- done:
	case <-policy.stop:
		return ErrClientClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// close stops the polling. A poll that is already running is not waited
// for; its fetch context is canceled and it makes no further changes.
// Anyone still waiting for initialization is released, but onReady is
// only called by a completed poll.
func (policy *autoPollingPolicy) close() {
	if policy.markClosed() {
		close(policy.stop)
		policy.cancel()
		if atomic.CompareAndSwapUint32(&policy.initialized, no, yes) {
			policy.init.Complete()
		}
	}
}
