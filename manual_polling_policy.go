package unleash

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// manualPollingPolicy describes a refreshPolicy which fetches the latest
// toggles only when refresh is called. It is initialized from the start.
type manualPollingPolicy struct {
	*toggleRefresher
	init    *Async
	started uint32
	onReady func()

	ctx    context.Context
	cancel context.CancelFunc
	group  singleflight.Group
}

// manualPollConfig describes the configuration for manual polling.
type manualPollConfig struct{}

// ManualPoll creates a manual refresh mode. The toggles are only fetched
// when Client.Refresh is called.
func ManualPoll() RefreshMode {
	return manualPollConfig{}
}

// getModeIdentifier returns the mode identifier sent in the unleash-sdk header.
func (config manualPollConfig) getModeIdentifier() string {
	return "m"
}

func (config manualPollConfig) accept(visitor pollingModeVisitor) refreshPolicy {
	return visitor.visitManualPoll(config)
}

func (config manualPollConfig) validate() error {
	return nil
}

// newManualPollingPolicy initializes a new manualPollingPolicy.
func newManualPollingPolicy(refresher *toggleRefresher, onReady func()) *manualPollingPolicy {
	policy := &manualPollingPolicy{
		toggleRefresher: refresher,
		init:            AsCompletedAsync(),
		onReady:         onReady,
	}
	policy.ctx, policy.cancel = context.WithCancel(context.Background())
	return policy
}

func (policy *manualPollingPolicy) start() {
	if atomic.CompareAndSwapUint32(&policy.started, no, yes) && policy.onReady != nil {
		policy.onReady()
	}
}

// getTogglesAsync reads the cached toggles.
func (policy *manualPollingPolicy) getTogglesAsync() *AsyncResult {
	return AsCompletedAsyncResult(policy.cache.Read())
}

func (policy *manualPollingPolicy) ready() <-chan struct{} {
	return policy.init.Done()
}

// refresh fetches the latest toggles. Concurrent calls share a single fetch.
func (policy *manualPollingPolicy) refresh(ctx context.Context) error {
	if policy.isClosed() {
		return ErrClientClosed
	}
	resultc := policy.group.DoChan("refresh", func() (interface{}, error) {
		policy.logger.Debugf("refreshing the latest toggles")
		return policy.fetchAndUpdate(policy.ctx)
	})
	select {
	case result := <-resultc:
		return result.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (policy *manualPollingPolicy) close() {
	if policy.markClosed() {
		policy.cancel()
	}
}
