package unleash

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeToggleFetcher returns the same response on every fetch until it's
// changed with setResponse.
type fakeToggleFetcher struct {
	mu            sync.Mutex
	result        FetchResponse
	err           error
	sleepDuration time.Duration
	calls         int
	users         []UserContext
}

func newFakeToggleFetcher() *fakeToggleFetcher {
	return &fakeToggleFetcher{result: FetchResponse{Status: Fetched}}
}

func (fetcher *fakeToggleFetcher) FetchToggles(ctx context.Context, user UserContext) (FetchResponse, error) {
	fetcher.mu.Lock()
	fetcher.calls++
	fetcher.users = append(fetcher.users, user)
	result, err, sleep := fetcher.result, fetcher.err, fetcher.sleepDuration
	fetcher.mu.Unlock()
	if sleep > 0 {
		select {
		case <-time.After(sleep):
		case <-ctx.Done():
			return FetchResponse{Status: Failure}, ctx.Err()
		}
	}
	return result, err
}

func (fetcher *fakeToggleFetcher) setResponse(response FetchResponse) {
	fetcher.mu.Lock()
	defer fetcher.mu.Unlock()
	fetcher.result = response
	fetcher.err = nil
}

func (fetcher *fakeToggleFetcher) setError(err error) {
	fetcher.mu.Lock()
	defer fetcher.mu.Unlock()
	fetcher.err = err
}

func (fetcher *fakeToggleFetcher) setResponseWithDelay(response FetchResponse, delayDuration time.Duration) {
	fetcher.mu.Lock()
	defer fetcher.mu.Unlock()
	fetcher.sleepDuration = delayDuration
	fetcher.result = response
	fetcher.err = nil
}

func (fetcher *fakeToggleFetcher) callCount() int {
	fetcher.mu.Lock()
	defer fetcher.mu.Unlock()
	return fetcher.calls
}

func (fetcher *fakeToggleFetcher) lastUser() UserContext {
	fetcher.mu.Lock()
	defer fetcher.mu.Unlock()
	if len(fetcher.users) == 0 {
		return UserContext{}
	}
	return fetcher.users[len(fetcher.users)-1]
}

// scriptedResponse is one step handed to a scriptedFetcher.
type scriptedResponse struct {
	response FetchResponse
	err      error
	panic    interface{}
}

// scriptedFetcher blocks every fetch until the test hands it a response,
// which makes it possible to step the poller one tick at a time: once
// the fetcher has been entered n+1 times, n ticks have completed.
type scriptedFetcher struct {
	t         testing.TB
	responses chan scriptedResponse

	// steps is only touched by the test goroutine.
	steps int

	mu    sync.Mutex
	calls int
}

func newScriptedFetcher(t testing.TB) *scriptedFetcher {
	return &scriptedFetcher{
		t:         t,
		responses: make(chan scriptedResponse),
	}
}

func (fetcher *scriptedFetcher) FetchToggles(ctx context.Context, user UserContext) (FetchResponse, error) {
	fetcher.mu.Lock()
	fetcher.calls++
	fetcher.mu.Unlock()
	select {
	case r := <-fetcher.responses:
		if r.panic != nil {
			panic(r.panic)
		}
		return r.response, r.err
	case <-ctx.Done():
		return FetchResponse{Status: Failure}, ctx.Err()
	}
}

// step hands over the response for the current tick and waits
// until that tick has completed. Every fetch must be answered by a step.
func (fetcher *scriptedFetcher) step(r scriptedResponse) {
	fetcher.t.Helper()
	select {
	case fetcher.responses <- r:
	case <-time.After(5 * time.Second):
		fetcher.t.Fatalf("timed out waiting for a fetch")
	}
	fetcher.steps++
	fetcher.waitCalls(fetcher.steps + 1)
}

func (fetcher *scriptedFetcher) waitCalls(n int) {
	fetcher.t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for fetcher.callCount() < n {
		if time.Now().After(deadline) {
			fetcher.t.Fatalf("timed out waiting for fetch call %d (got %d)", n, fetcher.callCount())
		}
		time.Sleep(time.Millisecond)
	}
}

func (fetcher *scriptedFetcher) callCount() int {
	fetcher.mu.Lock()
	defer fetcher.mu.Unlock()
	return fetcher.calls
}

func fetched(toggles ...Toggle) scriptedResponse {
	return scriptedResponse{response: FetchResponse{Status: Fetched, Toggles: NewToggleSet(toggles...)}}
}

func failed() scriptedResponse {
	return scriptedResponse{err: fmt.Errorf("connection refused")}
}

func enabled(name string, on bool) Toggle {
	return Toggle{Name: name, Enabled: on}
}

// countingListener counts the notifications it receives.
type countingListener struct {
	mu    sync.Mutex
	count int
}

func (l *countingListener) OnTogglesUpdated() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.count++
}

func (l *countingListener) calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}
