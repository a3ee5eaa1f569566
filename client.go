// Package unleash contains a Go client for the Unleash proxy and frontend API.
//
// A Client keeps a local copy of the toggles resolved for one user context,
// refreshing it in the background and notifying listeners when it changes.
package unleash

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrClientClosed is returned by Client methods called after Close.
var ErrClientClosed = errors.New("unleash: client is closed")

// Hooks describes the events sent by Client.
type Hooks struct {
	// OnError is called when a poll fails or a listener panics.
	// It is called on the polling goroutine. A panic in OnError is
	// logged and otherwise ignored.
	OnError func(err error)

	// OnReady is called once, when the client has been initialized.
	// With AutoPoll that is after the first poll; closing the client
	// before then releases AwaitReady without calling OnReady.
	OnReady func()
}

// Config describes configuration options for the Client.
type Config struct {
	// URL holds the proxy or frontend API endpoint, for example
	// https://unleash.example.com/api/frontend. It is mandatory
	// unless Fetcher is set.
	URL string

	// ClientKey is sent in the Authorization header. It is mandatory
	// unless Fetcher is set.
	ClientKey string

	// AppName identifies the application to the proxy. It is mandatory
	// unless Fetcher is set.
	AppName string

	// Environment is sent along with the user context.
	Environment string

	// AppVersion is sent in the unleash-app-version header. If set,
	// it must be a semantic version; a missing patch or minor
	// component is tolerated and filled in with zero.
	AppVersion string

	// RefreshMode specifies how the toggles are refreshed.
	// If it's nil, AutoPoll(DefaultPollInterval) is used.
	RefreshMode RefreshMode

	// Listeners are notified, in order, whenever the toggles change.
	Listeners []ToggleListener

	// Context holds the user context sent with every fetch.
	// It can be replaced later with Client.SetContext.
	Context UserContext

	// Cache holds the fetched toggles. If it's nil,
	// NewInMemoryToggleCache() is used.
	Cache ToggleCache

	// Fetcher is used to retrieve the toggles. If it's nil,
	// they are fetched over HTTP from URL.
	Fetcher ToggleFetcher

	// Transport is used as the HTTP transport for requests to the
	// proxy. If it's nil, an HTTP/2 capable transport is used.
	Transport http.RoundTripper

	// HTTPTimeout holds the timeout for HTTP requests made by the
	// client. If it's zero, DefaultHTTPTimeout is used. If it's
	// negative, no timeout is used.
	HTTPTimeout time.Duration

	// Logger is used to log information about polling and issues.
	// If it's nil, DefaultLogger(LogLevel) will be used.
	Logger Logger

	// LogLevel determines the logging verbosity of the default logger.
	// The zero value means LogLevelWarn.
	LogLevel LogLevel

	// Hooks controls the events sent by Client.
	Hooks *Hooks
}

// Client keeps the toggles of an Unleash proxy up to date.
type Client struct {
	logger    *leveledLogger
	cfg       Config
	refresher *toggleRefresher
	policy    refreshPolicy
}

// NewClient returns a new Client for the given configuration. It returns an
// error if the configuration is invalid. The client doesn't fetch anything
// until Start is called.
func NewClient(cfg Config) (*Client, error) {
	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid unleash configuration: %w", err)
	}
	if cfg.RefreshMode == nil {
		cfg.RefreshMode = AutoPoll(DefaultPollInterval)
	}
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = DefaultHTTPTimeout
	}
	if cfg.Cache == nil {
		cfg.Cache = NewInMemoryToggleCache()
	}
	logger := newLeveledLogger(cfg.Logger, cfg.LogLevel)
	if cfg.Fetcher == nil {
		f, err := newHTTPFetcher(cfg, logger)
		if err != nil {
			return nil, err
		}
		cfg.Fetcher = f
	}
	refresher := newToggleRefresher(cfg.Fetcher, cfg.Cache, logger, cfg.Hooks, cfg.Listeners, cfg.Context)
	return &Client{
		logger:    logger,
		cfg:       cfg,
		refresher: refresher,
		policy:    cfg.RefreshMode.accept(newRefreshPolicyFactory(refresher, cfg.Hooks)),
	}, nil
}

// Start begins refreshing the toggles. With AutoPoll the first fetch
// happens immediately. Calling Start again has no effect.
func (client *Client) Start() error {
	if client.refresher.isClosed() {
		return ErrClientClosed
	}
	client.policy.start()
	return nil
}

// AwaitReady returns the cached toggles once the client is initialized.
// With AutoPoll that is when the first poll has finished, whether or not
// it succeeded, so the result may be empty. With ManualPoll the client
// is initialized from the start.
func (client *Client) AwaitReady() *AsyncResult {
	return client.policy.getTogglesAsync()
}

// Ready returns a channel that's closed when the client is initialized.
func (client *Client) Ready() <-chan struct{} {
	return client.policy.ready()
}

// AddListener registers a listener that's notified of every subsequent
// toggle change. Listeners added after Close are ignored.
func (client *Client) AddListener(l ToggleListener) {
	client.refresher.listeners.add(l)
}

// AddListenerFunc is like AddListener for a plain function.
func (client *Client) AddListenerFunc(f func()) {
	if f == nil {
		return
	}
	client.AddListener(ListenerFunc(f))
}

// SetContext replaces the user context sent with subsequent fetches.
func (client *Client) SetContext(user UserContext) {
	client.refresher.setUserContext(user)
}

// Context returns the user context sent with fetches.
func (client *Client) Context() UserContext {
	return client.refresher.userContext().clone()
}

// Refresh fetches the latest toggles without waiting for the next poll.
// If ctx is done before the fetch completes, Refresh returns but the
// fetch carries on.
func (client *Client) Refresh(ctx context.Context) error {
	return client.policy.refresh(ctx)
}

// Toggles returns the cached toggles without waiting.
func (client *Client) Toggles() ToggleSet {
	return client.cfg.Cache.Read()
}

// IsEnabled reports whether the named toggle is enabled in the cached toggles.
func (client *Client) IsEnabled(name string) bool {
	return client.Toggles().IsEnabled(name)
}

// GetVariant returns the variant of the named toggle in the cached toggles.
func (client *Client) GetVariant(name string) Variant {
	return client.Toggles().Variant(name)
}

// Close stops refreshing and drops all listeners. It is safe to call
// more than once, and from inside a listener.
func (client *Client) Close() {
	client.policy.close()
	client.refresher.listeners.clear()
}
