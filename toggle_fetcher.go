package unleash

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/http2"
)

// ToggleFetcher retrieves the current toggle set from a remote source.
//
// FetchToggles should honour ctx cancellation. Any failure must be
// reported either as an error or as a response with the Failure status.
type ToggleFetcher interface {
	FetchToggles(ctx context.Context, user UserContext) (FetchResponse, error)
}

// FetcherFunc adapts an ordinary function to a ToggleFetcher.
type FetcherFunc func(ctx context.Context, user UserContext) (FetchResponse, error)

// FetchToggles calls f(ctx, user).
func (f FetcherFunc) FetchToggles(ctx context.Context, user UserContext) (FetchResponse, error) {
	return f(ctx, user)
}

// httpFetcher fetches toggles from an Unleash proxy or frontend API endpoint.
type httpFetcher struct {
	url          *url.URL
	clientKey    string
	appName      string
	environment  string
	appVersion   string
	sdk          string
	connectionID string
	client       *http.Client
	logger       *leveledLogger

	mu   sync.Mutex
	etag string
}

func newHTTPFetcher(cfg Config, logger *leveledLogger) (*httpFetcher, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy URL %q: %w", cfg.URL, err)
	}
	transport := cfg.Transport
	if transport == nil {
		t, err := newHTTP2Transport()
		if err != nil {
			return nil, err
		}
		transport = t
	}
	timeout := cfg.HTTPTimeout
	if timeout < 0 {
		timeout = 0
	}
	return &httpFetcher{
		url:          u,
		clientKey:    cfg.ClientKey,
		appName:      cfg.AppName,
		environment:  cfg.Environment,
		appVersion:   cfg.AppVersion,
		sdk:          "unleash-proxy-client-go:" + cfg.RefreshMode.getModeIdentifier() + "-" + version,
		connectionID: uuid.NewString(),
		logger:       logger,
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}, nil
}

// newHTTP2Transport returns a transport that negotiates HTTP/2 and
// pings idle connections so that dead ones are noticed between polls.
func newHTTP2Transport() (*http.Transport, error) {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	h2, err := http2.ConfigureTransports(t)
	if err != nil {
		return nil, fmt.Errorf("cannot configure HTTP/2 transport: %w", err)
	}
	h2.ReadIdleTimeout = 30 * time.Second
	h2.PingTimeout = 15 * time.Second
	return t, nil
}

// FetchToggles fetches the toggles resolved for the given user. The ETag of
// the last successful response is sent along so that an unchanged toggle
// set costs no more than a 304 response.
func (f *httpFetcher) FetchToggles(ctx context.Context, user UserContext) (FetchResponse, error) {
	u := *f.url
	q := u.Query()
	for k, v := range user.queryValues(f.appName, f.environment) {
		q[k] = v
	}
	u.RawQuery = q.Encode()

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return FetchResponse{Status: Failure}, err
	}
	request.Header.Set("Accept", "application/json")
	request.Header.Set("Authorization", f.clientKey)
	request.Header.Set("unleash-appname", f.appName)
	request.Header.Set("unleash-connection-id", f.connectionID)
	request.Header.Set("unleash-sdk", f.sdk)
	if f.appVersion != "" {
		request.Header.Set("unleash-app-version", f.appVersion)
	}
	etag := f.currentETag()
	if etag != "" {
		request.Header.Set("If-None-Match", etag)
	}

	f.logger.Debugf("fetching toggles from %v", f.url)
	response, err := f.client.Do(request)
	if err != nil {
		return FetchResponse{Status: Failure}, fmt.Errorf("toggle fetch request failed: %w", err)
	}
	defer response.Body.Close()

	switch {
	case response.StatusCode == http.StatusNotModified:
		return FetchResponse{Status: NotModified, ETag: etag}, nil
	case response.StatusCode >= 200 && response.StatusCode < 300:
		body, err := io.ReadAll(response.Body)
		if err != nil {
			return FetchResponse{Status: Failure}, fmt.Errorf("toggle fetch read failed: %w", err)
		}
		toggles, err := parseToggles(body)
		if err != nil {
			return FetchResponse{Status: Failure}, fmt.Errorf("toggle fetch returned invalid body: %w", err)
		}
		newETag := response.Header.Get("ETag")
		f.setETag(newETag)
		f.logger.Debugf("toggle fetch succeeded: %d toggle(s) fetched", toggles.Len())
		return FetchResponse{Status: Fetched, Toggles: toggles, ETag: newETag}, nil
	case response.StatusCode == http.StatusUnauthorized || response.StatusCode == http.StatusForbidden:
		return FetchResponse{Status: Failure}, fmt.Errorf("toggle fetch was rejected with %v; double-check the client key", response.Status)
	}
	return FetchResponse{Status: Failure}, fmt.Errorf("received unexpected response %v", response.Status)
}

func (f *httpFetcher) currentETag() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.etag
}

func (f *httpFetcher) setETag(etag string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.etag = etag
}
