package unleash

import (
	"crypto/md5"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type toggleServer struct {
	srv *httptest.Server
	key string
	t   testing.TB

	mu       sync.Mutex
	resp     *toggleResponse
	requests []*http.Request
}

type toggleResponse struct {
	status int
	body   string
	sleep  time.Duration
}

func newToggleServer(t testing.TB) *toggleServer {
	srv := &toggleServer{
		t:   t,
		key: "*:development.secret",
	}
	srv.srv = httptest.NewServer(srv)
	t.Cleanup(srv.srv.Close)
	return srv
}

// config returns a configuration suitable for creating
// a client that talks to srv.
func (srv *toggleServer) config() Config {
	return Config{
		URL:       srv.srv.URL + "/api/frontend",
		ClientKey: srv.key,
		AppName:   "test-app",
		Logger:    newTestLogger(srv.t, LogLevelDebug),
	}
}

// setResponse sets the response that will be returned from the server.
func (srv *toggleServer) setResponse(response toggleResponse) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	srv.resp = &response
}

// allRequests returns all the requests that have been served.
func (srv *toggleServer) allRequests() []*http.Request {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	return append([]*http.Request(nil), srv.requests...)
}

func (srv *toggleServer) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if req.URL.Path != "/api/frontend" {
		srv.t.Errorf("unexpected HTTP call: %s %s", req.Method, req.URL)
		http.NotFound(w, req)
		return
	}
	if req.Method != "GET" {
		srv.t.Errorf("unexpected HTTP method: %s", req.Method)
		http.Error(w, "only GET is allowed", http.StatusMethodNotAllowed)
		return
	}
	srv.mu.Lock()
	resp0 := srv.resp
	srv.requests = append(srv.requests, req.Clone(req.Context()))
	srv.mu.Unlock()
	if resp0 == nil {
		srv.t.Errorf("HTTP call with no response provided")
		http.Error(w, "unexpected call", http.StatusInternalServerError)
		return
	}
	resp := *resp0
	time.Sleep(resp.sleep)
	if resp.status == 0 {
		w.Header().Set("ETag", etagOf(resp.body))
		if req.Header.Get("If-None-Match") == etagOf(resp.body) {
			resp.status = http.StatusNotModified
			resp.body = ""
		} else {
			resp.status = http.StatusOK
		}
	}
	w.WriteHeader(resp.status)
	w.Write([]byte(resp.body))
}

func etagOf(content string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(content)))
}

// testLogger implements the Logger interface by logging to the test.T
// instance. Output from goroutines that outlive the test is dropped.
type testLogger struct {
	t     testing.TB
	level LogLevel

	mu   *sync.Mutex
	done *bool
}

func newTestLogger(t testing.TB, level LogLevel) Logger {
	log := &testLogger{
		t:     t,
		level: level,
		mu:    new(sync.Mutex),
		done:  new(bool),
	}
	t.Cleanup(func() {
		log.mu.Lock()
		defer log.mu.Unlock()
		*log.done = true
	})
	return log
}

func (log testLogger) GetLevel() LogLevel {
	return log.level
}

func (log testLogger) Debugf(format string, args ...interface{}) {
	log.logf("DEBUG", format, args...)
}

func (log testLogger) Infof(format string, args ...interface{}) {
	log.logf("INFO", format, args...)
}

func (log testLogger) Warnf(format string, args ...interface{}) {
	log.logf("WARN", format, args...)
}

func (log testLogger) Errorf(format string, args ...interface{}) {
	log.logf("ERROR", format, args...)
}

func (log testLogger) logf(level string, format string, args ...interface{}) {
	log.mu.Lock()
	defer log.mu.Unlock()
	if *log.done {
		return
	}
	log.t.Logf("%s: %s", level, fmt.Sprintf(format, args...))
}
