// Package unleashtest provides an HTTP handler that
// can be used to test Unleash proxy scenarios in tests.
package unleashtest

import (
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"

	"github.com/Unleash/unleash-proxy-client-go/internal/wiretoggles"
)

// Handler is an http.Handler that serves up toggles in the way the
// Unleash proxy does. The zero value is OK to use and knows no client
// keys. Use SetToggles to add or update the set of toggles served.
type Handler struct {
	mu       sync.Mutex
	contents map[string][]byte
	requests int
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if req.Method != "GET" {
		http.Error(w, "only GET is allowed", http.StatusMethodNotAllowed)
		return
	}
	h.mu.Lock()
	h.requests++
	content := h.contents[req.Header.Get("Authorization")]
	h.mu.Unlock()
	if content == nil {
		http.Error(w, "unknown client key", http.StatusUnauthorized)
		return
	}
	etag := etagOf(content)
	w.Header().Set("ETag", etag)
	if req.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(content)
}

// Requests returns the number of requests served so far.
func (h *Handler) Requests() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.requests
}

// SetToggles sets or updates the toggles served by the handler for the
// given client key. It can be called concurrently with other Handler methods.
//
// Use RandomClientKey to create a new client key.
func (h *Handler) SetToggles(clientKey string, toggles map[string]*Toggle) error {
	if clientKey == "" {
		return fmt.Errorf("empty client key passed to unleashtest.Handler.SetToggles")
	}
	data, err := makeContent(toggles)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.contents == nil {
		h.contents = make(map[string][]byte)
	}
	h.contents[clientKey] = data
	return nil
}

func makeContent(toggles map[string]*Toggle) ([]byte, error) {
	names := make([]string, 0, len(toggles))
	for name := range toggles {
		names = append(names, name)
	}
	sort.Strings(names)
	root := &wiretoggles.Response{
		Toggles: make([]wiretoggles.Toggle, 0, len(toggles)),
	}
	for _, name := range names {
		if toggles[name] == nil {
			return nil, fmt.Errorf("nil toggle %q", name)
		}
		e, err := toggles[name].entry(name)
		if err != nil {
			return nil, fmt.Errorf("invalid toggle %q: %v", name, err)
		}
		root.Toggles = append(root.Toggles, e)
	}
	data, err := json.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("cannot marshal toggles: %v", err)
	}
	return data, nil
}

// RandomClientKey returns a new randomly generated client key
// suitable for passing to SetToggles.
func RandomClientKey() string {
	var k [16]byte
	if _, err := rand.Read(k[:]); err != nil {
		panic(err)
	}
	return "*:development." + hex.EncodeToString(k[:])
}

func etagOf(content []byte) string {
	return fmt.Sprintf("%q", fmt.Sprintf("%x", md5.Sum(content)))
}
