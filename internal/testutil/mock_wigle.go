// Package testutil provides testing utilities for the wigle-export pipeline.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockWigle is a configurable mock WiGLE API server for testing.
type MockWigle struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Tracking
	RequestCount int
	LastRequest  *http.Request
}

// NewMockWigle creates a new mock WiGLE server.
func NewMockWigle() *MockWigle {
	mock := &MockWigle{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.LastRequest = r.Clone(r.Context())
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockWigle) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockWigle) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockWigle) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.LastRequest = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockWigle) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockWigle) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SearchPage describes one scripted page for SetSearchScript.
type SearchPage struct {
	// Records are the raw record objects returned on this page.
	Records []map[string]any

	// Cursor is the continuation token returned with this page.
	// Empty omits the field (exhaustion).
	Cursor string

	// Total, when >= 0, is returned as totalResults.
	Total int64
}

// SetSearchScript scripts a search endpoint to walk a fixed page
// sequence: the first request (no searchAfter) serves page 0, and each
// page's cursor selects the next. Unknown cursors return an empty page.
func (m *MockWigle) SetSearchScript(path string, pages []SearchPage) {
	byCursor := make(map[string]int, len(pages))
	for i, p := range pages {
		if i+1 < len(pages) {
			byCursor[p.Cursor] = i + 1
		}
	}

	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		cursor := r.URL.Query().Get("searchAfter")

		idx := 0
		if cursor != "" {
			var ok bool
			idx, ok = byCursor[cursor]
			if !ok {
				writeSearchBody(w, SearchPage{Total: -1})
				return
			}
		}
		writeSearchBody(w, pages[idx])
	})
}

func writeSearchBody(w http.ResponseWriter, page SearchPage) {
	body := map[string]any{
		"success": true,
		"results": page.Records,
	}
	if page.Records == nil {
		body["results"] = []any{}
	}
	if page.Cursor != "" {
		body["searchAfter"] = page.Cursor
	}
	if page.Total >= 0 {
		body["totalResults"] = page.Total
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(body)
}

// SetDetailResponse scripts the detail endpoint to answer per netid.
// Identifiers absent from the map return 404.
func (m *MockWigle) SetDetailResponse(path string, byNetID map[string][]map[string]any) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		netid := r.URL.Query().Get("netid")
		records, ok := byNetID[netid]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"success":false,"message":"not found"}`)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"results": records,
		})
	})
}

// defaultHandler returns an empty successful search body.
func (m *MockWigle) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `{"success":true,"results":[]}`)
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockWigle) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}
