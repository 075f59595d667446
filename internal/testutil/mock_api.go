// Package testutil provides a configurable mock artworks API server for tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MockResponse defines the behavior for one scripted response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockAPI is a configurable mock artworks API server. With no customization
// it serves a dataset of numbered artworks through /search pagination and
// batched detail requests, the way the real API does.
type MockAPI struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)
	scripted map[string][]MockResponse

	// TotalItems is the size of the default dataset.
	TotalItems int

	// Tracking
	RequestCount   int
	SearchRequests int
	DetailRequests int
	LastQuery      map[string]string
}

// NewMockAPI creates a mock server with a default dataset of 200 artworks.
func NewMockAPI() *MockAPI {
	mock := &MockAPI{
		handlers:   make(map[string]func(w http.ResponseWriter, r *http.Request)),
		scripted:   make(map[string][]MockResponse),
		TotalItems: 200,
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		switch r.URL.Path {
		case "/search":
			mock.SearchRequests++
		case "/", "":
			if r.URL.Query().Get("ids") != "" {
				mock.DetailRequests++
			}
		}
		mock.LastQuery = flattenQuery(r)

		// Scripted responses take priority and are consumed in order.
		if queue := mock.scripted[r.URL.Path]; len(queue) > 0 {
			resp := queue[0]
			mock.scripted[r.URL.Path] = queue[1:]
			mock.mu.Unlock()
			writeMockResponse(w, resp)
			return
		}

		handler := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if handler != nil {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockAPI) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockAPI) Close() {
	m.server.Close()
}

// Reset clears all tracking counters and scripted responses.
func (m *MockAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.SearchRequests = 0
	m.DetailRequests = 0
	m.LastQuery = nil
	m.scripted = make(map[string][]MockResponse)
}

// SetHandler sets a custom handler for a specific path.
func (m *MockAPI) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// Script queues responses for a path; they are served in order before any
// handler or default behavior kicks in.
func (m *MockAPI) Script(path string, responses ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripted[path] = append(m.scripted[path], responses...)
}

// Counts returns the current request counters.
func (m *MockAPI) Counts() (total, search, detail int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount, m.SearchRequests, m.DetailRequests
}

// defaultHandler serves the numbered default dataset.
func (m *MockAPI) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	switch r.URL.Path {
	case "/search":
		m.serveSearch(w, r)
	default:
		m.serveDetails(w, r)
	}
}

func (m *MockAPI) serveSearch(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	start := (page - 1) * limit
	var hits []map[string]any
	for i := start; i < start+limit && i < m.TotalItems; i++ {
		hits = append(hits, map[string]any{"id": i + 1})
	}
	if hits == nil {
		hits = []map[string]any{}
	}

	_ = json.NewEncoder(w).Encode(map[string]any{"data": hits})
}

func (m *MockAPI) serveDetails(w http.ResponseWriter, r *http.Request) {
	ids := splitCSV(r.URL.Query().Get("ids"))
	var items []map[string]any
	for _, id := range ids {
		items = append(items, map[string]any{
			"id":           id,
			"title":        fmt.Sprintf("Artwork %s", id),
			"artist_title": fmt.Sprintf("Artist %s", id),
			"date_display": "1889",
		})
	}
	if items == nil {
		items = []map[string]any{}
	}

	_ = json.NewEncoder(w).Encode(map[string]any{"data": items})
}

// NewJSONResponse creates a 200 OK response with a JSON body.
func NewJSONResponse(body string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers:    map[string]string{"Content-Type": "application/json; charset=utf-8"},
	}
}

// NewRateLimitResponse creates a 429 response, optionally with Retry-After.
func NewRateLimitResponse(retryAfter string) MockResponse {
	headers := map[string]string{"Content-Type": "application/json; charset=utf-8"}
	if retryAfter != "" {
		headers["Retry-After"] = retryAfter
	}
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"error": "Rate limit exceeded"}`,
		Headers:    headers,
	}
}

// NewUnavailableResponse creates a 503 response.
func NewUnavailableResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusServiceUnavailable,
		Body:       `{"error": "Service unavailable"}`,
		Headers:    map[string]string{"Content-Type": "application/json; charset=utf-8"},
	}
}

// NewServerErrorResponse creates a 500 response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "Internal server error"}`,
		Headers:    map[string]string{"Content-Type": "application/json; charset=utf-8"},
	}
}

func writeMockResponse(w http.ResponseWriter, resp MockResponse) {
	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		_, _ = w.Write([]byte(resp.Body))
	}
}

func flattenQuery(r *http.Request) map[string]string {
	out := make(map[string]string)
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			out[key] = values[0]
		}
	}
	return out
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
