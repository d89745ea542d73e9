// Package testutil provides testing utilities for the domains client.
package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock operation response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// RecordedRequest is one request received by the mock service.
type RecordedRequest struct {
	Operation string
	Body      map[string]any
	Header    http.Header
}

// Marker returns the request's Marker field, "" when absent.
func (r RecordedRequest) Marker() string {
	s, _ := r.Body["Marker"].(string)
	return s
}

// MaxItems returns the request's MaxItems field, -1 when absent.
func (r RecordedRequest) MaxItems() int {
	n, ok := r.Body["MaxItems"].(float64)
	if !ok {
		return -1
	}
	return int(n)
}

// MockService is a configurable mock domains service for testing.
type MockService struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc

	requests []RecordedRequest
}

// NewMockService creates a new mock service.
func NewMockService() *MockService {
	mock := &MockService{
		handlers: make(map[string]http.HandlerFunc),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		operation := strings.TrimPrefix(r.Header.Get("X-Service-Target"), "DomainsService.")

		raw, _ := io.ReadAll(r.Body)
		body := map[string]any{}
		_ = json.Unmarshal(raw, &body)

		mock.mu.Lock()
		mock.requests = append(mock.requests, RecordedRequest{
			Operation: operation,
			Body:      body,
			Header:    r.Header.Clone(),
		})
		handler, exists := mock.handlers[operation]
		mock.mu.Unlock()

		// Handlers may read the body again.
		r.Body = io.NopCloser(strings.NewReader(string(raw)))

		if exists {
			handler(w, r)
			return
		}

		writeFault(w, http.StatusBadRequest, "UnknownOperation", fmt.Sprintf("operation %q is not mocked", operation))
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockService) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockService) Close() {
	m.server.Close()
}

// Reset clears recorded requests.
func (m *MockService) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
}

// SetHandler sets a custom handler for an operation.
func (m *MockService) SetHandler(operation string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[operation] = handler
}

// SetResponse configures a fixed response for an operation.
func (m *MockService) SetResponse(operation string, resp MockResponse) {
	m.SetHandler(operation, func(w http.ResponseWriter, r *http.Request) {
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

// SetSequence answers successive calls of an operation with resps in order,
// repeating the last one when exhausted.
func (m *MockService) SetSequence(operation string, resps ...MockResponse) {
	var mu sync.Mutex
	call := 0
	m.SetHandler(operation, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		resp := resps[min(call, len(resps)-1)]
		call++
		mu.Unlock()

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockService) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.requests)
}

// GetRequests returns the recorded requests of an operation ("" for all).
func (m *MockService) GetRequests(operation string) []RecordedRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []RecordedRequest
	for _, req := range m.requests {
		if operation == "" || req.Operation == operation {
			out = append(out, req)
		}
	}
	return out
}

// SetPagedList serves items for a list operation the way the real service
// does: MaxItems (capped at maxPageSize) items from the offset encoded in
// Marker, and a NextPageMarker while items remain.
func (m *MockService) SetPagedList(operation, itemsKey string, items []any, maxPageSize int) {
	m.SetHandler(operation, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Marker   *string `json:"Marker"`
			MaxItems *int    `json:"MaxItems"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeFault(w, http.StatusBadRequest, "InvalidInput", "malformed request body")
			return
		}

		offset := 0
		if req.Marker != nil && *req.Marker != "" {
			n, err := strconv.Atoi(strings.TrimPrefix(*req.Marker, "offset-"))
			if err != nil || n < 0 || n > len(items) {
				writeFault(w, http.StatusBadRequest, "InvalidInput", "invalid marker")
				return
			}
			offset = n
		}

		size := maxPageSize
		if req.MaxItems != nil && *req.MaxItems < size {
			size = *req.MaxItems
		}
		if size < 0 {
			writeFault(w, http.StatusBadRequest, "InvalidInput", "MaxItems must be >= 0")
			return
		}

		end := min(offset+size, len(items))
		page := map[string]any{itemsKey: items[offset:end]}
		if end < len(items) {
			page["NextPageMarker"] = fmt.Sprintf("offset-%d", end)
		}

		WriteJSON(w, http.StatusOK, page)
	})
}

// WriteJSON writes v as a service response.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/x-amz-json-1.1")
	w.Header().Set("X-RateLimit-Remaining", "100")
	w.Header().Set("X-RateLimit-Reset", "60")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeFault(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, map[string]string{
		"__type":  code,
		"message": message,
	})
}

// NewHealthyResponse creates a standard 200 OK response.
func NewHealthyResponse(data string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       data,
		Headers: map[string]string{
			"X-RateLimit-Remaining": "100",
			"X-RateLimit-Reset":     "60",
			"X-Request-Id":          "req-ok",
			"Content-Type":          "application/x-amz-json-1.1",
		},
	}
}

// NewFaultResponse creates an error response with a service fault body.
func NewFaultResponse(status int, code, message string) MockResponse {
	return MockResponse{
		StatusCode: status,
		Body:       fmt.Sprintf(`{"__type": %q, "message": %q}`, code, message),
		Headers: map[string]string{
			"X-RateLimit-Remaining": "95",
			"X-RateLimit-Reset":     "60",
			"X-Request-Id":          "req-fault",
			"Content-Type":          "application/x-amz-json-1.1",
		},
	}
}

// NewThrottledResponse creates a 429 Too Many Requests response.
func NewThrottledResponse() MockResponse {
	resp := NewFaultResponse(http.StatusTooManyRequests, "ThrottlingException", "Rate exceeded")
	resp.Headers["X-RateLimit-Remaining"] = "10"
	resp.Headers["X-RateLimit-Reset"] = "30"
	return resp
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return NewFaultResponse(http.StatusInternalServerError, "InternalFailure", "Internal server error")
}
