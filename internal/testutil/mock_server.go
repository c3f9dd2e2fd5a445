// Package testutil provides testing utilities for progkeep.
package testutil

import (
	"crypto/rand"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"
)

// MockServer is a configurable HTTP file server for fetcher tests.
type MockServer struct {
	Server *httptest.Server

	// Configuration
	FileSize       int64         // Size of the served file
	ContentType    string        // Content-Type header value
	Filename       string        // Filename in Content-Disposition header ("" = no header)
	Data           []byte        // Explicit body; overrides FileSize/RandomData
	RandomData     bool          // If true, serve random data; otherwise serve zeros
	Latency        time.Duration // Artificial latency per request
	ByteLatency    time.Duration // Latency per 32KB chunk
	FailAfterBytes int64         // Abort the response after this many bytes (0 = no fail)
	StatusCode     int           // Status to answer with instead of 200

	// Tracking
	RequestCount atomic.Int64
	BytesServed  atomic.Int64
	lastUA       atomic.Value

	data          []byte
	CustomHandler http.HandlerFunc
}

// MockServerOption is a function that configures a MockServer.
type MockServerOption func(*MockServer)

// WithHandler sets a custom request handler.
func WithHandler(h http.HandlerFunc) MockServerOption {
	return func(m *MockServer) {
		m.CustomHandler = h
	}
}

// WithFileSize sets the file size to serve.
func WithFileSize(size int64) MockServerOption {
	return func(m *MockServer) {
		m.FileSize = size
	}
}

// WithContentType sets the Content-Type header.
func WithContentType(ct string) MockServerOption {
	return func(m *MockServer) {
		m.ContentType = ct
	}
}

// WithFilename sets the filename in Content-Disposition header.
func WithFilename(name string) MockServerOption {
	return func(m *MockServer) {
		m.Filename = name
	}
}

// WithData serves exactly data.
func WithData(data []byte) MockServerOption {
	return func(m *MockServer) {
		m.Data = data
	}
}

// WithRandomData enables serving random bytes instead of zeros.
func WithRandomData(random bool) MockServerOption {
	return func(m *MockServer) {
		m.RandomData = random
	}
}

// WithLatency adds artificial latency per request.
func WithLatency(d time.Duration) MockServerOption {
	return func(m *MockServer) {
		m.Latency = d
	}
}

// WithByteLatency adds artificial latency per chunk served.
func WithByteLatency(d time.Duration) MockServerOption {
	return func(m *MockServer) {
		m.ByteLatency = d
	}
}

// WithFailAfterBytes causes the response to be cut after serving N bytes.
func WithFailAfterBytes(n int64) MockServerOption {
	return func(m *MockServer) {
		m.FailAfterBytes = n
	}
}

// WithStatusCode makes every request answer with code and no body.
func WithStatusCode(code int) MockServerOption {
	return func(m *MockServer) {
		m.StatusCode = code
	}
}

func newMockServer(opts ...MockServerOption) *MockServer {
	m := &MockServer{
		FileSize:    1024 * 1024, // 1MB default
		ContentType: "application/octet-stream",
		Filename:    "testfile.bin",
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.Data != nil {
		m.data = m.Data
		m.FileSize = int64(len(m.Data))
		return m
	}

	m.data = make([]byte, m.FileSize)
	if m.RandomData {
		_, _ = rand.Read(m.data)
	}
	return m
}

// NewMockServer creates a new mock HTTP server with the given options.
func NewMockServer(opts ...MockServerOption) *MockServer {
	m := newMockServer(opts...)
	m.Server = NewHTTPServer(http.HandlerFunc(m.handleRequest))
	return m
}

// NewMockServerT creates a new mock HTTP server and skips the test if binding fails.
func NewMockServerT(t *testing.T, opts ...MockServerOption) *MockServer {
	t.Helper()
	m := newMockServer(opts...)
	m.Server = NewHTTPServerT(t, http.HandlerFunc(m.handleRequest))
	return m
}

// URL returns the server's URL.
func (m *MockServer) URL() string {
	return m.Server.URL
}

// Content returns the bytes a successful request receives.
func (m *MockServer) Content() []byte {
	return m.data
}

// LastUserAgent returns the User-Agent of the most recent request.
func (m *MockServer) LastUserAgent() string {
	ua, _ := m.lastUA.Load().(string)
	return ua
}

// Close shuts down the mock server.
func (m *MockServer) Close() {
	if m.Server != nil {
		m.Server.Close()
	}
}

// Stats returns a summary of server statistics.
func (m *MockServer) Stats() MockServerStats {
	return MockServerStats{
		TotalRequests: m.RequestCount.Load(),
		BytesServed:   m.BytesServed.Load(),
	}
}

// MockServerStats contains server statistics.
type MockServerStats struct {
	TotalRequests int64
	BytesServed   int64
}

func (m *MockServer) handleRequest(w http.ResponseWriter, r *http.Request) {
	if m.CustomHandler != nil {
		m.CustomHandler(w, r)
		return
	}

	m.RequestCount.Add(1)
	m.lastUA.Store(r.Header.Get("User-Agent"))

	if m.Latency > 0 {
		time.Sleep(m.Latency)
	}

	if m.StatusCode != 0 && m.StatusCode != http.StatusOK {
		http.Error(w, http.StatusText(m.StatusCode), m.StatusCode)
		return
	}

	if m.ContentType != "" {
		w.Header().Set("Content-Type", m.ContentType)
	}
	w.Header().Set("Content-Length", strconv.FormatInt(m.FileSize, 10))
	if m.Filename != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, m.Filename))
	}
	w.WriteHeader(http.StatusOK)

	if r.Method == http.MethodHead {
		return
	}

	var written int64
	chunkSize := int64(32 * 1024)
	for written < m.FileSize {
		if m.FailAfterBytes > 0 && written >= m.FailAfterBytes {
			// Content-Length promised more; the client sees an unexpected EOF.
			return
		}

		end := written + chunkSize
		if end > m.FileSize {
			end = m.FileSize
		}
		if m.FailAfterBytes > 0 && end > m.FailAfterBytes {
			end = m.FailAfterBytes
		}

		n, err := w.Write(m.data[written:end])
		if err != nil {
			return
		}
		written += int64(n)
		m.BytesServed.Add(int64(n))

		if m.ByteLatency > 0 {
			time.Sleep(m.ByteLatency)
		}
	}
}
