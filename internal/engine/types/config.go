package types

import (
	"time"
)

// Size constants
const (
	KB = 1024
	MB = 1024 * KB
	GB = 1024 * MB

	// IncompleteSuffix is appended to files while downloading
	IncompleteSuffix = ".part"
)

const (
	WorkerBuffer = 512 * KB

	// Placeholder name when neither headers nor URL yield a filename
	FallbackFilename = "download.bin"
)

// HTTP Client Tuning
const (
	DefaultTLSHandshakeTimeout   = 10 * time.Second
	DefaultResponseHeaderTimeout = 30 * time.Second
	DialTimeout                  = 10 * time.Second
	KeepAliveDuration            = 30 * time.Second
	MaxRedirects                 = 10
)

// Channel buffer sizes
const (
	EventChannelBuffer = 100
)

// RuntimeConfig holds dynamic settings that can override defaults
type RuntimeConfig struct {
	UserAgent           string
	ProxyURL            string
	SkipTLSVerification bool
	RateLimit           int64 // bytes per second, 0 = unlimited
	WorkerBufferSize    int
}

// GetUserAgent returns the configured user agent or the default
func (r *RuntimeConfig) GetUserAgent() string {
	if r == nil || r.UserAgent == "" {
		return "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}
	return r.UserAgent
}

// GetWorkerBufferSize returns configured value or default
func (r *RuntimeConfig) GetWorkerBufferSize() int {
	if r == nil || r.WorkerBufferSize <= 0 {
		return WorkerBuffer
	}
	return r.WorkerBufferSize
}

// GetRateLimit returns the configured limit, 0 meaning unlimited
func (r *RuntimeConfig) GetRateLimit() int64 {
	if r == nil || r.RateLimit < 0 {
		return 0
	}
	return r.RateLimit
}
