package types

import (
	"testing"

	"github.com/progkeep/progkeep/internal/config"
)

// TestConvertRuntimeConfig_AllFieldsCopied verifies that every field in
// config.RuntimeConfig is correctly mapped to types.RuntimeConfig.
func TestConvertRuntimeConfig_AllFieldsCopied(t *testing.T) {
	input := &config.RuntimeConfig{
		UserAgent:           "TestAgent/1.0",
		ProxyURL:            "http://127.0.0.1:8080",
		SkipTLSVerification: true,
		RateLimit:           64 * KB,
	}

	result := ConvertRuntimeConfig(input)

	if result == nil {
		t.Fatal("ConvertRuntimeConfig returned nil")
	}
	if result.UserAgent != input.UserAgent {
		t.Errorf("UserAgent: got %q, want %q", result.UserAgent, input.UserAgent)
	}
	if result.ProxyURL != input.ProxyURL {
		t.Errorf("ProxyURL: got %q, want %q", result.ProxyURL, input.ProxyURL)
	}
	if result.SkipTLSVerification != input.SkipTLSVerification {
		t.Errorf("SkipTLSVerification: got %v, want %v", result.SkipTLSVerification, input.SkipTLSVerification)
	}
	if result.RateLimit != input.RateLimit {
		t.Errorf("RateLimit: got %d, want %d", result.RateLimit, input.RateLimit)
	}
}

func TestConvertRuntimeConfig_Nil(t *testing.T) {
	result := ConvertRuntimeConfig(nil)
	if result == nil {
		t.Fatal("ConvertRuntimeConfig(nil) should return an empty config")
	}
	if result.GetRateLimit() != 0 {
		t.Errorf("expected unlimited rate, got %d", result.GetRateLimit())
	}
}

func TestRuntimeConfigDefaults(t *testing.T) {
	var rc *RuntimeConfig

	if rc.GetUserAgent() == "" {
		t.Error("nil config should fall back to the default user agent")
	}
	if rc.GetWorkerBufferSize() != WorkerBuffer {
		t.Errorf("GetWorkerBufferSize() = %d, want %d", rc.GetWorkerBufferSize(), WorkerBuffer)
	}

	custom := &RuntimeConfig{UserAgent: "custom", WorkerBufferSize: 1024, RateLimit: -5}
	if custom.GetUserAgent() != "custom" {
		t.Errorf("GetUserAgent() = %q", custom.GetUserAgent())
	}
	if custom.GetWorkerBufferSize() != 1024 {
		t.Errorf("GetWorkerBufferSize() = %d", custom.GetWorkerBufferSize())
	}
	if custom.GetRateLimit() != 0 {
		t.Errorf("negative rate limit should mean unlimited, got %d", custom.GetRateLimit())
	}
}
