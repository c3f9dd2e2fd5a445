package types

import "github.com/progkeep/progkeep/internal/config"

// ConvertRuntimeConfig converts the app-level RuntimeConfig to the engine-level RuntimeConfig.
func ConvertRuntimeConfig(rc *config.RuntimeConfig) *RuntimeConfig {
	if rc == nil {
		return &RuntimeConfig{}
	}
	return &RuntimeConfig{
		UserAgent:           rc.UserAgent,
		ProxyURL:            rc.ProxyURL,
		SkipTLSVerification: rc.SkipTLSVerification,
		RateLimit:           rc.RateLimit,
	}
}
