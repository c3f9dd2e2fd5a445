package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "PROGKEEP"

// envOverrides lists the settings that can be overridden from the
// environment, e.g. PROGKEEP_DOWNLOAD_DIR.
type envOverrides struct {
	DownloadDir   string `envconfig:"DOWNLOAD_DIR"`
	UserAgent     string `envconfig:"USER_AGENT"`
	ProxyURL      string `envconfig:"PROXY_URL"`
	RateLimit     *int64 `envconfig:"RATE_LIMIT"`
	SkipTLSVerify *bool  `envconfig:"SKIP_TLS_VERIFY"`
}

// ApplyEnvOverrides overlays PROGKEEP_* environment variables onto s.
func ApplyEnvOverrides(s *Settings) error {
	var o envOverrides
	if err := envconfig.Process(envPrefix, &o); err != nil {
		return fmt.Errorf("parsing environment variables: %w", err)
	}

	if o.DownloadDir != "" {
		s.General.DefaultDownloadDir = o.DownloadDir
	}
	if o.UserAgent != "" {
		s.Connections.UserAgent = o.UserAgent
	}
	if o.ProxyURL != "" {
		s.Connections.ProxyURL = o.ProxyURL
	}
	if o.RateLimit != nil {
		s.Connections.RateLimit = *o.RateLimit
	}
	if o.SkipTLSVerify != nil {
		s.Connections.SkipTLSVerification = *o.SkipTLSVerify
	}
	return nil
}
