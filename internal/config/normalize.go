// internal/config/normalize.go
package config

import "strings"

const (
	DefaultBaudRate         = 115200
	DefaultTransportTimeout = 100
	DefaultStatusTimeout    = 1000
	DefaultLogLevel         = "info"
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Node.Teaching == "" {
		cfg.Node.Teaching = TeachingSlot
	}

	if cfg.Transport.BaudRate == 0 {
		cfg.Transport.BaudRate = DefaultBaudRate
	}
	if cfg.Transport.TimeoutMs == 0 {
		cfg.Transport.TimeoutMs = DefaultTransportTimeout
	}

	if cfg.Status != nil && cfg.Status.TimeoutMs == 0 {
		cfg.Status.TimeoutMs = DefaultStatusTimeout
	}

	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
}
