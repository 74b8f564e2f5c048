package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

// Validate checks ranges and formats, reporting every problem at once.
func Validate(cfg *Config) error {
	if cfg.Version == "" {
		return fmt.Errorf("config: version is required")
	}
	var errs []string

	if _, err := ParseLevel(cfg.Log.Level); err != nil {
		errs = append(errs, err.Error())
	}
	if cfg.Server.Addr == "" {
		errs = append(errs, "server.addr is required")
	}
	if u, err := url.Parse(cfg.Catalog.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Sprintf("catalog.url %q must be an absolute http(s) URL", cfg.Catalog.URL))
	}
	positive := []struct {
		key string
		v   int
	}{
		{"catalog.timeout_ms", cfg.Catalog.TimeoutMs},
		{"catalog.breaker_failures", cfg.Catalog.BreakerFailures},
		{"catalog.breaker_timeout_ms", cfg.Catalog.BreakerTimeoutMs},
		{"session.queue_depth", cfg.Session.QueueDepth},
		{"session.event_timeout_ms", cfg.Session.EventTimeoutMs},
		{"session.max_sessions", cfg.Session.MaxSessions},
	}
	for _, p := range positive {
		if p.v <= 0 {
			errs = append(errs, fmt.Sprintf("%s must be > 0, got %d", p.key, p.v))
		}
	}
	if cfg.History.MaxDepth < 0 {
		errs = append(errs, fmt.Sprintf("history.max_depth must be >= 0 (0 = unbounded), got %d", cfg.History.MaxDepth))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// ParseLevel maps log.level to a slog.Level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("log.level %q must be one of debug, info, warn, error", s)
}
