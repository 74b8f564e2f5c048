package config

import "time"

// Config is the top-level YAML structure.
type Config struct {
	Version string      `yaml:"version"`
	Log     LogConf     `yaml:"log"`
	Server  ServerConf  `yaml:"server"`
	Catalog CatalogConf `yaml:"catalog"`
	History HistoryConf `yaml:"history"`
	Editor  EditorConf  `yaml:"editor"`
	Session SessionConf `yaml:"session"`
}

// LogConf sets the slog level: debug, info, warn or error.
type LogConf struct {
	Level string `yaml:"level"`
}

// ServerConf configures the HTTP listener.
type ServerConf struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// CatalogConf configures the product catalog source.
type CatalogConf struct {
	URL              string `yaml:"url"`
	TimeoutMs        int    `yaml:"timeout_ms"`
	BreakerFailures  int    `yaml:"breaker_failures"`
	BreakerTimeoutMs int    `yaml:"breaker_timeout_ms"`
}

// HistoryConf bounds the undo stack. MaxDepth 0 means unbounded.
type HistoryConf struct {
	MaxDepth int `yaml:"max_depth"`
}

// EditorConf holds per-session editor defaults.
type EditorConf struct {
	DarkMode       bool `yaml:"dark_mode"`
	AllowSelfLoops bool `yaml:"allow_self_loops"`
}

// SessionConf holds tunable session runtime settings.
type SessionConf struct {
	QueueDepth     int `yaml:"queue_depth"`
	EventTimeoutMs int `yaml:"event_timeout_ms"`
	MaxSessions    int `yaml:"max_sessions"`
}

// Default returns the configuration used when no file is given; a loaded
// file is decoded on top of it so omitted keys keep these values.
func Default() *Config {
	return &Config{
		Version: "1",
		Log:     LogConf{Level: "info"},
		Server: ServerConf{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
		},
		Catalog: CatalogConf{
			URL:              "https://dummyjson.com/products",
			TimeoutMs:        10000,
			BreakerFailures:  3,
			BreakerTimeoutMs: 30000,
		},
		Editor: EditorConf{AllowSelfLoops: true},
		Session: SessionConf{
			QueueDepth:     256,
			EventTimeoutMs: 5000,
			MaxSessions:    1000,
		},
	}
}

func (c CatalogConf) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

func (c CatalogConf) BreakerTimeout() time.Duration {
	return time.Duration(c.BreakerTimeoutMs) * time.Millisecond
}

func (s SessionConf) EventTimeout() time.Duration {
	return time.Duration(s.EventTimeoutMs) * time.Millisecond
}
