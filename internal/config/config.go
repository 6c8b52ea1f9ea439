package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`

	// DatabasePath selects the durable ledger. Empty means chat
	// history lives in memory and dies with the process.
	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`

	// HistoryLimit caps how many messages a room join replays.
	HistoryLimit int `mapstructure:"history_limit" yaml:"history_limit"`

	// WSConnPerMinute rate-limits websocket upgrades per client IP.
	// Zero disables the limit.
	WSConnPerMinute int `mapstructure:"ws_conn_per_minute" yaml:"ws_conn_per_minute"`

	JWTSecret   string `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	JWTIssuer   string `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`
	JWTAudience string `mapstructure:"jwt_audience" yaml:"jwt_audience"`

	// AdminKeyHash is the bcrypt hash gating the stats and broadcast
	// lifecycle endpoints. Empty disables those endpoints entirely.
	AdminKeyHash string `mapstructure:"admin_key_hash" yaml:"admin_key_hash"`

	LiveKitAPIKey    string `mapstructure:"livekit_api_key" yaml:"livekit_api_key"`
	LiveKitAPISecret string `mapstructure:"livekit_api_secret" yaml:"livekit_api_secret"`
	LiveKitURL       string `mapstructure:"livekit_url" yaml:"livekit_url"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		HistoryLimit:      100,
		WSConnPerMinute:   60,
		JWTIssuer:         "livecast",
		JWTAudience:       "livecast-clients",
	}
}
