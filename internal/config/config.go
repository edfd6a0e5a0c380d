// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBPath locates the SQLite database file holding the vessel
	// register, signal registry and the three sinks.
	DBPath string `koanf:"db_path"`

	// APIToken is the bearer token expected on /api/v1/telemetry.
	// The service refuses to start without one.
	APIToken string `koanf:"api_token"`

	// MaxBodyBytes caps the telemetry request body size.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`
}

// New creates a Config populated with defaults. APIToken deliberately has
// no default; it must come from the file or the environment.
func New() *Config {
	return &Config{
		LogLevel:     "info",
		Addr:         ":8080",
		DBPath:       "lodestar.db",
		MaxBodyBytes: 1 << 20,
	}
}
