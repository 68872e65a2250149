package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Session  SessionConfig  `mapstructure:"session" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// Comma-separated origins allowed by CORS. "*" allows any origin.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	// Seconds to wait for in-flight requests on shutdown.
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	// Backend selects postgres or an in-process store that forgets
	// everything on restart.
	Backend      string `mapstructure:"backend" validate:"required,oneof=postgres memory"`
	URL          string `mapstructure:"url" validate:"required_if=Backend postgres"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gt=0"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret" validate:"required,min=32"`
	BCryptCost                  int    `mapstructure:"bcrypt_cost" validate:"gte=4,lte=31"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes" validate:"gt=0"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"gt=0,gtfield=TokenLifetimeMinutes"`
}

// SessionConfig controls where per-session practice state and anonymous
// ledgers are kept.
type SessionConfig struct {
	Backend    string `mapstructure:"backend" validate:"required,oneof=memory redis"`
	RedisAddr  string `mapstructure:"redis_addr" validate:"required_if=Backend redis"`
	TTLMinutes int    `mapstructure:"ttl_minutes" validate:"gt=0"`
	CookieName string `mapstructure:"cookie_name" validate:"required"`
	// CookieSecure marks the session cookie HTTPS-only.
	CookieSecure bool `mapstructure:"cookie_secure"`
}
