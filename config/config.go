// Package config loads the portal configuration from the environment and an
// optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// DefaultJWTSecret is only acceptable outside production
	DefaultJWTSecret = "your-secret-key-change-in-production"
	// DefaultAdminEmail is the demo administrator account
	DefaultAdminEmail = "admin@gunung.com"
	// DefaultAdminPassword is only acceptable outside production
	DefaultAdminPassword = "admin123456"

	StoreDriverMemory = "memory"
	StoreDriverSQLite = "sqlite"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// Port the HTTP server listens on
	Port string `mapstructure:"PORT"`
	// Env is the application environment (e.g. "development", "production")
	Env string `mapstructure:"APP_ENV"`
	// APIPrefix is mounted in front of every route; the browser client uses /api
	APIPrefix string `mapstructure:"API_PREFIX"`

	// JWTSecret signs every session token
	JWTSecret string `mapstructure:"JWT_SECRET"`
	// JWTRetiredSecrets is a comma-separated list of previous secrets that are
	// still accepted for verification.
	JWTRetiredSecrets string `mapstructure:"JWT_RETIRED_SECRETS"`
	JWTIssuer         string `mapstructure:"JWT_ISSUER"`
	// TokenTTL is the session lifetime (e.g. "24h")
	TokenTTL string `mapstructure:"TOKEN_TTL"`
	// BcryptCost is the bcrypt work factor (4–31)
	BcryptCost int `mapstructure:"BCRYPT_COST"`

	AdminEmail    string `mapstructure:"ADMIN_EMAIL"`
	AdminPassword string `mapstructure:"ADMIN_PASSWORD"`
	// AdminPasswordHash is a bcrypt digest; when set ADMIN_PASSWORD is ignored
	AdminPasswordHash string `mapstructure:"ADMIN_PASSWORD_HASH"`

	// StoreDriver selects the credential store: memory or sqlite
	StoreDriver string `mapstructure:"STORE_DRIVER"`
	// SQLiteDSN is used by the sqlite driver; the default is in-memory
	SQLiteDSN string `mapstructure:"SQLITE_DSN"`

	CORSAllowOrigins string `mapstructure:"CORS_ALLOW_ORIGINS"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
	// Debug logs decoded request payloads without secrets
	Debug bool `mapstructure:"DEBUG"`
}

// Load reads .env (if present), then builds and validates Config from the
// environment. Env vars override .env.
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit env file path. A missing file is ignored.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("env")
		_ = v.ReadInConfig() // ignore ErrConfigFileNotFound
	}

	v.AutomaticEnv()

	v.SetDefault("PORT", "5000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("API_PREFIX", "/api")
	v.SetDefault("JWT_SECRET", DefaultJWTSecret)
	v.SetDefault("JWT_RETIRED_SECRETS", "")
	v.SetDefault("JWT_ISSUER", "gunung-portal")
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("ADMIN_EMAIL", DefaultAdminEmail)
	v.SetDefault("ADMIN_PASSWORD", DefaultAdminPassword)
	v.SetDefault("ADMIN_PASSWORD_HASH", "")
	v.SetDefault("STORE_DRIVER", StoreDriverMemory)
	v.SetDefault("SQLITE_DSN", "file::memory:?cache=shared")
	v.SetDefault("CORS_ALLOW_ORIGINS", "*")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("DEBUG", false)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks required values and production safety
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("config: PORT must be set")
	}

	if c.JWTSecret == "" {
		return errors.New("config: JWT_SECRET must be set")
	}

	if c.AdminEmail == "" {
		return errors.New("config: ADMIN_EMAIL must be set")
	}

	if c.AdminPassword == "" && c.AdminPasswordHash == "" {
		return errors.New("config: ADMIN_PASSWORD or ADMIN_PASSWORD_HASH must be set")
	}

	if c.BcryptCost == 0 {
		c.BcryptCost = 10
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	switch c.StoreDriver {
	case StoreDriverMemory, StoreDriverSQLite:
	default:
		return errors.New("config: STORE_DRIVER must be memory or sqlite")
	}

	if c.IsProduction() {
		if c.JWTSecret == DefaultJWTSecret {
			return errors.New("config: JWT_SECRET must be changed when APP_ENV=production")
		}
		if c.AdminPasswordHash == "" && c.AdminPassword == DefaultAdminPassword {
			return errors.New("config: ADMIN_PASSWORD must be changed when APP_ENV=production")
		}
	}

	return nil
}

// IsProduction reports whether APP_ENV is production
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// UsesDefaultSecrets reports whether the demo secrets are in effect
func (c *Config) UsesDefaultSecrets() bool {
	return c.JWTSecret == DefaultJWTSecret ||
		(c.AdminPasswordHash == "" && c.AdminPassword == DefaultAdminPassword)
}

// Addr is the listen address
func (c *Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

// Redacted returns a copy safe to print
func (c Config) Redacted() Config {
	const mask = "********"
	if c.JWTSecret != "" {
		c.JWTSecret = mask
	}
	if c.JWTRetiredSecrets != "" {
		c.JWTRetiredSecrets = mask
	}
	if c.AdminPassword != "" {
		c.AdminPassword = mask
	}
	if c.AdminPasswordHash != "" {
		c.AdminPasswordHash = mask
	}
	return c
}

func (c *Config) GetSigningKey() string {
	return c.JWTSecret
}

// GetRetiredSigningKeys splits JWT_RETIRED_SECRETS
func (c *Config) GetRetiredSigningKeys() []string {
	return splitList(c.JWTRetiredSecrets)
}

func (c *Config) GetIssuer() string {
	return c.JWTIssuer
}

// GetTokenTTL parses TokenTTL. Returns 24h if unset or invalid.
func (c *Config) GetTokenTTL() time.Duration {
	d, err := time.ParseDuration(c.TokenTTL)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

func (c *Config) GetPasswordCost() int {
	return c.BcryptCost
}

func (c *Config) GetAdminEmail() string {
	return c.AdminEmail
}

func (c *Config) GetAdminPassword() string {
	return c.AdminPassword
}

func (c *Config) GetAdminPasswordHash() string {
	return c.AdminPasswordHash
}

// GetCORSAllowOrigins returns the comma-separated origins as fiber expects them
func (c *Config) GetCORSAllowOrigins() string {
	origins := splitList(c.CORSAllowOrigins)
	if len(origins) == 0 {
		return "*"
	}
	return strings.Join(origins, ",")
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
