package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Security SecurityConfig
	Features FeaturesConfig
}

type AppConfig struct {
	Port     string
	Env      string
	LogLevel string
}

type DBConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	Name           string
	SSLMode        string
	MigrateOnStart bool
}

// DSN returns the key/value connection string used by gorm's postgres driver.
func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode,
	)
}

// URL returns the postgres:// form used by golang-migrate.
func (c DBConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

type SecurityConfig struct {
	AllowedOrigins  []string
	LoginRateLimit  int
	LoginRateWindow time.Duration
	// TrustedProxyHops is the number of reverse proxies in front of the
	// server. Zero ignores X-Forwarded-For.
	TrustedProxyHops int
}

// FeaturesConfig holds flag names to switch on or off relative to the defaults.
type FeaturesConfig struct {
	Enabled  []string
	Disabled []string
}

// LoadConfig reads .env and the environment and validates the result for
// serving requests.
func LoadConfig() (*Config, error) {
	cfg, err := LoadConfigFrom(".env")
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigFrom reads path (if it exists) and then the process environment.
// It does not validate, so tools that only need the database can use it.
func LoadConfigFrom(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("LOGIN_RATE_LIMIT", 5)
	v.SetDefault("TRUSTED_PROXY_HOPS", 0)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	accessExpiry, err := time.ParseDuration(v.GetString("JWT_ACCESS_EXPIRY"))
	if err != nil {
		accessExpiry = 15 * time.Minute
	}

	refreshExpiry, err := time.ParseDuration(v.GetString("JWT_REFRESH_EXPIRY"))
	if err != nil {
		refreshExpiry = 7 * 24 * time.Hour
	}

	loginWindow, err := time.ParseDuration(v.GetString("LOGIN_RATE_WINDOW"))
	if err != nil {
		loginWindow = 15 * time.Minute
	}

	config := &Config{
		App: AppConfig{
			Port:     v.GetString("APP_PORT"),
			Env:      v.GetString("APP_ENV"),
			LogLevel: v.GetString("LOG_LEVEL"),
		},
		DB: DBConfig{
			Host:           v.GetString("DB_HOST"),
			Port:           v.GetString("DB_PORT"),
			User:           v.GetString("DB_USER"),
			Password:       v.GetString("DB_PASSWORD"),
			Name:           v.GetString("DB_NAME"),
			SSLMode:        v.GetString("DB_SSLMODE"),
			MigrateOnStart: v.GetBool("DB_MIGRATE_ON_START"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        v.GetString("JWT_SECRET"),
			AccessExpiry:  accessExpiry,
			RefreshExpiry: refreshExpiry,
		},
		Security: SecurityConfig{
			AllowedOrigins:   splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
			LoginRateLimit:   v.GetInt("LOGIN_RATE_LIMIT"),
			LoginRateWindow:  loginWindow,
			TrustedProxyHops: v.GetInt("TRUSTED_PROXY_HOPS"),
		},
		Features: FeaturesConfig{
			Enabled:  splitList(v.GetString("FEATURES_ENABLED")),
			Disabled: splitList(v.GetString("FEATURES_DISABLED")),
		},
	}

	return config, nil
}

// Validate checks the settings the HTTP server cannot run without.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Security.LoginRateLimit < 1 {
		return errors.New("LOGIN_RATE_LIMIT must be positive")
	}
	if c.Security.TrustedProxyHops < 0 {
		return errors.New("TRUSTED_PROXY_HOPS must not be negative")
	}
	return nil
}

// splitList parses a comma separated value, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
