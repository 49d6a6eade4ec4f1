package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	devJWTSecret = "dev_secret"

	maxSearchLimit = 50
)

// ErrWeakSecret is returned by Validate when a production deployment with
// admin auth enabled still signs tokens with the development secret.
var ErrWeakSecret = errors.New("config: JWT_SECRET must be set when admin auth is enabled in production")

// Config is the full runtime configuration of the peer review API.
type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Log        LogConfig
	Results    ResultsConfig
	AdminAuth  AdminAuthConfig
	Submission SubmissionConfig
	Directory  DirectoryConfig
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool { return c.Env == EnvProduction }

// ListenAddr is the address the HTTP server binds to.
func (c *Config) ListenAddr() string { return fmt.Sprintf(":%d", c.Port) }

// Validate rejects combinations that would be unsafe to serve.
func (c *Config) Validate() error {
	if c.IsProduction() && c.AdminAuth.Enabled && c.JWT.Secret == devJWTSecret {
		return ErrWeakSecret
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: invalid PORT %d", c.Port)
	}
	return nil
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

// DSN renders the lib/pq keyword connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (r RedisConfig) Addr() string { return fmt.Sprintf("%s:%d", r.Host, r.Port) }

// JWTConfig configures admin access tokens.
type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// ResultsConfig governs caching of aggregated group results.
type ResultsConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
	WarmWorkers  int
}

// AdminAuthConfig gates the admin routes behind a bearer token.
type AdminAuthConfig struct {
	Enabled bool
}

// SubmissionConfig tunes batch submission checks.
type SubmissionConfig struct {
	EnforceGroupMembership bool
}

// DirectoryConfig tunes the student search endpoint.
type DirectoryConfig struct {
	SearchMinLength int
	SearchLimit     int
}

var defaults = map[string]any{
	"ENV":        EnvDevelopment,
	"PORT":       8080,
	"API_PREFIX": "/api/v1",

	"DB_HOST":           "localhost",
	"DB_PORT":           5432,
	"DB_USER":           "postgres",
	"DB_PASSWORD":       "postgres",
	"DB_NAME":           "peer_review",
	"DB_SSL_MODE":       "disable",
	"DB_MAX_OPEN_CONNS": 10,
	"DB_MAX_IDLE_CONNS": 5,

	"REDIS_HOST":     "localhost",
	"REDIS_PORT":     6379,
	"REDIS_PASSWORD": "",
	"REDIS_DB":       0,

	"JWT_SECRET":     devJWTSecret,
	"JWT_EXPIRATION": "12h",
	"JWT_ISSUER":     "peer-review-api",

	"ALLOWED_ORIGINS": "",
	"LOG_LEVEL":       "info",
	"LOG_FORMAT":      "json",

	"ENABLE_RESULTS_CACHE":     false,
	"RESULTS_CACHE_TTL":        "5m",
	"RESULTS_WARM_WORKERS":     2,
	"ENABLE_ADMIN_AUTH":        false,
	"ENFORCE_GROUP_MEMBERSHIP": true,
	"SEARCH_MIN_LENGTH":        2,
	"SEARCH_LIMIT":             10,
}

// Load reads the environment, optionally seeded from a local .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// an explicit config file that is missing surfaces as *fs.PathError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Env:       v.GetString("ENV"),
		Port:      v.GetInt("PORT"),
		APIPrefix: v.GetString("API_PREFIX"),
		Database: DatabaseConfig{
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetInt("DB_PORT"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			Name:         v.GetString("DB_NAME"),
			SSLMode:      v.GetString("DB_SSL_MODE"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("JWT_SECRET"),
			Expiration: durationOr(v.GetString("JWT_EXPIRATION"), 12*time.Hour),
			Issuer:     v.GetString("JWT_ISSUER"),
		},
		CORS: CORSConfig{AllowedOrigins: csvList(v.GetString("ALLOWED_ORIGINS"))},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Results: ResultsConfig{
			CacheEnabled: v.GetBool("ENABLE_RESULTS_CACHE"),
			CacheTTL:     durationOr(v.GetString("RESULTS_CACHE_TTL"), 5*time.Minute),
			WarmWorkers:  v.GetInt("RESULTS_WARM_WORKERS"),
		},
		AdminAuth:  AdminAuthConfig{Enabled: v.GetBool("ENABLE_ADMIN_AUTH")},
		Submission: SubmissionConfig{EnforceGroupMembership: v.GetBool("ENFORCE_GROUP_MEMBERSHIP")},
		Directory: DirectoryConfig{
			SearchMinLength: positiveOr(v.GetInt("SEARCH_MIN_LENGTH"), 2),
			SearchLimit:     boundedOr(v.GetInt("SEARCH_LIMIT"), maxSearchLimit, 10),
		},
	}
}

func durationOr(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func positiveOr(n, fallback int) int {
	if n <= 0 {
		return fallback
	}
	return n
}

func boundedOr(n, limit, fallback int) int {
	if n <= 0 || n > limit {
		return fallback
	}
	return n
}

func csvList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
