package config

import (
	"errors"
	"net/url"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap/zapcore"
)

var (
	ErrMissingToken     = errors.New("TELEGRAM_BOT_TOKEN is required")
	ErrInvalidSearchURL = errors.New("CINE_API_URL must be an absolute http(s) url")
	ErrInvalidTimeout   = errors.New("CINE_API_TIMEOUT_SEC must be positive")
	ErrInvalidRateLimit = errors.New("RATE_LIMIT_PER_MINUTE must be positive")
	ErrInvalidTTL       = errors.New("SESSION_TTL_SEC must be positive")
	ErrInvalidLogLevel  = errors.New("LOG_LEVEL must be one of debug, info, warn, error")
	ErrInvalidLogFormat = errors.New("LOG_FORMAT must be json or console")
)

type Config struct {
	Telegram  TelegramConfig
	Database  DatabaseConfig
	Search    SearchConfig
	Log       LogConfig
	Session   SessionConfig
	RateLimit RateLimitConfig
	Metrics   MetricsConfig
	Tracing   TracingConfig
}

type TelegramConfig struct {
	Token string
}

// DatabaseConfig - пустой URL значит историю в памяти.
type DatabaseConfig struct {
	URL string
}

type SearchConfig struct {
	BaseURL    string
	PromptType string
	Timeout    time.Duration
}

type LogConfig struct {
	Level string
	// Format: json или console. Пусто = console для debug, иначе json.
	Format  string
	Service string
}

type SessionConfig struct {
	TTL time.Duration
}

type RateLimitConfig struct {
	RequestsPerMinute int
}

type MetricsConfig struct {
	Addr string
}

type TracingConfig struct {
	OTLPEndpoint string
}

func Load() (*Config, error) {
	cfg := &Config{
		Telegram: TelegramConfig{
			Token: os.Getenv("TELEGRAM_BOT_TOKEN"),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Search: SearchConfig{
			BaseURL:    getEnvOrDefault("CINE_API_URL", "http://127.0.0.1:5000"),
			PromptType: getEnvOrDefault("CINE_PROMPT_TYPE", "initial"),
			Timeout:    time.Duration(getEnvIntOrDefault("CINE_API_TIMEOUT_SEC", 30)) * time.Second,
		},
		Log: LogConfig{
			Level:   getEnvOrDefault("LOG_LEVEL", "info"),
			Format:  os.Getenv("LOG_FORMAT"),
			Service: "cinebot",
		},
		Session: SessionConfig{
			TTL: time.Duration(getEnvIntOrDefault("SESSION_TTL_SEC", 3600)) * time.Second,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: getEnvIntOrDefault("RATE_LIMIT_PER_MINUTE", 10),
		},
		Metrics: MetricsConfig{
			Addr: getEnvOrDefault("METRICS_ADDR", ":9090"),
		},
		Tracing: TracingConfig{
			OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return ErrMissingToken
	}
	if err := c.Search.Validate(); err != nil {
		return err
	}
	if c.RateLimit.RequestsPerMinute <= 0 {
		return ErrInvalidRateLimit
	}
	if c.Session.TTL <= 0 {
		return ErrInvalidTTL
	}
	if _, err := parseLogLevel(c.Log.Level); err != nil {
		return err
	}
	if _, err := logFormat(c.Log.Format, zapcore.InfoLevel); err != nil {
		return err
	}
	return nil
}

// Validate проверяет только настройки бэкенда, их же использует cine.
func (s SearchConfig) Validate() error {
	u, err := url.Parse(s.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrInvalidSearchURL
	}
	if s.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
