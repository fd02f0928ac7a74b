package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantErr error
	}{
		{
			name: "valid config",
			envVars: map[string]string{
				"TELEGRAM_BOT_TOKEN": "test_token",
				"DATABASE_URL":       "postgres://localhost:5432/test",
			},
			wantErr: nil,
		},
		{
			name: "database is optional",
			envVars: map[string]string{
				"TELEGRAM_BOT_TOKEN": "test_token",
			},
			wantErr: nil,
		},
		{
			name: "missing telegram token",
			envVars: map[string]string{
				"DATABASE_URL": "postgres://localhost:5432/test",
			},
			wantErr: ErrMissingToken,
		},
		{
			name: "relative search url",
			envVars: map[string]string{
				"TELEGRAM_BOT_TOKEN": "test_token",
				"CINE_API_URL":       "/search",
			},
			wantErr: ErrInvalidSearchURL,
		},
		{
			name: "non http search url",
			envVars: map[string]string{
				"TELEGRAM_BOT_TOKEN": "test_token",
				"CINE_API_URL":       "ftp://movies.local",
			},
			wantErr: ErrInvalidSearchURL,
		},
		{
			name: "zero timeout",
			envVars: map[string]string{
				"TELEGRAM_BOT_TOKEN":   "test_token",
				"CINE_API_TIMEOUT_SEC": "0",
			},
			wantErr: ErrInvalidTimeout,
		},
		{
			name: "negative rate limit",
			envVars: map[string]string{
				"TELEGRAM_BOT_TOKEN":    "test_token",
				"RATE_LIMIT_PER_MINUTE": "-1",
			},
			wantErr: ErrInvalidRateLimit,
		},
		{
			name: "zero session ttl",
			envVars: map[string]string{
				"TELEGRAM_BOT_TOKEN": "test_token",
				"SESSION_TTL_SEC":    "0",
			},
			wantErr: ErrInvalidTTL,
		},
		{
			name: "unknown log level",
			envVars: map[string]string{
				"TELEGRAM_BOT_TOKEN": "test_token",
				"LOG_LEVEL":          "verbose",
			},
			wantErr: ErrInvalidLogLevel,
		},
		{
			name: "unknown log format",
			envVars: map[string]string{
				"TELEGRAM_BOT_TOKEN": "test_token",
				"LOG_FORMAT":         "logfmt",
			},
			wantErr: ErrInvalidLogFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnvVars()

			for k, v := range tt.envVars {
				os.Setenv(k, v)
			}
			defer clearEnvVars()

			cfg, err := Load()

			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Errorf("Load() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Errorf("Load() unexpected error = %v", err)
				return
			}

			if cfg == nil {
				t.Error("Load() returned nil config")
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	clearEnvVars()
	os.Setenv("TELEGRAM_BOT_TOKEN", "test_token")
	defer clearEnvVars()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %v, want %v", cfg.Log.Level, "info")
	}
	if cfg.Database.URL != "" {
		t.Errorf("Database.URL = %q, want empty", cfg.Database.URL)
	}
	if cfg.Search.BaseURL != "http://127.0.0.1:5000" {
		t.Errorf("Search.BaseURL = %v", cfg.Search.BaseURL)
	}
	if cfg.Search.PromptType != "initial" {
		t.Errorf("Search.PromptType = %v, want initial", cfg.Search.PromptType)
	}
	if cfg.Search.Timeout != 30*time.Second {
		t.Errorf("Search.Timeout = %v, want 30s", cfg.Search.Timeout)
	}
	if cfg.Session.TTL != time.Hour {
		t.Errorf("Session.TTL = %v, want 1h", cfg.Session.TTL)
	}
	if cfg.RateLimit.RequestsPerMinute != 10 {
		t.Errorf("RateLimit.RequestsPerMinute = %v, want 10", cfg.RateLimit.RequestsPerMinute)
	}
	if cfg.Metrics.Addr != ":9090" {
		t.Errorf("Metrics.Addr = %v, want :9090", cfg.Metrics.Addr)
	}
	if cfg.Tracing.OTLPEndpoint != "" {
		t.Errorf("Tracing.OTLPEndpoint = %q, want empty", cfg.Tracing.OTLPEndpoint)
	}
}

func TestOverrides(t *testing.T) {
	clearEnvVars()
	os.Setenv("TELEGRAM_BOT_TOKEN", "test_token")
	os.Setenv("CINE_API_URL", "https://movies.example.com")
	os.Setenv("CINE_PROMPT_TYPE", "detailed")
	os.Setenv("CINE_API_TIMEOUT_SEC", "5")
	os.Setenv("SESSION_TTL_SEC", "60")
	defer clearEnvVars()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Search.BaseURL != "https://movies.example.com" {
		t.Errorf("Search.BaseURL = %v", cfg.Search.BaseURL)
	}
	if cfg.Search.PromptType != "detailed" {
		t.Errorf("Search.PromptType = %v", cfg.Search.PromptType)
	}
	if cfg.Search.Timeout != 5*time.Second {
		t.Errorf("Search.Timeout = %v, want 5s", cfg.Search.Timeout)
	}
	if cfg.Session.TTL != time.Minute {
		t.Errorf("Session.TTL = %v, want 1m", cfg.Session.TTL)
	}
}

func TestGetEnvIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		envValue   string
		defaultVal int
		want       int
	}{
		{"valid int", "42", 10, 42},
		{"empty string", "", 10, 10},
		{"invalid int", "abc", 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Setenv("TEST_INT", tt.envValue)
			defer os.Unsetenv("TEST_INT")

			got := getEnvIntOrDefault("TEST_INT", tt.defaultVal)
			if got != tt.want {
				t.Errorf("getEnvIntOrDefault() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSearchConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     SearchConfig
		wantErr error
	}{
		{"ok", SearchConfig{BaseURL: "http://127.0.0.1:5000", Timeout: time.Second}, nil},
		{"https", SearchConfig{BaseURL: "https://movies.example.com/api", Timeout: time.Second}, nil},
		{"empty url", SearchConfig{Timeout: time.Second}, ErrInvalidSearchURL},
		{"no host", SearchConfig{BaseURL: "http://", Timeout: time.Second}, ErrInvalidSearchURL},
		{"no timeout", SearchConfig{BaseURL: "http://127.0.0.1:5000"}, ErrInvalidTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); err != tt.wantErr {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func clearEnvVars() {
	envVars := []string{
		"TELEGRAM_BOT_TOKEN",
		"DATABASE_URL",
		"CINE_API_URL",
		"CINE_API_TIMEOUT_SEC",
		"CINE_PROMPT_TYPE",
		"LOG_LEVEL",
		"LOG_FORMAT",
		"SESSION_TTL_SEC",
		"RATE_LIMIT_PER_MINUTE",
		"METRICS_ADDR",
		"OTEL_EXPORTER_OTLP_ENDPOINT",
	}
	for _, v := range envVars {
		os.Unsetenv(v)
	}
}
