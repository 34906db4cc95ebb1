package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		setEnv       bool
		envValue     string
		expected     string
	}{
		{
			name:         "env variable set",
			key:          "TEST_KEY",
			defaultValue: "default",
			setEnv:       true,
			envValue:     "custom",
			expected:     "custom",
		},
		{
			name:         "env variable not set",
			key:          "TEST_KEY_NOT_SET",
			defaultValue: "default",
			setEnv:       false,
			expected:     "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setEnv {
				t.Setenv(tt.key, tt.envValue)
			}

			result := getEnv(tt.key, tt.defaultValue)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestConfig_DSN(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     "5432",
			User:     "testuser",
			Password: "testpass",
			Name:     "testdb",
		},
	}

	dsn := cfg.DSN()
	expected := "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=disable"
	assert.Equal(t, expected, dsn)
}

// clearEnv unsets every variable Load reads for the duration of the test
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"HTTP_ADDR", "LOG_LEVEL", "BOT_TOKEN", "SESSION_SECRET", "SESSION_SECURE",
		"CORS_ALLOWED_ORIGINS", "DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD",
		"MIGRATIONS_PATH", "TTS_BASE_URL", "TTS_LANGUAGE", "TTS_TIMEOUT", "TTS_CACHE_SIZE",
		"TTS_CACHE_TTL", "TTS_WARMUP", "TTS_WARMUP_WORKERS", "RECORDING_MAX_BYTES",
		"RECORDING_MAX_AGE", "RECORDING_RETENTION_DAYS", "OPENAI_API_KEY", "OPENAI_MODEL",
	}
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		errContains string
	}{
		{
			name:        "missing session secret",
			env:         map[string]string{"DB_PASSWORD": "pass"},
			errContains: "SESSION_SECRET",
		},
		{
			name:        "short session secret",
			env:         map[string]string{"SESSION_SECRET": "short", "DB_PASSWORD": "pass"},
			errContains: "at least 32",
		},
		{
			name:        "missing db password",
			env:         map[string]string{"SESSION_SECRET": testSecret},
			errContains: "DB_PASSWORD",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			assert.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestLoad_WithDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("SESSION_SECRET", testSecret)
	t.Setenv("DB_PASSWORD", "testpass")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.BotEnabled())
	assert.False(t, cfg.Session.Secure)
	assert.Empty(t, cfg.Session.AllowedOrigins)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, "idioviet", cfg.Database.Name)
	assert.Equal(t, "idioviet", cfg.Database.User)
	assert.Equal(t, "file://migrations", cfg.Database.MigrationsPath)
	assert.Equal(t, "https://translate.google.com/translate_tts", cfg.TTS.BaseURL)
	assert.Equal(t, "vi", cfg.TTS.Language)
	assert.Equal(t, 10*time.Second, cfg.TTS.Timeout)
	assert.Equal(t, 512, cfg.TTS.CacheSize)
	assert.Equal(t, 24*time.Hour, cfg.TTS.CacheTTL)
	assert.False(t, cfg.TTS.Warmup)
	assert.Equal(t, 4, cfg.TTS.WarmupWorkers)
	assert.Equal(t, 10<<20, cfg.Recording.MaxBytes)
	assert.Equal(t, 10*time.Minute, cfg.Recording.MaxAge)
	assert.Equal(t, 60, cfg.Recording.RetentionDays)
	assert.Empty(t, cfg.OpenAI.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SESSION_SECRET", testSecret)
	t.Setenv("DB_PASSWORD", "testpass")
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("SESSION_SECURE", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("TTS_TIMEOUT", "3s")
	t.Setenv("TTS_CACHE_SIZE", "0")
	t.Setenv("TTS_WARMUP", "1")
	t.Setenv("RECORDING_RETENTION_DAYS", "30")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.BotEnabled())
	assert.True(t, cfg.Session.Secure)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Session.AllowedOrigins)
	assert.Equal(t, 3*time.Second, cfg.TTS.Timeout)
	assert.Equal(t, 0, cfg.TTS.CacheSize)
	assert.True(t, cfg.TTS.Warmup)
	assert.Equal(t, 30, cfg.Recording.RetentionDays)
}

func TestLoad_InvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("SESSION_SECRET", testSecret)
	t.Setenv("DB_PASSWORD", "testpass")
	t.Setenv("TTS_CACHE_SIZE", "many")
	t.Setenv("TTS_CACHE_TTL", "forever")
	t.Setenv("SESSION_SECURE", "maybe")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	for _, key := range []string{"TTS_CACHE_SIZE", "TTS_CACHE_TTL", "SESSION_SECURE"} {
		assert.True(t, strings.Contains(err.Error(), key), "error should name %s", key)
	}
}

func TestLoad_NonPositiveRecordingLimits(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "zero max bytes", key: "RECORDING_MAX_BYTES", value: "0"},
		{name: "negative max bytes", key: "RECORDING_MAX_BYTES", value: "-1"},
		{name: "zero max age", key: "RECORDING_MAX_AGE", value: "0s"},
		{name: "negative max age", key: "RECORDING_MAX_AGE", value: "-5m"},
		{name: "zero retention", key: "RECORDING_RETENTION_DAYS", value: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("SESSION_SECRET", testSecret)
			t.Setenv("DB_PASSWORD", "testpass")
			t.Setenv(tt.key, tt.value)

			cfg, err := Load()

			assert.Nil(t, cfg)
			assert.ErrorContains(t, err, tt.key)
		})
	}
}
