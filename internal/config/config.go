package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	HTTPAddr  string
	LogLevel  string
	BotToken  string
	Session   SessionConfig
	Database  DatabaseConfig
	TTS       TTSConfig
	Recording RecordingConfig
	OpenAI    OpenAIConfig
}

// SessionConfig holds learner cookie settings
type SessionConfig struct {
	Secret         string
	Secure         bool
	AllowedOrigins []string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host           string
	Port           string
	Name           string
	User           string
	Password       string
	MigrationsPath string
}

// TTSConfig holds text-to-speech proxy settings
type TTSConfig struct {
	BaseURL       string
	Language      string
	Timeout       time.Duration
	CacheSize     int
	CacheTTL      time.Duration
	Warmup        bool
	WarmupWorkers int
}

// RecordingConfig holds pronunciation attempt settings
type RecordingConfig struct {
	MaxBytes      int
	MaxAge        time.Duration
	RetentionDays int
}

// OpenAIConfig holds encouragement generation settings
type OpenAIConfig struct {
	APIKey string
	Model  string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	var errs []string
	intVar := func(key string, def int) int {
		v, err := getEnvInt(key, def)
		if err != nil {
			errs = append(errs, err.Error())
		}
		return v
	}
	durationVar := func(key string, def time.Duration) time.Duration {
		v, err := getEnvDuration(key, def)
		if err != nil {
			errs = append(errs, err.Error())
		}
		return v
	}
	boolVar := func(key string, def bool) bool {
		v, err := getEnvBool(key, def)
		if err != nil {
			errs = append(errs, err.Error())
		}
		return v
	}

	cfg := &Config{
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		BotToken: os.Getenv("BOT_TOKEN"),
		Session: SessionConfig{
			Secret:         os.Getenv("SESSION_SECRET"),
			Secure:         boolVar("SESSION_SECURE", false),
			AllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			Name:           getEnv("DB_NAME", "idioviet"),
			User:           getEnv("DB_USER", "idioviet"),
			Password:       os.Getenv("DB_PASSWORD"),
			MigrationsPath: getEnv("MIGRATIONS_PATH", "file://migrations"),
		},
		TTS: TTSConfig{
			BaseURL:       getEnv("TTS_BASE_URL", "https://translate.google.com/translate_tts"),
			Language:      getEnv("TTS_LANGUAGE", "vi"),
			Timeout:       durationVar("TTS_TIMEOUT", 10*time.Second),
			CacheSize:     intVar("TTS_CACHE_SIZE", 512),
			CacheTTL:      durationVar("TTS_CACHE_TTL", 24*time.Hour),
			Warmup:        boolVar("TTS_WARMUP", false),
			WarmupWorkers: intVar("TTS_WARMUP_WORKERS", 4),
		},
		Recording: RecordingConfig{
			MaxBytes:      intVar("RECORDING_MAX_BYTES", 10<<20),
			MaxAge:        durationVar("RECORDING_MAX_AGE", 10*time.Minute),
			RetentionDays: intVar("RECORDING_RETENTION_DAYS", 60),
		},
		OpenAI: OpenAIConfig{
			APIKey: os.Getenv("OPENAI_API_KEY"),
			Model:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		},
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}

	// Validate required fields
	if cfg.Session.Secret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required")
	}
	if len(cfg.Session.Secret) < 32 {
		return nil, fmt.Errorf("SESSION_SECRET must be at least 32 characters")
	}
	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	if cfg.Recording.MaxBytes < 1 {
		return nil, fmt.Errorf("RECORDING_MAX_BYTES must be positive")
	}
	if cfg.Recording.MaxAge <= 0 {
		return nil, fmt.Errorf("RECORDING_MAX_AGE must be positive")
	}
	if cfg.Recording.RetentionDays < 1 {
		return nil, fmt.Errorf("RECORDING_RETENTION_DAYS must be positive")
	}

	return cfg, nil
}

// DSN returns PostgreSQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
	)
}

// BotEnabled reports whether the Telegram surface should run
func (c *Config) BotEnabled() bool {
	return c.BotToken != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue, fmt.Errorf("%s must be an integer", key)
	}
	return n, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue, fmt.Errorf("%s must be a boolean", key)
	}
	return b, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue, fmt.Errorf("%s must be a duration", key)
	}
	return d, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
