package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the full runtime configuration, read from the environment.
type Config struct {
	Addr          string `env:"APP_ADDR" envDefault:":8080"`
	SQLitePath    string `env:"SQLITE_PATH" envDefault:"adminconsole.db"`
	MigrationsDir string `env:"MIGRATIONS_DIR"`

	API API

	PageSize        int           `env:"PAGE_SIZE" envDefault:"10"`
	FilterDebounce  time.Duration `env:"FILTER_DEBOUNCE" envDefault:"500ms"`
	ConfirmDebounce time.Duration `env:"CONFIRM_DEBOUNCE" envDefault:"1s"`
	ToastDuration   time.Duration `env:"TOAST_DURATION" envDefault:"5s"`
	SessionDuration time.Duration `env:"SESSION_DURATION" envDefault:"12h"`
	SecureCookie    bool          `env:"SECURE_COOKIE" envDefault:"false"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	MetricsEnabled bool   `env:"METRICS_ENABLED" envDefault:"true"`
	MetricsPath    string `env:"METRICS_PATH" envDefault:"/metrics"`
}

// API describes the REST backend the console drives.
type API struct {
	BaseURL string `env:"API_BASE_URL,required"`
	Token   string `env:"API_TOKEN"`
	// Zero keeps the transport default.
	Timeout time.Duration `env:"API_TIMEOUT" envDefault:"0s"`
}

// Load reads optional .env files and parses the environment.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env", ".env.local"}
	}
	if err := loadEnvFiles(envFiles); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadEnvFiles(files []string) error {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("load env files: %w", err)
	}
	return nil
}

// Validate checks values the env tags cannot express.
func (c Config) Validate() error {
	u, err := url.Parse(strings.TrimSpace(c.API.BaseURL))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("API_BASE_URL must be an absolute http(s) url, got %q", c.API.BaseURL)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("PAGE_SIZE must be positive, got %d", c.PageSize)
	}
	if c.API.Timeout < 0 {
		return errors.New("API_TIMEOUT must not be negative")
	}
	if c.SessionDuration <= 0 {
		return errors.New("SESSION_DURATION must be positive")
	}
	if c.MetricsEnabled && !strings.HasPrefix(c.MetricsPath, "/") {
		return fmt.Errorf("METRICS_PATH must start with '/', got %q", c.MetricsPath)
	}
	return nil
}

// SlogLevel maps LOG_LEVEL to a slog level; unknown values fall back to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the process logger described by LOG_FORMAT and LOG_LEVEL.
func (c Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
