package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultHTTPAddr        = ":8080"
	defaultDatabaseURL     = "courtdash.db"
	defaultUpstreamTimeout = "10s"
	defaultUpstreamRetries = "2"
	defaultUpstreamBackoff = "250ms"
	defaultTokenLeeway     = "30s"
	defaultWeekStart       = "sunday"
	defaultLogLevel        = "info"
	defaultCORSOrigins     = "http://localhost:3000"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	DatabaseURL string
	LogLevel    string
	CORSOrigins []string

	UpstreamBaseURL    string
	UpstreamTimeout    time.Duration
	UpstreamMaxRetries int
	UpstreamBackoff    time.Duration
	TokenLeeway        time.Duration

	RealtimeURL          string
	RealtimeServiceToken string

	WeekStart time.Weekday
}

// Load reads the environment, after merging a .env file when one exists.
// Variables already set in the environment win over the file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.LogLevel = strings.TrimSpace(getEnv("LOG_LEVEL", defaultLogLevel))
	cfg.CORSOrigins = splitList(getEnv("CORS_ORIGINS", defaultCORSOrigins))
	cfg.UpstreamBaseURL = strings.TrimRight(strings.TrimSpace(os.Getenv("UPSTREAM_BASE_URL")), "/")
	cfg.RealtimeURL = strings.TrimSpace(os.Getenv("REALTIME_URL"))
	cfg.RealtimeServiceToken = strings.TrimSpace(os.Getenv("REALTIME_SERVICE_TOKEN"))

	var err error
	cfg.UpstreamTimeout, err = parseDurationEnv("UPSTREAM_TIMEOUT", defaultUpstreamTimeout)
	if err != nil {
		return nil, err
	}
	cfg.UpstreamBackoff, err = parseDurationEnv("UPSTREAM_BACKOFF", defaultUpstreamBackoff)
	if err != nil {
		return nil, err
	}
	cfg.TokenLeeway, err = parseDurationEnv("TOKEN_LEEWAY", defaultTokenLeeway)
	if err != nil {
		return nil, err
	}
	cfg.UpstreamMaxRetries, err = parseIntEnv("UPSTREAM_MAX_RETRIES", defaultUpstreamRetries)
	if err != nil {
		return nil, err
	}
	cfg.WeekStart, err = parseWeekStart(getEnv("WEEK_START", defaultWeekStart))
	if err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.UpstreamBaseURL == "" {
		return fmt.Errorf("UPSTREAM_BASE_URL must be set")
	}
	u, err := url.Parse(cfg.UpstreamBaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("UPSTREAM_BASE_URL must be an absolute http(s) URL")
	}
	if cfg.UpstreamTimeout <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT must be > 0")
	}
	if cfg.UpstreamBackoff < 0 {
		return fmt.Errorf("UPSTREAM_BACKOFF must be >= 0")
	}
	if cfg.UpstreamMaxRetries < 0 {
		return fmt.Errorf("UPSTREAM_MAX_RETRIES must be >= 0")
	}
	if cfg.TokenLeeway < 0 {
		return fmt.Errorf("TOKEN_LEEWAY must be >= 0")
	}
	if cfg.RealtimeURL != "" {
		ru, err := url.Parse(cfg.RealtimeURL)
		if err != nil || (ru.Scheme != "ws" && ru.Scheme != "wss") {
			return fmt.Errorf("REALTIME_URL must be a ws:// or wss:// URL")
		}
		if cfg.RealtimeServiceToken == "" {
			return fmt.Errorf("REALTIME_SERVICE_TOKEN must be set when REALTIME_URL is set")
		}
	}

	if isProdLike(cfg.AppEnv) {
		if u.Scheme != "https" {
			return fmt.Errorf("in prod/release UPSTREAM_BASE_URL must use https")
		}
		for _, o := range cfg.CORSOrigins {
			if o == "*" {
				return fmt.Errorf("in prod/release CORS_ORIGINS must not contain *")
			}
		}
	}

	return nil
}

func (c *Config) IsProd() bool {
	return isProdLike(c.AppEnv)
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func parseWeekStart(v string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "sunday", "sun":
		return time.Sunday, nil
	case "monday", "mon":
		return time.Monday, nil
	}
	return 0, fmt.Errorf("invalid WEEK_START value %q: want sunday or monday", v)
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseIntEnv(name, fallback string) (int, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
