package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration. It is built once at startup
// and handed to the components that need it.
type Config struct {
	// HTTP server
	Port        string
	HTTPTimeout time.Duration

	// Database
	DatabaseURL string
	AutoMigrate bool

	// Tokens
	JWTSecret string
	JWTTTL    time.Duration

	// Logging
	LogLevel  string
	LogFormat string // "json" or "text"

	// Open Food Facts
	OFFBaseURL       string
	OFFUserAgent     string
	OFFRatePerSecond float64
	OFFRateBurst     int

	// Exchange rate refresh
	RatesScheduleEnabled bool
	RatesHour            int
	RatesMinute          int
	BCVURL               string
	BCVSkipTLSVerify     bool
	DolarAPIURL          string
}

// Default returns configuration with sensible defaults. DatabaseURL and
// JWTSecret have no default and must come from the environment.
func Default() *Config {
	return &Config{
		Port:                 "8080",
		HTTPTimeout:          15 * time.Second,
		AutoMigrate:          true,
		JWTTTL:               7 * 24 * time.Hour,
		LogLevel:             "info",
		LogFormat:            "json",
		OFFBaseURL:           "https://world.openfoodfacts.org",
		OFFUserAgent:         "Centimos/1.0 (+https://github.com/georgemunganga/centimos-backend)",
		OFFRatePerSecond:     1.5,
		OFFRateBurst:         3,
		RatesScheduleEnabled: true,
		RatesHour:            23,
		RatesMinute:          0,
		BCVURL:               "https://www.bcv.org.ve/",
		DolarAPIURL:          "https://ve.dolarapi.com/v1/dolares/oficial",
	}
}

// Load reads .env (if present), applies environment overrides on top of
// Default and validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load()

	c := Default()
	c.LoadFromEnv()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadFromEnv overrides fields from environment variables. Unparseable
// values are ignored and the current value is kept.
func (c *Config) LoadFromEnv() {
	if v := os.Getenv("APP_PORT"); v != "" {
		c.Port = v
	}
	if v := os.Getenv("HTTP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.HTTPTimeout = d
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("AUTO_MIGRATE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.AutoMigrate = b
		}
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.JWTSecret = v
	}
	if v := os.Getenv("JWT_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.JWTTTL = d
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.LogFormat = strings.ToLower(v)
	}
	if v := os.Getenv("OFF_BASE_URL"); v != "" {
		c.OFFBaseURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("OFF_USER_AGENT"); v != "" {
		c.OFFUserAgent = v
	}
	if v := os.Getenv("OFF_RATE_PER_SECOND"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.OFFRatePerSecond = f
		}
	}
	if v := os.Getenv("OFF_RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.OFFRateBurst = n
		}
	}
	if v := os.Getenv("RATES_SCHEDULE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.RatesScheduleEnabled = b
		}
	}
	if v := os.Getenv("RATES_HOUR"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RatesHour = n
		}
	}
	if v := os.Getenv("RATES_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RatesMinute = n
		}
	}
	if v := os.Getenv("BCV_URL"); v != "" {
		c.BCVURL = v
	}
	if v := os.Getenv("BCV_SKIP_TLS_VERIFY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.BCVSkipTLSVerify = b
		}
	}
	if v := os.Getenv("DOLARAPI_URL"); v != "" {
		c.DolarAPIURL = v
	}
}

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable not set")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable not set")
	}
	if c.RatesHour < 0 || c.RatesHour > 23 {
		return fmt.Errorf("RATES_HOUR must be between 0 and 23, got %d", c.RatesHour)
	}
	if c.RatesMinute < 0 || c.RatesMinute > 59 {
		return fmt.Errorf("RATES_MINUTE must be between 0 and 59, got %d", c.RatesMinute)
	}
	if c.OFFRatePerSecond <= 0 {
		return fmt.Errorf("OFF_RATE_PER_SECOND must be positive")
	}
	return nil
}

// Logger builds the slog logger described by LogLevel and LogFormat.
func (c *Config) Logger() *slog.Logger {
	var level slog.Level
	switch c.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}
