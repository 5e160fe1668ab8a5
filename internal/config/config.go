package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// FileEnv names the variable that points at an optional TOML config file.
const FileEnv = "BUDGETFLOW_CONFIG"

var validBackends = []string{"memory", "sheets", "sqlite"}

type Config struct {
	// HTTP Server
	Port               string
	RateLimitPerMinute int
	CORSAllowedOrigins []string

	// Primary store
	DataBackend  string
	SQLiteDBPath string

	// AMQP, optional: publishing and the mirror consumer are off when empty
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Mirror worker
	MirrorInterval time.Duration

	// Presentation
	Currency string

	// View cache
	CacheTTL  time.Duration
	CacheSize int

	// Logging
	LogLevel  string
	LogFormat string
}

// fileConfig is the TOML shape. Durations are strings such as "5m".
type fileConfig struct {
	Port        string `toml:"port"`
	DataBackend string `toml:"data_backend"`
	HTTP        struct {
		RateLimit   int      `toml:"rate_limit"`
		CORSOrigins []string `toml:"cors_origins"`
	} `toml:"http"`
	SQLite struct {
		Path string `toml:"path"`
	} `toml:"sqlite"`
	AMQP struct {
		URL      string `toml:"url"`
		Exchange string `toml:"exchange"`
		Queue    string `toml:"queue"`
	} `toml:"amqp"`
	Google struct {
		SpreadsheetID      string `toml:"spreadsheet_id"`
		SheetName          string `toml:"sheet_name"`
		ServiceAccountFile string `toml:"service_account_file"`
	} `toml:"google"`
	Mirror struct {
		Interval string `toml:"interval"`
	} `toml:"mirror"`
	Currency string `toml:"currency"`
	Cache    struct {
		TTL  string `toml:"ttl"`
		Size int    `toml:"size"`
	} `toml:"cache"`
	Log struct {
		Level  string `toml:"level"`
		Format string `toml:"format"`
	} `toml:"log"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Port:               "8081",
		RateLimitPerMinute: 60,
		DataBackend:        "memory",
		SQLiteDBPath:       "./data/budgetflow.db",
		AMQPExchange:       "budgetflow",
		AMQPQueue:          "period_saved",
		GoogleSheetName:    "Periods",
		MirrorInterval:     5 * time.Minute,
		Currency:           "USD",
		CacheTTL:           5 * time.Minute,
		CacheSize:          100,
		LogLevel:           "info",
		LogFormat:          "text",
	}
}

// Load builds the configuration from defaults, then the TOML file named by
// BUDGETFLOW_CONFIG (if any), then environment variables.
func Load() (*Config, error) {
	cfg := Default()
	if path := strings.TrimSpace(os.Getenv(FileEnv)); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	var f fileConfig
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&c.Port, f.Port)
	setString(&c.DataBackend, f.DataBackend)
	setString(&c.SQLiteDBPath, f.SQLite.Path)
	setString(&c.AMQPURL, f.AMQP.URL)
	setString(&c.AMQPExchange, f.AMQP.Exchange)
	setString(&c.AMQPQueue, f.AMQP.Queue)
	setString(&c.GoogleSpreadsheetID, f.Google.SpreadsheetID)
	setString(&c.GoogleSheetName, f.Google.SheetName)
	setString(&c.GoogleServiceAccountFile, f.Google.ServiceAccountFile)
	setString(&c.Currency, f.Currency)
	setString(&c.LogLevel, f.Log.Level)
	setString(&c.LogFormat, f.Log.Format)
	if f.HTTP.RateLimit != 0 {
		c.RateLimitPerMinute = f.HTTP.RateLimit
	}
	if len(f.HTTP.CORSOrigins) > 0 {
		c.CORSAllowedOrigins = f.HTTP.CORSOrigins
	}
	if f.Cache.Size != 0 {
		c.CacheSize = f.Cache.Size
	}

	var errs []error
	if err := setDuration(&c.MirrorInterval, f.Mirror.Interval); err != nil {
		errs = append(errs, fmt.Errorf("mirror.interval: %w", err))
	}
	if err := setDuration(&c.CacheTTL, f.Cache.TTL); err != nil {
		errs = append(errs, fmt.Errorf("cache.ttl: %w", err))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.RateLimitPerMinute = getEnvInt("RATE_LIMIT_PER_MINUTE", c.RateLimitPerMinute)
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.CORSAllowedOrigins = splitList(v)
	}
	c.DataBackend = getEnv("DATA_BACKEND", c.DataBackend)
	c.SQLiteDBPath = getEnv("SQLITE_DB_PATH", c.SQLiteDBPath)

	c.AMQPURL = getEnv("AMQP_URL", c.AMQPURL)
	c.AMQPExchange = getEnv("AMQP_EXCHANGE", c.AMQPExchange)
	c.AMQPQueue = getEnv("AMQP_QUEUE", c.AMQPQueue)

	c.GoogleSpreadsheetID = getEnv("GOOGLE_SPREADSHEET_ID", c.GoogleSpreadsheetID)
	c.GoogleSheetName = getEnv("GOOGLE_SHEET_NAME", c.GoogleSheetName)
	c.GoogleServiceAccountJSON = getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", c.GoogleServiceAccountJSON)
	c.GoogleServiceAccountFile = getEnv("GOOGLE_SERVICE_ACCOUNT_FILE",
		getEnv("GOOGLE_APPLICATION_CREDENTIALS", c.GoogleServiceAccountFile))

	c.MirrorInterval = getEnvDuration("MIRROR_INTERVAL", c.MirrorInterval)
	c.Currency = getEnv("CURRENCY", c.Currency)
	c.CacheTTL = getEnvDuration("CACHE_TTL", c.CacheTTL)
	c.CacheSize = getEnvInt("CACHE_SIZE", c.CacheSize)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
}

// AMQPEnabled reports whether a broker is configured.
func (c *Config) AMQPEnabled() bool { return c.AMQPURL != "" }

// SheetsEnabled reports whether a spreadsheet is configured.
func (c *Config) SheetsEnabled() bool { return c.GoogleSpreadsheetID != "" }

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.RateLimitPerMinute < 1 {
		errs = append(errs, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}

	if !slices.Contains(validBackends, c.DataBackend) {
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" && c.SQLiteDBPath == "" {
		errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.DataBackend == "sheets" && !c.SheetsEnabled() {
		errs = append(errs, "Google Spreadsheet ID is required when using sheets backend")
	}
	if c.SheetsEnabled() {
		if c.GoogleSheetName == "" {
			errs = append(errs, "Google Sheet name cannot be empty when a spreadsheet is configured")
		}
		if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
			errs = append(errs, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided with GOOGLE_SPREADSHEET_ID")
		}
		if c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errs = append(errs, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if c.MirrorInterval < time.Second {
		errs = append(errs, fmt.Sprintf("invalid mirror interval %v: must be at least 1 second", c.MirrorInterval))
	} else if c.MirrorInterval > 24*time.Hour {
		errs = append(errs, fmt.Sprintf("invalid mirror interval %v: must be at most 24 hours", c.MirrorInterval))
	}

	if strings.TrimSpace(c.Currency) == "" {
		errs = append(errs, "currency cannot be empty")
	}

	if c.CacheSize < 1 {
		errs = append(errs, fmt.Sprintf("invalid cache size %d: must be at least 1", c.CacheSize))
	}
	if c.CacheTTL < 0 {
		errs = append(errs, fmt.Sprintf("invalid cache TTL %v: must not be negative", c.CacheTTL))
	}

	if f := strings.ToLower(c.LogFormat); f != "text" && f != "json" {
		errs = append(errs, fmt.Sprintf("invalid log format '%s': must be text or json", c.LogFormat))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v string) error {
	if v = strings.TrimSpace(v); v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
