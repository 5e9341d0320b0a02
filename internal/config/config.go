package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port            string
	BindAddr        string
	ShutdownTimeout time.Duration
	WriteRateLimit  int // mutating requests per minute and client, 0 disables

	// TrustProxyHeaders reads the client address from X-Forwarded-For; set only behind a proxy
	TrustProxyHeaders bool

	// Database
	DBPath string

	// Logging
	LogLevel  string
	LogFormat string

	// Report cache
	ReportCacheTTL  time.Duration // 0 disables the cache
	ReportCacheSize int

	// AMQP, optional for the API server
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets export
	SheetsBackend            string // google or memory; memory keeps rows in process
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string

	// File exports
	ExportDir string
}

func Load() *Config {
	return &Config{
		Port:            getEnv("PORT", "8090"),
		BindAddr:        getEnv("BIND_ADDR", "127.0.0.1"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		WriteRateLimit:  getEnvInt("WRITE_RATE_LIMIT", 120),

		TrustProxyHeaders: getEnvBool("TRUST_PROXY_HEADERS", false),

		DBPath: getEnv("FACTURES_DB_PATH", "./data/factures.db"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		ReportCacheTTL:  getEnvDuration("REPORT_CACHE_TTL", 30*time.Second),
		ReportCacheSize: getEnvInt("REPORT_CACHE_SIZE", 64),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "factures"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "invoice_events"),

		SheetsBackend:            getEnv("SHEETS_BACKEND", "google"),
		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("FACTURES_SHEET_NAME", "Factures"),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),

		ExportDir: getEnv("EXPORT_DIR", "./exports"),
	}
}

// Addr is the listen address of the API server.
func (c *Config) Addr() string {
	return c.BindAddr + ":" + c.Port
}

// AMQPEnabled reports whether invoice events should be published.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}

// SheetsEnabled reports whether a spreadsheet is configured for exports.
func (c *Config) SheetsEnabled() bool {
	return c.GoogleSpreadsheetID != ""
}

// Validate collects every problem instead of stopping at the first one.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if strings.TrimSpace(c.BindAddr) == "" {
		errors = append(errors, "bind address cannot be empty")
	}
	if c.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("invalid shutdown timeout %v: must be positive", c.ShutdownTimeout))
	}
	if c.WriteRateLimit < 0 {
		errors = append(errors, fmt.Sprintf("invalid write rate limit %d: must not be negative", c.WriteRateLimit))
	}

	if c.DBPath == "" {
		errors = append(errors, "database path cannot be empty")
	} else if dir := filepath.Dir(c.DBPath); dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				errors = append(errors, fmt.Sprintf("cannot create database directory '%s': %v", dir, err))
			}
		}
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be text or json", c.LogFormat))
	}

	if c.ReportCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid report cache TTL %v: must not be negative", c.ReportCacheTTL))
	}
	if c.ReportCacheTTL > 0 && c.ReportCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid report cache size %d: must be at least 1", c.ReportCacheSize))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	switch strings.ToLower(c.SheetsBackend) {
	case "", "google", "memory":
	default:
		errors = append(errors, fmt.Sprintf("invalid sheets backend '%s': must be google or memory", c.SheetsBackend))
	}
	if c.SheetsEnabled() {
		if strings.TrimSpace(c.GoogleSheetName) == "" {
			errors = append(errors, "sheet name cannot be empty when GOOGLE_SPREADSHEET_ID is set")
		}
		if c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if c.ExportDir == "" {
		errors = append(errors, "export directory cannot be empty")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// ValidateWorker checks the extra settings the export worker cannot run without.
func (c *Config) ValidateWorker() error {
	var errors []string
	if !c.AMQPEnabled() {
		errors = append(errors, "AMQP_URL is required by the export worker")
	}
	if !c.SheetsEnabled() && !strings.EqualFold(c.SheetsBackend, "memory") {
		errors = append(errors, "GOOGLE_SPREADSHEET_ID is required by the export worker")
	}
	if len(errors) > 0 {
		return fmt.Errorf("worker configuration invalid:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
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

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
