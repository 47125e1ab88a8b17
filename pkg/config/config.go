package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: every environment variable is read here and nowhere else
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production, test

	// Database (only required when SchemeStore is "postgres")
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Remote inference service
	AI AIConfig

	// Scheme / promoter storage
	Schemes SchemesConfig

	// Regulatory alert list
	Alerts AlertsConfig

	// Detection policy YAML (optional, defaults are compiled in)
	PolicyPath string

	// Scan API throttle (requests per second, 0 = unlimited)
	ScanRateLimit float64
	ScanRateBurst int

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
	MetricsPort    string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	URL      string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// AIConfig holds the remote inference service configuration.
// An empty BaseURL disables the AI path entirely.
type AIConfig struct {
	BaseURL         string
	Timeout         time.Duration // primary /analyze call
	HealthTimeout   time.Duration // /health probe
	UseLiveData     bool
	HistoryDays     int
	BreakerFailures int // consecutive failures before the breaker opens
	BreakerCooldown time.Duration
	RateLimit       int // calls per RateWindow, 0 = unlimited
	RateWindow      time.Duration
}

// Enabled reports whether a backend URL is configured
func (a AIConfig) Enabled() bool {
	return strings.TrimSpace(a.BaseURL) != ""
}

// SchemesConfig holds scheme tracking storage configuration
type SchemesConfig struct {
	Store          string // "file" or "postgres"
	DatabasePath   string // scheme-database.json
	PromoterPath   string // promoter-database.json (sibling)
	InboxDir       string // daily batch files consumed by the tracking job
	InboxRetention time.Duration
	TrackSchedule  string // cron expression (with seconds)
	PromoterTTL    time.Duration
}

// AlertsConfig holds regulatory alert list configuration
type AlertsConfig struct {
	SuspensionsURL string
	SeedTickers    []string
	RefreshEnabled bool
	UserAgent      string
}

// Load reads configuration from environment variables
// ⭐ SSOT: the only function that calls os.Getenv()
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			Name:            getEnv("DB_NAME", "scamdunk"),
			User:            getEnv("DB_USER", "scamdunk"),
			Password:        getEnv("DB_PASSWORD", ""),
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		// Inference service
		AI: AIConfig{
			BaseURL:         strings.TrimRight(getEnv("AI_BACKEND_URL", ""), "/"),
			Timeout:         getEnvAsDuration("AI_TIMEOUT", "30s"),
			HealthTimeout:   getEnvAsDuration("AI_HEALTH_TIMEOUT", "5s"),
			UseLiveData:     getEnvAsBool("AI_USE_LIVE_DATA", true),
			HistoryDays:     getEnvAsInt("AI_HISTORY_DAYS", 90),
			BreakerFailures: getEnvAsInt("AI_BREAKER_FAILURES", 5),
			BreakerCooldown: getEnvAsDuration("AI_BREAKER_COOLDOWN", "60s"),
			RateLimit:       getEnvAsInt("AI_RATE_LIMIT", 0),
			RateWindow:      getEnvAsDuration("AI_RATE_WINDOW", "1m"),
		},

		// Schemes
		Schemes: SchemesConfig{
			Store:          strings.ToLower(getEnv("SCHEME_STORE", "file")),
			DatabasePath:   getEnv("SCHEME_DB_PATH", "data/schemes/scheme-database.json"),
			PromoterPath:   getEnv("PROMOTER_DB_PATH", ""),
			InboxDir:       getEnv("SCHEME_INBOX_DIR", "data/inbox"),
			InboxRetention: getEnvAsDuration("SCHEME_INBOX_RETENTION", "720h"),
			TrackSchedule:  getEnv("SCHEME_TRACK_SCHEDULE", "0 30 22 * * 1-5"),
			PromoterTTL:    getEnvAsDuration("PROMOTER_CACHE_TTL", "1h"),
		},

		// Alerts
		Alerts: AlertsConfig{
			SuspensionsURL: getEnv("SEC_SUSPENSIONS_URL", "https://www.sec.gov/enforcement-litigation/trading-suspensions"),
			SeedTickers:    getEnvAsList("ALERT_SEED_TICKERS", "SCAM,PUMP,DUMP,FRAU,SUSP,HALT,XYZQ,ABCD"),
			RefreshEnabled: getEnvAsBool("ALERT_REFRESH_ENABLED", false),
			UserAgent:      getEnv("SEC_USER_AGENT", "scamdunk-risk-engine admin@example.com"),
		},

		PolicyPath: getEnv("POLICY_PATH", ""),

		ScanRateLimit: getEnvAsFloat("SCAN_RATE_LIMIT", 5),
		ScanRateBurst: getEnvAsInt("SCAN_RATE_BURST", 10),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		// Monitoring
		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		MetricsPort:    getEnv("METRICS_PORT", "9090"),
	}

	// The promoter cache lives next to the scheme document unless overridden
	if cfg.Schemes.PromoterPath == "" {
		cfg.Schemes.PromoterPath = filepath.Join(filepath.Dir(cfg.Schemes.DatabasePath), "promoter-database.json")
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	switch c.Env {
	case "development", "staging", "production", "test":
	default:
		return fmt.Errorf("ENV must be one of: development, staging, production, test")
	}

	switch c.Schemes.Store {
	case "file":
		if c.Schemes.DatabasePath == "" {
			return fmt.Errorf("SCHEME_DB_PATH is required when SCHEME_STORE=file")
		}
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when SCHEME_STORE=postgres")
		}
	default:
		return fmt.Errorf("SCHEME_STORE must be one of: file, postgres")
	}

	if c.AI.Timeout <= 0 || c.AI.HealthTimeout <= 0 {
		return fmt.Errorf("AI_TIMEOUT and AI_HEALTH_TIMEOUT must be positive")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

func getEnvAsList(key string, defaultValue string) []string {
	valueStr := getEnv(key, defaultValue)

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
