package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// MinZaikoInterval is the floor for spacing between inventory source calls.
// The source is a small private site; anything faster gets the client blocked.
const MinZaikoInterval = 300 * time.Millisecond

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Local data layout
	DataDir    string
	KachiCSV   string // curated benefit value master table
	PolicyFile string // optional YAML policy, defaults apply when empty

	// Snapshot store: file | postgres
	StoreBackend string

	// Database (only used when StoreBackend == "postgres")
	Database DatabaseConfig

	// Redis (live quote cache)
	Redis RedisConfig

	// External sources
	Zaiko ZaikoConfig
	Quote QuoteConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
	QuoteTTL time.Duration
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// ZaikoConfig holds the broker inventory source configuration
type ZaikoConfig struct {
	BaseURL  string
	Interval time.Duration // minimum spacing between outbound calls
	Timeout  time.Duration
}

// QuoteConfig holds the live price source configuration
type QuoteConfig struct {
	BaseURL  string
	Suffix   string // exchange suffix appended to the security code (".T" for Tokyo)
	Interval time.Duration
	Timeout  time.Duration
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	dataDir := getEnv("DATA_DIR", "data")

	cfg := &Config{
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		DataDir:    dataDir,
		KachiCSV:   getEnv("KACHI_CSV", filepath.Join(dataDir, "kachi.csv")),
		PolicyFile: getEnv("POLICY_FILE", ""),

		StoreBackend: getEnv("STORE_BACKEND", "file"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 5),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			QuoteTTL: getEnvAsDuration("REDIS_QUOTE_TTL", "10m"),
		},

		Zaiko: ZaikoConfig{
			BaseURL:  getEnv("ZAIKO_BASE_URL", "https://gokigen-life.tokyo"),
			Interval: getEnvAsDuration("ZAIKO_INTERVAL", "2s"),
			Timeout:  getEnvAsDuration("ZAIKO_TIMEOUT", "30s"),
		},

		Quote: QuoteConfig{
			BaseURL:  getEnv("QUOTE_BASE_URL", "https://query1.finance.yahoo.com"),
			Suffix:   getEnv("QUOTE_SUFFIX", ".T"),
			Interval: getEnvAsDuration("QUOTE_INTERVAL", "300ms"),
			Timeout:  getEnvAsDuration("QUOTE_TIMEOUT", "15s"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.StoreBackend {
	case "file":
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("STORE_BACKEND must be one of: file, postgres")
	}

	if c.Zaiko.Interval < MinZaikoInterval {
		return fmt.Errorf("ZAIKO_INTERVAL must be at least %s", MinZaikoInterval)
	}

	if c.KachiCSV == "" {
		return fmt.Errorf("KACHI_CSV is required")
	}

	return nil
}

// InventoryDir is where raw monthly inventory payloads are kept
func (c *Config) InventoryDir() string {
	return filepath.Join(c.DataDir, "ippan_zaiko")
}

// PriceDir is where the latest live quotes are kept
func (c *Config) PriceDir() string {
	return filepath.Join(c.DataDir, "stock_price")
}

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
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
