package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Data source kinds
const (
	DataSourceAPI      = "api"
	DataSourcePostgres = "postgres"
)

// Config holds all configuration for the application
type Config struct {
	// Server
	Port        string
	CORSOrigins []string
	Env         string

	// Data source
	DataSource  string
	APIBaseURL  string
	APITimeout  time.Duration
	DatabaseURL string

	// JWT
	JWTSecret   string
	JWTIssuer   string
	JWTAudience string

	// Reports
	Location *time.Location

	// Rate limiting
	RateLimitPerMinute int
	RateLimitBurst     int

	// S3 export storage
	S3           S3Config
	ExportURLTTL time.Duration
}

// S3Config holds AWS S3 configuration
type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // Optional: for MinIO/LocalStack local dev
}

// Enabled reports whether a bucket is configured
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	return FromEnv()
}

// LoadSource reads configuration for tools that only query the data source.
// Server-only settings such as JWT_SECRET are not required.
func LoadSource() (*Config, error) {
	_ = godotenv.Load()

	cfg, err := read()
	if err != nil {
		return nil, err
	}
	if err := cfg.validateSource(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv reads configuration from the process environment only
func FromEnv() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func read() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		Env:         getEnv("ENV", "development"),
		DataSource:  strings.ToLower(getEnv("DATA_SOURCE", DataSourceAPI)),
		APIBaseURL:  getEnv("API_BASE_URL", ""),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		JWTIssuer:   getEnv("JWT_ISSUER", "expenses-api"),
		JWTAudience: getEnv("JWT_AUDIENCE", "expenses-reports"),
		S3: S3Config{
			Region:          getEnv("S3_REGION", "us-east-1"),
			Bucket:          getEnv("S3_BUCKET", ""), // Empty disables exports
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("S3_ENDPOINT", ""),
		},
	}

	var err error
	if cfg.APITimeout, err = getDuration("API_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.ExportURLTTL, err = getDuration("EXPORT_URL_TTL", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerMinute, err = getInt("RATE_LIMIT_PER_MINUTE", 100); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = getInt("RATE_LIMIT_BURST", 10); err != nil {
		return nil, err
	}

	timezone := getEnv("TIMEZONE", "Local")
	if cfg.Location, err = time.LoadLocation(timezone); err != nil {
		return nil, fmt.Errorf("TIMEZONE %q is invalid: %w", timezone, err)
	}

	return cfg, nil
}

// IsProduction reports whether ENV is production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) validate() error {
	if err := c.validateSource(); err != nil {
		return err
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.RateLimitPerMinute <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE and RATE_LIMIT_BURST must be positive")
	}
	return nil
}

func (c *Config) validateSource() error {
	switch c.DataSource {
	case DataSourceAPI:
		if c.APIBaseURL == "" {
			return fmt.Errorf("API_BASE_URL is required when DATA_SOURCE=api")
		}
	case DataSourcePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when DATA_SOURCE=postgres")
		}
	default:
		return fmt.Errorf("DATA_SOURCE must be %q or %q, got %q", DataSourceAPI, DataSourcePostgres, c.DataSource)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return value, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like 10s: %w", key, err)
	}
	return value, nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
