package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage drivers
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StorageDynamoDB = "dynamodb"
)

// Metrics backends
const (
	MetricsPrometheus = "prometheus"
	MetricsCloudWatch = "cloudwatch"
	MetricsNone       = "none"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress   string        `yaml:"server_address"`
	Environment     string        `yaml:"environment"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// Storage configuration
	StorageDriver  string `yaml:"storage_driver"`
	SQLitePath     string `yaml:"sqlite_path"`
	SeedDir        string `yaml:"seed_dir"`
	WatchSeed      bool   `yaml:"watch_seed"`
	CircuitBreaker bool   `yaml:"circuit_breaker"`

	// AWS configuration
	AWSRegion     string `yaml:"aws_region"`
	DynamoDBTable string `yaml:"dynamodb_table"`
	EventBusName  string `yaml:"event_bus_name"`

	// Lambda configuration
	IsLambda bool `yaml:"is_lambda"`

	// Logging
	LogLevel           string        `yaml:"log_level"`
	SlowQueryThreshold time.Duration `yaml:"slow_query_threshold"`

	// Observability
	EnableMetrics    bool          `yaml:"enable_metrics"`
	MetricsBackend   string        `yaml:"metrics_backend"`
	MetricsNamespace string        `yaml:"metrics_namespace"`
	MetricsFlush     time.Duration `yaml:"metrics_flush"`
	EnableTracing    bool          `yaml:"enable_tracing"`

	// HTTP features
	EnableCORS     bool     `yaml:"enable_cors"`
	CORSOrigins    []string `yaml:"cors_origins"`
	EnableWriteAPI bool     `yaml:"enable_write_api"`
	WriteAPIToken  string   `yaml:"write_api_token"`
	WriteRateLimit int      `yaml:"write_rate_limit"`
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	return &Config{
		ServerAddress:      ":8080",
		Environment:        "development",
		ReadTimeout:        15 * time.Second,
		WriteTimeout:       15 * time.Second,
		ShutdownTimeout:    30 * time.Second,
		StorageDriver:      StorageMemory,
		SQLitePath:         "data/loopsite.db",
		SeedDir:            "content",
		CircuitBreaker:     true,
		AWSRegion:          "us-west-2",
		DynamoDBTable:      "loopsite-content",
		LogLevel:           "info",
		SlowQueryThreshold: 500 * time.Millisecond,
		EnableMetrics:      true,
		MetricsBackend:     MetricsPrometheus,
		MetricsNamespace:   "loopsite",
		MetricsFlush:       time.Minute,
		EnableCORS:         true,
		CORSOrigins:        []string{"*"},
		WriteRateLimit:     60,
	}
}

// LoadConfig loads configuration from defaults, then the YAML file named by
// CONFIG_FILE when set, then environment variables.
func LoadConfig() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.loadEnvironment()

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load is an alias for LoadConfig
func Load() (*Config, error) {
	return LoadConfig()
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnvironment() {
	c.ServerAddress = getEnv("SERVER_ADDRESS", c.ServerAddress)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.ReadTimeout = getEnvDuration("READ_TIMEOUT", c.ReadTimeout)
	c.WriteTimeout = getEnvDuration("WRITE_TIMEOUT", c.WriteTimeout)
	c.ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", c.ShutdownTimeout)

	c.StorageDriver = getEnv("STORAGE_DRIVER", c.StorageDriver)
	c.SQLitePath = getEnv("SQLITE_PATH", c.SQLitePath)
	c.SeedDir = getEnv("SEED_DIR", c.SeedDir)
	c.WatchSeed = getEnvBool("WATCH_SEED", c.WatchSeed)
	c.CircuitBreaker = getEnvBool("CIRCUIT_BREAKER", c.CircuitBreaker)

	c.AWSRegion = getEnv("AWS_REGION", c.AWSRegion)
	c.DynamoDBTable = getEnv("TABLE_NAME", getEnv("DYNAMODB_TABLE", c.DynamoDBTable))
	c.EventBusName = getEnv("EVENT_BUS_NAME", c.EventBusName)

	// The Lambda runtime always sets AWS_LAMBDA_FUNCTION_NAME
	c.IsLambda = getEnvBool("IS_LAMBDA", c.IsLambda || os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "")

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.SlowQueryThreshold = getEnvDuration("SLOW_QUERY_THRESHOLD", c.SlowQueryThreshold)

	c.EnableMetrics = getEnvBool("ENABLE_METRICS", c.EnableMetrics)
	c.MetricsBackend = getEnv("METRICS_BACKEND", c.MetricsBackend)
	c.MetricsNamespace = getEnv("METRICS_NAMESPACE", c.MetricsNamespace)
	c.MetricsFlush = getEnvDuration("METRICS_FLUSH", c.MetricsFlush)
	c.EnableTracing = getEnvBool("ENABLE_TRACING", c.EnableTracing)

	c.EnableCORS = getEnvBool("ENABLE_CORS", c.EnableCORS)
	c.CORSOrigins = getEnvList("CORS_ORIGINS", c.CORSOrigins)
	c.EnableWriteAPI = getEnvBool("ENABLE_WRITE_API", c.EnableWriteAPI)
	c.WriteAPIToken = getEnv("WRITE_API_TOKEN", c.WriteAPIToken)
	c.WriteRateLimit = getEnvInt("WRITE_RATE_LIMIT", c.WriteRateLimit)
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageMemory, StorageSQLite, StorageDynamoDB:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	switch c.MetricsBackend {
	case MetricsPrometheus, MetricsCloudWatch, MetricsNone:
	default:
		return fmt.Errorf("unknown METRICS_BACKEND %q", c.MetricsBackend)
	}

	if c.StorageDriver == StorageSQLite && c.SQLitePath == "" {
		return fmt.Errorf("SQLITE_PATH is required for the sqlite driver")
	}
	if c.StorageDriver == StorageDynamoDB && c.DynamoDBTable == "" {
		return fmt.Errorf("DYNAMODB_TABLE is required for the dynamodb driver")
	}

	if c.EnableWriteAPI && !c.IsDevelopment() && c.WriteAPIToken == "" {
		return fmt.Errorf("WRITE_API_TOKEN is required when the write API is enabled outside development")
	}
	if c.EnableWriteAPI && c.WriteRateLimit <= 0 {
		return fmt.Errorf("WRITE_RATE_LIMIT must be positive, got %d", c.WriteRateLimit)
	}

	if c.IsProduction() {
		if c.StorageDriver == StorageMemory {
			return fmt.Errorf("the memory storage driver cannot be used in production")
		}
		if c.WatchSeed {
			return fmt.Errorf("WATCH_SEED is a development feature")
		}
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// NeedsAWS reports whether any configured component talks to AWS
func (c *Config) NeedsAWS() bool {
	return c.StorageDriver == StorageDynamoDB ||
		c.EventBusName != "" ||
		(c.EnableMetrics && c.MetricsBackend == MetricsCloudWatch)
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration environment variable with a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		if ms, err := strconv.Atoi(value); err == nil {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return defaultValue
}

// getEnvList gets a comma-separated environment variable
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
