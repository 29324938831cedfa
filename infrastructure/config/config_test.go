package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.Equal(t, MetricsPrometheus, cfg.MetricsBackend)
	assert.False(t, cfg.EnableWriteAPI)
	assert.False(t, cfg.IsLambda)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.NeedsAWS())
}

func TestLoadConfig_FileThenEnvironment(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "loopsite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
storage_driver: sqlite
sqlite_path: /tmp/site.db
shutdown_timeout: 5s
cors_origins:
  - https://looprevenue.example
enable_write_api: true
`), 0o644))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SQLITE_PATH", "/var/lib/site.db")
	t.Setenv("METRICS_FLUSH", "1500")

	// Act
	cfg, err := LoadConfig()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, StorageSQLite, cfg.StorageDriver)
	assert.Equal(t, "/var/lib/site.db", cfg.SQLitePath)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 1500*time.Millisecond, cfg.MetricsFlush)
	assert.Equal(t, []string{"https://looprevenue.example"}, cfg.CORSOrigins)
	assert.True(t, cfg.EnableWriteAPI)
	assert.Equal(t, ":8080", cfg.ServerAddress)
}

func TestLoadConfig_FileErrors(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("CONFIG_FILE", filepath.Join(dir, "missing.yaml"))
	_, err := LoadConfig()
	assert.Error(t, err)

	path := filepath.Join(dir, "typo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage_drivr: sqlite\n"), 0o644))
	t.Setenv("CONFIG_FILE", path)
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_EnvironmentList(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "unknown driver", mutate: func(c *Config) { c.StorageDriver = "postgres" }, wantErr: true},
		{name: "unknown metrics backend", mutate: func(c *Config) { c.MetricsBackend = "statsd" }, wantErr: true},
		{name: "sqlite without path", mutate: func(c *Config) { c.StorageDriver = StorageSQLite; c.SQLitePath = "" }, wantErr: true},
		{name: "dynamodb without table", mutate: func(c *Config) { c.StorageDriver = StorageDynamoDB; c.DynamoDBTable = "" }, wantErr: true},
		{name: "write API without token in staging", mutate: func(c *Config) { c.Environment = "staging"; c.EnableWriteAPI = true }, wantErr: true},
		{name: "write API in development", mutate: func(c *Config) { c.EnableWriteAPI = true }},
		{name: "write API with zero rate limit", mutate: func(c *Config) { c.EnableWriteAPI = true; c.WriteRateLimit = 0 }, wantErr: true},
		{name: "write API with negative rate limit", mutate: func(c *Config) { c.EnableWriteAPI = true; c.WriteRateLimit = -5 }, wantErr: true},
		{name: "zero rate limit without write API", mutate: func(c *Config) { c.WriteRateLimit = 0 }},
		{name: "memory in production", mutate: func(c *Config) { c.Environment = "production" }, wantErr: true},
		{
			name: "dynamodb in production",
			mutate: func(c *Config) {
				c.Environment = "production"
				c.StorageDriver = StorageDynamoDB
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
