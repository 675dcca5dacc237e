package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/biotrust-cli/internal/scrape"
)

func chtemp(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
}

func TestLoadDefaults(t *testing.T) {
	chtemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "biotrust.db", cfg.Store.SQLitePath)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "biotrust-cli/1.0", cfg.Scrape.UserAgent)
	assert.Equal(t, 30, cfg.Scrape.TimeoutSecs)
	assert.Equal(t, 3, cfg.Scrape.MaxRetries)
	assert.Equal(t, 4, cfg.Ingest.MaxConcurrent)
	assert.False(t, cfg.Ingest.Summarize)
	assert.Equal(t, "claude-sonnet-4-5-20250929", cfg.Anthropic.Model)
}

func TestLoadFromYAML(t *testing.T) {
	chtemp(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/biotrust
log:
  level: debug
  format: console
scrape:
  sources:
    - name: biotech-ir
      company: Biotech Corp
      index_url: https://example.com/newsroom
      item_selector: article
`
	require.NoError(t, os.WriteFile("config.yaml", []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	require.Len(t, cfg.Scrape.Sources, 1)
	assert.Equal(t, "Biotech Corp", cfg.Scrape.Sources[0].Company)
	assert.Equal(t, "https://example.com/newsroom", cfg.Scrape.Sources[0].IndexURL)
	// Defaults still apply for unset values
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	chtemp(t)

	yaml := `
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(".", "config.yaml"), []byte(yaml), 0644))

	t.Setenv("BIOTRUST_STORE_DRIVER", "postgres")
	t.Setenv("BIOTRUST_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func validConfig() *Config {
	return &Config{
		Store:  StoreConfig{Driver: "sqlite", SQLitePath: "biotrust.db"},
		Ingest: IngestConfig{MaxConcurrent: 4},
		Server: ServerConfig{Port: 8080},
	}
}

func TestValidateCLI(t *testing.T) {
	assert.NoError(t, validConfig().Validate("cli"))
}

func TestValidatePostgresNeedsURL(t *testing.T) {
	cfg := validConfig()
	cfg.Store.Driver = "postgres"

	err := cfg.Validate("cli")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required")
}

func TestValidateUnknownDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Store.Driver = "oracle"

	err := cfg.Validate("cli")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver must be sqlite or postgres")
}

func TestValidateIngest(t *testing.T) {
	cfg := validConfig()

	err := cfg.Validate("ingest")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "scrape.sources is required")

	cfg.Scrape.Sources = []scrape.Source{{Name: "ir", IndexURL: "https://example.com"}}
	assert.NoError(t, cfg.Validate("ingest"))

	cfg.Ingest.Summarize = true
	err = cfg.Validate("ingest")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic.key is required")

	cfg.Anthropic.Key = "sk-ant-key"
	assert.NoError(t, cfg.Validate("ingest"))

	cfg.Ingest.MaxConcurrent = 0
	err = cfg.Validate("ingest")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ingest.max_concurrent must be between 1 and 32")
}

func TestValidateServe(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateUnknownMode(t *testing.T) {
	err := validConfig().Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestInitLoggerConsole(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	assert.Error(t, InitLogger(LogConfig{Level: "invalid", Format: "json"}))
}
