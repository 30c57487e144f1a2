package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"APP_PORT", "LOG_LEVEL", "STORE_DRIVER", "SQLITE_PATH", "MONGODB_URI", "MONGODB_DB_NAME",
	"AI_PROVIDER", "GEMINI_API_KEY", "GEMINI_MODEL", "ANTHROPIC_API_KEY", "ANTHROPIC_MODEL", "AI_TIMEOUT",
	"GOOGLE_SHEETS_CREDENTIALS_PATH", "GOOGLE_SHEET_ID", "SHEETS_RANGE", "SHEETS_SYNC_CRON", "NOTIFICATION_TTL",
}

// clearEnv blanks every key so values from the host do not leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func emptyEnvFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, nil, 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(emptyEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "data/agribalance.db", cfg.Store.SQLitePath)
	assert.Equal(t, ProviderGemini, cfg.AI.Provider)
	assert.Equal(t, 60*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 5*time.Second, cfg.Notifications.TTL)
	assert.Empty(t, cfg.AI.APIKey(), "a missing key is not a startup error")
	assert.False(t, cfg.Sheets.Enabled())
}

func TestLoadFromEnvFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), ".env")
	content := "APP_PORT=9090\nAI_PROVIDER=anthropic\nANTHROPIC_API_KEY=sk-test\nAI_TIMEOUT=15s\nSTORE_DRIVER=memory\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	// godotenv does not override variables that are already set, even when empty.
	for _, k := range []string{"APP_PORT", "AI_PROVIDER", "ANTHROPIC_API_KEY", "AI_TIMEOUT", "STORE_DRIVER"} {
		require.NoError(t, os.Unsetenv(k))
	}

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Equal(t, "sk-test", cfg.AI.APIKey())
	assert.Equal(t, 15*time.Second, cfg.AI.Timeout)
}

func TestLoadMissingEnvFileIsIgnored(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("AI_TIMEOUT", "soon")
	_, err := Load(emptyEnvFile(t))
	assert.ErrorContains(t, err, "AI_TIMEOUT")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{Port: "8080"},
			Store:  StoreConfig{Driver: DriverMemory},
			AI:     AIConfig{Provider: ProviderGemini, Timeout: time.Second},
			Sheets: SheetsConfig{Range: "A1"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"valid", func(*Config) {}, ""},
		{"no port", func(c *Config) { c.Server.Port = "" }, "APP_PORT"},
		{"unknown driver", func(c *Config) { c.Store.Driver = "redis" }, "STORE_DRIVER"},
		{"sqlite without path", func(c *Config) { c.Store.Driver = DriverSQLite }, "SQLITE_PATH"},
		{"mongodb without uri", func(c *Config) { c.Store.Driver = DriverMongoDB }, "MONGODB_URI"},
		{"unknown provider", func(c *Config) { c.AI.Provider = "openai" }, "AI_PROVIDER"},
		{"cron without sheets", func(c *Config) { c.Sheets.SyncCron = "0 * * * *" }, "SHEETS_SYNC_CRON"},
		{"bad cron", func(c *Config) {
			c.Sheets = SheetsConfig{CredentialsPath: "c.json", SpreadsheetID: "id", Range: "A1", SyncCron: "every hour"}
		}, "SHEETS_SYNC_CRON"},
		{"valid cron", func(c *Config) {
			c.Sheets = SheetsConfig{CredentialsPath: "c.json", SpreadsheetID: "id", Range: "A1", SyncCron: "0 * * * *"}
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}
