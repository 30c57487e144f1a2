package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Store drivers.
const (
	DriverMemory  = "memory"
	DriverSQLite  = "sqlite"
	DriverMongoDB = "mongodb"
)

// AI providers.
const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

// Config represents the full application configuration surface.
type Config struct {
	Server        ServerConfig
	Log           LogConfig
	Store         StoreConfig
	MongoDB       MongoDBConfig
	AI            AIConfig
	Sheets        SheetsConfig
	Notifications NotificationConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// LogConfig holds logger options.
type LogConfig struct {
	Level string
}

// StoreConfig selects where the libraries are persisted.
type StoreConfig struct {
	Driver     string
	SQLitePath string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// AIConfig holds settings for the diet formulation collaborator.
type AIConfig struct {
	Provider       string
	GeminiKey      string
	GeminiModel    string
	AnthropicKey   string
	AnthropicModel string
	Timeout        time.Duration
}

// SheetsConfig contains configuration required to publish to Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
	Range           string
	SyncCron        string
}

// NotificationConfig holds notification bus options.
type NotificationConfig struct {
	TTL time.Duration
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	aiTimeout, err := durationWithDefault("AI_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}
	notificationTTL, err := durationWithDefault("NOTIFICATION_TTL", 5*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Log: LogConfig{
			Level: getenvWithDefault("LOG_LEVEL", "info"),
		},
		Store: StoreConfig{
			Driver:     getenvWithDefault("STORE_DRIVER", DriverSQLite),
			SQLitePath: getenvWithDefault("SQLITE_PATH", "data/agribalance.db"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "agribalance"),
		},
		AI: AIConfig{
			Provider:       getenvWithDefault("AI_PROVIDER", ProviderGemini),
			GeminiKey:      os.Getenv("GEMINI_API_KEY"),
			GeminiModel:    os.Getenv("GEMINI_MODEL"),
			AnthropicKey:   os.Getenv("ANTHROPIC_API_KEY"),
			AnthropicModel: os.Getenv("ANTHROPIC_MODEL"),
			Timeout:        aiTimeout,
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_ID"),
			Range:           getenvWithDefault("SHEETS_RANGE", "Formulaciones!A1"),
			SyncCron:        os.Getenv("SHEETS_SYNC_CRON"),
		},
		Notifications: NotificationConfig{
			TTL: notificationTTL,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated. A
// missing AI key is not an error: formulation requests report it instead.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch c.Store.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			return errors.New("SQLITE_PATH must be provided when STORE_DRIVER=sqlite")
		}
	case DriverMongoDB:
		if c.MongoDB.URI == "" {
			return errors.New("MONGODB_URI must be provided when STORE_DRIVER=mongodb")
		}
		if c.MongoDB.DBName == "" {
			return errors.New("MONGODB_DB_NAME must not be empty")
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be one of memory, sqlite, mongodb (got %q)", c.Store.Driver)
	}

	switch c.AI.Provider {
	case ProviderGemini, ProviderAnthropic:
	default:
		return fmt.Errorf("AI_PROVIDER must be gemini or anthropic (got %q)", c.AI.Provider)
	}

	if c.AI.Timeout <= 0 {
		return errors.New("AI_TIMEOUT must be positive")
	}

	if c.Sheets.SyncCron != "" {
		if !c.Sheets.Enabled() {
			return errors.New("SHEETS_SYNC_CRON requires GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_ID")
		}
		if _, err := cron.ParseStandard(c.Sheets.SyncCron); err != nil {
			return fmt.Errorf("SHEETS_SYNC_CRON is invalid: %w", err)
		}
	}

	if c.Sheets.Enabled() && c.Sheets.Range == "" {
		return errors.New("SHEETS_RANGE must not be empty")
	}

	return nil
}

// Enabled reports whether publishing to Google Sheets is configured.
func (s SheetsConfig) Enabled() bool {
	return s.CredentialsPath != "" && s.SpreadsheetID != ""
}

// APIKey returns the key of the selected provider.
func (a AIConfig) APIKey() string {
	if a.Provider == ProviderAnthropic {
		return a.AnthropicKey
	}
	return a.GeminiKey
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func durationWithDefault(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration such as 60s: %w", key, err)
	}
	return d, nil
}
