// Package config provides configuration management for beanrecon.
// It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config represents the application configuration.
type Config struct {
	Ledger LedgerConfig
	Import ImportConfig
	Debug  bool
}

// LedgerConfig represents ledger-related configuration.
type LedgerConfig struct {
	Root       string
	DBPath     string
	PendingDir string
}

// ImportConfig represents export import configuration.
type ImportConfig struct {
	Currency           string
	ProfilePath        string
	PlaceholderAccount string
	AccountMetaKey     string
}

// Load loads configuration from environment variables.
// It automatically loads .env file from the current directory if available.
// You can optionally specify a custom .env file path.
func Load(envPath ...string) (*Config, error) {
	// Load .env file
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		// Try to load .env from current directory (ignore error if not found)
		_ = godotenv.Load()
	}

	config := &Config{
		Ledger: LedgerConfig{
			Root:       os.Getenv("LEDGER_ROOT"),
			DBPath:     os.Getenv("LEDGER_DB_PATH"),
			PendingDir: os.Getenv("LEDGER_PENDING_DIR"),
		},
		Import: ImportConfig{
			Currency:           getEnvOrDefault("IMPORT_CURRENCY", "USD"),
			ProfilePath:        getEnvOrDefault("IMPORT_PROFILE", "config/source-profile.yaml"),
			PlaceholderAccount: getEnvOrDefault("IMPORT_PLACEHOLDER_ACCOUNT", "Expenses:FIXME"),
			AccountMetaKey:     getEnvOrDefault("IMPORT_ACCOUNT_META_KEY", "source_id"),
		},
		Debug: os.Getenv("DEBUG") == "true",
	}

	return config, nil
}

// Validate validates the configuration.
// It checks if all required fields are set.
func (c *Config) Validate(required ...string) error {
	var missing []string

	for _, key := range required {
		var value string
		switch key {
		case "ledger.root":
			value = c.Ledger.Root
		case "ledger.dbPath":
			value = c.Ledger.DBPath
		case "ledger.pendingDir":
			value = c.Ledger.PendingDir
		case "import.currency":
			value = c.Import.Currency
		case "import.profile":
			value = c.Import.ProfilePath
		case "import.placeholderAccount":
			value = c.Import.PlaceholderAccount
		case "import.accountMetaKey":
			value = c.Import.AccountMetaKey
		}

		if value == "" {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %v\nPlease check your .env file or environment variables", missing)
	}

	return nil
}

// getEnvOrDefault returns the value of the environment variable or a default value if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
