// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/tejzpr/moodlog-mcp/internal/crypto"
)

const (
	// DefaultConfigDir is the default configuration directory
	DefaultConfigDir = ".moodlog/configs"
	// DefaultConfigFile is the default configuration filename
	DefaultConfigFile = "config.json"
	// EnvPrefix prefixes environment overrides, e.g. MOODLOG_JOURNAL_TIMEZONE
	EnvPrefix = "MOODLOG"
)

// Load reads configuration from ~/.moodlog/configs/config.json. A missing
// file is not an error; defaults and environment overrides apply.
func Load() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(homeDir, DefaultConfigDir))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return decode(v)
}

// LoadFromPath loads configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return decode(v)
}

// newViper prepares defaults and environment overrides. A .env file in the
// working directory is loaded first when present.
func newViper() *viper.Viper {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Short names shared with the other tooling around the journal database
	_ = v.BindEnv("database.type", EnvPrefix+"_DATABASE_TYPE", "DB_TYPE")
	_ = v.BindEnv("database.sqlite_path", EnvPrefix+"_DATABASE_SQLITE_PATH", "DB_PATH")
	_ = v.BindEnv("database.postgres_dsn", EnvPrefix+"_DATABASE_POSTGRES_DSN", "DB_DSN")
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("database.type", d.Database.Type)
	v.SetDefault("database.sqlite_path", d.Database.SQLitePath)
	v.SetDefault("database.postgres_dsn", "")
	v.SetDefault("database.lock_ttl_seconds", d.Database.LockTTL)

	v.SetDefault("journal.timezone", "")
	v.SetDefault("journal.longest_streak_policy", d.Journal.LongestStreakPolicy)

	v.SetDefault("archive.enabled", d.Archive.Enabled)
	v.SetDefault("archive.path", d.Archive.Path)
	v.SetDefault("archive.remote_url", "")
	v.SetDefault("archive.author", d.Archive.Author)
	v.SetDefault("archive.email", d.Archive.Email)
	v.SetDefault("archive.token_encrypted", "")
	v.SetDefault("archive.snapshot_interval_minutes", d.Archive.SnapshotInterval)

	v.SetDefault("reminders.check_interval_seconds", d.Reminders.CheckInterval)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output", d.Logging.Output)
	v.SetDefault("logging.filename", d.Logging.Filename)

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.address", d.Metrics.Address)

	v.SetDefault("security.encryption_key", "")
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.Database.Type != "sqlite" && cfg.Database.Type != "postgres" {
		return fmt.Errorf("database.type must be 'sqlite' or 'postgres', got '%s'", cfg.Database.Type)
	}
	if cfg.Database.Type == "sqlite" && cfg.Database.SQLitePath == "" {
		return fmt.Errorf("database.sqlite_path is required when type is 'sqlite'")
	}
	if cfg.Database.Type == "postgres" && cfg.Database.PostgresDSN == "" {
		return fmt.Errorf("database.postgres_dsn is required when type is 'postgres'")
	}
	if cfg.Database.LockTTL < 1 {
		return fmt.Errorf("database.lock_ttl_seconds must be at least 1, got %d", cfg.Database.LockTTL)
	}

	if _, err := cfg.Location(); err != nil {
		return err
	}
	if _, err := cfg.Policy(); err != nil {
		return fmt.Errorf("journal.longest_streak_policy: %w", err)
	}

	if cfg.Archive.Enabled && cfg.Archive.Path == "" {
		return fmt.Errorf("archive.path is required when the archive is enabled")
	}
	if cfg.Archive.SnapshotInterval < 0 {
		return fmt.Errorf("archive.snapshot_interval_minutes must not be negative, got %d", cfg.Archive.SnapshotInterval)
	}
	if cfg.Archive.TokenEncrypted != "" && cfg.Security.EncryptionKey == "" {
		return fmt.Errorf("security.encryption_key is required when archive.token_encrypted is set")
	}
	if cfg.Security.EncryptionKey != "" {
		if _, err := crypto.ParseKey(cfg.Security.EncryptionKey); err != nil {
			return fmt.Errorf("security.encryption_key: %w", err)
		}
	}

	if cfg.Reminders.CheckInterval < 1 {
		return fmt.Errorf("reminders.check_interval_seconds must be at least 1, got %d", cfg.Reminders.CheckInterval)
	}

	switch cfg.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be 'json' or 'console', got '%s'", cfg.Logging.Format)
	}
	switch cfg.Logging.Output {
	case "stderr":
	case "file":
		if cfg.Logging.Filename == "" {
			return fmt.Errorf("logging.filename is required when output is 'file'")
		}
	default:
		return fmt.Errorf("logging.output must be 'stderr' or 'file', got '%s'", cfg.Logging.Output)
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Address == "" {
		return fmt.Errorf("metrics.address is required when metrics are enabled")
	}
	return nil
}

// Validate re-checks the configuration after overrides were applied
func (c *Config) Validate() error {
	return validate(c)
}

// ArchiveToken decrypts the archive push token
func (c *Config) ArchiveToken() (string, error) {
	if c.Archive.TokenEncrypted == "" {
		return "", fmt.Errorf("archive.token_encrypted is not set")
	}
	sealer, err := crypto.NewSealerFromString(c.Security.EncryptionKey)
	if err != nil {
		return "", fmt.Errorf("security.encryption_key: %w", err)
	}
	return sealer.Open(c.Archive.TokenEncrypted)
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get user home directory: %w", err)
	}

	configPath := filepath.Join(homeDir, DefaultConfigDir)
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return nil
}

// WriteDefault writes the default configuration to
// ~/.moodlog/configs/config.json and returns its path. An existing file is
// only replaced when overwrite is set.
func WriteDefault(overwrite bool) (string, error) {
	if err := EnsureConfigDir(); err != nil {
		return "", err
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	path := filepath.Join(homeDir, DefaultConfigDir, DefaultConfigFile)

	v := viper.New()
	setDefaults(v)
	if overwrite {
		err = v.WriteConfigAs(path)
	} else {
		err = v.SafeWriteConfigAs(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return path, nil
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	base := filepath.Join(homeDir, ".moodlog")

	return &Config{
		Database: DatabaseConfig{
			Type:       "sqlite",
			SQLitePath: filepath.Join(base, "db", "moodlog.db"),
			LockTTL:    30,
		},
		Journal: JournalConfig{
			LongestStreakPolicy: "history",
		},
		Archive: ArchiveConfig{
			Enabled:          false,
			Path:             filepath.Join(base, "archive"),
			Author:           "Moodlog",
			Email:            "journal@moodlog.local",
			SnapshotInterval: 60,
		},
		Reminders: RemindersConfig{
			CheckInterval: 30,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "console",
			Output:   "stderr",
			Filename: filepath.Join(base, "logs", "moodlog.log"),
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Address: "127.0.0.1:9464",
		},
	}
}
