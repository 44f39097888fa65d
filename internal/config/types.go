// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"fmt"
	"time"

	"github.com/tejzpr/moodlog-mcp/internal/stats"
)

// Config represents the complete application configuration
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Journal   JournalConfig   `mapstructure:"journal"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
	Reminders RemindersConfig `mapstructure:"reminders"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Security  SecurityConfig  `mapstructure:"security"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Type        string `mapstructure:"type"` // "sqlite" or "postgres"
	SQLitePath  string `mapstructure:"sqlite_path"`
	PostgresDSN string `mapstructure:"postgres_dsn"`
	LockTTL     int    `mapstructure:"lock_ttl_seconds"` // write lock lifetime
}

// JournalConfig holds day-key and statistics settings
type JournalConfig struct {
	Timezone            string `mapstructure:"timezone"` // IANA name, empty for the system zone
	LongestStreakPolicy string `mapstructure:"longest_streak_policy"`
}

// ArchiveConfig holds the git archive settings
type ArchiveConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	Path             string `mapstructure:"path"`
	RemoteURL        string `mapstructure:"remote_url"`
	Author           string `mapstructure:"author"`
	Email            string `mapstructure:"email"`
	TokenEncrypted   string `mapstructure:"token_encrypted"` // sealed with security.encryption_key
	SnapshotInterval int    `mapstructure:"snapshot_interval_minutes"`
}

// RemindersConfig holds the reminder scheduler settings
type RemindersConfig struct {
	CheckInterval int `mapstructure:"check_interval_seconds"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"` // "json" or "console"
	Output   string `mapstructure:"output"` // "stderr" or "file"
	Filename string `mapstructure:"filename"`
}

// MetricsConfig holds the prometheus endpoint settings
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

// SecurityConfig holds security-related settings
type SecurityConfig struct {
	EncryptionKey string `mapstructure:"encryption_key"` // base64 AES key for the archive token
}

// Location resolves the journal timezone
func (c *Config) Location() (*time.Location, error) {
	if c.Journal.Timezone == "" || c.Journal.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Journal.Timezone)
	if err != nil {
		return nil, fmt.Errorf("journal.timezone: %w", err)
	}
	return loc, nil
}

// Policy returns the longest-streak policy
func (c *Config) Policy() (stats.Policy, error) {
	return stats.ParsePolicy(c.Journal.LongestStreakPolicy)
}

// CheckInterval returns the reminder check interval
func (c *Config) CheckInterval() time.Duration {
	return time.Duration(c.Reminders.CheckInterval) * time.Second
}

// LockTTL returns how long a write lock is held before others may take it over
func (c *Config) LockTTL() time.Duration {
	return time.Duration(c.Database.LockTTL) * time.Second
}

// SnapshotInterval returns the archive snapshot interval, zero when disabled
func (c *Config) SnapshotInterval() time.Duration {
	if !c.Archive.Enabled {
		return 0
	}
	return time.Duration(c.Archive.SnapshotInterval) * time.Minute
}
