// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/tejzpr/moodlog-mcp/internal/config"
	"github.com/tejzpr/moodlog-mcp/internal/database"
	"github.com/tejzpr/moodlog-mcp/internal/git"
	"github.com/tejzpr/moodlog-mcp/internal/journal"
	"github.com/tejzpr/moodlog-mcp/internal/kvstore"
	"github.com/tejzpr/moodlog-mcp/internal/locking"
	"github.com/tejzpr/moodlog-mcp/internal/logging"
	"github.com/tejzpr/moodlog-mcp/internal/metrics"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// rootOptions holds the persistent flags
type rootOptions struct {
	configPath string
	dbType     string
	dbPath     string
	dbDSN      string
	logLevel   string
}

// app holds everything a command needs
type app struct {
	cfg     *config.Config
	log     *logging.Logger
	metrics *metrics.Recorder
	db      *gorm.DB
	locker  *locking.Locker
	journal *journal.Journal
}

// loadConfig reads the config file, then applies flag overrides (highest priority)
func loadConfig(opts *rootOptions) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFromPath(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if opts.dbType != "" {
		cfg.Database.Type = opts.dbType
	}
	if opts.dbPath != "" {
		cfg.Database.SQLitePath = opts.dbPath
	}
	if opts.dbDSN != "" {
		cfg.Database.PostgresDSN = opts.dbDSN
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// openApp loads configuration, opens the database and builds the journal
func openApp(opts *rootOptions) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Options{
		Level:    cfg.Logging.Level,
		Format:   cfg.Logging.Format,
		Output:   cfg.Logging.Output,
		Filename: cfg.Logging.Filename,
	})
	if err != nil {
		return nil, err
	}

	db, err := database.Open(&database.Config{
		Type:        cfg.Database.Type,
		SQLitePath:  cfg.Database.SQLitePath,
		PostgresDSN: cfg.Database.PostgresDSN,
		LogLevel:    gormlogger.Silent,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Validated above
	loc, _ := cfg.Location()
	policy, _ := cfg.Policy()

	rec := metrics.New()
	locker := locking.NewLocker(db).WithTTL(cfg.LockTTL())
	j := journal.New(kvstore.NewGormStore(db), journal.Options{
		Location: loc,
		Policy:   policy,
		Logger:   logger,
		Metrics:  rec,
		Locker:   locker,
	})

	logger.Debugw("journal opened", "db_type", cfg.Database.Type, "timezone", loc.String(), "policy", policy)
	return &app{cfg: cfg, log: logger, metrics: rec, db: db, locker: locker, journal: j}, nil
}

// Close releases the database and flushes the logger
func (a *app) Close() {
	if err := database.Close(a.db); err != nil {
		a.log.Warnw("failed to close database", "error", err)
	}
	_ = a.log.Sync()
}

// openArchive opens the configured archive repository
func (a *app) openArchive() (*git.Archive, error) {
	return git.OpenArchive(git.ArchiveOptions{
		Path:      a.cfg.Archive.Path,
		RemoteURL: a.cfg.Archive.RemoteURL,
		Author:    a.cfg.Archive.Author,
		Email:     a.cfg.Archive.Email,
		Location:  a.journal.Location(),
		Logger:    a.log,
	})
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
