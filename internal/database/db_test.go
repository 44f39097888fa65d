// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package database

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func testConfig(t *testing.T) *Config {
	return &Config{
		Type:       "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "test.db"),
		LogLevel:   logger.Silent,
	}
}

func TestConnect_SQLite(t *testing.T) {
	db, err := Connect(testConfig(t))
	require.NoError(t, err)
	require.NotNil(t, db)

	assert.NoError(t, Ping(db))
	assert.NoError(t, Close(db))
}

func TestConnect_InvalidType(t *testing.T) {
	cfg := &Config{
		Type:     "mysql",
		LogLevel: logger.Silent,
	}

	db, err := Connect(cfg)
	assert.Error(t, err)
	assert.Nil(t, db)
	assert.Contains(t, err.Error(), "unsupported database type")
}

func TestEnsureSQLiteDir(t *testing.T) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "subdir", "another", "test.db")

	err := ensureSQLiteDir(dbPath)
	require.NoError(t, err)

	info, err := os.Stat(filepath.Dir(dbPath))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestOpen_Migrates(t *testing.T) {
	db, err := Open(testConfig(t))
	require.NoError(t, err)
	defer func() { _ = Close(db) }()

	assert.True(t, db.Migrator().HasTable(&KVItem{}))
	assert.True(t, db.Migrator().HasTable(&WriteLock{}))
}

func TestKVItem_CRUD(t *testing.T) {
	db, err := Open(testConfig(t))
	require.NoError(t, err)
	defer func() { _ = Close(db) }()

	item := KVItem{Key: "moodtracker_entries", Value: "[]"}
	require.NoError(t, db.Create(&item).Error)

	var loaded KVItem
	require.NoError(t, db.First(&loaded, "key = ?", "moodtracker_entries").Error)
	assert.Equal(t, "[]", loaded.Value)

	require.NoError(t, db.Delete(&KVItem{}, "key = ?", "moodtracker_entries").Error)
	err = db.First(&loaded, "key = ?", "moodtracker_entries").Error
	assert.Error(t, err)
}

func TestWriteLock_IsExpired(t *testing.T) {
	now := time.Now()
	lock := WriteLock{ExpiresAt: now.Add(time.Minute)}
	assert.False(t, lock.IsExpired(now))
	assert.True(t, lock.IsExpired(now.Add(2*time.Minute)))
}
