// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package kvstore persists JSON blobs under fixed string keys.
package kvstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tejzpr/moodlog-mcp/internal/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Storage keys, shared with exports of the mobile app
const (
	KeyEntries     = "moodtracker_entries"
	KeyStats       = "moodtracker_stats"
	KeyReminders   = "moodtracker_reminders"
	KeyMedications = "moodtracker_medications"
)

// ErrNotFound is returned by Get when nothing is stored under the key
var ErrNotFound = errors.New("key not found")

// Store is a string key-value store
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// GormStore keeps items in the moodlog_kv_items table
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a store on an already migrated database
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Get returns the value under key or ErrNotFound
func (s *GormStore) Get(ctx context.Context, key string) (string, error) {
	var item database.KVItem
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return item.Value, nil
}

// Set upserts the value under key
func (s *GormStore) Set(ctx context.Context, key, value string) error {
	item := database.KVItem{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&item).Error
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Remove deletes key; removing a missing key is not an error
func (s *GormStore) Remove(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("key = ?", key).Delete(&database.KVItem{}).Error; err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

// MemoryStore is an in-process store, used by tests and dry runs
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]string

	// FailGet and FailSet inject errors for the given keys
	FailGet map[string]error
	FailSet map[string]error
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items:   make(map[string]string),
		FailGet: make(map[string]error),
		FailSet: make(map[string]error),
	}
}

// Get returns the value under key or ErrNotFound
func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.FailGet[key]; err != nil {
		return "", err
	}
	value, ok := s.items[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

// Set stores value under key
func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.FailSet[key]; err != nil {
		return err
	}
	s.items[key] = value
	return nil
}

// Remove deletes key
func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, key)
	return nil
}
