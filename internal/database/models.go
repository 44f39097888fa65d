// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package database

import (
	"time"
)

// KVItem is one JSON blob stored under a fixed key
type KVItem struct {
	Key       string    `gorm:"primaryKey;size:191" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for KVItem
func (KVItem) TableName() string {
	return "moodlog_kv_items"
}

// WriteLock serialises read-modify-write cycles on a key across processes
type WriteLock struct {
	Key       string    `gorm:"primaryKey;size:191" json:"key"`
	Version   int64     `gorm:"not null;default:1" json:"version"`
	LockedBy  string    `gorm:"not null" json:"locked_by"`
	LockedAt  time.Time `gorm:"not null" json:"locked_at"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
}

// TableName specifies the table name for WriteLock
func (WriteLock) TableName() string {
	return "moodlog_write_locks"
}

// IsExpired returns true if the lock has expired
func (l *WriteLock) IsExpired(now time.Time) bool {
	return now.After(l.ExpiresAt)
}
