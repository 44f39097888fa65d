// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package locking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tejzpr/moodlog-mcp/internal/database"
	"gorm.io/gorm"
)

// DefaultLockTTL is the default time-to-live for locks
const DefaultLockTTL = 30 * time.Second

// MaxRetries is the default number of acquisition attempts
const MaxRetries = 20

// RetryDelay is the initial delay between attempts
const RetryDelay = 50 * time.Millisecond

// ErrLockHeld is returned when another holder keeps the lock past all retries
var ErrLockHeld = errors.New("write lock held by another process")

// Locker manages row-based write locks keyed by storage key
type Locker struct {
	db      *gorm.DB
	lockTTL time.Duration
	retries int
	delay   time.Duration
	now     func() time.Time
}

// NewLocker creates a new locker instance
func NewLocker(db *gorm.DB) *Locker {
	return &Locker{
		db:      db,
		lockTTL: DefaultLockTTL,
		retries: MaxRetries,
		delay:   RetryDelay,
		now:     time.Now,
	}
}

// WithTTL sets a custom TTL for locks
func (l *Locker) WithTTL(ttl time.Duration) *Locker {
	l.lockTTL = ttl
	return l
}

// WithRetries sets a custom number of retries and initial delay
func (l *Locker) WithRetries(retries int, delay time.Duration) *Locker {
	l.retries = retries
	l.delay = delay
	return l
}

// Acquire attempts to take the lock for key.
// Returns false if another holder owns an unexpired lock.
func (l *Locker) Acquire(ctx context.Context, key, holder string) (bool, error) {
	now := l.now()
	expiresAt := now.Add(l.lockTTL)
	db := l.db.WithContext(ctx)

	var existing database.WriteLock
	err := db.Where("key = ?", key).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		lock := database.WriteLock{
			Key:       key,
			Version:   1,
			LockedBy:  holder,
			LockedAt:  now,
			ExpiresAt: expiresAt,
		}
		if err := db.Create(&lock).Error; err != nil {
			// Lost the insert race to another holder
			return false, nil
		}
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read lock: %w", err)
	}

	if !existing.IsExpired(now) && existing.LockedBy != holder {
		return false, nil
	}

	result := db.Model(&database.WriteLock{}).
		Where("key = ? AND version = ?", key, existing.Version).
		Updates(map[string]interface{}{
			"locked_by":  holder,
			"locked_at":  now,
			"expires_at": expiresAt,
			"version":    existing.Version + 1,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to take over lock: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// Release releases a lock held by holder
func (l *Locker) Release(ctx context.Context, key, holder string) error {
	return l.db.WithContext(ctx).
		Where("key = ? AND locked_by = ?", key, holder).
		Delete(&database.WriteLock{}).Error
}

// IsLocked reports whether key is held by an unexpired lock and by whom
func (l *Locker) IsLocked(ctx context.Context, key string) (bool, string, error) {
	var lock database.WriteLock
	err := l.db.WithContext(ctx).Where("key = ?", key).First(&lock).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, "", nil
	}
	if err != nil {
		return false, "", err
	}
	if lock.IsExpired(l.now()) {
		return false, "", nil
	}
	return true, lock.LockedBy, nil
}

// CleanupExpired removes all expired locks
func (l *Locker) CleanupExpired(ctx context.Context) (int64, error) {
	result := l.db.WithContext(ctx).Where("expires_at < ?", l.now()).Delete(&database.WriteLock{})
	return result.RowsAffected, result.Error
}

// WithLock runs fn while holding the lock on key, retrying acquisition with
// exponential backoff. The lock is released when fn returns.
func (l *Locker) WithLock(ctx context.Context, key, holder string, fn func() error) error {
	delay := l.delay
	for attempt := 0; attempt < l.retries; attempt++ {
		acquired, err := l.Acquire(ctx, key, holder)
		if err != nil {
			return fmt.Errorf("failed to acquire lock: %w", err)
		}
		if acquired {
			defer l.Release(context.WithoutCancel(ctx), key, holder) //nolint:errcheck
			return fn()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		if delay < time.Second {
			delay *= 2
		}
	}
	return ErrLockHeld
}
