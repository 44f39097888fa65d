// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package journal is the local mood journal: entries, the medication catalog,
// reminder settings and the derived stats cache, each stored as one JSON blob.
package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tejzpr/moodlog-mcp/internal/kvstore"
	"github.com/tejzpr/moodlog-mcp/internal/locking"
	"github.com/tejzpr/moodlog-mcp/internal/logging"
	"github.com/tejzpr/moodlog-mcp/internal/metrics"
	"github.com/tejzpr/moodlog-mcp/internal/mood"
	"github.com/tejzpr/moodlog-mcp/internal/stats"
)

// Options configures a Journal. Zero values fall back to sensible defaults.
type Options struct {
	Location *time.Location
	Policy   stats.Policy
	Logger   *logging.Logger
	Metrics  *metrics.Recorder
	Locker   *locking.Locker // optional cross-process write lock
	Holder   string          // lock holder id, defaults to a random uuid
	Now      func() time.Time
}

// Journal owns the stored state. Writes are serialised in-process, and across
// processes when a Locker is configured.
type Journal struct {
	kv      kvstore.Store
	loc     *time.Location
	policy  stats.Policy
	log     *logging.Logger
	metrics *metrics.Recorder
	locker  *locking.Locker
	holder  string
	now     func() time.Time

	mu sync.Mutex
}

// New creates a journal over kv
func New(kv kvstore.Store, opts Options) *Journal {
	j := &Journal{
		kv:      kv,
		loc:     opts.Location,
		policy:  opts.Policy,
		log:     opts.Logger,
		metrics: opts.Metrics,
		locker:  opts.Locker,
		holder:  opts.Holder,
		now:     opts.Now,
	}
	if j.loc == nil {
		j.loc = time.Local
	}
	if j.policy == "" {
		j.policy = stats.PolicyHistory
	}
	if j.log == nil {
		j.log = logging.Nop()
	}
	j.log = j.log.WithComponent("journal")
	if j.holder == "" {
		j.holder = uuid.NewString()
	}
	if j.now == nil {
		j.now = time.Now
	}
	return j
}

// Location is the zone used for day keys
func (j *Journal) Location() *time.Location {
	return j.loc
}

// Now returns the journal clock in its zone
func (j *Journal) Now() time.Time {
	return j.now().In(j.loc)
}

// Metrics returns the recorder, possibly nil
func (j *Journal) Metrics() *metrics.Recorder {
	return j.metrics
}

// readJSON decodes key into v. found is false when nothing is stored.
func (j *Journal) readJSON(ctx context.Context, op, key string, v interface{}) (bool, error) {
	raw, err := j.kv.Get(ctx, key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, &StorageError{Op: op, Key: key, Kind: KindIO, Err: err}
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, &StorageError{Op: op, Key: key, Kind: KindDecode, Err: err}
	}
	return true, nil
}

func (j *Journal) writeJSON(ctx context.Context, op, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return &StorageError{Op: op, Key: key, Kind: KindDecode, Err: err}
	}
	if err := j.kv.Set(ctx, key, string(data)); err != nil {
		return &StorageError{Op: op, Key: key, Kind: KindIO, Err: err}
	}
	return nil
}

// withWriteLock serialises a read-modify-write cycle on key
func (j *Journal) withWriteLock(ctx context.Context, key string, fn func() error) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.locker == nil {
		return fn()
	}
	return j.locker.WithLock(ctx, key, j.holder, fn)
}

// ListEntries returns entries in storage order (append order unless replaced)
func (j *Journal) ListEntries(ctx context.Context) ([]mood.Entry, error) {
	entries := []mood.Entry{}
	if _, err := j.readJSON(ctx, "list_entries", kvstore.KeyEntries, &entries); err != nil {
		return []mood.Entry{}, err
	}
	if entries == nil {
		entries = []mood.Entry{}
	}
	return entries, nil
}

// SaveEntry inserts or replaces e by id. An empty id is replaced by a fresh
// one, visible to the caller through e. The stats cache is refreshed after the
// write; a refresh failure is logged and does not undo the write.
func (j *Journal) SaveEntry(ctx context.Context, e *mood.Entry) error {
	if err := mood.Validate(e); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	return j.withWriteLock(ctx, kvstore.KeyEntries, func() error {
		entries, err := j.ListEntries(ctx)
		if err != nil {
			return err
		}

		// The caller's entry only gets its id once the write succeeded
		saved := *e
		if saved.ID == "" {
			saved.ID = uuid.NewString()
		}

		replaced := false
		for i := range entries {
			if entries[i].ID == saved.ID {
				entries[i] = saved
				replaced = true
				break
			}
		}
		if !replaced {
			entries = append(entries, saved)
		}

		if err := j.writeJSON(ctx, "save_entry", kvstore.KeyEntries, entries); err != nil {
			return err
		}
		e.ID = saved.ID
		j.metrics.EntrySaved()
		j.log.Debugw("entry saved", "id", saved.ID, "replaced", replaced, "total", len(entries))

		j.refreshStats(ctx, entries)
		return nil
	})
}

// DeleteEntry removes the entry with id. Deleting an unknown id is a no-op;
// ErrNoEntries is returned only when nothing has ever been stored.
func (j *Journal) DeleteEntry(ctx context.Context, id string) error {
	return j.withWriteLock(ctx, kvstore.KeyEntries, func() error {
		var entries []mood.Entry
		found, err := j.readJSON(ctx, "delete_entry", kvstore.KeyEntries, &entries)
		if err != nil {
			return err
		}
		if !found {
			return ErrNoEntries
		}

		kept := make([]mood.Entry, 0, len(entries))
		for _, e := range entries {
			if e.ID != id {
				kept = append(kept, e)
			}
		}

		if err := j.writeJSON(ctx, "delete_entry", kvstore.KeyEntries, kept); err != nil {
			return err
		}
		j.log.Debugw("entry deleted", "id", id, "removed", len(entries)-len(kept))

		j.refreshStats(ctx, kept)
		return nil
	})
}

// EntriesBetween returns the entries dated within [start, end], in storage order
func (j *Journal) EntriesBetween(ctx context.Context, start, end time.Time) ([]mood.Entry, error) {
	entries, err := j.ListEntries(ctx)
	if err != nil {
		return []mood.Entry{}, err
	}
	return stats.FilterWindow(entries, start, end, j.loc), nil
}

// Clear removes every entry and the stats cache
func (j *Journal) Clear(ctx context.Context) error {
	return j.withWriteLock(ctx, kvstore.KeyEntries, func() error {
		if err := j.kv.Remove(ctx, kvstore.KeyEntries); err != nil {
			return &StorageError{Op: "clear", Key: kvstore.KeyEntries, Kind: KindIO, Err: err}
		}
		if err := j.kv.Remove(ctx, kvstore.KeyStats); err != nil {
			return &StorageError{Op: "clear", Key: kvstore.KeyStats, Kind: KindIO, Err: err}
		}
		return nil
	})
}
