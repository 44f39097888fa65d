// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package journal

import (
	"context"
	"time"

	"github.com/tejzpr/moodlog-mcp/internal/mood"
)

// Safe is the user-facing view of a Journal. Storage failures never reach the
// caller: they are logged, counted, and replaced by an empty or default value
// so journaling is never blocked by a storage hiccup.
type Safe struct {
	j *Journal
}

// Safe returns the degrading adapter for j
func (j *Journal) Safe() *Safe {
	return &Safe{j: j}
}

// Journal returns the strict journal behind s
func (s *Safe) Journal() *Journal {
	return s.j
}

func (s *Safe) degrade(op string, err error) {
	kind := kindOf(err)
	s.j.log.Warnw("storage failure, using fallback", "op", op, "kind", kind, "error", err)
	s.j.metrics.Degraded(op, kind)
}

// Save stores e and reports success
func (s *Safe) Save(ctx context.Context, e *mood.Entry) bool {
	if err := s.j.SaveEntry(ctx, e); err != nil {
		s.degrade("save_entry", err)
		return false
	}
	return true
}

// List returns every entry, or none if storage is unreadable
func (s *Safe) List(ctx context.Context) []mood.Entry {
	entries, err := s.j.ListEntries(ctx)
	if err != nil {
		s.degrade("list_entries", err)
		return []mood.Entry{}
	}
	return entries
}

// DeleteByID removes an entry. Deleting an unknown id still reports true, so
// the result does not tell whether anything was removed.
func (s *Safe) DeleteByID(ctx context.Context, id string) bool {
	if err := s.j.DeleteEntry(ctx, id); err != nil {
		s.degrade("delete_entry", err)
		return false
	}
	return true
}

// ListByDateRange returns the entries dated within [start, end]
func (s *Safe) ListByDateRange(ctx context.Context, start, end time.Time) []mood.Entry {
	entries, err := s.j.EntriesBetween(ctx, start, end)
	if err != nil {
		s.degrade("list_range", err)
		return []mood.Entry{}
	}
	return entries
}

// UserStats returns the cached stats, zero on failure
func (s *Safe) UserStats(ctx context.Context) mood.UserStats {
	stats, err := s.j.Stats(ctx)
	if err != nil {
		s.degrade("get_stats", err)
		return mood.UserStats{}
	}
	return stats
}

// ConfiguredMedications returns the catalog, the defaults on failure
func (s *Safe) ConfiguredMedications(ctx context.Context) []mood.ConfiguredMedication {
	meds, err := s.j.ConfiguredMedications(ctx)
	if err != nil {
		s.degrade("get_medications", err)
		return mood.DefaultMedications()
	}
	return meds
}

// SaveConfiguredMedications overwrites the catalog and reports success
func (s *Safe) SaveConfiguredMedications(ctx context.Context, meds []mood.ConfiguredMedication) bool {
	if _, err := s.j.SaveConfiguredMedications(ctx, meds); err != nil {
		s.degrade("save_medications", err)
		return false
	}
	return true
}

// ReminderSettings returns the settings, the defaults on failure
func (s *Safe) ReminderSettings(ctx context.Context) mood.ReminderSettings {
	settings, err := s.j.ReminderSettings(ctx)
	if err != nil {
		s.degrade("get_reminders", err)
		return mood.DefaultReminderSettings()
	}
	return settings
}

// SaveReminderSettings overwrites the settings and reports success
func (s *Safe) SaveReminderSettings(ctx context.Context, settings mood.ReminderSettings) bool {
	if err := s.j.SaveReminderSettings(ctx, settings); err != nil {
		s.degrade("save_reminders", err)
		return false
	}
	return true
}
