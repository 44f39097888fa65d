// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package journal

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tejzpr/moodlog-mcp/internal/export"
	"github.com/tejzpr/moodlog-mcp/internal/kvstore"
	"github.com/tejzpr/moodlog-mcp/internal/mood"
	"github.com/tejzpr/moodlog-mcp/internal/stats"
)

// Stats returns the cached statistics, zero when none are stored
func (j *Journal) Stats(ctx context.Context) (mood.UserStats, error) {
	var s mood.UserStats
	if _, err := j.readJSON(ctx, "get_stats", kvstore.KeyStats, &s); err != nil {
		return mood.UserStats{}, err
	}
	return s, nil
}

// RecomputeStats rebuilds the stats cache from the stored entries
func (j *Journal) RecomputeStats(ctx context.Context) (mood.UserStats, error) {
	var (
		result mood.UserStats
		err    error
	)
	lockErr := j.withWriteLock(ctx, kvstore.KeyEntries, func() error {
		entries, listErr := j.ListEntries(ctx)
		if listErr != nil {
			return listErr
		}
		result, err = j.writeStats(ctx, entries)
		return err
	})
	if lockErr != nil {
		return mood.UserStats{}, lockErr
	}
	return result, nil
}

// writeStats derives stats from entries and the previous cache. An unreadable
// previous cache counts as zero.
func (j *Journal) writeStats(ctx context.Context, entries []mood.Entry) (mood.UserStats, error) {
	prev, err := j.Stats(ctx)
	if err != nil {
		j.log.Warnw("previous stats unreadable, starting from zero", "error", err)
		prev = mood.UserStats{}
	}

	next := stats.Recompute(prev, entries, j.Now(), j.loc, j.policy)
	if err := j.writeJSON(ctx, "update_stats", kvstore.KeyStats, next); err != nil {
		return mood.UserStats{}, err
	}
	return next, nil
}

// refreshStats runs after an entry write. The entry write stands even when
// the stats write fails; the next write or a rebuild repairs the cache.
func (j *Journal) refreshStats(ctx context.Context, entries []mood.Entry) {
	if _, err := j.writeStats(ctx, entries); err != nil {
		j.log.Errorw("failed to update stats", "error", err)
		j.metrics.Degraded("update_stats", kindOf(err))
	}
}

// ConfiguredMedications returns the medication catalog. The first read with
// nothing stored seeds and persists the defaults.
func (j *Journal) ConfiguredMedications(ctx context.Context) ([]mood.ConfiguredMedication, error) {
	var meds []mood.ConfiguredMedication
	found, err := j.readJSON(ctx, "get_medications", kvstore.KeyMedications, &meds)
	if err != nil {
		return nil, err
	}
	if found {
		if meds == nil {
			meds = []mood.ConfiguredMedication{}
		}
		return meds, nil
	}

	meds = mood.DefaultMedications()
	if err := j.writeJSON(ctx, "seed_medications", kvstore.KeyMedications, meds); err != nil {
		return meds, err
	}
	j.log.Infow("seeded default medications", "count", len(meds))
	return meds, nil
}

// SaveConfiguredMedications overwrites the catalog. Items without an id get
// a fresh med_ id. The stored list is returned.
func (j *Journal) SaveConfiguredMedications(ctx context.Context, meds []mood.ConfiguredMedication) ([]mood.ConfiguredMedication, error) {
	out := make([]mood.ConfiguredMedication, len(meds))
	for i, m := range meds {
		if err := mood.ValidateMedication(&m); err != nil {
			return nil, fmt.Errorf("medication %d: %w", i, err)
		}
		if m.ID == "" {
			m.ID = "med_" + uuid.NewString()
		}
		out[i] = m
	}

	if err := j.writeJSON(ctx, "save_medications", kvstore.KeyMedications, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ReminderSettings returns the stored settings or the defaults
func (j *Journal) ReminderSettings(ctx context.Context) (mood.ReminderSettings, error) {
	var s mood.ReminderSettings
	found, err := j.readJSON(ctx, "get_reminders", kvstore.KeyReminders, &s)
	if err != nil {
		return mood.DefaultReminderSettings(), err
	}
	if !found {
		return mood.DefaultReminderSettings(), nil
	}
	return s, nil
}

// SaveReminderSettings overwrites the reminder settings as given
func (j *Journal) SaveReminderSettings(ctx context.Context, s mood.ReminderSettings) error {
	return j.writeJSON(ctx, "save_reminders", kvstore.KeyReminders, s)
}

// Export composes entries, stats and reminder settings into one document.
// Unlike the other reads it fails loudly, wrapping export.ErrExportFailed.
func (j *Journal) Export(ctx context.Context) (export.Document, error) {
	entries, err := j.ListEntries(ctx)
	if err != nil {
		return export.Document{}, fmt.Errorf("%w: %w", export.ErrExportFailed, err)
	}
	s, err := j.Stats(ctx)
	if err != nil {
		return export.Document{}, fmt.Errorf("%w: %w", export.ErrExportFailed, err)
	}
	settings, err := j.ReminderSettings(ctx)
	if err != nil {
		return export.Document{}, fmt.Errorf("%w: %w", export.ErrExportFailed, err)
	}

	return export.Document{
		Entries:          entries,
		Stats:            s,
		ReminderSettings: settings,
		ExportDate:       mood.FormatDate(j.now()),
	}, nil
}
