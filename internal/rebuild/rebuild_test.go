// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package rebuild

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tejzpr/moodlog-mcp/internal/export"
	"github.com/tejzpr/moodlog-mcp/internal/git"
	"github.com/tejzpr/moodlog-mcp/internal/journal"
	"github.com/tejzpr/moodlog-mcp/internal/kvstore"
	"github.com/tejzpr/moodlog-mcp/internal/mood"
)

var (
	testLoc = time.FixedZone("CET", 3600)
	testNow = time.Date(2024, 3, 15, 18, 30, 0, 0, testLoc)
)

func newJournal() *journal.Journal {
	return journal.New(kvstore.NewMemoryStore(), journal.Options{
		Location: testLoc,
		Now:      func() time.Time { return testNow },
	})
}

func entryOn(id string, daysAgo int, m mood.Mood) mood.Entry {
	local := testNow.AddDate(0, 0, -daysAgo)
	e := mood.DefaultEntry(time.Date(local.Year(), local.Month(), local.Day(), 9, 0, 0, 0, testLoc))
	e.ID = id
	e.Mood = m
	return e
}

// populatedArchive snapshots a journal with three entries and returns its path
func populatedArchive(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	source := newJournal()
	for i, id := range []string{"a", "b", "c"} {
		e := entryOn(id, i, mood.High)
		e.Notes = "note " + id
		require.NoError(t, source.SaveEntry(ctx, &e))
	}
	doc, err := source.Export(ctx)
	require.NoError(t, err)

	archive, err := git.OpenArchive(git.ArchiveOptions{
		Path:     filepath.Join(t.TempDir(), "archive"),
		Location: testLoc,
	})
	require.NoError(t, err)
	_, err = archive.Snapshot(doc)
	require.NoError(t, err)
	return archive.Path()
}

func TestFromArchive(t *testing.T) {
	ctx := context.Background()
	repoPath := populatedArchive(t)

	j := newJournal()
	result, err := FromArchive(ctx, j, repoPath, Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Processed)
	assert.Equal(t, 3, result.Created)
	assert.Empty(t, result.Errors)
	assert.Equal(t, mood.UserStats{CurrentStreak: 3, LongestStreak: 3, TotalEntries: 3}, result.Stats)

	entries, err := j.ListEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	ids := []string{entries[0].ID, entries[1].ID, entries[2].ID}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
	for _, e := range entries {
		assert.Equal(t, "note "+e.ID, e.Notes)
	}
}

func TestFromArchive_RequiresForceWhenNotEmpty(t *testing.T) {
	ctx := context.Background()
	repoPath := populatedArchive(t)

	j := newJournal()
	existing := entryOn("old", 5, mood.Low)
	require.NoError(t, j.SaveEntry(ctx, &existing))

	_, err := FromArchive(ctx, j, repoPath, Options{})
	assert.ErrorContains(t, err, "--force")

	result, err := FromArchive(ctx, j, repoPath, Options{Force: true})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Created)

	entries, err := j.ListEntries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestFromArchive_KeepsOrderIdsAndNotes(t *testing.T) {
	ctx := context.Background()
	source := newJournal()
	ids := []string{"z", "a", "Entry.1", "entry-1"}
	for _, id := range ids {
		e := entryOn(id, 0, mood.Neutral)
		e.Notes = "  indented\n"
		require.NoError(t, source.SaveEntry(ctx, &e))
	}
	doc, err := source.Export(ctx)
	require.NoError(t, err)

	archive, err := git.OpenArchive(git.ArchiveOptions{
		Path:     filepath.Join(t.TempDir(), "archive"),
		Location: testLoc,
	})
	require.NoError(t, err)
	_, err = archive.Snapshot(doc)
	require.NoError(t, err)

	files, err := os.ReadDir(filepath.Join(archive.Path(), git.EntriesDir))
	require.NoError(t, err)
	assert.Len(t, files, len(ids))

	restore := func(t *testing.T) []mood.Entry {
		t.Helper()
		j := newJournal()
		result, err := FromArchive(ctx, j, archive.Path(), Options{})
		require.NoError(t, err)
		assert.Equal(t, len(ids), result.Created)
		entries, err := j.ListEntries(ctx)
		require.NoError(t, err)
		return entries
	}

	entries := restore(t)
	got := make([]string, len(entries))
	for i, e := range entries {
		got[i] = e.ID
		assert.Equal(t, "  indented\n", e.Notes)
	}
	assert.Equal(t, ids, got)

	// Without export.json every entry file still restores
	require.NoError(t, os.Remove(filepath.Join(archive.Path(), git.DocumentFile)))
	entries = restore(t)
	got = got[:0]
	for _, e := range entries {
		got = append(got, e.ID)
		assert.Equal(t, "  indented\n", e.Notes)
	}
	assert.ElementsMatch(t, ids, got)
}

func TestFromArchive_CollectsFileErrors(t *testing.T) {
	ctx := context.Background()
	repoPath := populatedArchive(t)
	require.NoError(t, os.Remove(filepath.Join(repoPath, git.DocumentFile)))
	require.NoError(t, os.WriteFile(
		filepath.Join(repoPath, git.EntriesDir, "broken.md"),
		[]byte("---\nmood: [\n---\n"), 0644))
	require.NoError(t, os.WriteFile(
		filepath.Join(repoPath, git.EntriesDir, "README.txt"),
		[]byte("ignored"), 0644))

	result, err := FromArchive(ctx, newJournal(), repoPath, Options{})
	require.NoError(t, err)
	assert.Equal(t, 4, result.Processed)
	assert.Equal(t, 3, result.Created)
	assert.Len(t, result.Errors, 1)
}

func TestFromArchive_MissingDirectory(t *testing.T) {
	_, err := FromArchive(context.Background(), newJournal(), t.TempDir(), Options{})
	assert.Error(t, err)
}

func TestFromDocument(t *testing.T) {
	ctx := context.Background()
	settings := mood.ReminderSettings{Enabled: true, Times: []string{"08:15"}, Message: "Check in"}
	invalid := entryOn("bad", 0, mood.High)
	invalid.Mood = "elated"
	data, err := export.JSON(export.Document{
		Entries: []mood.Entry{
			entryOn("x", 1, mood.Low),
			entryOn("y", 0, mood.Neutral),
			entryOn("x", 1, mood.VeryLow),
			invalid,
		},
		ReminderSettings: settings,
		ExportDate:       "2024-03-15T10:00:00.000Z",
	})
	require.NoError(t, err)

	j := newJournal()
	result, err := FromDocument(ctx, j, data, Options{})
	require.NoError(t, err)
	assert.Equal(t, 4, result.Processed)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 1, result.Skipped)
	assert.Len(t, result.Errors, 1)

	got, err := j.ReminderSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, settings, got)

	// Duplicates keep the first occurrence
	entries, err := j.ListEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, mood.Low, entries[0].Mood)
}

func TestFromDocument_Invalid(t *testing.T) {
	_, err := FromDocument(context.Background(), newJournal(), []byte("nope"), Options{})
	assert.Error(t, err)
}

func TestStats_RepairsStaleCache(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemoryStore()
	j := journal.New(kv, journal.Options{Location: testLoc, Now: func() time.Time { return testNow }})

	for i, id := range []string{"a", "b"} {
		e := entryOn(id, i, mood.High)
		require.NoError(t, j.SaveEntry(ctx, &e))
	}
	// Simulate a crash between the entry write and the stats write
	require.NoError(t, kv.Set(ctx, kvstore.KeyStats, `{"currentStreak":0,"longestStreak":0,"totalEntries":1}`))

	stats, err := Stats(ctx, j)
	require.NoError(t, err)
	assert.Equal(t, mood.UserStats{CurrentStreak: 2, LongestStreak: 2, TotalEntries: 2}, stats)
}
