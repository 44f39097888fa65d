// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tejzpr/moodlog-mcp/internal/crypto"
	"github.com/tejzpr/moodlog-mcp/internal/database"
	"github.com/tejzpr/moodlog-mcp/internal/kvstore"
	"github.com/tejzpr/moodlog-mcp/internal/locking"
	"github.com/tejzpr/moodlog-mcp/internal/mood"
	"github.com/tejzpr/moodlog-mcp/internal/rebuild"
)

// cli runs moodlog commands against a private home directory and database
type cli struct {
	t      *testing.T
	home   string
	dbPath string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return &cli{t: t, home: home, dbPath: filepath.Join(home, "moodlog.db")}
}

func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(append([]string{"--db-path", c.dbPath, "--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	require.NoError(c.t, err, out)
	return out
}

func (c *cli) entries() []mood.Entry {
	c.t.Helper()
	var entries []mood.Entry
	require.NoError(c.t, json.Unmarshal([]byte(c.mustRun("list", "--json")), &entries))
	return entries
}

func TestLogListDelete(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("log", "high", "--intensity", "4", "--tag", "work", "--notes", "Good focus")
	assert.Contains(t, out, "Logged High")
	assert.Contains(t, out, "Current streak: 1")

	entries := c.entries()
	require.Len(t, entries, 1)
	assert.Equal(t, mood.High, entries[0].Mood)
	assert.Equal(t, 4, entries[0].Intensity)
	assert.Equal(t, []string{"work"}, entries[0].Factors.Tags)
	assert.Equal(t, "Good focus", entries[0].Notes)

	table := c.mustRun("list")
	assert.Contains(t, table, entries[0].ID)
	assert.Contains(t, table, "Good focus")

	assert.Contains(t, c.mustRun("stats"), "Total entries:  1")

	assert.Contains(t, c.mustRun("delete", entries[0].ID), "Deleted")
	assert.Empty(t, c.entries())
}

func TestLog_Rejects(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("log", "elated")
	assert.Error(t, err)

	_, err = c.run("log", "low", "--intensity", "9")
	assert.Error(t, err)

	_, err = c.run("log", "low", "--med", "med_unknown")
	assert.Error(t, err)

	_, err = c.run("log")
	assert.Error(t, err)
}

func TestLog_WithMedication(t *testing.T) {
	c := newCLI(t)

	c.mustRun("log", "neutral", "--med", "med_default_1", "--med", "med_default_2=missed")
	entries := c.entries()
	require.Len(t, entries, 1)
	require.Len(t, entries[0].Factors.Medications, 2)
	assert.Equal(t, mood.StatusTaken, entries[0].Factors.Medications[0].Status)
	assert.Equal(t, "Methylphenidate LP", entries[0].Factors.Medications[1].Name)
	assert.Equal(t, mood.StatusMissed, entries[0].Factors.Medications[1].Status)
}

func TestMeds(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("meds", "add", "--name", "Atomoxetine", "--dosage", "40mg", "--time", "08:30")
	assert.Contains(t, out, "Added Atomoxetine (med_")

	list := c.mustRun("meds", "list")
	assert.Contains(t, list, "Atomoxetine")
	assert.Contains(t, list, "med_default_1")

	c.mustRun("meds", "remove", "med_default_1")
	assert.NotContains(t, c.mustRun("meds", "list"), "med_default_1")

	_, err := c.run("meds", "remove", "med_default_1")
	assert.Error(t, err)

	_, err = c.run("meds", "add", "--name", "NoDose")
	assert.Error(t, err)

	_, err = c.run("meds", "add", "--name", "X", "--dosage", "1mg", "--time", "8am")
	assert.Error(t, err)

	_, err = c.run("meds", "add", "--name", "X", "--dosage", "1mg", "--time", "8:00")
	assert.Error(t, err)
}

func TestReminders(t *testing.T) {
	c := newCLI(t)

	assert.Contains(t, c.mustRun("reminders", "show"), "Reminders disabled at 09:00, 20:00")

	out := c.mustRun("reminders", "set", "--enabled", "--times", "08:00,21:30")
	assert.Contains(t, out, "Reminders enabled at 08:00, 21:30")

	out = c.mustRun("reminders", "show")
	assert.Contains(t, out, "Reminders enabled at 08:00, 21:30")
	assert.Contains(t, out, mood.DefaultReminderSettings().Message)

	_, err := c.run("reminders", "set", "--times", "25:00")
	assert.Error(t, err)

	_, err = c.run("reminders", "set", "--times", "9:00")
	assert.ErrorContains(t, err, "want HH:MM")

	_, err = c.run("reminders", "set", "--times", "08:00,12:00,16:00,20:00")
	assert.Error(t, err)
}

func TestSummaryAndExport(t *testing.T) {
	c := newCLI(t)
	c.mustRun("log", "low", "--notes", "Tired")

	assert.Contains(t, c.mustRun("summary"), "1 entries in the last week")

	md := c.mustRun("export", "--format", "markdown")
	assert.True(t, strings.HasPrefix(md, "---\n"))
	assert.Contains(t, md, "Tired")

	out := filepath.Join(c.home, "report.html")
	c.mustRun("export", "--format", "html", "--output", out)
	assert.FileExists(t, out)

	_, err := c.run("export", "--format", "pdf")
	assert.Error(t, err)
}

func TestArchiveSnapshotAndRebuild(t *testing.T) {
	c := newCLI(t)
	t.Setenv("MOODLOG_ARCHIVE_PATH", filepath.Join(c.home, "archive"))

	c.mustRun("log", "veryHigh", "--notes", "Shipped it")
	assert.Contains(t, c.mustRun("archive", "snapshot"), "Committed")
	assert.Contains(t, c.mustRun("archive", "snapshot"), "Archive up to date")
	assert.Contains(t, c.mustRun("archive", "log"), "Snapshot: 1 entries")

	_, err := c.run("rebuild", "archive")
	assert.ErrorContains(t, err, "--force")

	fresh := &cli{t: t, home: c.home, dbPath: filepath.Join(c.home, "fresh.db")}
	var result rebuild.Result
	require.NoError(t, json.Unmarshal([]byte(fresh.mustRun("rebuild", "archive")), &result))
	assert.Equal(t, 1, result.Created)

	entries := fresh.entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "Shipped it", entries[0].Notes)

	assert.Contains(t, fresh.mustRun("rebuild", "stats"), "Total entries:  1")
}

func TestRebuildImport(t *testing.T) {
	c := newCLI(t)
	c.mustRun("log", "high")
	path := filepath.Join(c.home, "export.json")
	c.mustRun("export", "--output", path)

	fresh := &cli{t: t, home: c.home, dbPath: filepath.Join(c.home, "fresh.db")}
	var result rebuild.Result
	require.NoError(t, json.Unmarshal([]byte(fresh.mustRun("rebuild", "import", path)), &result))
	assert.Equal(t, 1, result.Created)

	_, err := fresh.run("rebuild", "import", filepath.Join(c.home, "missing.json"))
	assert.Error(t, err)
}

func TestEncryptToken(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("encrypt-token", "ghp_secret")
	assert.Error(t, err, "no key configured")

	key := strings.TrimSpace(c.mustRun("encrypt-token", "--generate-key"))
	t.Setenv("MOODLOG_SECURITY_ENCRYPTION_KEY", key)

	sealed := strings.TrimSpace(c.mustRun("encrypt-token", "ghp_secret"))
	assert.True(t, strings.HasPrefix(sealed, "v1:"))

	sealer, err := crypto.NewSealerFromString(key)
	require.NoError(t, err)
	plain, err := sealer.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "ghp_secret", plain)
}

func TestArchivePush_RequiresToken(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("archive", "push")
	assert.ErrorContains(t, err, "token_encrypted")
}

func TestVersion(t *testing.T) {
	c := newCLI(t)
	assert.Contains(t, c.mustRun("version"), "moodlog")
}

func TestInit(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("init")
	assert.Contains(t, out, filepath.Join(c.home, ".moodlog", "configs", "config.json"))

	_, err := c.run("init")
	assert.Error(t, err)

	c.mustRun("init", "--force")
	assert.Contains(t, c.mustRun("stats"), "Total entries:  0")
}

func TestClearStaleLocks(t *testing.T) {
	ctx := context.Background()
	c := newCLI(t)
	a, err := openApp(&rootOptions{dbPath: c.dbPath, logLevel: "error"})
	require.NoError(t, err)
	defer a.Close()

	crashed := locking.NewLocker(a.db).WithTTL(-time.Minute)
	acquired, err := crashed.Acquire(ctx, kvstore.KeyEntries, "crashed")
	require.NoError(t, err)
	require.True(t, acquired)

	clearStaleLocks(ctx, a)

	var count int64
	require.NoError(t, a.db.Model(&database.WriteLock{}).Count(&count).Error)
	assert.Zero(t, count)

	// Live locks survive
	acquired, err = a.locker.Acquire(ctx, kvstore.KeyEntries, "other")
	require.NoError(t, err)
	require.True(t, acquired)

	clearStaleLocks(ctx, a)
	held, holder, err := a.locker.IsLocked(ctx, kvstore.KeyEntries)
	require.NoError(t, err)
	assert.True(t, held)
	assert.Equal(t, "other", holder)
}

func TestCoping(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("coping")
	for _, s := range mood.CopingStrategies() {
		assert.Contains(t, out, s.Title)
	}
	assert.Contains(t, out, mood.CopingTip)

	assert.Contains(t, c.mustRun("coping", "breathing"), "Box breathing")

	_, err := c.run("coping", "yoga")
	assert.Error(t, err)
}
