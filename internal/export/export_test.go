// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tejzpr/moodlog-mcp/internal/mood"
)

var testLoc = time.FixedZone("CET", 3600)

func sampleEntry(id string, day int, m mood.Mood) mood.Entry {
	e := mood.DefaultEntry(time.Date(2024, 3, day, 9, 15, 0, 0, testLoc))
	e.ID = id
	e.Mood = m
	return e
}

func TestJSON_Document(t *testing.T) {
	doc := Document{
		Entries:          []mood.Entry{sampleEntry("a", 1, mood.High)},
		Stats:            mood.UserStats{CurrentStreak: 1, LongestStreak: 4, TotalEntries: 1},
		ReminderSettings: mood.DefaultReminderSettings(),
		ExportDate:       "2024-03-02T10:00:00.000Z",
	}

	data, err := JSON(doc)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "\n  \"entries\": [")
	assert.Contains(t, out, `"reminderSettings"`)
	assert.Contains(t, out, `"longestStreak": 4`)
	assert.Contains(t, out, `"exportDate": "2024-03-02T10:00:00.000Z"`)

	parsed, err := ParseDocument(data)
	require.NoError(t, err)
	assert.Equal(t, doc, *parsed)
}

func TestJSON_EmptyEntriesIsArray(t *testing.T) {
	data, err := JSON(Document{})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"entries": []`)
}

func TestParseDocument_Invalid(t *testing.T) {
	_, err := ParseDocument([]byte("{not json"))
	assert.Error(t, err)
}

func TestHTML_OneBlockPerEntryInOrder(t *testing.T) {
	first := sampleEntry("a", 2, mood.VeryLow)
	first.Symptoms.Agitation = mood.SymptomHigh
	first.Notes = "<b>rough</b> morning"
	first.Factors.Medications = []mood.MedicationTaken{
		{ID: "m1", Name: "Methylphenidate", Dosage: "10mg", Time: "08:00", Status: mood.StatusMissed},
	}
	second := sampleEntry("b", 1, mood.VeryHigh)

	var buf bytes.Buffer
	require.NoError(t, HTML(&buf, []mood.Entry{first, second}, testLoc))
	out := buf.String()

	assert.Equal(t, 2, strings.Count(out, `<div class="entry"`))
	// List order, not date order
	assert.Less(t, strings.Index(out, "Very low"), strings.Index(out, "Very high"))

	assert.Contains(t, out, "Agitation: high")
	assert.NotContains(t, out, "Concentration: medium")
	assert.Contains(t, out, "Methylphenidate 10mg: missed at 08:00")
	assert.Contains(t, out, "Saturday 2 March 2024, 09:15")
	assert.Contains(t, out, "(intensity 3/5)")
	assert.Contains(t, out, "&lt;b&gt;rough&lt;/b&gt;")
}

func TestHTML_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, HTML(&buf, nil, testLoc))
	assert.NotContains(t, buf.String(), `class="entry"`)
}

func TestMarkdown_RoundTrip(t *testing.T) {
	e := sampleEntry("c0ffee", 5, mood.Low)
	e.Intensity = 2
	e.Notes = "Slept badly.\n\nStill got things done."
	e.Factors.Tags = []string{"work", "rain"}
	e.Factors.PhysicalActivity = true
	e.Factors.Medications = []mood.MedicationTaken{
		{ID: "med_default_1", Name: "Methylphenidate", Dosage: "10mg", Time: "08:00", Status: mood.StatusTaken},
	}

	md, err := Markdown(&e)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(md, "---\n"))
	assert.Contains(t, md, "mood: low")

	parsed, err := ParseMarkdown(md)
	require.NoError(t, err)
	assert.Equal(t, e, *parsed)
}

func TestParseMarkdown_LegacyMood(t *testing.T) {
	content := "---\nid: x\ndate: 2024-03-01T09:00:00.000Z\nmood: veryHappy\n---\n"
	e, err := ParseMarkdown(content)
	require.NoError(t, err)
	assert.Equal(t, mood.VeryHigh, e.Mood)
	assert.Empty(t, e.Notes)
}

func TestParseMarkdown_Errors(t *testing.T) {
	_, err := ParseMarkdown("no frontmatter here")
	assert.Error(t, err)

	_, err = ParseMarkdown("---\nid: x\nmood: low\n")
	assert.Error(t, err)
}

func TestEntryFilename(t *testing.T) {
	e := sampleEntry("Med_Default/../1 ", 3, mood.High)
	assert.Equal(t, "2024-03-03-med-default-1-40e525c7.md", EntryFilename(&e, testLoc))

	e.Date = "garbage"
	e.ID = ""
	assert.Equal(t, "undated-entry-e3b0c442.md", EntryFilename(&e, testLoc))
}

func TestEntryFilename_DistinctForSameSlug(t *testing.T) {
	a := sampleEntry("Entry.1", 3, mood.High)
	b := sampleEntry("entry-1", 3, mood.High)

	assert.Equal(t, "2024-03-03-entry-1-3ff196b9.md", EntryFilename(&a, testLoc))
	assert.Equal(t, "2024-03-03-entry-1-5e2d5d1e.md", EntryFilename(&b, testLoc))
}

func TestMarkdown_RoundTripKeepsNoteWhitespace(t *testing.T) {
	for _, notes := range []string{"  indented\n", "\n\ttabbed", "\n", "trailing  "} {
		e := sampleEntry("ws", 2, mood.Neutral)
		e.Notes = notes

		md, err := Markdown(&e)
		require.NoError(t, err)

		parsed, err := ParseMarkdown(md)
		require.NoError(t, err)
		assert.Equal(t, notes, parsed.Notes)
	}
}
