// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package stats

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/tejzpr/moodlog-mcp/internal/mood"
)

// ChartPoints is the number of most recent entries plotted
const ChartPoints = 7

// insightLookbackDays bounds the streak insight
const insightLookbackDays = 7

// Period is a lookback window anchored at now
type Period string

// Periods
const (
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
)

// ParsePeriod validates a period name
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodWeek, PeriodMonth, PeriodQuarter:
		return Period(s), nil
	case "":
		return PeriodWeek, nil
	}
	return "", fmt.Errorf("unknown period %q (want week, month or quarter)", s)
}

// Since returns the start of the window ending at now
func (p Period) Since(now time.Time) time.Time {
	switch p {
	case PeriodMonth:
		return now.AddDate(0, -1, 0)
	case PeriodQuarter:
		return now.AddDate(0, -3, 0)
	}
	return now.AddDate(0, 0, -7)
}

// Marker colors one calendar day
type Marker struct {
	Mood  mood.Mood `json:"mood"`
	Color string    `json:"color"`
}

// Point is one chart sample
type Point struct {
	Date  string `json:"date"`
	Label string `json:"label"`
	Value int    `json:"value"`
}

// MoodShare is one row of the mood distribution
type MoodShare struct {
	Mood    mood.Mood `json:"mood"`
	Label   string    `json:"label"`
	Count   int       `json:"count"`
	Percent int       `json:"percent"`
}

// Summary holds the view-level aggregates for one period
type Summary struct {
	Period       Period            `json:"period"`
	From         time.Time         `json:"from"`
	To           time.Time         `json:"to"`
	Total        int               `json:"total"`
	Markers      map[string]Marker `json:"markers"`
	Series       []Point           `json:"series"`
	HasChart     bool              `json:"hasChart"`
	Distribution []MoodShare       `json:"distribution"`
	Insights     []string          `json:"insights"`
}

type datedEntry struct {
	entry mood.Entry
	at    time.Time
}

// inWindow keeps entries dated within [from, to], preserving list order
func inWindow(entries []mood.Entry, from, to time.Time, loc *time.Location) []datedEntry {
	out := make([]datedEntry, 0, len(entries))
	for i := range entries {
		t, err := entries[i].Time(loc)
		if err != nil {
			continue
		}
		if t.Before(from) || t.After(to) {
			continue
		}
		out = append(out, datedEntry{entry: entries[i], at: t})
	}
	return out
}

// FilterWindow returns the entries dated within [from, to] in list order
func FilterWindow(entries []mood.Entry, from, to time.Time, loc *time.Location) []mood.Entry {
	dated := inWindow(entries, from, to, loc)
	out := make([]mood.Entry, len(dated))
	for i, d := range dated {
		out[i] = d.entry
	}
	return out
}

// Summarize aggregates the entries of one period ending at now
func Summarize(entries []mood.Entry, period Period, now time.Time, loc *time.Location) Summary {
	from := period.Since(now)
	window := inWindow(entries, from, now, loc)

	summary := Summary{
		Period:       period,
		From:         from,
		To:           now,
		Total:        len(window),
		Markers:      make(map[string]Marker, len(window)),
		Series:       []Point{},
		Distribution: distribution(window),
		Insights:     []string{},
	}
	if len(window) == 0 {
		return summary
	}

	// Later entries overwrite earlier ones on the same day
	for _, d := range window {
		summary.Markers[DayKey(d.at, loc)] = Marker{Mood: d.entry.Mood, Color: d.entry.Mood.Color()}
	}

	summary.Series = series(window, loc)
	summary.HasChart = len(summary.Series) > 0
	summary.Insights = insights(window, now, loc)
	return summary
}

func series(window []datedEntry, loc *time.Location) []Point {
	sorted := make([]datedEntry, len(window))
	copy(sorted, window)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].at.Before(sorted[j].at)
	})
	if len(sorted) > ChartPoints {
		sorted = sorted[len(sorted)-ChartPoints:]
	}

	points := make([]Point, len(sorted))
	for i, d := range sorted {
		local := d.at.In(loc)
		points[i] = Point{
			Date:  DayKey(d.at, loc),
			Label: fmt.Sprintf("%d/%d", local.Day(), int(local.Month())),
			Value: d.entry.Mood.Value(),
		}
	}
	return points
}

func distribution(window []datedEntry) []MoodShare {
	counts := make(map[mood.Mood]int, 5)
	for _, d := range window {
		counts[d.entry.Mood]++
	}

	shares := make([]MoodShare, 0, 5)
	for _, m := range mood.AllMoods() {
		shares = append(shares, MoodShare{
			Mood:    m,
			Label:   m.Label(),
			Count:   counts[m],
			Percent: percent(counts[m], len(window)),
		})
	}
	return shares
}

func percent(n, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(n) / float64(total) * 100))
}

// MostFrequentMood returns the most logged mood and its count. Ties go to the
// lower mood; ok is false for an empty list.
func MostFrequentMood(entries []mood.Entry) (m mood.Mood, count int, ok bool) {
	counts := make(map[mood.Mood]int, 5)
	for i := range entries {
		counts[entries[i].Mood]++
	}

	m = mood.Neutral
	for _, candidate := range mood.AllMoods() {
		if counts[candidate] > count {
			count = counts[candidate]
			m = candidate
		}
	}
	return m, count, count > 0
}

func insights(window []datedEntry, now time.Time, loc *time.Location) []string {
	out := make([]string, 0, 3)

	// Day keys sort lexically, so the lookback is a calendar-day bound
	// covering today and the six days before it.
	first := DayKey(noon(now, loc).AddDate(0, 0, -(insightLookbackDays-1)), loc)
	recent := make(map[string]struct{})
	for _, d := range window {
		if key := DayKey(d.at, loc); key >= first {
			recent[key] = struct{}{}
		}
	}
	switch streak := streakFrom(recent, now, loc); {
	case streak > 1:
		out = append(out, fmt.Sprintf("You have logged your mood %d days in a row.", streak))
	case streak == 1:
		out = append(out, "You logged your mood today. Come back tomorrow to start a streak!")
	}

	entries := make([]mood.Entry, len(window))
	for i, d := range window {
		entries[i] = d.entry
	}

	if line, ok := adherenceInsight(entries); ok {
		out = append(out, line)
	}

	if m, count, ok := MostFrequentMood(entries); ok {
		out = append(out, fmt.Sprintf("Your most frequent mood is %s (%d%% of entries).",
			m.Label(), percent(count, len(entries))))
	}

	return out
}

// Adherence returns the share of entries with at least one medication taken
// or partially taken, and whether any medication was recorded at all
func Adherence(entries []mood.Entry) (ratio float64, tracked bool) {
	if len(entries) == 0 {
		return 0, false
	}
	adherent := 0
	for i := range entries {
		counted := false
		for _, med := range entries[i].Factors.Medications {
			if med.Status != mood.StatusNotApplicable {
				tracked = true
			}
			if med.Status.Adherent() && !counted {
				adherent++
				counted = true
			}
		}
	}
	return float64(adherent) / float64(len(entries)), tracked
}

func adherenceInsight(entries []mood.Entry) (string, bool) {
	ratio, tracked := Adherence(entries)
	if !tracked {
		return "", false
	}

	pct := int(math.Round(ratio * 100))
	switch {
	case ratio >= 0.8:
		return fmt.Sprintf("Excellent medication adherence: %d%% of entries.", pct), true
	case ratio >= 0.5:
		return fmt.Sprintf("Medication adherence is %d%%: consider improving your consistency.", pct), true
	default:
		return fmt.Sprintf("Medication was often missed (%d%% adherence). A reminder might help.", pct), true
	}
}
