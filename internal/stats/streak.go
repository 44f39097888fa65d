// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package stats derives streaks and period aggregates from journal entries.
// Everything here is pure: callers pass the entry list, the clock and the zone.
package stats

import (
	"fmt"
	"sort"
	"time"

	"github.com/tejzpr/moodlog-mcp/internal/mood"
)

// DayKeyLayout is the calendar-day key format
const DayKeyLayout = "2006-01-02"

// Policy selects how LongestStreak is maintained
type Policy string

const (
	// PolicyIncremental keeps max(previous longest, current) only. Backfilled
	// days never raise the longest streak.
	PolicyIncremental Policy = "incremental"
	// PolicyHistory also scans the full history for its longest run, so a
	// backfilled gap can raise the longest streak. The value never decreases.
	PolicyHistory Policy = "history"
)

// ParsePolicy validates a policy name
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyIncremental, PolicyHistory:
		return Policy(s), nil
	case "":
		return PolicyHistory, nil
	}
	return "", fmt.Errorf("unknown longest streak policy %q", s)
}

// DayKey reduces t to its calendar day in loc
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DayKeyLayout)
}

// noon anchors a calendar day so that day arithmetic is immune to DST shifts
func noon(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 12, 0, 0, 0, loc)
}

// DayKeys returns the set of distinct day keys. Entries whose date does not
// parse are skipped.
func DayKeys(entries []mood.Entry, loc *time.Location) map[string]struct{} {
	keys := make(map[string]struct{}, len(entries))
	for i := range entries {
		t, err := entries[i].Time(loc)
		if err != nil {
			continue
		}
		keys[DayKey(t, loc)] = struct{}{}
	}
	return keys
}

// CurrentStreak counts consecutive days ending today that hold at least one
// entry. It is 0 when today has no entry.
func CurrentStreak(entries []mood.Entry, now time.Time, loc *time.Location) int {
	return streakFrom(DayKeys(entries, loc), now, loc)
}

func streakFrom(keys map[string]struct{}, now time.Time, loc *time.Location) int {
	day := noon(now, loc)
	if _, ok := keys[DayKey(day, loc)]; !ok {
		return 0
	}

	streak := 1
	for {
		day = day.AddDate(0, 0, -1)
		if _, ok := keys[DayKey(day, loc)]; !ok {
			return streak
		}
		streak++
	}
}

// LongestRun returns the longest run of consecutive days anywhere in history
func LongestRun(entries []mood.Entry, loc *time.Location) int {
	keys := DayKeys(entries, loc)
	if len(keys) == 0 {
		return 0
	}

	days := make([]string, 0, len(keys))
	for k := range keys {
		days = append(days, k)
	}
	sort.Strings(days)

	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		prev, err := time.ParseInLocation(DayKeyLayout, days[i-1], loc)
		if err != nil {
			run = 1
			continue
		}
		if DayKey(noon(prev, loc).AddDate(0, 0, 1), loc) == days[i] {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

// Recompute derives the stats cache from the full entry list and the
// previously cached value
func Recompute(prev mood.UserStats, entries []mood.Entry, now time.Time, loc *time.Location, policy Policy) mood.UserStats {
	current := CurrentStreak(entries, now, loc)

	longest := prev.LongestStreak
	if current > longest {
		longest = current
	}
	if policy != PolicyIncremental {
		if run := LongestRun(entries, loc); run > longest {
			longest = run
		}
	}

	return mood.UserStats{
		CurrentStreak: current,
		LongestStreak: longest,
		TotalEntries:  len(entries),
	}
}
