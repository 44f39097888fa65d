// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package mood

import (
	"fmt"
	"time"
)

// Mood is a point on the 5-level ordinal scale
type Mood string

// Mood values, lowest to highest
const (
	VeryLow  Mood = "veryLow"
	Low      Mood = "low"
	Neutral  Mood = "neutral"
	High     Mood = "high"
	VeryHigh Mood = "veryHigh"
)

// legacyMoods maps the names used by the first releases of the mobile app
var legacyMoods = map[string]Mood{
	"verySad":   VeryLow,
	"sad":       Low,
	"happy":     High,
	"veryHappy": VeryHigh,
}

// AllMoods returns the closed mood set in ordinal order
func AllMoods() []Mood {
	return []Mood{VeryLow, Low, Neutral, High, VeryHigh}
}

// ParseMood parses a mood name, accepting legacy aliases
func ParseMood(s string) (Mood, error) {
	for _, m := range AllMoods() {
		if string(m) == s {
			return m, nil
		}
	}
	if m, ok := legacyMoods[s]; ok {
		return m, nil
	}
	return "", fmt.Errorf("unknown mood %q", s)
}

// UnmarshalText normalises legacy names. Unknown names are kept verbatim so
// that validation, not decoding, reports them.
func (m *Mood) UnmarshalText(text []byte) error {
	if parsed, err := ParseMood(string(text)); err == nil {
		*m = parsed
		return nil
	}
	*m = Mood(text)
	return nil
}

// Value returns the ordinal used for charting (veryLow=1 ... veryHigh=5), 0 if unknown
func (m Mood) Value() int {
	for i, candidate := range AllMoods() {
		if candidate == m {
			return i + 1
		}
	}
	return 0
}

// Label returns the display label
func (m Mood) Label() string {
	switch m {
	case VeryLow:
		return "Very low"
	case Low:
		return "Low"
	case Neutral:
		return "Neutral"
	case High:
		return "High"
	case VeryHigh:
		return "Very high"
	}
	return string(m)
}

// Color returns the calendar marker color
func (m Mood) Color() string {
	switch m {
	case VeryLow:
		return "#EF4444"
	case Low:
		return "#F97316"
	case Neutral:
		return "#FBBF24"
	case High:
		return "#34D399"
	case VeryHigh:
		return "#38BDF8"
	}
	return "#94A3B8"
}

// SymptomLevel is a three-level ordinal rating
type SymptomLevel string

// Symptom levels
const (
	SymptomLow    SymptomLevel = "low"
	SymptomMedium SymptomLevel = "medium"
	SymptomHigh   SymptomLevel = "high"
)

// SleepQuality rates a night's sleep
type SleepQuality string

// Sleep qualities
const (
	SleepGood    SleepQuality = "good"
	SleepAverage SleepQuality = "average"
	SleepPoor    SleepQuality = "poor"
)

// MedicationStatus records adherence for one medication on one day
type MedicationStatus string

// Medication statuses
const (
	StatusTaken         MedicationStatus = "taken"
	StatusMissed        MedicationStatus = "missed"
	StatusPartial       MedicationStatus = "partial"
	StatusNotApplicable MedicationStatus = "notApplicable"
)

// Adherent reports whether the status counts towards adherence
func (s MedicationStatus) Adherent() bool {
	return s == StatusTaken || s == StatusPartial
}

// Symptoms holds the four cognitive-state ratings
type Symptoms struct {
	Concentration SymptomLevel `json:"concentration" yaml:"concentration" validate:"oneof=low medium high"`
	Agitation     SymptomLevel `json:"agitation" yaml:"agitation" validate:"oneof=low medium high"`
	Impulsivity   SymptomLevel `json:"impulsivity" yaml:"impulsivity" validate:"oneof=low medium high"`
	Motivation    SymptomLevel `json:"motivation" yaml:"motivation" validate:"oneof=low medium high"`
}

// Sleep describes the previous night
type Sleep struct {
	Hours   float64      `json:"hours" yaml:"hours" validate:"min=0,max=24"`
	Quality SleepQuality `json:"quality,omitempty" yaml:"quality,omitempty" validate:"omitempty,oneof=good average poor"`
}

// MedicationTaken is a day-scoped adherence record. Name and Dosage are a
// snapshot of the configured medication at entry time.
type MedicationTaken struct {
	ID     string           `json:"id" yaml:"id"`
	Name   string           `json:"name" yaml:"name"`
	Dosage string           `json:"dosage" yaml:"dosage"`
	Time   string           `json:"time" yaml:"time"`
	Status MedicationStatus `json:"status" yaml:"status" validate:"oneof=taken missed partial notApplicable"`
}

// Factors is the structured context of an entry
type Factors struct {
	Medications      []MedicationTaken `json:"medications" yaml:"medications" validate:"dive"`
	Sleep            Sleep             `json:"sleep" yaml:"sleep"`
	PhysicalActivity bool              `json:"physicalActivity" yaml:"physical_activity"`
	Tags             []string          `json:"tags" yaml:"tags"`
}

// Entry is one journaling event
type Entry struct {
	ID        string   `json:"id" yaml:"id"`
	Date      string   `json:"date" yaml:"date" validate:"required,isodate"`
	Mood      Mood     `json:"mood" yaml:"mood" validate:"oneof=veryLow low neutral high veryHigh"`
	Intensity int      `json:"intensity,omitempty" yaml:"intensity,omitempty" validate:"omitempty,min=1,max=5"`
	Symptoms  Symptoms `json:"symptoms" yaml:"symptoms"`
	Factors   Factors  `json:"factors" yaml:"factors"`
	Notes     string   `json:"notes,omitempty" yaml:"-"`
}

// Time parses the entry date in loc (loc applies only to zone-less dates)
func (e *Entry) Time(loc *time.Location) (time.Time, error) {
	return ParseDate(e.Date, loc)
}

// DefaultEntry returns a blank entry dated now
func DefaultEntry(now time.Time) Entry {
	return Entry{
		Date:      FormatDate(now),
		Mood:      Neutral,
		Intensity: 3,
		Symptoms: Symptoms{
			Concentration: SymptomMedium,
			Agitation:     SymptomMedium,
			Impulsivity:   SymptomMedium,
			Motivation:    SymptomMedium,
		},
		Factors: Factors{
			Medications: []MedicationTaken{},
			Sleep:       Sleep{Hours: 7, Quality: SleepAverage},
			Tags:        []string{},
		},
	}
}

// ConfiguredMedication is a medication the user tracks regularly
type ConfiguredMedication struct {
	ID     string `json:"id"`
	Name   string `json:"name" validate:"required"`
	Dosage string `json:"dosage" validate:"required"`
	Time   string `json:"time,omitempty"`
}

// Snapshot builds the adherence record for an entry
func (c ConfiguredMedication) Snapshot(status MedicationStatus, takenAt string) MedicationTaken {
	if takenAt == "" {
		takenAt = c.Time
	}
	return MedicationTaken{
		ID:     c.ID,
		Name:   c.Name,
		Dosage: c.Dosage,
		Time:   takenAt,
		Status: status,
	}
}

// DefaultMedications is the catalog seeded on first access
func DefaultMedications() []ConfiguredMedication {
	return []ConfiguredMedication{
		{ID: "med_default_1", Name: "Methylphenidate", Dosage: "10mg", Time: "08:00"},
		{ID: "med_default_2", Name: "Methylphenidate LP", Dosage: "20mg", Time: "12:00"},
	}
}

// ClockLayout is the HH:MM layout of medication and reminder times
const ClockLayout = "15:04"

// ParseClock parses a zero-padded 24-hour HH:MM time of day
func ParseClock(s string) (time.Time, error) {
	if len(s) != len(ClockLayout) {
		return time.Time{}, fmt.Errorf("invalid time %q, want HH:MM", s)
	}
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q, want HH:MM", s)
	}
	return t, nil
}

// MaxReminderTimes caps the reminder slots a user can configure. The store
// itself accepts any list.
const MaxReminderTimes = 3

// ReminderSettings is the singleton reminder configuration
type ReminderSettings struct {
	Enabled bool     `json:"enabled"`
	Times   []string `json:"times"`
	Message string   `json:"message"`
}

// DefaultReminderSettings returns the settings used when none are stored
func DefaultReminderSettings() ReminderSettings {
	return ReminderSettings{
		Enabled: false,
		Times:   []string{"09:00", "20:00"},
		Message: "Don't forget to log your mood today!",
	}
}

// UserStats is the derived statistics cache
type UserStats struct {
	CurrentStreak int `json:"currentStreak"`
	LongestStreak int `json:"longestStreak"`
	TotalEntries  int `json:"totalEntries"`
}
