// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/tejzpr/moodlog-mcp/internal/mood"
)

// medicationArg is one medication in a mood_log call
type medicationArg struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Dosage string `json:"dosage"`
	Status string `json:"status"`
	Time   string `json:"time"`
}

// NewLogTool defines mood_log
func NewLogTool() mcp.Tool {
	return mcp.NewTool("mood_log",
		mcp.WithDescription("Log a mood entry. Passing the id of an existing entry replaces it."),
		mcp.WithString("mood",
			mcp.Required(),
			mcp.Description("One of veryLow, low, neutral, high, veryHigh"),
		),
		mcp.WithNumber("intensity",
			mcp.Description("Intensity from 1 to 5 (default 3)"),
		),
		mcp.WithString("date",
			mcp.Description("ISO-8601 date of the entry (default: now)"),
		),
		mcp.WithString("id",
			mcp.Description("Entry id to replace"),
		),
		mcp.WithString("concentration", mcp.Description("low, medium or high")),
		mcp.WithString("agitation", mcp.Description("low, medium or high")),
		mcp.WithString("impulsivity", mcp.Description("low, medium or high")),
		mcp.WithString("motivation", mcp.Description("low, medium or high")),
		mcp.WithNumber("sleep_hours",
			mcp.Description("Hours slept the previous night (0-24)"),
		),
		mcp.WithString("sleep_quality",
			mcp.Description("good, average or poor"),
		),
		mcp.WithBoolean("physical_activity",
			mcp.Description("Whether there was physical activity that day"),
		),
		mcp.WithArray("tags",
			mcp.Description("Free-form tags"),
		),
		mcp.WithArray("medications",
			mcp.Description("Adherence records: objects with id (configured medication) or name and dosage, plus status (taken, missed, partial, notApplicable) and optional time HH:MM"),
		),
		mcp.WithString("notes",
			mcp.Description("Free-text notes"),
		),
	)
}

// LogHandler handles mood_log
func LogHandler(tc *ToolContext) Handler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		moodName, err := request.RequireString("mood")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		m, err := mood.ParseMood(moodName)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		entry := mood.DefaultEntry(tc.Journal.Now())
		entry.ID = request.GetString("id", "")
		entry.Mood = m

		if date := request.GetString("date", ""); date != "" {
			at, err := mood.ParseDate(date, tc.Journal.Location())
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			entry.Date = mood.FormatDate(at)
		}
		if hasArgument(request, "intensity") {
			entry.Intensity = int(request.GetFloat("intensity", 3))
		}

		symptoms := &entry.Symptoms
		symptoms.Concentration = mood.SymptomLevel(request.GetString("concentration", string(symptoms.Concentration)))
		symptoms.Agitation = mood.SymptomLevel(request.GetString("agitation", string(symptoms.Agitation)))
		symptoms.Impulsivity = mood.SymptomLevel(request.GetString("impulsivity", string(symptoms.Impulsivity)))
		symptoms.Motivation = mood.SymptomLevel(request.GetString("motivation", string(symptoms.Motivation)))

		factors := &entry.Factors
		factors.Sleep.Hours = request.GetFloat("sleep_hours", factors.Sleep.Hours)
		factors.Sleep.Quality = mood.SleepQuality(request.GetString("sleep_quality", string(factors.Sleep.Quality)))
		factors.PhysicalActivity = request.GetBool("physical_activity", false)
		factors.Tags = request.GetStringSlice("tags", []string{})
		entry.Notes = request.GetString("notes", "")

		var meds []medicationArg
		if _, err := decodeArgument(request, "medications", &meds); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid medications: %v", err)), nil
		}
		taken, err := tc.resolveMedications(ctx, meds)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		factors.Medications = taken

		if err := mood.Validate(&entry); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !tc.Safe.Save(ctx, &entry) {
			return mcp.NewToolResultError("Failed to save entry: storage unavailable"), nil
		}

		s := tc.Safe.UserStats(ctx)
		return mcp.NewToolResultText(fmt.Sprintf(
			"Logged %s (intensity %d/5) on %s\nID: %s\nCurrent streak: %d day(s), longest: %d, total entries: %d",
			entry.Mood.Label(), entry.Intensity, entry.Date, entry.ID,
			s.CurrentStreak, s.LongestStreak, s.TotalEntries,
		)), nil
	}
}

// resolveMedications snapshots configured medications by id. Unknown ids
// need an explicit name and dosage.
func (tc *ToolContext) resolveMedications(ctx context.Context, args []medicationArg) ([]mood.MedicationTaken, error) {
	out := make([]mood.MedicationTaken, 0, len(args))
	if len(args) == 0 {
		return out, nil
	}

	catalog := make(map[string]mood.ConfiguredMedication)
	for _, c := range tc.Safe.ConfiguredMedications(ctx) {
		catalog[c.ID] = c
	}

	for i, arg := range args {
		status := mood.MedicationStatus(arg.Status)
		if status == "" {
			status = mood.StatusTaken
		}
		if c, ok := catalog[arg.ID]; ok {
			out = append(out, c.Snapshot(status, arg.Time))
			continue
		}
		if arg.Name == "" || arg.Dosage == "" {
			return nil, fmt.Errorf("medication %d: unknown id %q, name and dosage are required", i, arg.ID)
		}
		out = append(out, mood.MedicationTaken{
			ID:     arg.ID,
			Name:   arg.Name,
			Dosage: arg.Dosage,
			Time:   arg.Time,
			Status: status,
		})
	}
	return out, nil
}

// NewListTool defines mood_list
func NewListTool() mcp.Tool {
	return mcp.NewTool("mood_list",
		mcp.WithDescription("List mood entries, optionally within an inclusive date range"),
		mcp.WithString("from",
			mcp.Description("ISO-8601 start of the range"),
		),
		mcp.WithString("to",
			mcp.Description("ISO-8601 end of the range (default: now)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Return only the last N entries (default: all)"),
		),
	)
}

// ListHandler handles mood_list
func ListHandler(tc *ToolContext) Handler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		from := request.GetString("from", "")
		to := request.GetString("to", "")

		var entries []mood.Entry
		if from == "" && to == "" {
			entries = tc.Safe.List(ctx)
		} else {
			loc := tc.Journal.Location()
			start, end := tc.Journal.Now().AddDate(-100, 0, 0), tc.Journal.Now()
			var err error
			if from != "" {
				if start, err = mood.ParseDate(from, loc); err != nil {
					return mcp.NewToolResultError(fmt.Sprintf("invalid from: %v", err)), nil
				}
			}
			if to != "" {
				if end, err = mood.ParseDate(to, loc); err != nil {
					return mcp.NewToolResultError(fmt.Sprintf("invalid to: %v", err)), nil
				}
			}
			if end.Before(start) {
				return mcp.NewToolResultError("from must not be after to"), nil
			}
			entries = tc.Safe.ListByDateRange(ctx, start, end)
		}

		if limit := int(request.GetFloat("limit", 0)); limit > 0 && len(entries) > limit {
			entries = entries[len(entries)-limit:]
		}
		return jsonResult(entries)
	}
}

// NewDeleteTool defines mood_delete
func NewDeleteTool() mcp.Tool {
	return mcp.NewTool("mood_delete",
		mcp.WithDescription("Delete a mood entry by id"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Entry id"),
		),
	)
}

// DeleteHandler handles mood_delete
func DeleteHandler(tc *ToolContext) Handler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !tc.Safe.DeleteByID(ctx, id) {
			return mcp.NewToolResultError("Failed to delete entry: no entries stored or storage unavailable"), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Entry %s deleted", id)), nil
	}
}
