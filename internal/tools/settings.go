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

// NewMedicationsListTool defines medications_list
func NewMedicationsListTool() mcp.Tool {
	return mcp.NewTool("medications_list",
		mcp.WithDescription("List the configured medications"),
	)
}

// MedicationsListHandler handles medications_list
func MedicationsListHandler(tc *ToolContext) Handler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(tc.Safe.ConfiguredMedications(ctx))
	}
}

// NewMedicationsSaveTool defines medications_save
func NewMedicationsSaveTool() mcp.Tool {
	return mcp.NewTool("medications_save",
		mcp.WithDescription("Replace the configured medication list. Items without an id get a new one."),
		mcp.WithArray("medications",
			mcp.Required(),
			mcp.Description("Objects with id (optional), name, dosage and time HH:MM (optional)"),
		),
	)
}

// MedicationsSaveHandler handles medications_save
func MedicationsSaveHandler(tc *ToolContext) Handler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var meds []mood.ConfiguredMedication
		found, err := decodeArgument(request, "medications", &meds)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid medications: %v", err)), nil
		}
		if !found {
			return mcp.NewToolResultError("medications is required"), nil
		}
		for i := range meds {
			if err := mood.ValidateMedication(&meds[i]); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("medication %d: %v", i, err)), nil
			}
			if meds[i].Time != "" {
				if err := checkClock(meds[i].Time); err != nil {
					return mcp.NewToolResultError(fmt.Sprintf("medication %d: %v", i, err)), nil
				}
			}
		}

		if !tc.Safe.SaveConfiguredMedications(ctx, meds) {
			return mcp.NewToolResultError("Failed to save medications: storage unavailable"), nil
		}
		return jsonResult(tc.Safe.ConfiguredMedications(ctx))
	}
}

// NewRemindersGetTool defines reminders_get
func NewRemindersGetTool() mcp.Tool {
	return mcp.NewTool("reminders_get",
		mcp.WithDescription("Get the reminder settings"),
	)
}

// RemindersGetHandler handles reminders_get
func RemindersGetHandler(tc *ToolContext) Handler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(tc.Safe.ReminderSettings(ctx))
	}
}

// NewRemindersSaveTool defines reminders_save
func NewRemindersSaveTool() mcp.Tool {
	return mcp.NewTool("reminders_save",
		mcp.WithDescription("Update the reminder settings. Omitted fields keep their current value."),
		mcp.WithBoolean("enabled",
			mcp.Description("Whether reminders fire"),
		),
		mcp.WithArray("times",
			mcp.Description("Daily reminder times as HH:MM"),
		),
		mcp.WithString("message",
			mcp.Description("Reminder message"),
		),
	)
}

// RemindersSaveHandler handles reminders_save
func RemindersSaveHandler(tc *ToolContext) Handler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		settings := tc.Safe.ReminderSettings(ctx)
		if hasArgument(request, "enabled") {
			settings.Enabled = request.GetBool("enabled", settings.Enabled)
		}
		if hasArgument(request, "times") {
			times := request.GetStringSlice("times", []string{})
			if len(times) > mood.MaxReminderTimes {
				return mcp.NewToolResultError(fmt.Sprintf("at most %d reminder times", mood.MaxReminderTimes)), nil
			}
			for _, t := range times {
				if err := checkClock(t); err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
			}
			settings.Times = times
		}
		settings.Message = request.GetString("message", settings.Message)

		if !tc.Safe.SaveReminderSettings(ctx, settings) {
			return mcp.NewToolResultError("Failed to save reminder settings: storage unavailable"), nil
		}
		return jsonResult(settings)
	}
}

func checkClock(s string) error {
	_, err := mood.ParseClock(s)
	return err
}
