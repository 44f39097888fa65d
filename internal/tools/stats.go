// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/tejzpr/moodlog-mcp/internal/stats"
)

// NewStatsTool defines mood_stats
func NewStatsTool() mcp.Tool {
	return mcp.NewTool("mood_stats",
		mcp.WithDescription("Get the current streak, longest streak and total entry count"),
	)
}

// StatsHandler handles mood_stats
func StatsHandler(tc *ToolContext) Handler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(tc.Safe.UserStats(ctx))
	}
}

// NewSummaryTool defines mood_summary
func NewSummaryTool() mcp.Tool {
	return mcp.NewTool("mood_summary",
		mcp.WithDescription("Summarize a period: calendar markers, chart series, mood distribution and insights"),
		mcp.WithString("period",
			mcp.Description("week, month or quarter (default week)"),
		),
	)
}

// SummaryHandler handles mood_summary
func SummaryHandler(tc *ToolContext) Handler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		period, err := stats.ParsePeriod(request.GetString("period", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		summary := stats.Summarize(tc.Safe.List(ctx), period, tc.Journal.Now(), tc.Journal.Location())
		return jsonResult(summary)
	}
}
