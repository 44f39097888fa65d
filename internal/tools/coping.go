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

// NewCopingTool defines coping_strategies
func NewCopingTool() mcp.Tool {
	return mcp.NewTool("coping_strategies",
		mcp.WithDescription("List quick coping strategies for ADHD symptoms, or show one by id"),
		mcp.WithString("id",
			mcp.Description("Strategy id (breathing, pomodoro, bodyscan, energyboost)"),
		),
	)
}

// CopingHandler handles coping_strategies
func CopingHandler() Handler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if id := request.GetString("id", ""); id != "" {
			s, ok := mood.FindCopingStrategy(id)
			if !ok {
				return mcp.NewToolResultError(fmt.Sprintf("unknown coping strategy %q", id)), nil
			}
			return jsonResult(s)
		}
		return jsonResult(map[string]interface{}{
			"strategies": mood.CopingStrategies(),
			"tip":        mood.CopingTip,
		})
	}
}
