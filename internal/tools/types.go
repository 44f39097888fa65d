// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/tejzpr/moodlog-mcp/internal/journal"
	"github.com/tejzpr/moodlog-mcp/internal/logging"
)

// Handler is the mcp-go tool handler signature
type Handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

// ToolContext holds shared dependencies for all tools
type ToolContext struct {
	Journal *journal.Journal
	Safe    *journal.Safe
	Logger  *logging.Logger
}

// NewToolContext creates a tool context over j
func NewToolContext(j *journal.Journal, logger *logging.Logger) *ToolContext {
	if logger == nil {
		logger = logging.Nop()
	}
	return &ToolContext{
		Journal: j,
		Safe:    j.Safe(),
		Logger:  logger.WithComponent("tools"),
	}
}

// jsonResult renders v as indented JSON text
func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// decodeArgument re-decodes a structured argument into out. found is false
// when the argument is absent.
func decodeArgument(request mcp.CallToolRequest, name string, out interface{}) (bool, error) {
	raw, ok := request.GetArguments()[name]
	if !ok || raw == nil {
		return false, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return true, fmt.Errorf("%s: %w", name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return true, fmt.Errorf("%s: %w", name, err)
	}
	return true, nil
}

// hasArgument reports whether the caller passed name
func hasArgument(request mcp.CallToolRequest, name string) bool {
	_, ok := request.GetArguments()[name]
	return ok
}
