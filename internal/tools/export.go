// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/tejzpr/moodlog-mcp/internal/export"
)

// NewExportTool defines mood_export
func NewExportTool() mcp.Tool {
	return mcp.NewTool("mood_export",
		mcp.WithDescription("Export the journal as a JSON document, an HTML report or markdown"),
		mcp.WithString("format",
			mcp.Description("json, html or markdown (default json)"),
		),
	)
}

// ExportHandler handles mood_export. Unlike the other reads, a storage
// failure is reported to the caller.
func ExportHandler(tc *ToolContext) Handler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		format := request.GetString("format", export.FormatJSON)
		out, err := Render(ctx, tc, format)
		if err != nil {
			tc.Logger.Errorw("export failed", "format", format, "error", err)
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(out), nil
	}
}

// Render produces the export in format
func Render(ctx context.Context, tc *ToolContext, format string) (string, error) {
	switch format {
	case export.FormatJSON, export.FormatHTML, export.FormatMarkdown:
	default:
		return "", fmt.Errorf("unknown format %q (want json, html or markdown)", format)
	}

	doc, err := tc.Journal.Export(ctx)
	if err != nil {
		return "", err
	}

	var out string
	switch format {
	case export.FormatJSON:
		data, err := export.JSON(doc)
		if err != nil {
			return "", err
		}
		out = string(data)
	case export.FormatHTML:
		var buf bytes.Buffer
		if err := export.HTML(&buf, doc.Entries, tc.Journal.Location()); err != nil {
			return "", err
		}
		out = buf.String()
	case export.FormatMarkdown:
		parts := make([]string, 0, len(doc.Entries))
		for i := range doc.Entries {
			md, err := export.Markdown(&doc.Entries[i])
			if err != nil {
				return "", fmt.Errorf("%w: entry %s: %w", export.ErrExportFailed, doc.Entries[i].ID, err)
			}
			parts = append(parts, md)
		}
		out = strings.Join(parts, "\n")
	}

	tc.Journal.Metrics().Exported(format)
	return out, nil
}
