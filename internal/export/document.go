// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package export renders journal contents as a portable JSON document, an
// HTML report, or per-entry markdown files.
package export

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tejzpr/moodlog-mcp/internal/mood"
)

// ErrExportFailed wraps every failure while producing an export
var ErrExportFailed = errors.New("export failed")

// Formats
const (
	FormatJSON     = "json"
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

// Document is the shareable snapshot of the journal
type Document struct {
	Entries          []mood.Entry          `json:"entries"`
	Stats            mood.UserStats        `json:"stats"`
	ReminderSettings mood.ReminderSettings `json:"reminderSettings"`
	ExportDate       string                `json:"exportDate"`
}

// JSON renders doc pretty-printed with two-space indentation
func JSON(doc Document) ([]byte, error) {
	if doc.Entries == nil {
		doc.Entries = []mood.Entry{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	return data, nil
}

// ParseDocument reads a JSON export back
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse export document: %w", err)
	}
	if doc.Entries == nil {
		doc.Entries = []mood.Entry{}
	}
	return &doc, nil
}
