// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import "github.com/mark3labs/mcp-go/mcp"

// Definition pairs a tool with its handler
type Definition struct {
	Tool    mcp.Tool
	Handler Handler
}

// All returns every journal tool bound to tc
func All(tc *ToolContext) []Definition {
	return []Definition{
		{NewLogTool(), LogHandler(tc)},
		{NewListTool(), ListHandler(tc)},
		{NewDeleteTool(), DeleteHandler(tc)},
		{NewStatsTool(), StatsHandler(tc)},
		{NewSummaryTool(), SummaryHandler(tc)},
		{NewMedicationsListTool(), MedicationsListHandler(tc)},
		{NewMedicationsSaveTool(), MedicationsSaveHandler(tc)},
		{NewRemindersGetTool(), RemindersGetHandler(tc)},
		{NewRemindersSaveTool(), RemindersSaveHandler(tc)},
		{NewExportTool(), ExportHandler(tc)},
		{NewCopingTool(), CopingHandler()},
	}
}
