// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package export

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/tejzpr/moodlog-mcp/internal/mood"
)

const reportTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Mood journal</title>
<style>
body { font-family: sans-serif; margin: 2em; color: #1f2937; }
.entry { border-left: 4px solid #94a3b8; padding: 0.5em 1em; margin-bottom: 1.5em; }
.entry h2 { font-size: 1.1em; margin: 0 0 0.3em 0; }
.notes { font-style: italic; }
</style>
</head>
<body>
<h1>Mood journal</h1>
{{- range .}}
<div class="entry" style="border-left-color: {{.Color}}">
<h2>{{.Date}}</h2>
<p>Mood: {{.Mood}}{{if .Intensity}} (intensity {{.Intensity}}/5){{end}}</p>
{{- if .Symptoms}}
<ul class="symptoms">
{{- range .Symptoms}}
<li>{{.}}</li>
{{- end}}
</ul>
{{- end}}
{{- if .Medications}}
<ul class="medications">
{{- range .Medications}}
<li>{{.}}</li>
{{- end}}
</ul>
{{- end}}
{{- if .Notes}}
<p class="notes">{{.Notes}}</p>
{{- end}}
</div>
{{- end}}
</body>
</html>
`

var report = template.Must(template.New("report").Parse(reportTemplate))

type reportBlock struct {
	Date        string
	Mood        string
	Color       template.CSS
	Intensity   int
	Symptoms    []string
	Medications []string
	Notes       string
}

// HTML writes one block per entry, in list order. Symptoms are listed only
// when they differ from the medium baseline.
func HTML(w io.Writer, entries []mood.Entry, loc *time.Location) error {
	blocks := make([]reportBlock, 0, len(entries))
	for i := range entries {
		blocks = append(blocks, newBlock(&entries[i], loc))
	}
	if err := report.Execute(w, blocks); err != nil {
		return fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	return nil
}

func newBlock(e *mood.Entry, loc *time.Location) reportBlock {
	block := reportBlock{
		Date:      e.Date,
		Mood:      e.Mood.Label(),
		Color:     template.CSS(e.Mood.Color()),
		Intensity: e.Intensity,
		Notes:     e.Notes,
	}
	if t, err := e.Time(loc); err == nil {
		block.Date = t.In(loc).Format("Monday 2 January 2006, 15:04")
	}

	symptoms := []struct {
		name  string
		level mood.SymptomLevel
	}{
		{"Concentration", e.Symptoms.Concentration},
		{"Agitation", e.Symptoms.Agitation},
		{"Impulsivity", e.Symptoms.Impulsivity},
		{"Motivation", e.Symptoms.Motivation},
	}
	for _, s := range symptoms {
		if s.level != "" && s.level != mood.SymptomMedium {
			block.Symptoms = append(block.Symptoms, fmt.Sprintf("%s: %s", s.name, s.level))
		}
	}

	for _, med := range e.Factors.Medications {
		line := fmt.Sprintf("%s %s: %s", med.Name, med.Dosage, med.Status)
		if med.Time != "" {
			line += " at " + med.Time
		}
		block.Medications = append(block.Medications, line)
	}
	return block
}
