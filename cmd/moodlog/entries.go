// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tejzpr/moodlog-mcp/internal/export"
	"github.com/tejzpr/moodlog-mcp/internal/mood"
	"github.com/tejzpr/moodlog-mcp/internal/stats"
	"github.com/tejzpr/moodlog-mcp/internal/tools"
)

func newLogCommand(opts *rootOptions) *cobra.Command {
	var (
		intensity     int
		date          string
		id            string
		concentration string
		agitation     string
		impulsivity   string
		motivation    string
		sleepHours    float64
		sleepQuality  string
		active        bool
		tags          []string
		meds          []string
		notes         string
	)

	cmd := &cobra.Command{
		Use:   "log <mood>",
		Short: "Log a mood entry",
		Long: `Log a mood entry. Mood is one of veryLow, low, neutral, high, veryHigh.

Medications are given as --med <configured id>[=status], status being taken
(default), missed, partial or notApplicable.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := mood.ParseMood(args[0])
			if err != nil {
				return err
			}

			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			entry := mood.DefaultEntry(a.journal.Now())
			entry.ID = id
			entry.Mood = m
			entry.Intensity = intensity
			if date != "" {
				at, err := mood.ParseDate(date, a.journal.Location())
				if err != nil {
					return err
				}
				entry.Date = mood.FormatDate(at)
			}
			entry.Symptoms = mood.Symptoms{
				Concentration: mood.SymptomLevel(concentration),
				Agitation:     mood.SymptomLevel(agitation),
				Impulsivity:   mood.SymptomLevel(impulsivity),
				Motivation:    mood.SymptomLevel(motivation),
			}
			entry.Factors.Sleep = mood.Sleep{Hours: sleepHours, Quality: mood.SleepQuality(sleepQuality)}
			entry.Factors.PhysicalActivity = active
			if tags != nil {
				entry.Factors.Tags = tags
			}
			entry.Notes = notes

			catalog := make(map[string]mood.ConfiguredMedication)
			for _, c := range a.journal.Safe().ConfiguredMedications(ctx) {
				catalog[c.ID] = c
			}
			for _, arg := range meds {
				medID, status, _ := strings.Cut(arg, "=")
				if status == "" {
					status = string(mood.StatusTaken)
				}
				c, ok := catalog[medID]
				if !ok {
					return fmt.Errorf("unknown medication %q (see 'moodlog meds list')", medID)
				}
				entry.Factors.Medications = append(entry.Factors.Medications, c.Snapshot(mood.MedicationStatus(status), ""))
			}

			if err := a.journal.SaveEntry(ctx, &entry); err != nil {
				return err
			}
			s := a.journal.Safe().UserStats(ctx)
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %s (%s)\nCurrent streak: %d, longest: %d, total: %d\n",
				entry.Mood.Label(), entry.ID, s.CurrentStreak, s.LongestStreak, s.TotalEntries)
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVarP(&intensity, "intensity", "i", 3, "Intensity 1-5")
	f.StringVar(&date, "date", "", "Entry date, ISO-8601 (default now)")
	f.StringVar(&id, "id", "", "Replace the entry with this id")
	f.StringVar(&concentration, "concentration", "medium", "low, medium or high")
	f.StringVar(&agitation, "agitation", "medium", "low, medium or high")
	f.StringVar(&impulsivity, "impulsivity", "medium", "low, medium or high")
	f.StringVar(&motivation, "motivation", "medium", "low, medium or high")
	f.Float64Var(&sleepHours, "sleep", 7, "Hours slept")
	f.StringVar(&sleepQuality, "sleep-quality", "average", "good, average or poor")
	f.BoolVar(&active, "active", false, "Physical activity today")
	f.StringSliceVarP(&tags, "tag", "t", nil, "Tag (repeatable)")
	f.StringArrayVar(&meds, "med", nil, "Medication as id[=status] (repeatable)")
	f.StringVarP(&notes, "notes", "n", "", "Notes")
	return cmd
}

func newListCommand(opts *rootOptions) *cobra.Command {
	var (
		from, to string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			var entries []mood.Entry
			if from == "" && to == "" {
				entries, err = a.journal.ListEntries(ctx)
			} else {
				loc := a.journal.Location()
				start, end := a.journal.Now().AddDate(-100, 0, 0), a.journal.Now()
				if from != "" {
					if start, err = mood.ParseDate(from, loc); err != nil {
						return err
					}
				}
				if to != "" {
					if end, err = mood.ParseDate(to, loc); err != nil {
						return err
					}
				}
				entries, err = a.journal.EntriesBetween(ctx, start, end)
			}
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(cmd.OutOrStdout(), entries)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDATE\tMOOD\tINTENSITY\tNOTES")
			for _, e := range entries {
				at, err := e.Time(a.journal.Location())
				date := e.Date
				if err == nil {
					date = at.In(a.journal.Location()).Format("2006-01-02 15:04")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", e.ID, date, e.Mood.Label(), e.Intensity, firstLine(e.Notes))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Start of range, ISO-8601")
	cmd.Flags().StringVar(&to, "to", "", "End of range, ISO-8601 (default now)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

func newDeleteCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.journal.DeleteEntry(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

func newStatsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show streaks and entry count",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			s, err := a.journal.Stats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Current streak: %d\nLongest streak: %d\nTotal entries:  %d\n",
				s.CurrentStreak, s.LongestStreak, s.TotalEntries)
			return nil
		},
	}
}

func newSummaryCommand(opts *rootOptions) *cobra.Command {
	var (
		period string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Summarize a week, month or quarter",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := stats.ParsePeriod(period)
			if err != nil {
				return err
			}
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			entries, err := a.journal.ListEntries(cmd.Context())
			if err != nil {
				return err
			}
			summary := stats.Summarize(entries, p, a.journal.Now(), a.journal.Location())
			if asJSON {
				return printJSON(cmd.OutOrStdout(), summary)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d entries in the last %s\n", summary.Total, summary.Period)
			for _, share := range summary.Distribution {
				if share.Count > 0 {
					fmt.Fprintf(out, "  %-10s %3d%% (%d)\n", share.Label, share.Percent, share.Count)
				}
			}
			for _, insight := range summary.Insights {
				fmt.Fprintf(out, "* %s\n", insight)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&period, "period", "p", "week", "week, month or quarter")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newExportCommand(opts *rootOptions) *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the journal as json, html or markdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			out, err := tools.Render(cmd.Context(), tools.NewToolContext(a.journal, a.log), format)
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(out, "\n"))
				return err
			}
			if err := os.WriteFile(output, []byte(out), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %s to %s\n", format, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", export.FormatJSON, "json, html or markdown")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}
