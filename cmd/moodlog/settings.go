// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tejzpr/moodlog-mcp/internal/mood"
)

func newMedsCommand(opts *rootOptions) *cobra.Command {
	medsCmd := &cobra.Command{
		Use:   "meds",
		Short: "Manage configured medications",
	}

	medsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List configured medications",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			meds, err := a.journal.ConfiguredMedications(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tDOSAGE\tTIME")
			for _, m := range meds {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m.ID, m.Name, m.Dosage, m.Time)
			}
			return w.Flush()
		},
	})

	var name, dosage, at string
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a medication",
		RunE: func(cmd *cobra.Command, args []string) error {
			if at != "" {
				if _, err := mood.ParseClock(at); err != nil {
					return fmt.Errorf("invalid --time %q, want HH:MM", at)
				}
			}
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			meds, err := a.journal.ConfiguredMedications(ctx)
			if err != nil {
				return err
			}
			meds = append(meds, mood.ConfiguredMedication{Name: name, Dosage: dosage, Time: at})
			saved, err := a.journal.SaveConfiguredMedications(ctx, meds)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", name, saved[len(saved)-1].ID)
			return nil
		},
	}
	addCmd.Flags().StringVar(&name, "name", "", "Medication name (required)")
	addCmd.Flags().StringVar(&dosage, "dosage", "", "Dosage, e.g. 10mg (required)")
	addCmd.Flags().StringVar(&at, "time", "", "Usual time, HH:MM")
	_ = addCmd.MarkFlagRequired("name")
	_ = addCmd.MarkFlagRequired("dosage")
	medsCmd.AddCommand(addCmd)

	medsCmd.AddCommand(&cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a medication",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			meds, err := a.journal.ConfiguredMedications(ctx)
			if err != nil {
				return err
			}
			kept := make([]mood.ConfiguredMedication, 0, len(meds))
			for _, m := range meds {
				if m.ID != args[0] {
					kept = append(kept, m)
				}
			}
			if len(kept) == len(meds) {
				return fmt.Errorf("no medication with id %q", args[0])
			}
			if _, err := a.journal.SaveConfiguredMedications(ctx, kept); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
			return nil
		},
	})

	return medsCmd
}

func newRemindersCommand(opts *rootOptions) *cobra.Command {
	remindersCmd := &cobra.Command{
		Use:   "reminders",
		Short: "Show or change reminder settings",
	}

	remindersCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show reminder settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			settings, err := a.journal.ReminderSettings(cmd.Context())
			if err != nil {
				return err
			}
			printReminders(cmd, settings)
			return nil
		},
	})

	var (
		enabled bool
		times   []string
		message string
	)
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Change reminder settings; omitted flags keep their value",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(times) > mood.MaxReminderTimes {
				return fmt.Errorf("at most %d reminder times", mood.MaxReminderTimes)
			}
			for _, t := range times {
				if _, err := mood.ParseClock(t); err != nil {
					return err
				}
			}
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			settings, err := a.journal.ReminderSettings(ctx)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("enabled") {
				settings.Enabled = enabled
			}
			if cmd.Flags().Changed("times") {
				settings.Times = times
			}
			if cmd.Flags().Changed("message") {
				settings.Message = message
			}
			if err := a.journal.SaveReminderSettings(ctx, settings); err != nil {
				return err
			}
			printReminders(cmd, settings)
			return nil
		},
	}
	setCmd.Flags().BoolVar(&enabled, "enabled", false, "Enable reminders")
	setCmd.Flags().StringSliceVar(&times, "times", nil, "Reminder times, HH:MM (comma separated)")
	setCmd.Flags().StringVar(&message, "message", "", "Reminder message")
	remindersCmd.AddCommand(setCmd)

	return remindersCmd
}

func printReminders(cmd *cobra.Command, s mood.ReminderSettings) {
	state := "disabled"
	if s.Enabled {
		state = "enabled"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Reminders %s at %s\nMessage: %s\n", state, strings.Join(s.Times, ", "), s.Message)
}

func newCopingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "coping [id]",
		Short: "Show quick coping strategies for ADHD symptoms",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				s, ok := mood.FindCopingStrategy(args[0])
				if !ok {
					return fmt.Errorf("unknown coping strategy %q", args[0])
				}
				fmt.Fprintf(out, "%s\n%s\n", s.Title, s.Description)
				return nil
			}

			for _, s := range mood.CopingStrategies() {
				fmt.Fprintf(out, "%-12s %s: %s\n", s.ID, s.Title, s.Description)
			}
			fmt.Fprintf(out, "\nTip: %s\n", mood.CopingTip)
			return nil
		},
	}
}
