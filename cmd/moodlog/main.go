// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package main

import (
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags (e.g. goreleaser -X main.Version={{.Version}}).
var Version string

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "moodlog",
		Short:         "Mood and symptom journal for adults with ADHD",
		Long:          "Moodlog keeps a local mood journal with streaks, summaries, medication tracking and reminders, and serves it to agents over MCP.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to config file (default ~/.moodlog/configs/config.json)")
	flags.StringVar(&opts.dbType, "db-type", "", "Database type (sqlite or postgres)")
	flags.StringVar(&opts.dbPath, "db-path", "", "Database path (for sqlite)")
	flags.StringVar(&opts.dbDSN, "db-dsn", "", "Database DSN (for postgres)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newServeCommand(opts),
		newLogCommand(opts),
		newListCommand(opts),
		newDeleteCommand(opts),
		newStatsCommand(opts),
		newSummaryCommand(opts),
		newExportCommand(opts),
		newMedsCommand(opts),
		newRemindersCommand(opts),
		newCopingCommand(),
		newRebuildCommand(opts),
		newArchiveCommand(opts),
		newEncryptTokenCommand(opts),
		newInitCommand(),
		newVersionCommand(),
	)
	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the moodlog version",
		Run: func(cmd *cobra.Command, args []string) {
			v := Version
			if v == "" {
				v = "dev"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "moodlog %s\n", v)
		},
	}
}
