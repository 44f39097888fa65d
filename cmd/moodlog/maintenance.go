// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tejzpr/moodlog-mcp/internal/config"
	"github.com/tejzpr/moodlog-mcp/internal/crypto"
	"github.com/tejzpr/moodlog-mcp/internal/git"
	"github.com/tejzpr/moodlog-mcp/internal/rebuild"
)

func newRebuildCommand(opts *rootOptions) *cobra.Command {
	rebuildCmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Repair the stats cache or rebuild the journal from an archive or export",
	}

	rebuildCmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Recompute streaks and totals from the stored entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			s, err := rebuild.Stats(cmd.Context(), a.journal)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Current streak: %d\nLongest streak: %d\nTotal entries:  %d\n",
				s.CurrentStreak, s.LongestStreak, s.TotalEntries)
			return nil
		},
	})

	var force bool
	archiveCmd := &cobra.Command{
		Use:   "archive [path]",
		Short: "Import the entry files of an archive repository (default: configured archive path)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			path := a.cfg.Archive.Path
			if len(args) == 1 {
				path = args[0]
			}
			result, err := rebuild.FromArchive(cmd.Context(), a.journal, path, rebuild.Options{Force: force, Logger: a.log})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	archiveCmd.Flags().BoolVar(&force, "force", false, "Clear existing entries first")
	rebuildCmd.AddCommand(archiveCmd)

	var importForce bool
	importCmd := &cobra.Command{
		Use:   "import <export.json>",
		Short: "Import a JSON export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := rebuild.FromDocument(cmd.Context(), a.journal, data, rebuild.Options{Force: importForce, Logger: a.log})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	importCmd.Flags().BoolVar(&importForce, "force", false, "Clear existing entries first")
	rebuildCmd.AddCommand(importCmd)

	return rebuildCmd
}

// takeSnapshot exports the journal into the archive
func takeSnapshot(ctx context.Context, a *app, archive *git.Archive) (*git.SnapshotResult, error) {
	doc, err := a.journal.Export(ctx)
	if err != nil {
		return nil, err
	}
	return archive.Snapshot(doc)
}

func newArchiveCommand(opts *rootOptions) *cobra.Command {
	archiveCmd := &cobra.Command{
		Use:   "archive",
		Short: "Manage the git archive of the journal",
	}

	archiveCmd.AddCommand(&cobra.Command{
		Use:   "snapshot",
		Short: "Write the journal to the archive and commit",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			archive, err := a.openArchive()
			if err != nil {
				return err
			}
			result, err := takeSnapshot(cmd.Context(), a, archive)
			if err != nil {
				return err
			}
			if result.Committed {
				fmt.Fprintf(cmd.OutOrStdout(), "Committed %s (%d entries) in %s\n", shortHash(result.Hash), result.Entries, archive.Path())
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Archive up to date (%d entries)\n", result.Entries)
			}
			return nil
		},
	})

	archiveCmd.AddCommand(&cobra.Command{
		Use:   "push",
		Short: "Push the archive to its remote",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			token, err := a.cfg.ArchiveToken()
			if err != nil {
				return err
			}
			archive, err := a.openArchive()
			if err != nil {
				return err
			}
			if err := archive.Push(token); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Archive pushed")
			return nil
		},
	})

	archiveCmd.AddCommand(&cobra.Command{
		Use:   "log",
		Short: "Show recent archive commits",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			archive, err := a.openArchive()
			if err != nil {
				return err
			}
			commits, err := archive.Repository().History(20)
			if err != nil {
				return err
			}
			for _, c := range commits {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", shortHash(c.Hash), c.Timestamp.Format("2006-01-02 15:04"), strings.TrimSpace(c.Message))
			}
			return nil
		},
	})

	return archiveCmd
}

func shortHash(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}

func newEncryptTokenCommand(opts *rootOptions) *cobra.Command {
	var generateKey bool

	cmd := &cobra.Command{
		Use:   "encrypt-token [token]",
		Short: "Encrypt an archive push token for archive.token_encrypted",
		Long: `Encrypt an archive push token with security.encryption_key. The token is
read from the argument or, if absent, from the first line of stdin.

--generate-key prints a new random key for security.encryption_key instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if generateKey {
				key, err := crypto.GenerateKey()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), key)
				return nil
			}

			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if cfg.Security.EncryptionKey == "" {
				return fmt.Errorf("security.encryption_key is not set (create one with --generate-key)")
			}

			token := ""
			if len(args) == 1 {
				token = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("failed to read token from stdin: %w", err)
				}
				token = strings.TrimSpace(line)
			}
			if token == "" {
				return fmt.Errorf("token is empty")
			}

			sealer, err := crypto.NewSealerFromString(cfg.Security.EncryptionKey)
			if err != nil {
				return err
			}
			sealed, err := sealer.Seal(token)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sealed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&generateKey, "generate-key", false, "Print a new encryption key")
	return cmd
}

func newInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config file to ~/.moodlog/configs/config.json",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.WriteDefault(force)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}
