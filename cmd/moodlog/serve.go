// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/tejzpr/moodlog-mcp/internal/database"
	"github.com/tejzpr/moodlog-mcp/internal/kvstore"
	"github.com/tejzpr/moodlog-mcp/internal/server"
	"github.com/tejzpr/moodlog-mcp/pkg/scheduler"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the journal over MCP (stdio)",
		Long:  "Serve the journal tools over MCP on stdin/stdout. Reminders and archive snapshots run in the background while the server is up.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()
			return runServe(cmd.Context(), a)
		},
	}
}

func runServe(ctx context.Context, a *app) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	clearStaleLocks(ctx, a)

	mcpServer := server.NewMCPServer(a.journal, Version, a.log)

	sched := scheduler.NewScheduler(a.journal.Safe(), mcpServer, scheduler.Config{
		CheckInterval:    a.cfg.CheckInterval(),
		SnapshotInterval: a.cfg.SnapshotInterval(),
		Location:         a.journal.Location(),
		Logger:           a.log,
		Metrics:          a.metrics,
	})
	if a.cfg.Archive.Enabled {
		archive, err := a.openArchive()
		if err != nil {
			return err
		}
		sched.WithSnapshot(func(ctx context.Context) error {
			_, err := takeSnapshot(ctx, a, archive)
			return err
		})
	}
	sched.Start(ctx)
	defer sched.Stop()

	if a.cfg.Metrics.Enabled {
		health := func() error { return database.Ping(a.db) }
		httpServer := server.NewHTTPServer(a.cfg.Metrics.Address, mcpServer.ToolContext(), a.metrics, health, a.log)
		httpServer.Start()
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				a.log.Warnw("metrics endpoint shutdown failed", "error", err)
			}
		}()
	}

	return mcpServer.ServeStdio()
}

// clearStaleLocks drops write locks left behind by crashed processes and
// warns when a live process still holds the entries lock
func clearStaleLocks(ctx context.Context, a *app) {
	removed, err := a.locker.CleanupExpired(ctx)
	if err != nil {
		a.log.Warnw("failed to clean up expired locks", "error", err)
		return
	}
	if removed > 0 {
		a.log.Infow("removed expired write locks", "count", removed)
	}

	held, holder, err := a.locker.IsLocked(ctx, kvstore.KeyEntries)
	if err != nil {
		a.log.Warnw("failed to inspect entries lock", "error", err)
		return
	}
	if held {
		a.log.Warnw("entries are locked by another process", "holder", holder)
	}
}
