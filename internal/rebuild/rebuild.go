// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package rebuild repairs the stats cache and restores journal entries from
// an archive repository or a JSON export.
package rebuild

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tejzpr/moodlog-mcp/internal/export"
	"github.com/tejzpr/moodlog-mcp/internal/git"
	"github.com/tejzpr/moodlog-mcp/internal/journal"
	"github.com/tejzpr/moodlog-mcp/internal/logging"
	"github.com/tejzpr/moodlog-mcp/internal/mood"
)

// Options configures rebuild behavior
type Options struct {
	Force  bool // Clear existing entries before importing
	Logger *logging.Logger
}

// Result contains counters from an import
type Result struct {
	Processed int            `json:"processed"`
	Created   int            `json:"created"`
	Skipped   int            `json:"skipped"`
	Errors    []string       `json:"errors,omitempty"`
	Stats     mood.UserStats `json:"stats"`
}

func (o Options) logger() *logging.Logger {
	if o.Logger == nil {
		return logging.Nop()
	}
	return o.Logger.WithComponent("rebuild")
}

// Stats recomputes the stats cache from the full entry history. It repairs a
// cache left stale by an interrupted save.
func Stats(ctx context.Context, j *journal.Journal) (mood.UserStats, error) {
	return j.RecomputeStats(ctx)
}

// FromArchive restores the entries of an archive repository. The archive's
// export.json is preferred since it keeps storage order; the entries/*.md
// files are read, in file name order, when it is missing or unreadable.
func FromArchive(ctx context.Context, j *journal.Journal, repoPath string, opts Options) (*Result, error) {
	log := opts.logger()

	if data, err := os.ReadFile(filepath.Join(repoPath, git.DocumentFile)); err == nil {
		doc, err := export.ParseDocument(data)
		if err == nil {
			log.Infow("restoring from archive document", "count", len(doc.Entries), "path", repoPath)
			result := &Result{}
			if err := importEntries(ctx, j, doc.Entries, opts, result); err != nil {
				return nil, err
			}
			return result, nil
		}
		log.Warnw("archive document unreadable, using entry files", "error", err)
	}

	files, err := scanEntries(repoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to scan archive: %w", err)
	}
	log.Infow("found entry files", "count", len(files), "path", repoPath)

	result := &Result{}
	var entries []mood.Entry
	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			result.Processed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", filepath.Base(path), err))
			continue
		}
		e, err := export.ParseMarkdown(string(content))
		if err != nil {
			result.Processed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", filepath.Base(path), err))
			continue
		}
		entries = append(entries, *e)
	}

	if err := importEntries(ctx, j, entries, opts, result); err != nil {
		return nil, err
	}
	return result, nil
}

// FromDocument imports a JSON export: its entries and reminder settings
func FromDocument(ctx context.Context, j *journal.Journal, data []byte, opts Options) (*Result, error) {
	doc, err := export.ParseDocument(data)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	if err := importEntries(ctx, j, doc.Entries, opts, result); err != nil {
		return nil, err
	}
	if err := j.SaveReminderSettings(ctx, doc.ReminderSettings); err != nil {
		return nil, fmt.Errorf("failed to restore reminder settings: %w", err)
	}
	return result, nil
}

// importEntries saves entries into an empty journal, or clears it first
// when forced. Entries whose id is already present are skipped.
func importEntries(ctx context.Context, j *journal.Journal, entries []mood.Entry, opts Options, result *Result) error {
	log := opts.logger()

	existing, err := j.ListEntries(ctx)
	if err != nil {
		return fmt.Errorf("failed to read existing entries: %w", err)
	}
	if len(existing) > 0 && !opts.Force {
		return fmt.Errorf("journal contains %d existing entries. Use --force to clear and rebuild", len(existing))
	}
	if len(existing) > 0 {
		log.Warnw("force rebuild: clearing existing entries", "count", len(existing))
		if err := j.Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear journal: %w", err)
		}
	}

	seen := make(map[string]bool, len(entries))
	for i := range entries {
		e := entries[i]
		result.Processed++

		if e.ID != "" && seen[e.ID] {
			result.Skipped++
			continue
		}
		if err := j.SaveEntry(ctx, &e); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("entry %q: %v", e.ID, err))
			continue
		}
		seen[e.ID] = true
		result.Created++
	}

	stats, err := j.RecomputeStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to recompute stats: %w", err)
	}
	result.Stats = stats

	log.Infow("import finished",
		"processed", result.Processed,
		"created", result.Created,
		"skipped", result.Skipped,
		"errors", len(result.Errors))
	return nil
}

// scanEntries lists the markdown files of the archive entries directory
func scanEntries(repoPath string) ([]string, error) {
	dir := filepath.Join(repoPath, git.EntriesDir)
	items, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, item := range items {
		if item.IsDir() || !strings.HasSuffix(item.Name(), ".md") {
			continue
		}
		files = append(files, filepath.Join(dir, item.Name()))
	}
	sort.Strings(files)
	return files, nil
}
