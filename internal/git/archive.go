// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package git

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tejzpr/moodlog-mcp/internal/export"
	"github.com/tejzpr/moodlog-mcp/internal/logging"
)

// Archive layout
const (
	DocumentFile = "export.json"
	ReportFile   = "report.html"
	EntriesDir   = "entries"
)

// ArchiveOptions configures an Archive
type ArchiveOptions struct {
	Path      string
	RemoteURL string
	Author    string
	Email     string
	Location  *time.Location
	Logger    *logging.Logger
	Now       func() time.Time
}

// Archive keeps a versioned copy of the journal in a local git repository
type Archive struct {
	repo   *Repository
	author string
	email  string
	loc    *time.Location
	log    *logging.Logger
	now    func() time.Time
}

// SnapshotResult describes one snapshot
type SnapshotResult struct {
	Committed bool   `json:"committed"`
	Hash      string `json:"hash,omitempty"`
	Entries   int    `json:"entries"`
}

// OpenArchive opens or initializes the archive repository
func OpenArchive(opts ArchiveOptions) (*Archive, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("archive path is required")
	}

	repo, err := OpenOrInit(opts.Path)
	if err != nil {
		return nil, err
	}
	if opts.RemoteURL != "" {
		if err := repo.SetRemote(DefaultRemote, opts.RemoteURL); err != nil {
			return nil, err
		}
	}

	a := &Archive{
		repo:   repo,
		author: opts.Author,
		email:  opts.Email,
		loc:    opts.Location,
		log:    opts.Logger,
		now:    opts.Now,
	}
	defaults := DefaultCommitOptions()
	if a.author == "" {
		a.author = defaults.Author
	}
	if a.email == "" {
		a.email = defaults.Email
	}
	if a.loc == nil {
		a.loc = time.Local
	}
	if a.log == nil {
		a.log = logging.Nop()
	}
	a.log = a.log.WithComponent("archive")
	if a.now == nil {
		a.now = time.Now
	}
	return a, nil
}

// Repository returns the underlying repository
func (a *Archive) Repository() *Repository {
	return a.repo
}

// Path returns the archive directory
func (a *Archive) Path() string {
	return a.repo.Path
}

// Snapshot writes doc as export.json, report.html and one markdown file per
// entry, then commits. Entry files of deleted entries are removed. Nothing is
// committed when the journal has not changed since the last snapshot.
func (a *Archive) Snapshot(doc export.Document) (*SnapshotResult, error) {
	result := &SnapshotResult{Entries: len(doc.Entries)}

	// export.json carries the export date, which changes on every run. Keep
	// the previous date when the journal content itself is unchanged.
	docPath := filepath.Join(a.repo.Path, DocumentFile)
	if previous, err := os.ReadFile(docPath); err == nil {
		if prev, err := export.ParseDocument(previous); err == nil {
			candidate := doc
			candidate.ExportDate = prev.ExportDate
			if sameDocument(prev, &candidate) {
				doc.ExportDate = prev.ExportDate
			}
		}
	}

	data, err := export.JSON(doc)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(docPath, append(data, '\n'), 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", DocumentFile, err)
	}

	var report bytes.Buffer
	if err := export.HTML(&report, doc.Entries, a.loc); err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(a.repo.Path, ReportFile), report.Bytes(), 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", ReportFile, err)
	}

	if err := a.writeEntries(doc); err != nil {
		return nil, err
	}

	hash, err := a.repo.CommitAll(&CommitOptions{
		Author:  a.author,
		Email:   a.email,
		Message: fmt.Sprintf("Snapshot: %d entries", len(doc.Entries)),
		When:    a.now(),
	})
	if err != nil {
		return nil, err
	}

	result.Hash = hash
	result.Committed = hash != ""
	if result.Committed {
		a.log.Infow("snapshot committed", "hash", hash, "entries", len(doc.Entries))
	} else {
		a.log.Debugw("snapshot unchanged", "entries", len(doc.Entries))
	}
	return result, nil
}

func (a *Archive) writeEntries(doc export.Document) error {
	dir := filepath.Join(a.repo.Path, EntriesDir)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to clear %s: %w", EntriesDir, err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", EntriesDir, err)
	}

	for i := range doc.Entries {
		e := &doc.Entries[i]
		content, err := export.Markdown(e)
		if err != nil {
			return fmt.Errorf("entry %s: %w", e.ID, err)
		}
		path := filepath.Join(dir, export.EntryFilename(e, a.loc))
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return fmt.Errorf("failed to write entry %s: %w", e.ID, err)
		}
	}
	return nil
}

// Push sends committed snapshots to the configured remote
func (a *Archive) Push(pat string) error {
	if err := a.repo.Push(pat); err != nil {
		return err
	}
	a.log.Infow("archive pushed", "remote", DefaultRemote)
	return nil
}

func sameDocument(a, b *export.Document) bool {
	left, err := export.JSON(*a)
	if err != nil {
		return false
	}
	right, err := export.JSON(*b)
	if err != nil {
		return false
	}
	return bytes.Equal(left, right)
}
