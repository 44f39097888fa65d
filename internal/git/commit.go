// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package git

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// CommitOptions holds options for creating commits
type CommitOptions struct {
	Author  string
	Email   string
	Message string
	When    time.Time
}

// DefaultCommitOptions returns default commit options
func DefaultCommitOptions() *CommitOptions {
	return &CommitOptions{
		Author: "Moodlog",
		Email:  "journal@moodlog.local",
	}
}

// CommitInfo describes one commit
type CommitInfo struct {
	Hash      string    `json:"hash"`
	Message   string    `json:"message"`
	Author    string    `json:"author"`
	Timestamp time.Time `json:"timestamp"`
}

// CommitAll stages every change, deletions included, and commits it.
// It returns an empty hash and no error when there is nothing to commit.
func (r *Repository) CommitAll(opts *CommitOptions) (string, error) {
	if opts == nil {
		opts = DefaultCommitOptions()
	}

	worktree, err := r.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree: %w", err)
	}

	if err := worktree.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return "", fmt.Errorf("failed to add all changes: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return "", fmt.Errorf("failed to get status: %w", err)
	}
	for path, s := range status {
		if s.Worktree == git.Deleted {
			if _, err := worktree.Remove(path); err != nil {
				return "", fmt.Errorf("failed to stage removal of %s: %w", path, err)
			}
		}
	}

	status, err = worktree.Status()
	if err != nil {
		return "", fmt.Errorf("failed to get status: %w", err)
	}
	if status.IsClean() {
		return "", nil
	}

	when := opts.When
	if when.IsZero() {
		when = time.Now()
	}
	hash, err := worktree.Commit(opts.Message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  opts.Author,
			Email: opts.Email,
			When:  when,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}
	return hash.String(), nil
}

// History returns up to limit commits from HEAD, newest first
func (r *Repository) History(limit int) ([]CommitInfo, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}

	iter, err := r.repo.Log(&git.LogOptions{From: ref.Hash()})
	if err != nil {
		return nil, fmt.Errorf("failed to get commit log: %w", err)
	}
	defer iter.Close()

	var commits []CommitInfo
	err = iter.ForEach(func(c *object.Commit) error {
		if limit > 0 && len(commits) >= limit {
			return storer.ErrStop
		}
		commits = append(commits, CommitInfo{
			Hash:      c.Hash.String(),
			Message:   strings.TrimSpace(c.Message),
			Author:    c.Author.Name,
			Timestamp: c.Author.When,
		})
		return nil
	})
	if err != nil && !errors.Is(err, storer.ErrStop) {
		return nil, fmt.Errorf("failed to iterate commits: %w", err)
	}
	return commits, nil
}
