// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package git

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
)

// DefaultRemote is the remote snapshots are pushed to
const DefaultRemote = "origin"

// Repository wraps go-git repository operations
type Repository struct {
	Path string
	repo *git.Repository
}

// InitRepository initializes a new git repository
func InitRepository(path string) (*Repository, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create repository directory: %w", err)
	}

	repo, err := git.PlainInit(path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize git repository: %w", err)
	}

	return &Repository{Path: path, repo: repo}, nil
}

// OpenRepository opens an existing git repository
func OpenRepository(path string) (*Repository, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository: %w", err)
	}

	return &Repository{Path: path, repo: repo}, nil
}

// OpenOrInit opens the repository at path, initializing it when missing
func OpenOrInit(path string) (*Repository, error) {
	repo, err := git.PlainOpen(path)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return InitRepository(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository: %w", err)
	}
	return &Repository{Path: path, repo: repo}, nil
}

// Status returns the status of the worktree
func (r *Repository) Status() (git.Status, error) {
	worktree, err := r.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}
	return status, nil
}

// IsClean returns true if the repository has no uncommitted changes
func (r *Repository) IsClean() (bool, error) {
	status, err := r.Status()
	if err != nil {
		return false, err
	}
	return status.IsClean(), nil
}

// SetRemote points name at url, creating the remote if needed
func (r *Repository) SetRemote(name, url string) error {
	if r.HasRemote(name) {
		if current, err := r.RemoteURL(name); err == nil && current == url {
			return nil
		}
		if err := r.repo.DeleteRemote(name); err != nil {
			return fmt.Errorf("failed to replace remote: %w", err)
		}
	}

	_, err := r.repo.CreateRemote(&config.RemoteConfig{
		Name: name,
		URLs: []string{url},
	})
	if err != nil {
		return fmt.Errorf("failed to add remote: %w", err)
	}
	return nil
}

// RemoteURL returns the first URL of a remote
func (r *Repository) RemoteURL(name string) (string, error) {
	remote, err := r.repo.Remote(name)
	if err != nil {
		return "", fmt.Errorf("failed to get remote: %w", err)
	}

	cfg := remote.Config()
	if len(cfg.URLs) == 0 {
		return "", fmt.Errorf("remote has no URLs")
	}
	return cfg.URLs[0], nil
}

// HasRemote checks if a remote exists
func (r *Repository) HasRemote(name string) bool {
	_, err := r.repo.Remote(name)
	return err == nil
}
