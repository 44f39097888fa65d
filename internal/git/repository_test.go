// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package git

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitRepository(t *testing.T) {
	repoPath := filepath.Join(t.TempDir(), "archive")

	repo, err := InitRepository(repoPath)
	require.NoError(t, err)
	assert.Equal(t, repoPath, repo.Path)

	info, err := os.Stat(filepath.Join(repoPath, ".git"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestOpenRepository_NotExist(t *testing.T) {
	_, err := OpenRepository(filepath.Join(t.TempDir(), "nonexistent"))
	assert.Error(t, err)
}

func TestOpenOrInit(t *testing.T) {
	repoPath := filepath.Join(t.TempDir(), "archive")

	first, err := OpenOrInit(repoPath)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(repoPath, "a.txt"), []byte("a"), 0644))
	_, err = first.CommitAll(nil)
	require.NoError(t, err)

	second, err := OpenOrInit(repoPath)
	require.NoError(t, err)
	history, err := second.History(0)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestIsClean(t *testing.T) {
	repoPath := filepath.Join(t.TempDir(), "archive")
	repo, err := InitRepository(repoPath)
	require.NoError(t, err)

	clean, err := repo.IsClean()
	require.NoError(t, err)
	assert.True(t, clean)

	require.NoError(t, os.WriteFile(filepath.Join(repoPath, "test.txt"), []byte("x"), 0644))
	clean, err = repo.IsClean()
	require.NoError(t, err)
	assert.False(t, clean)
}

func TestSetRemote(t *testing.T) {
	repo, err := InitRepository(filepath.Join(t.TempDir(), "archive"))
	require.NoError(t, err)
	assert.False(t, repo.HasRemote(DefaultRemote))

	require.NoError(t, repo.SetRemote(DefaultRemote, "https://example.com/a.git"))
	url, err := repo.RemoteURL(DefaultRemote)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a.git", url)

	// Idempotent, then replaced
	require.NoError(t, repo.SetRemote(DefaultRemote, "https://example.com/a.git"))
	require.NoError(t, repo.SetRemote(DefaultRemote, "https://example.com/b.git"))
	url, err = repo.RemoteURL(DefaultRemote)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/b.git", url)
}

func TestRemoteURL_NotExist(t *testing.T) {
	repo, err := InitRepository(filepath.Join(t.TempDir(), "archive"))
	require.NoError(t, err)

	_, err = repo.RemoteURL("upstream")
	assert.Error(t, err)
}

func TestCommitAll(t *testing.T) {
	repoPath := filepath.Join(t.TempDir(), "archive")
	repo, err := InitRepository(repoPath)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(repoPath, "one.txt"), []byte("1"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(repoPath, "two.txt"), []byte("2"), 0644))

	opts := DefaultCommitOptions()
	opts.Message = "first"
	hash, err := repo.CommitAll(opts)
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	// Nothing changed
	hash, err = repo.CommitAll(opts)
	require.NoError(t, err)
	assert.Empty(t, hash)

	// Deletions are committed too
	require.NoError(t, os.Remove(filepath.Join(repoPath, "two.txt")))
	opts.Message = "remove two"
	hash, err = repo.CommitAll(opts)
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	clean, err := repo.IsClean()
	require.NoError(t, err)
	assert.True(t, clean)

	history, err := repo.History(0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "remove two", history[0].Message)
	assert.Equal(t, "Moodlog", history[0].Author)

	limited, err := repo.History(1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestPush_Errors(t *testing.T) {
	repo, err := InitRepository(filepath.Join(t.TempDir(), "archive"))
	require.NoError(t, err)

	assert.Error(t, repo.Push(""))
	assert.ErrorIs(t, repo.Push("token"), ErrNoRemote)
}
