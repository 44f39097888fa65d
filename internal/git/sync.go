// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package git

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
)

// ErrNoRemote is returned by Push when no remote is configured
var ErrNoRemote = errors.New("no remote configured")

// Push pushes commits to the default remote using a personal access token
func (r *Repository) Push(pat string) error {
	if pat == "" {
		return fmt.Errorf("PAT token is required for push")
	}
	if !r.HasRemote(DefaultRemote) {
		return ErrNoRemote
	}

	auth := &http.BasicAuth{
		Username: "git", // Can be anything except empty string
		Password: pat,
	}

	err := r.repo.Push(&git.PushOptions{
		RemoteName: DefaultRemote,
		Auth:       auth,
	})
	if err != nil {
		if errors.Is(err, git.NoErrAlreadyUpToDate) {
			return nil
		}
		return fmt.Errorf("failed to push: %w", err)
	}
	return nil
}
