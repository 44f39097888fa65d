// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package journal

import (
	"errors"
	"fmt"

	"github.com/tejzpr/moodlog-mcp/internal/locking"
)

// Kind classifies a storage failure
type Kind string

// Storage failure kinds
const (
	KindIO     Kind = "io"
	KindDecode Kind = "decode"
)

var (
	// ErrInvalidEntry is returned when an entry fails validation
	ErrInvalidEntry = errors.New("invalid entry")
	// ErrNoEntries is returned by DeleteEntry when nothing has ever been stored
	ErrNoEntries = errors.New("no entries stored")
)

// StorageError is a failure reading, writing or decoding one storage key
type StorageError struct {
	Op   string
	Key  string
	Kind Kind
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s (%s): %v", e.Op, e.Key, e.Kind, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// kindOf labels an error for logs and metrics
func kindOf(err error) string {
	var storageErr *StorageError
	switch {
	case errors.As(err, &storageErr):
		return string(storageErr.Kind)
	case errors.Is(err, ErrInvalidEntry):
		return "invalid"
	case errors.Is(err, ErrNoEntries):
		return "empty"
	case errors.Is(err, locking.ErrLockHeld):
		return "lock"
	}
	return string(KindIO)
}
