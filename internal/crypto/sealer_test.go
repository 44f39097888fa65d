// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package crypto

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSealer(t *testing.T) *Sealer {
	t.Helper()
	key, err := GenerateKey()
	require.NoError(t, err)
	s, err := NewSealerFromString(key)
	require.NoError(t, err)
	return s
}

func TestSealOpen(t *testing.T) {
	s := newTestSealer(t)

	sealed, err := s.Seal("ghp_example_token")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sealed, "v1:"))
	assert.NotContains(t, sealed, "ghp_example_token")

	plain, err := s.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "ghp_example_token", plain)
}

func TestSeal_FreshNonce(t *testing.T) {
	s := newTestSealer(t)

	a, err := s.Seal("same")
	require.NoError(t, err)
	b, err := s.Seal("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestOpen_WrongKey(t *testing.T) {
	sealed, err := newTestSealer(t).Seal("secret")
	require.NoError(t, err)

	_, err = newTestSealer(t).Open(sealed)
	assert.Error(t, err)
}

func TestOpen_Invalid(t *testing.T) {
	s := newTestSealer(t)

	tests := []string{
		"",
		"plain-token",
		"v1:not base64!",
		"v1:" + base64.StdEncoding.EncodeToString([]byte("short")),
	}
	for _, in := range tests {
		_, err := s.Open(in)
		assert.Error(t, err, in)
	}

	_, err := s.Open("plain-token")
	assert.ErrorIs(t, err, ErrInvalidCiphertext)
}

func TestNewSealer_KeySizes(t *testing.T) {
	for _, size := range []int{16, 24, 32} {
		_, err := NewSealer(make([]byte, size))
		assert.NoError(t, err, size)
	}

	_, err := NewSealer(make([]byte, 10))
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestParseKey(t *testing.T) {
	encoded, err := GenerateKey()
	require.NoError(t, err)

	key, err := ParseKey("  " + encoded + "\n")
	require.NoError(t, err)
	assert.Len(t, key, 32)

	_, err = ParseKey("%%%")
	assert.Error(t, err)

	_, err = ParseKey(base64.StdEncoding.EncodeToString([]byte("too short")))
	assert.ErrorIs(t, err, ErrInvalidKey)
}
