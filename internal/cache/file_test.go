// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(t.TempDir())

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, s.Set(ctx, "k", []byte(`{"name":"pkg-a"}`), 0))
	got, err := s.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Equal(t, `{"name":"pkg-a"}`, string(got))

	// The clear-text key never appears on disk.
	entries, err := os.ReadDir(s.base)
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, encodeKey("k"), entries[0].Name())
}

func TestFileStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(t.TempDir())

	assert.NoError(t, s.Set(ctx, "k", []byte("v"), time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	// The expired file is removed on read.
	_, statErr := os.Stat(s.path("k"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestFileStoreDisabledByEnv(t *testing.T) {
	ctx := context.Background()
	t.Setenv("RELCTL_CACHE", "0")

	s := NewFileStore(t.TempDir())
	assert.NoError(t, s.Set(ctx, "k", []byte("v"), 0))
	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStorePurge(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := NewFileStore(dir)

	assert.NoError(t, s.Set(ctx, "old", []byte("v"), 0))
	assert.NoError(t, s.Set(ctx, "new", []byte("v"), 0))

	// Age one file past the purge horizon.
	stale := time.Now().Add(-48 * time.Hour)
	assert.NoError(t, os.Chtimes(s.path("old"), stale, stale))

	assert.NoError(t, s.Purge(24))

	_, err := s.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(ctx, "new")
	assert.NoError(t, err)
}

func TestFileStorePurgeDisabled(t *testing.T) {
	s := NewFileStore(t.TempDir())
	assert.NoError(t, s.Set(context.Background(), "k", []byte("v"), 0))
	assert.NoError(t, s.Purge(0))

	_, err := os.Stat(filepath.Join(s.base, encodeKey("k")))
	assert.NoError(t, err)
}

func TestDirPrecedence(t *testing.T) {
	t.Setenv("RELCTL_CACHE_DIR", "/tmp/relctl-test-cache")
	dir, ok := Dir()
	assert.True(t, ok)
	assert.Equal(t, "/tmp/relctl-test-cache", dir)
}
