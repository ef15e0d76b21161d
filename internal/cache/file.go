// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/apex/log"
)

// fileEntry is the on-disk envelope. ExpiresAt is Unix nanoseconds; zero
// means no expiry.
type fileEntry struct {
	ExpiresAt int64  `json:"expires_at"`
	Data      []byte `json:"data"`
}

// FileStore keeps entries as md5-named files under a base directory,
// surviving across relctl invocations. It is the default backend.
type FileStore struct {
	base string
}

// Dir resolves the base cache directory.
// Precedence:
//  1. RELCTL_CACHE_DIR, if set and non-empty
//  2. os.UserCacheDir()/relctl
//
// Returns ("", false) if a base cannot be resolved (treat as disabled).
func Dir() (string, bool) {
	if c, ok := os.LookupEnv("RELCTL_CACHE_DIR"); ok && c != "" {
		return c, true
	}
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "relctl"), true
	}
	return "", false
}

// Enabled returns true unless RELCTL_CACHE explicitly disables it ("0"/"false").
func Enabled() bool {
	enabled, _ := os.LookupEnv("RELCTL_CACHE")
	return enabled == "" || (enabled != "0" && enabled != "false")
}

// EnsureBaseDir creates the base cache directory if caching is enabled and
// a base path can be resolved. Returns the path, whether it is usable, and an
// error if creation failed.
func EnsureBaseDir() (string, bool, error) {
	if !Enabled() {
		return "", false, nil
	}
	base, ok := Dir()
	if !ok {
		return "", false, nil
	}
	if err := os.MkdirAll(base, 0o755); err != nil { //nolint:mnd
		return base, false, fmt.Errorf("failed to create cache base directory: %w", err)
	}
	return base, true, nil
}

// NewFileStore returns a FileStore rooted at base. An empty base resolves
// through Dir.
func NewFileStore(base string) *FileStore {
	if base == "" {
		base, _ = Dir()
	}
	return &FileStore{base: base}
}

func (s *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	if s.base == "" || !Enabled() {
		return nil, ErrNotFound
	}

	raw, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var entry fileEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("corrupt cache file for %s: %w", key, err)
	}
	if entry.ExpiresAt > 0 && time.Now().UnixNano() >= entry.ExpiresAt {
		_ = os.Remove(s.path(key))
		return nil, ErrNotFound
	}
	return entry.Data, nil
}

func (s *FileStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if s.base == "" || !Enabled() {
		return nil // treat as disabled.
	}

	if err := os.MkdirAll(s.base, 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	entry := fileEntry{Data: value}
	if ttl > 0 {
		entry.ExpiresAt = time.Now().Add(ttl).UnixNano()
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	if err := os.WriteFile(s.path(key), raw, os.FileMode(0o600)); err != nil { //nolint:mnd
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	return nil
}

// Purge removes files older than the provided number of hours.
// If hours <= 0 or the cache dir cannot be resolved, it is a no-op.
func (s *FileStore) Purge(hours int) error {
	if hours <= 0 {
		log.Debug("cache cleaning disabled")
		return nil
	}
	if s.base == "" {
		return nil
	}
	maxAge := time.Duration(hours) * time.Hour
	if err := filepath.Walk(s.base, func(path string, info os.FileInfo, _ error) error {
		if info == nil {
			return nil
		}
		if !info.IsDir() && time.Since(info.ModTime()) > maxAge {
			if err := os.Remove(path); err == nil {
				log.Debugf("removed cache file %s", path)
			} else {
				log.WithError(err).Warnf("failed to remove cache file %s", path)
			}
		}
		return nil
	}); err != nil {
		return fmt.Errorf("failed to purge cache: %w", err)
	}
	return nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.base, encodeKey(key))
}

// encodeKey hashes k with MD5 and returns the hex string.
func encodeKey(k string) string {
	h := md5.New()
	_, _ = h.Write([]byte(k))
	return hex.EncodeToString(h.Sum(nil))
}
