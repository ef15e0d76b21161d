// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Store.Get when the key has no live entry.
var ErrNotFound = errors.New("cache entry not found")

// Store is the key-value backend the facade delegates to. Implementations
// must treat a ttl of zero as "no expiration" and must be safe for
// concurrent use. Key uniqueness is the store's problem, not the facade's.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
