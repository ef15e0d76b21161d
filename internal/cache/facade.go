// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/apex/log"
)

// Options carry the per-call knobs forwarded through Fetch and FetchLatest.
type Options struct {
	// Expires is the entry TTL. Zero means the entry never expires and
	// lives until the backing store evicts it.
	Expires time.Duration
}

// Cache is the facade over a Store. A nil Cache (or one with a nil store)
// is valid and simply computes every value directly.
type Cache struct {
	store Store
}

// New wraps store in a Cache. store may be nil to disable caching.
func New(store Store) *Cache {
	return &Cache{store: store}
}

// Fetch returns the value under key, computing it with produce on a miss
// and writing it back. Cache faults degrade: a read failure or a malformed
// entry falls through to produce (bypassing the write on the read-failure
// path), and a write failure still returns the computed value. Errors from
// produce itself propagate to the caller on every path.
func Fetch[T any](ctx context.Context, c *Cache, key string, opts Options, produce func(context.Context) (T, error)) (T, error) {
	if c == nil || c.store == nil {
		return produce(ctx)
	}

	raw, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		var value T
		if uerr := json.Unmarshal(raw, &value); uerr != nil {
			log.WithError(uerr).Warnf("cache entry unreadable: %s", key)
			return produce(ctx)
		}
		log.Debugf("cache hit: %s", key)
		return value, nil

	case errors.Is(err, ErrNotFound):
		log.Debugf("cache miss: %s", key)
		value, perr := produce(ctx)
		if perr != nil {
			return value, perr
		}
		if raw, merr := json.Marshal(value); merr != nil {
			log.WithError(merr).Warnf("cache marshal failed: %s", key)
		} else if serr := c.store.Set(ctx, key, raw, opts.Expires); serr != nil {
			log.WithError(serr).Warnf("cache write failed: %s", key)
		}
		return value, nil

	default:
		log.WithError(err).Warnf("cache read failed: %s", key)
		return produce(ctx)
	}
}
