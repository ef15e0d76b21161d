// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/apex/log"
)

// ErrNoRecord is returned by Model.Latest when no record matches the
// conditions. FetchLatest treats it as "run the query uncached" rather
// than caching an empty result.
var ErrNoRecord = errors.New("no matching record")

// Op names a query operation. Conditions are paired with an Op instead of
// dispatching a method by its string name.
type Op int

const (
	// OpFindMany returns every record matching the conditions.
	OpFindMany Op = iota
	// OpFindFirst returns the first record matching the conditions.
	OpFindFirst
)

func (op Op) String() string {
	switch op {
	case OpFindMany:
		return "findMany"
	case OpFindFirst:
		return "findFirst"
	default:
		return fmt.Sprintf("op(%d)", int(op))
	}
}

// Conditions is the filter payload forwarded to the model untouched.
type Conditions map[string]any

// Probe identifies the most recently updated record matching a filter.
// It exists only to derive a cache key and is never stored.
type Probe struct {
	ID        string
	UpdatedAt time.Time
}

// Model is the data-query capability FetchLatest works against. Latest is
// the probe: first matching record ordered by update time descending,
// projected to id and update timestamp. Query runs the real operation.
type Model[T any] interface {
	Latest(ctx context.Context, where Conditions) (Probe, error)
	Query(ctx context.Context, op Op, where Conditions) (T, error)
}

// FetchLatest caches the result of model.Query under a key derived from
// the newest record matching where. Any write to a matching record bumps
// its update timestamp, which changes the derived key and strands the old
// entry; invalidation is implicit and stale entries are left to the
// store's own expiration. If the probe fails or matches nothing, the
// query runs uncached.
func FetchLatest[T any](ctx context.Context, c *Cache, prefix string, model Model[T], op Op, where Conditions, opts Options) (T, error) {
	probe, err := model.Latest(ctx, where)
	if err != nil {
		if errors.Is(err, ErrNoRecord) {
			log.Debugf("no latest record for %s, running %s uncached", prefix, op)
		} else {
			log.WithError(err).Warnf("latest probe failed for %s, running %s uncached", prefix, op)
		}
		return model.Query(ctx, op, where)
	}

	key := DeriveKey(prefix, probe)
	return Fetch(ctx, c, key, opts, func(ctx context.Context) (T, error) {
		return model.Query(ctx, op, where)
	})
}

// DeriveKey builds the freshness-addressed key {prefix}-{id}-{epochMillis}.
func DeriveKey(prefix string, probe Probe) string {
	return fmt.Sprintf("%s-%s-%d", prefix, probe.ID, probe.UpdatedAt.UnixMilli())
}
