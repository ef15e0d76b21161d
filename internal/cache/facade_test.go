// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// flakyStore is a map-backed Store whose read and write paths can be
// forced to fail.
type flakyStore struct {
	entries  map[string][]byte
	ttls     map[string]time.Duration
	getErr   error
	setErr   error
	getCalls int
	setCalls int
}

func newFlakyStore() *flakyStore {
	return &flakyStore{
		entries: make(map[string][]byte),
		ttls:    make(map[string]time.Duration),
	}
}

func (s *flakyStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.getCalls++
	if s.getErr != nil {
		return nil, s.getErr
	}
	data, ok := s.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	return data, nil
}

func (s *flakyStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.setCalls++
	if s.setErr != nil {
		return s.setErr
	}
	s.entries[key] = value
	s.ttls[key] = ttl
	return nil
}

func countingProducer(value int) (func(context.Context) (int, error), *int) {
	calls := new(int)
	return func(context.Context) (int, error) {
		*calls++
		return value, nil
	}, calls
}

func TestFetchMissThenHit(t *testing.T) {
	ctx := context.Background()
	store := newFlakyStore()
	c := New(store)

	produce, calls := countingProducer(42)

	got, err := Fetch(ctx, c, "x", Options{}, produce)
	assert.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 1, *calls)
	assert.Contains(t, store.entries, "x")
	assert.Equal(t, "42", string(store.entries["x"]))

	// Second identical call is served from the store.
	got, err = Fetch(ctx, c, "x", Options{}, produce)
	assert.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 1, *calls, "producer must not run again on a hit")
}

func TestFetchPropagatesTTL(t *testing.T) {
	ctx := context.Background()
	store := newFlakyStore()
	c := New(store)

	produce, _ := countingProducer(7)
	_, err := Fetch(ctx, c, "ttl", Options{Expires: 90 * time.Second}, produce)
	assert.NoError(t, err)
	assert.Equal(t, 90*time.Second, store.ttls["ttl"])
}

func TestFetchReadFailure(t *testing.T) {
	ctx := context.Background()
	store := newFlakyStore()
	store.getErr = errors.New("cache store unreachable")
	c := New(store)

	produce, calls := countingProducer(42)

	got, err := Fetch(ctx, c, "x", Options{}, produce)
	assert.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 1, *calls, "producer runs exactly once on read failure")
	assert.Zero(t, store.setCalls, "read failure bypasses the cache entirely")
}

func TestFetchWriteFailure(t *testing.T) {
	ctx := context.Background()
	store := newFlakyStore()
	store.setErr = errors.New("write refused")
	c := New(store)

	produce, calls := countingProducer(42)

	got, err := Fetch(ctx, c, "x", Options{}, produce)
	assert.NoError(t, err, "write failure must not block the return")
	assert.Equal(t, 42, got)
	assert.Equal(t, 1, *calls)
}

func TestFetchMalformedEntry(t *testing.T) {
	ctx := context.Background()
	store := newFlakyStore()
	store.entries["x"] = []byte("{not json")
	c := New(store)

	produce, calls := countingProducer(42)

	got, err := Fetch(ctx, c, "x", Options{}, produce)
	assert.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 1, *calls)
}

func TestFetchProducerErrorPropagates(t *testing.T) {
	ctx := context.Background()
	store := newFlakyStore()
	c := New(store)

	boom := errors.New("upstream query failed")
	_, err := Fetch(ctx, c, "x", Options{}, func(context.Context) (int, error) {
		return 0, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, store.setCalls, "failed computations are not cached")
}

func TestFetchNilCache(t *testing.T) {
	ctx := context.Background()

	produce, calls := countingProducer(42)

	got, err := Fetch[int](ctx, nil, "x", Options{}, produce)
	assert.NoError(t, err)
	assert.Equal(t, 42, got)

	got, err = Fetch(ctx, New(nil), "x", Options{}, produce)
	assert.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 2, *calls)
}

func TestFetchStructValue(t *testing.T) {
	type row struct {
		Name string `json:"name"`
		Tag  string `json:"tag"`
	}

	ctx := context.Background()
	store := newFlakyStore()
	c := New(store)

	want := row{Name: "pkg-a", Tag: "1.2.3-rc.1"}
	got, err := Fetch(ctx, c, "row", Options{}, func(context.Context) (row, error) {
		return want, nil
	})
	assert.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = Fetch(ctx, c, "row", Options{}, func(context.Context) (row, error) {
		return row{}, errors.New("should not run")
	})
	assert.NoError(t, err)
	assert.Equal(t, want, got)
}
