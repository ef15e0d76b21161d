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

// fakeModel answers probes from a canned Probe and counts real queries.
type fakeModel struct {
	probe       Probe
	probeErr    error
	rows        []string
	queryErr    error
	latestCalls int
	queryCalls  int
	lastOp      Op
	lastWhere   Conditions
}

func (m *fakeModel) Latest(ctx context.Context, where Conditions) (Probe, error) {
	m.latestCalls++
	if m.probeErr != nil {
		return Probe{}, m.probeErr
	}
	return m.probe, nil
}

func (m *fakeModel) Query(ctx context.Context, op Op, where Conditions) ([]string, error) {
	m.queryCalls++
	m.lastOp = op
	m.lastWhere = where
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	return m.rows, nil
}

func TestDeriveKey(t *testing.T) {
	updated := time.UnixMilli(1714000000123).UTC()
	probe := Probe{ID: "34", UpdatedAt: updated}
	assert.Equal(t, "posts-34-1714000000123", DeriveKey("posts", probe))
}

func TestFetchLatestSecondCallCached(t *testing.T) {
	ctx := context.Background()
	c := New(newFlakyStore())

	model := &fakeModel{
		probe: Probe{ID: "34", UpdatedAt: time.UnixMilli(1714000000123)},
		rows:  []string{"a", "b"},
	}
	where := Conditions{"isAdmin": true}

	got, err := FetchLatest[[]string](ctx, c, "posts", model, OpFindMany, where, Options{})
	assert.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, 1, model.queryCalls)
	assert.Equal(t, OpFindMany, model.lastOp)
	assert.Equal(t, where, model.lastWhere)

	// Unchanged latest record: same derived key, served from the store.
	got, err = FetchLatest[[]string](ctx, c, "posts", model, OpFindMany, where, Options{})
	assert.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, 1, model.queryCalls, "real query must not run again")
	assert.Equal(t, 2, model.latestCalls, "the probe runs every call")
}

func TestFetchLatestKeyChangesOnUpdate(t *testing.T) {
	ctx := context.Background()
	store := newFlakyStore()
	c := New(store)

	model := &fakeModel{
		probe: Probe{ID: "34", UpdatedAt: time.UnixMilli(1000)},
		rows:  []string{"old"},
	}

	got, err := FetchLatest[[]string](ctx, c, "posts", model, OpFindMany, nil, Options{})
	assert.NoError(t, err)
	assert.Equal(t, []string{"old"}, got)

	// A write bumps the record's update timestamp. The old entry is
	// abandoned, not deleted, and the next call recomputes.
	model.probe.UpdatedAt = time.UnixMilli(2000)
	model.rows = []string{"new"}

	got, err = FetchLatest[[]string](ctx, c, "posts", model, OpFindMany, nil, Options{})
	assert.NoError(t, err)
	assert.Equal(t, []string{"new"}, got)
	assert.Equal(t, 2, model.queryCalls)
	assert.Contains(t, store.entries, "posts-34-1000")
	assert.Contains(t, store.entries, "posts-34-2000")
}

func TestFetchLatestProbeFailureRunsUncached(t *testing.T) {
	ctx := context.Background()
	store := newFlakyStore()
	c := New(store)

	model := &fakeModel{
		probeErr: errors.New("database unreachable"),
		rows:     []string{"direct"},
	}

	got, err := FetchLatest[[]string](ctx, c, "posts", model, OpFindMany, nil, Options{})
	assert.NoError(t, err)
	assert.Equal(t, []string{"direct"}, got)
	assert.Equal(t, 1, model.queryCalls)
	assert.Empty(t, store.entries)
}

func TestFetchLatestEmptyResultNeverCached(t *testing.T) {
	ctx := context.Background()
	store := newFlakyStore()
	c := New(store)

	model := &fakeModel{probeErr: ErrNoRecord}

	for i := 0; i < 2; i++ {
		got, err := FetchLatest[[]string](ctx, c, "posts", model, OpFindMany, nil, Options{})
		assert.NoError(t, err)
		assert.Empty(t, got)
	}
	assert.Equal(t, 2, model.queryCalls, "empty result sets run uncached every time")
	assert.Empty(t, store.entries)
}

func TestFetchLatestQueryErrorPropagates(t *testing.T) {
	ctx := context.Background()
	c := New(newFlakyStore())

	boom := errors.New("query exploded")
	model := &fakeModel{
		probe:    Probe{ID: "1", UpdatedAt: time.UnixMilli(1)},
		queryErr: boom,
	}

	_, err := FetchLatest[[]string](ctx, c, "posts", model, OpFindFirst, nil, Options{})
	assert.ErrorIs(t, err, boom)
}

func TestOpString(t *testing.T) {
	assert.Equal(t, "findMany", OpFindMany.String())
	assert.Equal(t, "findFirst", OpFindFirst.String())
	assert.Equal(t, "op(9)", Op(9).String())
}
