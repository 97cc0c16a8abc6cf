package service

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/oauth1d/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestHousekeepingSweep(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	rec := newCountingRecorder()

	first := f.issue(t, IssueRequest{})
	second := f.issue(t, IssueRequest{})

	hk := NewHousekeepingService(f.store, slogx.Discard(), time.Hour, time.Hour)
	hk.Recorder = rec
	hk.Now = func() time.Time { return first.CreatedAt.Add(2 * time.Hour) }

	n, err := hk.Sweep(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
	require.EqualValues(t, 2, rec.stale)

	got, err := f.store.Tokens().GetRequestToken(ctx, second.Token)
	require.NoError(t, err)
	require.True(t, got.Invalidated())

	n, err = hk.Sweep(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestHousekeepingStartStop(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	hk := NewHousekeepingService(f.store, slogx.Discard(), 0, 0)
	require.Equal(t, time.Hour, hk.Interval)
	require.Equal(t, 24*time.Hour, hk.TTL)

	hk.Start()
	hk.Stop()
}
