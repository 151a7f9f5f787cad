package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLookupMissThenHit(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	hash := HashContent([]byte("let x: number = 1"))

	_, ok, err := s.Lookup(ctx, "a.esc", hash)
	require.NoError(t, err)
	require.False(t, ok)

	entry := Entry{
		Path:        "a.esc",
		ContentHash: hash,
		Diagnostics: 0,
		CheckedAt:   time.Unix(1000, 0),
		Duration:    5 * time.Millisecond,
	}
	require.NoError(t, s.Put(ctx, entry))

	got, ok, err := s.Lookup(ctx, "a.esc", hash)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, entry.Diagnostics, got.Diagnostics)
	require.Equal(t, entry.Duration, got.Duration)
}

func TestLookupStaleContentIsMiss(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	oldHash := HashContent([]byte("let x: number = 1"))
	newHash := HashContent([]byte("let x: number = 2"))

	require.NoError(t, s.Put(ctx, Entry{Path: "a.esc", ContentHash: oldHash, CheckedAt: time.Unix(1, 0)}))

	_, ok, err := s.Lookup(ctx, "a.esc", newHash)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSize(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Put(ctx, Entry{Path: "a.esc", ContentHash: "h1", CheckedAt: time.Unix(1, 0)}))
	require.NoError(t, s.Put(ctx, Entry{Path: "b.esc", ContentHash: "h2", CheckedAt: time.Unix(1, 0)}))

	n, err := s.Size(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, n)
}
