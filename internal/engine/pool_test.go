package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForEachPathSequentialPreservesOrder(t *testing.T) {
	t.Parallel()

	var seen []string
	err := forEachPath(context.Background(), []string{"a", "b", "c"}, 1, func(rel string) error {
		seen = append(seen, rel)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, seen)
}

func TestForEachPathParallelVisitsAll(t *testing.T) {
	t.Parallel()

	paths := []string{"a", "b", "c", "d", "e", "f"}
	var mu sync.Mutex
	seen := map[string]bool{}

	err := forEachPath(context.Background(), paths, 3, func(rel string) error {
		mu.Lock()
		seen[rel] = true
		mu.Unlock()
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, seen, len(paths))
}

func TestForEachPathPropagatesFirstError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	err := forEachPath(context.Background(), []string{"a", "b", "c", "d"}, 2, func(rel string) error {
		if rel == "b" {
			return boom
		}
		return nil
	})
	require.ErrorIs(t, err, boom)
}

func TestForEachPathStopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32

	err := forEachPath(ctx, []string{"a", "b", "c", "d"}, 2, func(rel string) error {
		if calls.Add(1) == 1 {
			cancel()
		}
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestForEachPathSequentialHonorsCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := forEachPath(ctx, []string{"a"}, 0, func(string) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
