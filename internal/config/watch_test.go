package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRulesSourceReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.toml")
	require.NoError(t, os.WriteFile(path, []byte("suggestions = 3\n"), 0o644))

	src, err := NewRulesSource(path)
	require.NoError(t, err)
	assert.Equal(t, 3, src.Current().Suggestions)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- src.Watch(ctx, zap.NewNop()) }()
	defer func() {
		cancel()
		<-done
	}()

	// Give the watcher time to register before writing.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("suggestions = 7\n"), 0o644))
	require.Eventually(t, func() bool { return src.Current().Suggestions == 7 }, 2*time.Second, 10*time.Millisecond)

	// A broken edit keeps the last good rules.
	require.NoError(t, os.WriteFile(path, []byte("suggestions = 0\n"), 0o644))
	time.Sleep(3 * settleDelay)
	assert.Equal(t, 7, src.Current().Suggestions)

	// So does a file left empty.
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	time.Sleep(3 * settleDelay)
	assert.Equal(t, 7, src.Current().Suggestions)
}

func TestRulesSourceWaitsForWritesToSettle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.toml")
	require.NoError(t, os.WriteFile(path, []byte("suggestions = 3\n"), 0o644))

	src, err := NewRulesSource(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- src.Watch(ctx, zap.NewNop()) }()
	defer func() {
		cancel()
		<-done
	}()
	time.Sleep(50 * time.Millisecond)

	// Truncate, then write the new body shortly after, as editors do.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0o644)
	require.NoError(t, err)
	time.Sleep(settleDelay / 4)
	_, err = f.WriteString("suggestions = 9\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	deadline := time.Now().Add(2 * time.Second)
	for src.Current().Suggestions != 9 {
		require.True(t, time.Now().Before(deadline), "rules never reloaded")
		// The defaults an empty file would parse to must never show up.
		require.Contains(t, []int{3, 9}, src.Current().Suggestions)
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRulesSourceWithoutFile(t *testing.T) {
	src, err := NewRulesSource("")
	require.NoError(t, err)
	assert.Equal(t, 5, src.Current().Suggestions)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, src.Watch(ctx, zap.NewNop()), context.DeadlineExceeded)

	_, err = NewRulesSource("testdata/bad_phase.toml")
	assert.Error(t, err)
}
