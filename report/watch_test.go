package report

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherRefreshesOnResult(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "software")

	w := NewWatcher([]string{dir}, discardLogger())
	w.Debounce = 50 * time.Millisecond

	refreshed := make(chan struct{}, 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(context.Context) error {
			refreshed <- struct{}{}
			return nil
		})
	}()

	waitRefresh := func() {
		t.Helper()
		select {
		case <-refreshed:
		case <-time.After(5 * time.Second):
			t.Fatal("no refresh")
		}
	}

	// Initial refresh happens after the directory is watched.
	waitRefresh()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "aes128gcm_64_64.csv"),
		[]byte("run, time in microseconds, throughput (GB/s)\n0, 10, 1\n"),
		0o644,
	))

	waitRefresh()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestRelevant(t *testing.T) {
	tests := []struct {
		event fsnotify.Event
		want  bool
	}{
		{fsnotify.Event{Name: "a_1_1.csv", Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: "a_1_1.csv", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "a_1_1.csv", Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: "sweep.prom", Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, relevant(tt.event), "relevant(%v)", tt.event)
	}
}
