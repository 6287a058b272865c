package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestSnapshotWatcherFiresOnce(t *testing.T) {
	dir := t.TempDir()

	var calls atomic.Int32
	w := NewSnapshotWatcher(dir, []string{"corpus.db"}, func() { calls.Add(1) }, nil)
	w.debounceTime = 100 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	// Unrelated files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	// A burst of writes collapses into one callback.
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(filepath.Join(dir, "corpus.db"), []byte{byte(i)}, 0644); err != nil {
			t.Fatal(err)
		}
	}

	deadline := time.Now().Add(3 * time.Second)
	for calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	time.Sleep(300 * time.Millisecond)

	if got := calls.Load(); got != 1 {
		t.Errorf("expected 1 callback, got %d", got)
	}
}

func TestSnapshotWatcherMissingDir(t *testing.T) {
	w := NewSnapshotWatcher(filepath.Join(t.TempDir(), "absent"), []string{"corpus.db"}, func() {}, nil)
	if err := w.Run(context.Background()); err == nil {
		t.Error("expected error watching a missing directory")
	}
}
