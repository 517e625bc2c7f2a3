package graph

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/starford/logpub/internal/testutil"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestWatch_RebuildsOnChange(t *testing.T) {
	dir, _ := testutil.TestGraph(t, map[string]string{"pages/a.md": "a\n"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var rebuilds atomic.Int32
	go Watch(ctx, dir, 50*time.Millisecond, discard(), func(context.Context) {
		rebuilds.Add(1)
	})
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(dir, "pages", "b.md"), []byte("b\n"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rebuilds.Load() >= 1
	}, "no rebuild after page write")
}

func TestWatch_Debounces(t *testing.T) {
	dir, _ := testutil.TestGraph(t, map[string]string{"pages/a.md": "a\n"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var rebuilds atomic.Int32
	go Watch(ctx, dir, 300*time.Millisecond, discard(), func(context.Context) {
		rebuilds.Add(1)
	})
	time.Sleep(100 * time.Millisecond)

	for i := range 5 {
		_ = os.WriteFile(filepath.Join(dir, "pages", "a.md"), []byte{byte('a' + i)}, 0o644)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rebuilds.Load() >= 1
	}, "no rebuild after burst")
	time.Sleep(500 * time.Millisecond)
	if got := rebuilds.Load(); got != 1 {
		t.Errorf("rebuilds = %d, want 1", got)
	}
}

func TestWatch_NewCollectionDir(t *testing.T) {
	dir, _ := testutil.TestGraph(t, map[string]string{"pages/a.md": "a\n"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var rebuilds atomic.Int32
	go Watch(ctx, dir, 50*time.Millisecond, discard(), func(context.Context) {
		rebuilds.Add(1)
	})
	time.Sleep(100 * time.Millisecond)

	_ = os.MkdirAll(filepath.Join(dir, "journals"), 0o755)
	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rebuilds.Load() >= 1
	}, "no rebuild after journals/ created")

	before := rebuilds.Load()
	time.Sleep(100 * time.Millisecond)
	_ = os.WriteFile(filepath.Join(dir, "journals", "2024_01_01.md"), []byte("x\n"), 0o644)
	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rebuilds.Load() > before
	}, "no rebuild after journal write")
}
