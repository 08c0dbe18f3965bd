package dataset

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
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

func TestWatcher_NewFileIngested(t *testing.T) {
	dir := t.TempDir()
	provider, err := NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	st := testStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var syncs atomic.Int64
	go Watch(ctx, st, provider, dir, testLogger(), func() {
		syncs.Add(1)
	})

	time.Sleep(100 * time.Millisecond)

	writeSeed(t, dir, "new.json", `{"name": "Dal", "per100g": {"kcal": 116}}`)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		_, err := st.FindByNameAndBrand("Dal", "")
		return err == nil
	}, "new seed file was not ingested")

	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		return syncs.Load() >= 1
	}, "sync callback did not fire")
}

func TestWatcher_ChangedFileReingested(t *testing.T) {
	dir := t.TempDir()
	writeSeed(t, dir, "base.json", `{"name": "Dal", "per100g": {"kcal": 116}}`)
	provider, _ := NewFS(dir)
	st := testStore(t)
	_ = Sync(st, provider, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Watch(ctx, st, provider, dir, testLogger(), nil)

	time.Sleep(100 * time.Millisecond)

	writeSeed(t, dir, "base.json", `{"name": "Dal", "per100g": {"kcal": 120}}`)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		rec, err := st.FindByNameAndBrand("Dal", "")
		return err == nil && rec.Per100g.Kcal == 120
	}, "changed seed file was not re-ingested")
}

func TestWatcher_IgnoresNonJSON(t *testing.T) {
	dir := t.TempDir()
	provider, _ := NewFS(dir)
	st := testStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var syncs atomic.Int64
	go Watch(ctx, st, provider, dir, testLogger(), func() { syncs.Add(1) })

	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0o644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(500 * time.Millisecond)
	if syncs.Load() != 0 {
		t.Errorf("expected no sync for non-json file, got %d", syncs.Load())
	}
}
