package dataset

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/helmick/nutriseek/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testStore(t *testing.T) store.Store {
	t.Helper()
	f, err := os.CreateTemp("", "nutriseek-dataset-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := store.Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func writeSeed(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestSync_IngestsSeedFiles(t *testing.T) {
	dir := t.TempDir()
	writeSeed(t, dir, "grains.json", `[
		{"name": "Roti", "per100g": {"kcal": 297, "protein": 11, "carbs": 51, "fat": 7}},
		{"name": "Rice", "per100g": {"kcal": 130}}
	]`)
	provider, err := NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	st := testStore(t)

	if err := Sync(st, provider, testLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	n, _ := st.Count()
	if n != 2 {
		t.Fatalf("count = %d, want 2", n)
	}
	rec, err := st.FindByNameAndBrand("roti", "")
	if err != nil {
		t.Fatalf("FindByNameAndBrand: %v", err)
	}
	if rec.Per100g.Kcal != 297 {
		t.Errorf("kcal = %v, want 297", rec.Per100g.Kcal)
	}
}

func TestSync_SkipsUnchangedFiles(t *testing.T) {
	dir := t.TempDir()
	writeSeed(t, dir, "base.json", `{"name": "Roti", "per100g": {"kcal": 297}}`)
	provider, _ := NewFS(dir)
	st := testStore(t)

	if err := Sync(st, provider, testLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	cs, _ := st.AllFileChecksums()
	if len(cs) != 1 {
		t.Fatalf("expected 1 checksum, got %d", len(cs))
	}

	// A second pass over an unchanged file must not fail or duplicate records.
	if err := Sync(st, provider, testLogger()); err != nil {
		t.Fatalf("second Sync: %v", err)
	}
	n, _ := st.Count()
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}

func TestSync_UpdatedFileReingested(t *testing.T) {
	dir := t.TempDir()
	writeSeed(t, dir, "base.json", `{"name": "Roti", "per100g": {"kcal": 297}}`)
	provider, _ := NewFS(dir)
	st := testStore(t)
	_ = Sync(st, provider, testLogger())

	writeSeed(t, dir, "base.json", `{"name": "Roti", "per100g": {"kcal": 300}}`)
	if err := Sync(st, provider, testLogger()); err != nil {
		t.Fatalf("Sync after update: %v", err)
	}

	rec, _ := st.FindByNameAndBrand("Roti", "")
	if rec.Per100g.Kcal != 300 {
		t.Errorf("kcal = %v, want 300 after re-ingest", rec.Per100g.Kcal)
	}
	n, _ := st.Count()
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}

func TestSync_RemovedFileForgotten(t *testing.T) {
	dir := t.TempDir()
	writeSeed(t, dir, "gone.json", `{"name": "Roti", "per100g": {"kcal": 297}}`)
	provider, _ := NewFS(dir)
	st := testStore(t)
	_ = Sync(st, provider, testLogger())

	if err := os.Remove(filepath.Join(dir, "gone.json")); err != nil {
		t.Fatal(err)
	}
	if err := Sync(st, provider, testLogger()); err != nil {
		t.Fatalf("Sync after remove: %v", err)
	}

	cs, _ := st.AllFileChecksums()
	if len(cs) != 0 {
		t.Errorf("expected checksums forgotten, got %v", cs)
	}
	// Records themselves are retained.
	n, _ := st.Count()
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}

func TestSync_BadFileDoesNotAbort(t *testing.T) {
	dir := t.TempDir()
	writeSeed(t, dir, "bad.json", `{{{`)
	writeSeed(t, dir, "good.json", `{"name": "Rice", "per100g": {"kcal": 130}}`)
	provider, _ := NewFS(dir)
	st := testStore(t)

	if err := Sync(st, provider, testLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if _, err := st.FindByNameAndBrand("Rice", ""); err != nil {
		t.Errorf("good file should still be ingested: %v", err)
	}
}

func TestFS_PathEscapeRejected(t *testing.T) {
	dir := t.TempDir()
	provider, err := NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := provider.Read("../outside.json"); err == nil {
		t.Fatal("expected traversal rejection")
	}
	if _, err := provider.Read("/etc/passwd"); err == nil {
		t.Fatal("expected absolute path rejection")
	}
}
