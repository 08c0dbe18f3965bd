// Package testutil provides shared test helpers for setting up stores and
// search services.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/helmick/nutriseek/internal/fuzzy"
	"github.com/helmick/nutriseek/internal/provider"
	"github.com/helmick/nutriseek/internal/search"
	"github.com/helmick/nutriseek/internal/searchcache"
	"github.com/helmick/nutriseek/internal/store"
)

// TestDB creates a temporary SQLite store that is automatically cleaned up.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	dbFile, err := os.CreateTemp(t.TempDir(), "nutriseek-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestLogger returns a logger that discards everything.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// TestSearcher creates a search service with default tuning over st.
func TestSearcher(t *testing.T, st store.Store, adapters ...provider.Adapter) *search.Service {
	t.Helper()
	svc := search.New(search.Config{}, st, fuzzy.New(0), searchcache.New(0), adapters, TestLogger())
	t.Cleanup(svc.Close)
	return svc
}
