// Package store provides the SQLite-backed food record store.
package store

import "github.com/helmick/nutriseek/internal/models"

// Store defines the record store operations the search core depends on.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type Store interface {
	// ReadAll returns every persisted food record.
	ReadAll() ([]models.FoodRecord, error)
	// Count returns the number of persisted records.
	Count() (int, error)
	// Insert persists a new record and returns its generated id.
	// Returns apperr.ErrAlreadyExists when a record with the same
	// (name, brand) identity is already present.
	Insert(rec models.FoodRecord) (string, error)
	// Upsert inserts or replaces a record by its (name, brand) identity.
	Upsert(rec models.FoodRecord) error
	// FindByNameAndBrand looks a record up by its identity pair.
	// Returns apperr.ErrNotFound when absent.
	FindByNameAndBrand(name, brand string) (*models.FoodRecord, error)
	// IncrementSearchCount bumps the search counter of a persisted record.
	IncrementSearchCount(id string) error

	// Dataset sync bookkeeping: checksums of already-ingested seed files.
	AllFileChecksums() (map[string]string, error)
	SetFileChecksum(path, checksum string) error
	DeleteFileChecksum(path string) error

	Close() error
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)
