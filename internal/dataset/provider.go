// Package dataset loads local seed data: JSON food files ingested into the
// record store and kept in sync with the directory on disk.
package dataset

import "github.com/helmick/nutriseek/internal/models"

// Provider is the interface for seed file operations. The search core only
// reads the dataset; it never writes seed files.
type Provider interface {
	// List returns metadata for every .json file under dir (relative to the dataset root).
	List(dir string) ([]models.DatasetFileMetadata, error)
	// Read returns the raw bytes of the file at path (relative to the dataset root).
	Read(path string) ([]byte, error)
}
