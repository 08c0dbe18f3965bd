package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/helmick/nutriseek/internal/apperr"
	"github.com/helmick/nutriseek/internal/models"
)

// name_key/brand_key are stored lowercased so the identity index matches the
// dedup key used by the search core.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS foods (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	name_key     TEXT NOT NULL,
	brand        TEXT NOT NULL DEFAULT '',
	brand_key    TEXT NOT NULL DEFAULT '',
	category     TEXT NOT NULL DEFAULT '',
	tags         TEXT NOT NULL DEFAULT '[]',
	kcal         REAL NOT NULL DEFAULT 0,
	protein      REAL NOT NULL DEFAULT 0,
	carbs        REAL NOT NULL DEFAULT 0,
	fat          REAL NOT NULL DEFAULT 0,
	servings     TEXT NOT NULL DEFAULT '[]',
	verified     INTEGER NOT NULL DEFAULT 0,
	source       TEXT NOT NULL DEFAULT 'user',
	search_count INTEGER NOT NULL DEFAULT 0,
	last_updated DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_foods_identity ON foods(name_key, brand_key);

CREATE TABLE IF NOT EXISTS dataset_files (
	path     TEXT PRIMARY KEY,
	checksum TEXT NOT NULL DEFAULT ''
);
`

// DB wraps a sql.DB with food store operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

const selectColumns = `id, name, brand, category, tags, kcal, protein, carbs, fat,
	servings, verified, source, search_count, last_updated`

// ReadAll returns every persisted food record.
func (db *DB) ReadAll() ([]models.FoodRecord, error) {
	rows, err := db.conn.Query(`SELECT ` + selectColumns + ` FROM foods ORDER BY name_key, brand_key`)
	if err != nil {
		return nil, fmt.Errorf("store: read all: %w", err)
	}
	defer rows.Close()

	var out []models.FoodRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Count returns the number of persisted records.
func (db *DB) Count() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT count(*) FROM foods`).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count: %w", err)
	}
	return n, nil
}

// Insert persists a new record under a fresh id.
func (db *DB) Insert(rec models.FoodRecord) (string, error) {
	if _, err := db.FindByNameAndBrand(rec.Name, rec.Brand); err == nil {
		return "", apperr.ErrAlreadyExists
	}
	rec.ID = uuid.NewString()
	if rec.LastUpdated.IsZero() {
		rec.LastUpdated = time.Now()
	}
	if err := db.exec(`
		INSERT INTO foods (id, name, name_key, brand, brand_key, category, tags,
			kcal, protein, carbs, fat, servings, verified, source, search_count, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec); err != nil {
		return "", fmt.Errorf("store: insert: %w", err)
	}
	return rec.ID, nil
}

// Upsert inserts or replaces a record by its (name, brand) identity.
// The existing id and search count survive an update.
func (db *DB) Upsert(rec models.FoodRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.LastUpdated.IsZero() {
		rec.LastUpdated = time.Now()
	}
	if err := db.exec(`
		INSERT INTO foods (id, name, name_key, brand, brand_key, category, tags,
			kcal, protein, carbs, fat, servings, verified, source, search_count, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name_key, brand_key) DO UPDATE SET
			name         = excluded.name,
			brand        = excluded.brand,
			category     = excluded.category,
			tags         = excluded.tags,
			kcal         = excluded.kcal,
			protein      = excluded.protein,
			carbs        = excluded.carbs,
			fat          = excluded.fat,
			servings     = excluded.servings,
			verified     = excluded.verified,
			source       = excluded.source,
			last_updated = excluded.last_updated
	`, rec); err != nil {
		return fmt.Errorf("store: upsert: %w", err)
	}
	return nil
}

func (db *DB) exec(query string, rec models.FoodRecord) error {
	tagsJSON, _ := json.Marshal(nonNil(rec.Tags))
	servingsJSON, _ := json.Marshal(rec.Servings)
	_, err := db.conn.Exec(query,
		rec.ID, rec.Name, strings.ToLower(rec.Name), rec.Brand, strings.ToLower(rec.Brand),
		rec.Category, string(tagsJSON),
		rec.Per100g.Kcal, rec.Per100g.Protein, rec.Per100g.Carbs, rec.Per100g.Fat,
		string(servingsJSON), rec.Verified, rec.Source, rec.SearchCount, rec.LastUpdated)
	return err
}

// FindByNameAndBrand looks a record up by its identity pair.
func (db *DB) FindByNameAndBrand(name, brand string) (*models.FoodRecord, error) {
	row := db.conn.QueryRow(`SELECT `+selectColumns+` FROM foods WHERE name_key = ? AND brand_key = ?`,
		strings.ToLower(name), strings.ToLower(brand))
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("store: find by name and brand: %w", err)
	}
	return &rec, nil
}

// IncrementSearchCount bumps the search counter of a persisted record.
func (db *DB) IncrementSearchCount(id string) error {
	res, err := db.conn.Exec(`UPDATE foods SET search_count = search_count + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: increment search count: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// AllFileChecksums returns the checksum of every ingested seed file.
func (db *DB) AllFileChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM dataset_files`)
	if err != nil {
		return nil, fmt.Errorf("store: all file checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// SetFileChecksum records the checksum of an ingested seed file.
func (db *DB) SetFileChecksum(path, checksum string) error {
	_, err := db.conn.Exec(`
		INSERT INTO dataset_files (path, checksum) VALUES (?, ?)
		ON CONFLICT(path) DO UPDATE SET checksum = excluded.checksum
	`, path, checksum)
	if err != nil {
		return fmt.Errorf("store: set file checksum: %w", err)
	}
	return nil
}

// DeleteFileChecksum forgets a seed file that no longer exists on disk.
func (db *DB) DeleteFileChecksum(path string) error {
	_, err := db.conn.Exec(`DELETE FROM dataset_files WHERE path = ?`, path)
	if err != nil {
		return fmt.Errorf("store: delete file checksum: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (models.FoodRecord, error) {
	var (
		rec          models.FoodRecord
		tagsJSON     string
		servingsJSON string
	)
	err := row.Scan(&rec.ID, &rec.Name, &rec.Brand, &rec.Category, &tagsJSON,
		&rec.Per100g.Kcal, &rec.Per100g.Protein, &rec.Per100g.Carbs, &rec.Per100g.Fat,
		&servingsJSON, &rec.Verified, &rec.Source, &rec.SearchCount, &rec.LastUpdated)
	if err != nil {
		return rec, err
	}
	_ = json.Unmarshal([]byte(tagsJSON), &rec.Tags)
	_ = json.Unmarshal([]byte(servingsJSON), &rec.Servings)
	return rec, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
