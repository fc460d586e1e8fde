package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"pin-mapper/internal/pin"
)

// SQLiteStore keeps definitions as JSON documents in a SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// NewSQLiteStore opens or creates the database at path.
func NewSQLiteStore(path string, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One writer; avoids SQLITE_BUSY between pooled connections.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{
		db:     db,
		path:   path,
		logger: logger.Named("store").With(zap.String("db", path)),
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS composites (
		composite_id TEXT PRIMARY KEY,
		document TEXT NOT NULL,
		pin_count INTEGER NOT NULL DEFAULT 0,
		updated_at INTEGER NOT NULL
	);
	`

	_, err := s.db.Exec(schema)

	return err
}

// Load reads the definition of a composite.
func (s *SQLiteStore) Load(compositeID string) (pin.CompositeDefinition, error) {
	var doc string

	err := s.db.QueryRow(`SELECT document FROM composites WHERE composite_id = ?`, compositeID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return pin.CompositeDefinition{}, fmt.Errorf("%w: %s", ErrNotFound, compositeID)
	}

	if err != nil {
		return pin.CompositeDefinition{}, fmt.Errorf("failed to load composite %s: %w", compositeID, err)
	}

	return Decode([]byte(doc), FormatJSON)
}

// Save inserts or replaces the definition.
func (s *SQLiteStore) Save(def pin.CompositeDefinition) error {
	if def.CompositeID == "" {
		return fmt.Errorf("%w: %q", ErrInvalidID, def.CompositeID)
	}

	if def.VirtualPins == nil {
		def.VirtualPins = []pin.VirtualPinConfig{}
	}

	doc, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("failed to marshal composite: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO composites (composite_id, document, pin_count, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(composite_id) DO UPDATE SET
			document = excluded.document,
			pin_count = excluded.pin_count,
			updated_at = excluded.updated_at
	`, def.CompositeID, string(doc), len(def.VirtualPins), time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save composite %s: %w", def.CompositeID, err)
	}

	s.logger.Debug("composite saved", zap.String("composite", def.CompositeID), zap.Int("pins", len(def.VirtualPins)))

	return nil
}

// List returns the ids of all stored composites, sorted.
func (s *SQLiteStore) List() ([]string, error) {
	rows, err := s.db.Query(`SELECT composite_id FROM composites ORDER BY composite_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list composites: %w", err)
	}
	defer rows.Close()

	var ids []string

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}

		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// Delete removes a composite.
func (s *SQLiteStore) Delete(compositeID string) error {
	res, err := s.db.Exec(`DELETE FROM composites WHERE composite_id = ?`, compositeID)
	if err != nil {
		return fmt.Errorf("failed to delete composite %s: %w", compositeID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, compositeID)
	}

	s.logger.Debug("composite deleted", zap.String("composite", compositeID))

	return nil
}
