// Package snapshot provides SQLite-backed persistence for workspace
// session snapshots. Each snapshot is one opaque blob; the store does
// not interpret its contents.
package snapshot

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Info summarizes one stored snapshot for listing.
type Info struct {
	ID      string
	TakenAt time.Time
	Size    int
}

// Store provides SQLite-backed persistence for snapshots.
type Store struct {
	db *sql.DB
}

// NewStore opens the SQLite database at dbPath and creates tables if they don't exist.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := createTables(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		taken_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		data BLOB NOT NULL
	);
	`
	_, err := db.Exec(schema)
	return err
}

// Save stores one snapshot blob and returns its ID.
func (s *Store) Save(blob []byte) (string, error) {
	id := uuid.New().String()

	_, err := s.db.Exec(
		`INSERT INTO snapshots (id, taken_at, data) VALUES (?, ?, ?)`,
		id, time.Now(), blob,
	)
	if err != nil {
		return "", fmt.Errorf("insert snapshot: %w", err)
	}

	return id, nil
}

// Load retrieves a snapshot blob by ID.
// Returns nil (no error) if the ID is unknown.
func (s *Store) Load(id string) ([]byte, error) {
	row := s.db.QueryRow(`SELECT data FROM snapshots WHERE id = ?`, id)

	var data []byte
	err := row.Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan snapshot: %w", err)
	}

	return data, nil
}

// Latest retrieves the most recently taken snapshot blob.
// Returns nil (no error) if the store is empty.
func (s *Store) Latest() ([]byte, error) {
	row := s.db.QueryRow(
		`SELECT data FROM snapshots ORDER BY taken_at DESC, id DESC LIMIT 1`,
	)

	var data []byte
	err := row.Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan snapshot: %w", err)
	}

	return data, nil
}

// List returns summaries of the most recent snapshots.
func (s *Store) List(limit int) ([]Info, error) {
	rows, err := s.db.Query(
		`SELECT id, taken_at, LENGTH(data)
		 FROM snapshots
		 ORDER BY taken_at DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var infos []Info
	for rows.Next() {
		var info Info
		if err := rows.Scan(&info.ID, &info.TakenAt, &info.Size); err != nil {
			return nil, fmt.Errorf("scan snapshot info: %w", err)
		}
		infos = append(infos, info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return infos, nil
}

// Prune deletes all but the newest keep snapshots.
func (s *Store) Prune(keep int) error {
	_, err := s.db.Exec(
		`DELETE FROM snapshots WHERE id NOT IN (
			SELECT id FROM snapshots ORDER BY taken_at DESC LIMIT ?
		)`,
		keep,
	)
	if err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	return nil
}
