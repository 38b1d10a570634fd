// Package store keeps saved village documents in a SQLite archive.
package store

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/ChicagoDave/villageplanner/pkg/scene"
)

var (
	// ErrNotFound is returned when no save matches an ID.
	ErrNotFound = errors.New("save not found")

	// ErrAmbiguous is returned when an ID prefix matches more than one save.
	ErrAmbiguous = errors.New("save id prefix is ambiguous")
)

// Record describes one saved document without its body.
type Record struct {
	ID         string  `db:"id" json:"id"`
	Name       string  `db:"name" json:"name"`
	Seed       int64   `db:"seed" json:"seed"`
	RiverWidth float64 `db:"river_width" json:"river_width"`
	Houses     int     `db:"houses" json:"houses"`
	Rocks      int     `db:"rocks" json:"rocks"`
	Trees      int     `db:"trees" json:"trees"`
	Attractors int     `db:"attractors" json:"attractors"`
	Size       int64   `db:"size" json:"size"`
	CreatedAt  int64   `db:"created_at" json:"created_at"` // unix nanoseconds
}

// Created returns the save time.
func (r Record) Created() time.Time {
	return time.Unix(0, r.CreatedAt)
}

// ShortID is the first eight characters of the ID.
func (r Record) ShortID() string {
	if len(r.ID) > 8 {
		return r.ID[:8]
	}
	return r.ID
}

// Summary is a one-line human readable description.
func (r Record) Summary() string {
	name := r.Name
	if name == "" {
		name = "(unnamed)"
	}
	return fmt.Sprintf("%s  %-20s  %d houses, %d rocks, %d trees, %d attractors  %s  %s",
		r.ShortID(), name, r.Houses, r.Rocks, r.Trees, r.Attractors,
		humanize.Bytes(uint64(r.Size)), humanize.Time(r.Created()))
}

// Store wraps a SQLite connection holding saved documents.
type Store struct {
	conn *sqlx.DB
	now  func() time.Time
}

// Open opens or creates the archive at path.
func Open(path string) (*Store, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	s := &Store{conn: conn, now: time.Now}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS saves (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		seed INTEGER NOT NULL,
		river_width REAL NOT NULL,
		houses INTEGER NOT NULL,
		rocks INTEGER NOT NULL,
		trees INTEGER NOT NULL,
		attractors INTEGER NOT NULL,
		size INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		document BLOB NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_saves_created ON saves(created_at);
	`
	_, err := s.conn.Exec(schema)
	return err
}

const recordColumns = `id, name, seed, river_width, houses, rocks, trees, attractors, size, created_at`

// Save validates and stores a document under a fresh ID.
func (s *Store) Save(ctx context.Context, name string, doc *scene.Document) (Record, error) {
	if r := scene.ValidateDocument(doc); !r.Valid {
		return Record{}, fmt.Errorf("save: %w", r.Err())
	}

	var buf bytes.Buffer
	if err := doc.Encode(&buf); err != nil {
		return Record{}, fmt.Errorf("save: %w", err)
	}

	rec := Record{
		ID:         uuid.NewString(),
		Name:       name,
		RiverWidth: doc.EntityData.RiverWidth,
		Houses:     len(doc.EntityData.Houses),
		Rocks:      len(doc.EntityData.Rocks),
		Trees:      len(doc.EntityData.Trees),
		Attractors: len(doc.AttractorData),
		Size:       int64(buf.Len()),
		CreatedAt:  s.now().UnixNano(),
	}
	if doc.Metadata != nil {
		rec.Seed = doc.Metadata.Seed
	}

	_, err := s.conn.ExecContext(ctx, `INSERT INTO saves
		(`+recordColumns+`, document)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Name, rec.Seed, rec.RiverWidth, rec.Houses, rec.Rocks, rec.Trees,
		rec.Attractors, rec.Size, rec.CreatedAt, buf.Bytes())
	if err != nil {
		return Record{}, fmt.Errorf("save: %w", err)
	}

	slog.Info("scene saved", "id", rec.ID, "name", rec.Name, "entities", rec.Houses+rec.Rocks+rec.Trees)
	return rec, nil
}

// resolve expands an ID or unique ID prefix to a full ID.
func (s *Store) resolve(ctx context.Context, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" || strings.ContainsAny(id, "%_") {
		return "", fmt.Errorf("%q: %w", id, ErrNotFound)
	}
	var ids []string
	if err := s.conn.SelectContext(ctx, &ids, "SELECT id FROM saves WHERE id LIKE ? || '%' LIMIT 2", id); err != nil {
		return "", err
	}
	switch len(ids) {
	case 0:
		return "", fmt.Errorf("%q: %w", id, ErrNotFound)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("%q: %w", id, ErrAmbiguous)
	}
}

// Load returns the document and record for an ID or unique ID prefix.
func (s *Store) Load(ctx context.Context, id string) (*scene.Document, Record, error) {
	full, err := s.resolve(ctx, id)
	if err != nil {
		return nil, Record{}, err
	}

	var row struct {
		Record
		Document []byte `db:"document"`
	}
	err = s.conn.GetContext(ctx, &row, "SELECT "+recordColumns+", document FROM saves WHERE id = ?", full)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, Record{}, fmt.Errorf("%q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, Record{}, fmt.Errorf("load: %w", err)
	}

	doc, err := scene.Decode(bytes.NewReader(row.Document))
	if err != nil {
		return nil, Record{}, fmt.Errorf("load %s: %w", full, err)
	}
	return doc, row.Record, nil
}

// List returns every save, newest first.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	records := []Record{}
	err := s.conn.SelectContext(ctx, &records,
		"SELECT "+recordColumns+" FROM saves ORDER BY created_at DESC, id")
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return records, nil
}

// Delete removes a save by ID or unique ID prefix.
func (s *Store) Delete(ctx context.Context, id string) error {
	full, err := s.resolve(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.conn.ExecContext(ctx, "DELETE FROM saves WHERE id = ?", full); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	slog.Info("scene deleted", "id", full)
	return nil
}
