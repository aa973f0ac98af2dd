package leads

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a lead id does not exist.
var ErrNotFound = errors.New("leads: not found")

// Store wraps the SQLite lead database.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the database at path, ensuring the parent
// directory exists, and applies the schema.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL plus a busy timeout lets the admin dashboard read while the
	// contact form writes.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS leads (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL,
    phone TEXT NOT NULL DEFAULT '',
    message TEXT NOT NULL DEFAULT '',
    property TEXT NOT NULL DEFAULT '',
    source TEXT NOT NULL DEFAULT '',
    ip_hash TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_leads_created ON leads(created_at);
`)
	return err
}

// Save stores a lead, assigning an ID and creation time when they are unset,
// and returns the stored value.
func (s *Store) Save(ctx context.Context, l Lead) (Lead, error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	f := l.Form
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO leads (id, name, email, phone, message, property, source, ip_hash, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, f.Name, f.Email, f.Phone, f.Message, f.Property, f.Source, l.IPHash, l.CreatedAt.UnixMilli())
	if err != nil {
		return Lead{}, fmt.Errorf("save lead: %w", err)
	}
	return l, nil
}

// List returns every lead, newest first.
func (s *Store) List(ctx context.Context) ([]Lead, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, phone, message, property, source, ip_hash, created_at FROM leads ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Lead
	for rows.Next() {
		var l Lead
		var created int64
		if err := rows.Scan(&l.ID, &l.Form.Name, &l.Form.Email, &l.Form.Phone, &l.Form.Message,
			&l.Form.Property, &l.Form.Source, &l.IPHash, &created); err != nil {
			return nil, err
		}
		l.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, l)
	}
	return out, rows.Err()
}

// Get returns one lead by id.
func (s *Store) Get(ctx context.Context, id string) (Lead, error) {
	var l Lead
	var created int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, phone, message, property, source, ip_hash, created_at FROM leads WHERE id = ?`, id).
		Scan(&l.ID, &l.Form.Name, &l.Form.Email, &l.Form.Phone, &l.Form.Message,
			&l.Form.Property, &l.Form.Source, &l.IPHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	if err != nil {
		return Lead{}, err
	}
	l.CreatedAt = time.UnixMilli(created).UTC()
	return l, nil
}

// Delete removes a lead by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM leads WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of stored leads.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM leads`).Scan(&n)
	return n, err
}
