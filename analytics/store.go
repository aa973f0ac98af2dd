package analytics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	_ "modernc.org/sqlite"
)

// Store persists analytics events in SQLite.
type Store struct {
	db   *sql.DB
	salt string
}

// NewStore opens (or creates) the analytics database at path and loads the
// per-installation hashing salt, generating it on first use.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open analytics db: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure analytics db: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	if err := s.initSalt(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			path TEXT NOT NULL,
			referrer TEXT NOT NULL DEFAULT '',
			visitor_id TEXT NOT NULL,
			browser TEXT NOT NULL,
			os TEXT NOT NULL,
			device TEXT NOT NULL,
			ts INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_events_ts ON events(ts);
		CREATE INDEX IF NOT EXISTS idx_events_name ON events(name);

		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	return err
}

func (s *Store) initSalt(ctx context.Context) error {
	salt, err := s.GetSetting(ctx, "hash_salt")
	if err != nil {
		return fmt.Errorf("read hash salt: %w", err)
	}
	if salt == "" {
		if salt, err = newSalt(); err != nil {
			return fmt.Errorf("generate salt: %w", err)
		}
		if err := s.SetSetting(ctx, "hash_salt", salt); err != nil {
			return fmt.Errorf("store hash salt: %w", err)
		}
	}
	s.salt = salt
	return nil
}

// VisitorID derives an anonymous visitor identifier from IP and user agent.
func (s *Store) VisitorID(ip, userAgent string) string {
	return hash(s.salt, ip, userAgent)
}

// GetSetting returns the value stored under key, or "" when unset.
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	var val string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return val, err
}

// SetSetting upserts a setting.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	return err
}

// Save stores one event. A zero timestamp is replaced with the current time.
func (s *Store) Save(ctx context.Context, e Event) error {
	if !ValidName(e.Name) {
		return fmt.Errorf("analytics: unknown event %q", e.Name)
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (name, path, referrer, visitor_id, browser, os, device, ts) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Name, e.Path, e.Referrer, e.VisitorID, e.Browser, e.OS, e.Device, e.Timestamp.UTC().Unix())
	return err
}

// Counts aggregates events recorded at or after since, per event name.
// Every accepted name is present in the result, in EventNames order.
func (s *Store) Counts(ctx context.Context, since time.Time) ([]EventCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, COUNT(*) FROM events WHERE ts >= ? GROUP BY name`, since.UTC().Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byName := make(map[string]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, err
		}
		byName[name] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	out := make([]EventCount, 0, len(eventNames))
	for _, name := range eventNames {
		out = append(out, EventCount{Name: name, Count: byName[name]})
	}
	return out, nil
}

// TopPaths returns the most viewed paths since the given time.
func (s *Store) TopPaths(ctx context.Context, since time.Time, limit int) ([]PathCount, error) {
	return s.EventPaths(ctx, PageView, since, limit)
}

// EventPaths returns the paths recording the most name events since the
// given time.
func (s *Store) EventPaths(ctx context.Context, name string, since time.Time, limit int) ([]PathCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, COUNT(*) AS views FROM events WHERE name = ? AND ts >= ?
		 GROUP BY path ORDER BY views DESC, path ASC LIMIT ?`,
		name, since.UTC().Unix(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PathCount
	for rows.Next() {
		var pc PathCount
		if err := rows.Scan(&pc.Path, &pc.Views); err != nil {
			return nil, err
		}
		out = append(out, pc)
	}
	return out, rows.Err()
}

// UniqueVisitors counts distinct visitor IDs since the given time.
func (s *Store) UniqueVisitors(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT visitor_id) FROM events WHERE ts >= ?`, since.UTC().Unix()).Scan(&n)
	return n, err
}

// Cleanup removes events older than the retention period and reports how
// many rows were deleted.
func (s *Store) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention).UTC().Unix()
	res, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE ts < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// StartCleanupScheduler runs Cleanup every interval until the returned stop
// function is called. stop blocks until the scheduler goroutine has exited.
func (s *Store) StartCleanupScheduler(logger zerolog.Logger, retention, interval time.Duration) (stop func()) {
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				n, err := s.Cleanup(ctx, retention)
				if err != nil {
					logger.Error().Err(err).Msg("analytics cleanup failed")
					continue
				}
				if n > 0 {
					logger.Info().Int64("deleted", n).Msg("analytics cleanup")
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return func() {
		cancel()
		wg.Wait()
	}
}

// Summary is the admin dashboard view of a period.
type Summary struct {
	Since          time.Time
	UniqueVisitors int
	Events         []EventCount
	TopPaths       []PathCount
	LeadSources    []PathCount
}

// Summarize collects the dashboard figures for events since the given time.
func (s *Store) Summarize(ctx context.Context, since time.Time) (Summary, error) {
	sum := Summary{Since: since}
	var err error
	if sum.Events, err = s.Counts(ctx, since); err != nil {
		return Summary{}, fmt.Errorf("event counts: %w", err)
	}
	if sum.UniqueVisitors, err = s.UniqueVisitors(ctx, since); err != nil {
		return Summary{}, fmt.Errorf("unique visitors: %w", err)
	}
	if sum.TopPaths, err = s.TopPaths(ctx, since, 10); err != nil {
		return Summary{}, fmt.Errorf("top paths: %w", err)
	}
	if sum.LeadSources, err = s.EventPaths(ctx, LeadSubmit, since, 10); err != nil {
		return Summary{}, fmt.Errorf("lead sources: %w", err)
	}
	return sum, nil
}
