package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"warehouse-inventory-api/internal/model"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// SQLiteStore implements EventRepository and ReferenceRepository on one SQLite file.
// Thread-safe with WAL mode for concurrent reads.
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.RWMutex
}

// NewSQLiteStore opens (or creates) the SQLite database.
// dbPath is the path to the SQLite database file (e.g., "./data/inventory.db")
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite only supports 1 writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := createSQLiteTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[SQLiteStore] Initialized with database: %s", dbPath)
	return &SQLiteStore{db: db, path: dbPath}, nil
}

// createSQLiteTables creates the event log and reference tables.
// Timestamps are stored as unix nanoseconds.
func createSQLiteTables(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS inventory_events (
		seq INTEGER PRIMARY KEY,
		ts INTEGER NOT NULL,
		action TEXT NOT NULL,
		box_id TEXT NOT NULL,
		location TEXT NOT NULL,
		pallet TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_events_box ON inventory_events(box_id, seq);

	CREATE TABLE IF NOT EXISTS box_mappings (
		box_id TEXT PRIMARY KEY,
		item_code TEXT NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity >= 0)
	);
	CREATE TABLE IF NOT EXISTS item_master (
		item_code TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		spec TEXT NOT NULL DEFAULT '',
		supplier TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		barcode TEXT NOT NULL DEFAULT ''
	);
	CREATE TABLE IF NOT EXISTS box_aliases (
		alias_code TEXT PRIMARY KEY,
		box_id TEXT NOT NULL,
		item_code TEXT NOT NULL DEFAULT '',
		spec TEXT NOT NULL DEFAULT ''
	);
	`
	_, err := db.Exec(query)
	return err
}

// Append stores one accepted event.
func (s *SQLiteStore) Append(ctx context.Context, e model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `INSERT INTO inventory_events (seq, ts, action, box_id, location, pallet) VALUES (?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query, e.Seq, e.Timestamp.UnixNano(), string(e.Action), e.BoxID, e.Location, e.Pallet)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicateSeq
		}
		return fmt.Errorf("failed to append event %d: %w", e.Seq, err)
	}
	return nil
}

// ListAll returns the whole log ordered by seq.
func (s *SQLiteStore) ListAll(ctx context.Context) ([]model.Event, error) {
	return s.queryEvents(ctx, `SELECT seq, ts, action, box_id, location, pallet FROM inventory_events ORDER BY seq`)
}

// ListByBox returns the events of one box ordered by seq.
func (s *SQLiteStore) ListByBox(ctx context.Context, boxID string) ([]model.Event, error) {
	return s.queryEvents(ctx, `SELECT seq, ts, action, box_id, location, pallet FROM inventory_events WHERE box_id = ? ORDER BY seq`, boxID)
}

// ListSince returns events after afterSeq.
func (s *SQLiteStore) ListSince(ctx context.Context, afterSeq int64) ([]model.Event, error) {
	return s.queryEvents(ctx, `SELECT seq, ts, action, box_id, location, pallet FROM inventory_events WHERE seq > ? ORDER BY seq`, afterSeq)
}

func (s *SQLiteStore) queryEvents(ctx context.Context, query string, args ...interface{}) ([]model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	events := make([]model.Event, 0)
	for rows.Next() {
		var e model.Event
		var ts int64
		var action string
		if err := rows.Scan(&e.Seq, &ts, &action, &e.BoxID, &e.Location, &e.Pallet); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.Timestamp = time.Unix(0, ts).UTC()
		e.Action = model.Action(action)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return events, nil
}

// MaxSeq returns the highest stored seq.
func (s *SQLiteStore) MaxSeq(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var max sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(seq) FROM inventory_events`).Scan(&max); err != nil {
		return 0, fmt.Errorf("failed to get max seq: %w", err)
	}
	return max.Int64, nil
}

// GetStats returns statistics about the database.
func (s *SQLiteStore) GetStats(ctx context.Context) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]interface{})

	counts := []struct {
		key   string
		query string
	}{
		{"total_events", "SELECT COUNT(*) FROM inventory_events"},
		{"distinct_boxes", "SELECT COUNT(DISTINCT box_id) FROM inventory_events"},
		{"box_mappings", "SELECT COUNT(*) FROM box_mappings"},
		{"item_master", "SELECT COUNT(*) FROM item_master"},
		{"box_aliases", "SELECT COUNT(*) FROM box_aliases"},
	}
	for _, c := range counts {
		var n int64
		if err := s.db.QueryRowContext(ctx, c.query).Scan(&n); err != nil {
			return nil, err
		}
		stats[c.key] = n
	}

	// Database file size (approximate from page count)
	var pageCount, pageSize int64
	s.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount)
	s.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
	stats["db_size_bytes"] = pageCount * pageSize
	stats["db_path"] = s.path

	return stats, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var (
	_ EventRepository     = (*SQLiteStore)(nil)
	_ ReferenceRepository = (*SQLiteStore)(nil)
)
