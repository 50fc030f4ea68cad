// Package store persists analysis reports and JSON log lines in SQLite.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"bitfeistel/pkg/analysis"
	"bitfeistel/pkg/transform"

	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite"
)

var ErrReportNotFound = errors.New("store: report not found")

const schema = `
CREATE TABLE IF NOT EXISTS reports (
    id TEXT PRIMARY KEY,
    started_at INTEGER NOT NULL,
    payload BLOB NOT NULL
);
CREATE TABLE IF NOT EXISTS logs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    inserted_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP NOT NULL,
    log_data TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reports_started_at ON reports (started_at);`

type Store struct {
	db      *sql.DB
	payload *transform.PayloadProcessor

	mu      sync.Mutex // serialises log inserts
	logStmt *sql.Stmt
}

// LogEntry is one stored log line.
type LogEntry struct {
	ID         int64
	InsertedAt time.Time
	LogData    string // raw JSON
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	z, err := transform.NewZstdTransform(zstd.SpeedDefault)
	if err != nil {
		return nil, err
	}
	payload, err := transform.NewPayloadProcessor(z)
	if err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("%s?_pragma=journal_mode=wal&_pragma=busy_timeout=5000", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db %s: %w", path, err)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite db %s: %w", path, err)
	}
	if _, err = db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	stmt, err := db.Prepare(`INSERT INTO logs (log_data) VALUES (?)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare insert statement: %w", err)
	}

	return &Store{db: db, payload: payload, logStmt: stmt}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var firstErr error
	if s.logStmt != nil {
		if err := s.logStmt.Close(); err != nil {
			firstErr = fmt.Errorf("error closing statement: %w", err)
		}
		s.logStmt = nil
	}
	if err := s.db.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("error closing db: %w", err)
	}
	return firstErr
}

// SaveReport stores r, replacing any report with the same ID.
func (s *Store) SaveReport(r *analysis.Report) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("store: failed to encode report: %w", err)
	}
	blob, err := s.payload.PrepareOutput(data)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`INSERT OR REPLACE INTO reports (id, started_at, payload) VALUES (?, ?, ?)`,
		r.ID, r.StartedAt.UnixNano(), blob)
	if err != nil {
		return fmt.Errorf("store: failed to save report %s: %w", r.ID, err)
	}
	return nil
}

func (s *Store) decodeReport(blob []byte) (*analysis.Report, error) {
	data, err := s.payload.ParseInput(blob)
	if err != nil {
		return nil, err
	}
	var r analysis.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("store: failed to decode report: %w", err)
	}
	return &r, nil
}

// Report loads a single report.
func (s *Store) Report(id string) (*analysis.Report, error) {
	var blob []byte
	err := s.db.QueryRow(`SELECT payload FROM reports WHERE id = ?`, id).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrReportNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("store: failed to load report %s: %w", id, err)
	}
	return s.decodeReport(blob)
}

// LastReports returns up to n reports, newest first.
func (s *Store) LastReports(n int) ([]*analysis.Report, error) {
	if n <= 0 {
		return []*analysis.Report{}, nil
	}
	rows, err := s.db.Query(`SELECT payload FROM reports ORDER BY started_at DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query last %d reports: %w", n, err)
	}
	defer rows.Close()

	reports := []*analysis.Report{}
	for rows.Next() {
		var blob []byte
		if err := rows.Scan(&blob); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		r, err := s.decodeReport(blob)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating report rows: %w", err)
	}
	return reports, nil
}
