package store

import (
	"errors"
	"fmt"
	"io"
	"time"
)

type logWriter struct{ s *Store }

// LogWriter returns an io.Writer that stores each zerolog JSON event as one
// row. Pass it to log.SetStd as a sink.
func (s *Store) LogWriter() io.Writer { return &logWriter{s: s} }

func (w *logWriter) Write(p []byte) (int, error) {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	if w.s.logStmt == nil {
		return 0, errors.New("store: log write after close")
	}
	if _, err := w.s.logStmt.Exec(string(p)); err != nil {
		return 0, fmt.Errorf("store: failed to write log: %w", err)
	}
	return len(p), nil
}

// parseDBTimestamp tries common SQLite timestamp formats.
func parseDBTimestamp(ts string) time.Time {
	formats := []string{
		time.DateTime,
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, ts); err == nil {
			return t
		}
	}
	return time.Time{}
}

// LastLogs returns the most recent n log lines, oldest first.
func (s *Store) LastLogs(n int) ([]LogEntry, error) {
	if n <= 0 {
		return []LogEntry{}, nil
	}
	rows, err := s.db.Query(`SELECT id, inserted_at, log_data FROM logs ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query last %d logs: %w", n, err)
	}
	defer rows.Close()

	var logs []LogEntry
	for rows.Next() {
		var entry LogEntry
		var insertedAt string
		if err := rows.Scan(&entry.ID, &insertedAt, &entry.LogData); err != nil {
			return nil, fmt.Errorf("failed to scan log entry: %w", err)
		}
		entry.InsertedAt = parseDBTimestamp(insertedAt)
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating log rows: %w", err)
	}

	for i, j := 0, len(logs)-1; i < j; i, j = i+1, j-1 {
		logs[i], logs[j] = logs[j], logs[i]
	}
	return logs, nil
}
