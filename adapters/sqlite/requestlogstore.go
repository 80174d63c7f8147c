package sqlite

import (
	"context"
	"fmt"

	"github.com/artpar/rpcgate/ports"
)

// RequestLogStore persists request outcomes in SQLite.
type RequestLogStore struct {
	db *DB
}

// NewRequestLogStore creates a request log store.
func NewRequestLogStore(db *DB) *RequestLogStore {
	return &RequestLogStore{db: db}
}

// Record stores one request log entry.
func (s *RequestLogStore) Record(ctx context.Context, entry ports.RequestLog) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO request_log (id, procedure, method, path, status, code, latency_ms, remote_ip, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Procedure, entry.Method, entry.Path,
		entry.Status, entry.Code, entry.LatencyMs, entry.RemoteIP, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record request log: %w", err)
	}
	return nil
}

// ListRecent returns the newest entries, most recent first.
func (s *RequestLogStore) ListRecent(ctx context.Context, limit int) ([]ports.RequestLog, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, procedure, method, path, status, code, latency_ms, remote_ip, created_at
		FROM request_log
		ORDER BY created_at DESC, id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list request log: %w", err)
	}
	defer rows.Close()

	var entries []ports.RequestLog
	for rows.Next() {
		var e ports.RequestLog
		if err := rows.Scan(&e.ID, &e.Procedure, &e.Method, &e.Path,
			&e.Status, &e.Code, &e.LatencyMs, &e.RemoteIP, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan request log: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Ensure interface compliance.
var _ ports.RequestLogStore = (*RequestLogStore)(nil)
