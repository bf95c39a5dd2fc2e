package results

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"driftwatch-io/driftwatch/pkg/policy/orchestrator"
)

// resultsSchema creates the results table.
const resultsSchema = `
CREATE TABLE IF NOT EXISTS results (
    batch_id TEXT PRIMARY KEY,
    node_id TEXT NOT NULL,
    summary TEXT NOT NULL,
    rule_count INTEGER NOT NULL,
    satisfied INTEGER NOT NULL,
    errors INTEGER NOT NULL,
    duration_ms INTEGER NOT NULL,
    recorded_at TIMESTAMP NOT NULL,
    detail TEXT
);

CREATE INDEX IF NOT EXISTS idx_results_node ON results(node_id, recorded_at);
`

// SQLiteStore persists results with the pure-Go sqlite driver.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) the results database. The DSN enables
// WAL mode for concurrent readers.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(resultsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	logger := slog.Default().With("component", "results.sqlite")
	logger.Info("results storage initialized", "path", dbPath)

	return &SQLiteStore{db: db, logger: logger}, nil
}

// StoreResult records one batch outcome, with the full per-rule detail
// serialized as JSON.
func (s *SQLiteStore) StoreResult(ctx context.Context, result *orchestrator.AggregatedResult) error {
	detail, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result detail: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO results
			(batch_id, node_id, summary, rule_count, satisfied, errors, duration_ms, recorded_at, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.BatchID, result.NodeID, result.Summary,
		len(result.Results), result.SatisfiedCount(), result.ErrorCount(),
		result.Duration.Milliseconds(), time.Now(), string(detail),
	)
	if err != nil {
		return fmt.Errorf("failed to store result: %w", err)
	}
	return nil
}

// GetResult fetches one batch outcome.
func (s *SQLiteStore) GetResult(ctx context.Context, batchID string) (*StoredResult, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT batch_id, node_id, summary, rule_count, satisfied, errors, duration_ms, recorded_at, detail
		FROM results WHERE batch_id = ?`, batchID)

	stored, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{BatchID: batchID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get result: %w", err)
	}
	return stored, nil
}

// ListResults returns stored results matching the query, most recent
// first.
func (s *SQLiteStore) ListResults(ctx context.Context, q Query) ([]*StoredResult, error) {
	query := `
		SELECT batch_id, node_id, summary, rule_count, satisfied, errors, duration_ms, recorded_at, detail
		FROM results`
	var args []any
	var conds []string
	if q.NodeID != "" {
		conds = append(conds, "node_id = ?")
		args = append(args, q.NodeID)
	}
	if !q.Since.IsZero() {
		conds = append(conds, "recorded_at >= ?")
		args = append(args, q.Since)
	}
	for i, c := range conds {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY recorded_at DESC"

	limit := 100
	if q.Limit > 0 {
		limit = q.Limit
	}
	query += fmt.Sprintf(" LIMIT %d", limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	defer rows.Close()

	var out []*StoredResult
	for rows.Next() {
		stored, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		out = append(out, stored)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	return out, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanRow interface {
	Scan(dest ...any) error
}

// scanResult reads one stored result row, decoding the JSON detail.
func scanResult(row scanRow) (*StoredResult, error) {
	var stored StoredResult
	var durationMs int64
	var detail string
	if err := row.Scan(&stored.BatchID, &stored.NodeID, &stored.Summary,
		&stored.RuleCount, &stored.Satisfied, &stored.Errors,
		&durationMs, &stored.RecordedAt, &detail); err != nil {
		return nil, err
	}
	stored.Duration = time.Duration(durationMs) * time.Millisecond

	if detail != "" {
		var agg orchestrator.AggregatedResult
		if err := json.Unmarshal([]byte(detail), &agg); err != nil {
			return nil, fmt.Errorf("decoding result detail: %w", err)
		}
		stored.Results = &agg
	}
	return &stored, nil
}
