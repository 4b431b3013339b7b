package audit

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"mercator-hq/cerberus/pkg/recaptcha"
)

// Schema contains the SQL statements to create the audit database schema.
const Schema = `
CREATE TABLE IF NOT EXISTS verifications (
    id TEXT PRIMARY KEY,
    time TIMESTAMP NOT NULL,
    request_id TEXT,
    action TEXT,
    strategy TEXT NOT NULL,
    outcome TEXT NOT NULL,
    codes TEXT,
    hostname TEXT,
    score REAL,
    remote_ip TEXT,
    latency_ms INTEGER
);

CREATE INDEX IF NOT EXISTS idx_verifications_time ON verifications(time);
CREATE INDEX IF NOT EXISTS idx_verifications_action ON verifications(action);
`

// SQLiteConfig contains configuration for the SQLite audit backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/audit.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStore creates a SQLite-backed audit store, initializing the
// schema and enabling WAL mode if configured.
func NewSQLiteStore(config *SQLiteConfig) (*SQLiteStore, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "audit.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStore{db: db, config: config, logger: logger}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite audit store initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
	)

	return s, nil
}

// initialize sets up the database schema and connection pragmas.
func (s *SQLiteStore) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return NewStorageError("sqlite", "enable_wal", err)
		}
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return NewStorageError("sqlite", "create_schema", err)
	}

	return nil
}

// Insert implements Store.
func (s *SQLiteStore) Insert(ctx context.Context, rec *Record) error {
	codes := make([]string, len(rec.Codes))
	for i, c := range rec.Codes {
		codes[i] = string(c)
	}

	var score any
	if rec.Score != nil {
		score = *rec.Score
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO verifications
		 (id, time, request_id, action, strategy, outcome, codes, hostname, score, remote_ip, latency_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Time, rec.RequestID, rec.Action, rec.Strategy, rec.Outcome,
		strings.Join(codes, ","), rec.Hostname, score, rec.RemoteIP,
		rec.Latency.Milliseconds(),
	)
	if err != nil {
		return NewStorageError("sqlite", "insert", err)
	}
	return nil
}

// Count implements Store.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM verifications").Scan(&count)
	if err != nil {
		return 0, NewStorageError("sqlite", "count", err)
	}
	return count, nil
}

// DeleteBefore implements Store.
func (s *SQLiteStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM verifications WHERE time < ?", cutoff)
	if err != nil {
		return 0, NewStorageError("sqlite", "delete_before", err)
	}
	deleted, _ := res.RowsAffected()
	return deleted, nil
}

// DeleteOldest implements Store.
func (s *SQLiteStore) DeleteOldest(ctx context.Context, n int64) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM verifications WHERE id IN
		 (SELECT id FROM verifications ORDER BY time ASC LIMIT ?)`, n)
	if err != nil {
		return 0, NewStorageError("sqlite", "delete_oldest", err)
	}
	deleted, _ := res.RowsAffected()
	return deleted, nil
}

// Query returns the most recent records for an action, newest first. An
// empty action matches all records.
func (s *SQLiteStore) Query(ctx context.Context, action string, limit int) ([]*Record, error) {
	query := `SELECT id, time, request_id, action, strategy, outcome, codes, hostname, score, remote_ip, latency_ms
	          FROM verifications`
	args := []any{}
	if action != "" {
		query += " WHERE action = ?"
		args = append(args, action)
	}
	query += " ORDER BY time DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		var (
			rec       Record
			codes     string
			score     sql.NullFloat64
			latencyMs int64
		)
		if err := rows.Scan(&rec.ID, &rec.Time, &rec.RequestID, &rec.Action,
			&rec.Strategy, &rec.Outcome, &codes, &rec.Hostname, &score,
			&rec.RemoteIP, &latencyMs); err != nil {
			return nil, NewStorageError("sqlite", "scan", err)
		}
		if codes != "" {
			for _, c := range strings.Split(codes, ",") {
				rec.Codes = append(rec.Codes, recaptcha.ErrorCode(c))
			}
		}
		if score.Valid {
			rec.Score = &score.Float64
		}
		rec.Latency = time.Duration(latencyMs) * time.Millisecond
		records = append(records, &rec)
	}

	return records, rows.Err()
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
