// Package sqlite provides a SQLite-backed bridge storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Sharathvc23/nanda-bridge/internal/bridge/agentfacts"
	"github.com/Sharathvc23/nanda-bridge/internal/bridge/delta"
	"github.com/Sharathvc23/nanda-bridge/internal/bridge/storage"
	"github.com/Sharathvc23/nanda-bridge/internal/bridge/storage/sqlite/migrations"
	"github.com/Sharathvc23/nanda-bridge/internal/platform/storage/sqlitemigrate"
	_ "modernc.org/sqlite"
)

// Store persists the delta log and agent catalog in SQLite. One Store
// serves both interfaces; they share the database file and WAL.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite bridge store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// AppendDelta stores one delta under its upstream-assigned seq.
func (s *Store) AppendDelta(ctx context.Context, d delta.Delta) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if d.Seq == 0 {
		return fmt.Errorf("delta seq is required")
	}

	facts, err := json.Marshal(d.Agent)
	if err != nil {
		return fmt.Errorf("encode agent facts: %w", err)
	}
	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO deltas (seq, action, agent_id, agent_facts, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		d.Seq,
		string(d.Action),
		d.Agent.ID,
		string(facts),
		toMillis(d.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("append delta: %w", err)
	}
	return nil
}

// ListDeltasSince returns persisted deltas with seq > since, ascending.
func (s *Store) ListDeltasSince(ctx context.Context, since uint64) ([]delta.Delta, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT seq, action, agent_facts, created_at
		 FROM deltas
		 WHERE seq > ?
		 ORDER BY seq ASC`,
		since,
	)
	if err != nil {
		return nil, fmt.Errorf("list deltas: %w", err)
	}
	defer rows.Close()

	var deltas []delta.Delta
	for rows.Next() {
		d, err := scanDelta(rows)
		if err != nil {
			return nil, fmt.Errorf("list deltas: %w", err)
		}
		deltas = append(deltas, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list deltas: %w", err)
	}
	return deltas, nil
}

// GetDeltaBySeq returns one delta or storage.ErrNotFound.
func (s *Store) GetDeltaBySeq(ctx context.Context, seq uint64) (delta.Delta, error) {
	if err := ctx.Err(); err != nil {
		return delta.Delta{}, err
	}
	if s == nil || s.sqlDB == nil {
		return delta.Delta{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT seq, action, agent_facts, created_at
		 FROM deltas
		 WHERE seq = ?`,
		seq,
	)
	d, err := scanDelta(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return delta.Delta{}, storage.ErrNotFound
		}
		return delta.Delta{}, fmt.Errorf("get delta: %w", err)
	}
	return d, nil
}

// LatestSeq returns the highest persisted seq, zero when the log is empty.
func (s *Store) LatestSeq(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM deltas`)
	var seq uint64
	if err := row.Scan(&seq); err != nil {
		return 0, fmt.Errorf("latest seq: %w", err)
	}
	return seq, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDelta(row rowScanner) (delta.Delta, error) {
	var (
		d         delta.Delta
		action    string
		facts     string
		createdAt int64
	)
	if err := row.Scan(&d.Seq, &action, &facts, &createdAt); err != nil {
		return delta.Delta{}, err
	}
	if err := json.Unmarshal([]byte(facts), &d.Agent); err != nil {
		return delta.Delta{}, fmt.Errorf("decode agent facts: %w", err)
	}
	d.Action = delta.Action(action)
	d.Timestamp = fromMillis(createdAt)
	return d, nil
}

// PutAgent upserts one catalog record.
func (s *Store) PutAgent(ctx context.Context, record storage.AgentRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	canonicalID := strings.TrimSpace(record.CanonicalID)
	if canonicalID == "" {
		return fmt.Errorf("canonical id is required")
	}

	facts, err := json.Marshal(record.Facts)
	if err != nil {
		return fmt.Errorf("encode agent facts: %w", err)
	}
	public := 0
	if record.Public {
		public = 1
	}
	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO agents (canonical_id, facts, public, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(canonical_id) DO UPDATE SET
		   facts = excluded.facts,
		   public = excluded.public,
		   updated_at = excluded.updated_at`,
		canonicalID,
		string(facts),
		public,
		toMillis(record.CreatedAt),
		toMillis(record.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put agent: %w", err)
	}
	return nil
}

// GetAgent returns one catalog record or storage.ErrNotFound.
func (s *Store) GetAgent(ctx context.Context, canonicalID string) (storage.AgentRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.AgentRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.AgentRecord{}, fmt.Errorf("storage is not configured")
	}
	canonicalID = strings.TrimSpace(canonicalID)
	if canonicalID == "" {
		return storage.AgentRecord{}, fmt.Errorf("canonical id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT canonical_id, facts, public, created_at, updated_at
		 FROM agents
		 WHERE canonical_id = ?`,
		canonicalID,
	)
	record, err := scanAgent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.AgentRecord{}, storage.ErrNotFound
		}
		return storage.AgentRecord{}, fmt.Errorf("get agent: %w", err)
	}
	return record, nil
}

// DeleteAgent removes one catalog record.
func (s *Store) DeleteAgent(ctx context.Context, canonicalID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	canonicalID = strings.TrimSpace(canonicalID)
	if canonicalID == "" {
		return fmt.Errorf("canonical id is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `DELETE FROM agents WHERE canonical_id = ?`, canonicalID)
	if err != nil {
		return fmt.Errorf("delete agent: %w", err)
	}
	return nil
}

// ListAgents returns a page of catalog records ordered by canonical ID.
func (s *Store) ListAgents(ctx context.Context, limit, offset int) ([]storage.AgentRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}
	if offset < 0 {
		return nil, fmt.Errorf("offset must not be negative")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT canonical_id, facts, public, created_at, updated_at
		 FROM agents
		 ORDER BY canonical_id ASC
		 LIMIT ? OFFSET ?`,
		limit,
		offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	defer rows.Close()

	records := make([]storage.AgentRecord, 0, limit)
	for rows.Next() {
		record, err := scanAgent(rows)
		if err != nil {
			return nil, fmt.Errorf("list agents: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	return records, nil
}

// CountAgents returns the catalog size.
func (s *Store) CountAgents(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM agents`)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count agents: %w", err)
	}
	return count, nil
}

func scanAgent(row rowScanner) (storage.AgentRecord, error) {
	var (
		record    storage.AgentRecord
		facts     string
		public    int
		createdAt int64
		updatedAt int64
	)
	if err := row.Scan(&record.CanonicalID, &facts, &public, &createdAt, &updatedAt); err != nil {
		return storage.AgentRecord{}, err
	}
	var decoded agentfacts.AgentFacts
	if err := json.Unmarshal([]byte(facts), &decoded); err != nil {
		return storage.AgentRecord{}, fmt.Errorf("decode agent facts: %w", err)
	}
	record.Facts = decoded
	record.Public = public != 0
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}

var _ storage.DeltaLog = (*Store)(nil)
var _ storage.AgentStore = (*Store)(nil)
