// Package memory persists conversation threads and feedback in SQL.
//
// The store backs the history, invoke and stream endpoints: every user
// and agent message is appended to its thread so later runs can replay
// the full conversation. SQLite is the default backend; Postgres and
// MySQL are supported for shared deployments.
package memory

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	// SQL drivers registered for database/sql.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/JoshuaC215/agent-service-toolkit/pkg/config"
	"github.com/JoshuaC215/agent-service-toolkit/pkg/schema"
)

// Store persists threads, messages and feedback.
type Store struct {
	db      *sql.DB
	dialect string
}

// Open connects to the configured database and creates the schema if
// it does not exist yet.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	db, err := sql.Open(cfg.Driver(), cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Store{db: db, dialect: string(cfg.Type)}
	if s.dialect == "" {
		s.dialect = string(config.DatabaseSQLite)
	}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewStore wraps an existing connection. Used by tests.
func NewStore(ctx context.Context, db *sql.DB, dialect string) (*Store, error) {
	s := &Store{db: db, dialect: dialect}
	if err := s.initSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	var statements []string

	switch s.dialect {
	case "postgres":
		statements = []string{
			`CREATE TABLE IF NOT EXISTS threads (
				thread_id VARCHAR(255) PRIMARY KEY,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE TABLE IF NOT EXISTS thread_messages (
				id SERIAL PRIMARY KEY,
				thread_id VARCHAR(255) NOT NULL,
				run_id VARCHAR(255) NOT NULL DEFAULT '',
				message_json TEXT NOT NULL,
				sequence_num INTEGER NOT NULL,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX IF NOT EXISTS idx_thread_messages_thread
				ON thread_messages(thread_id, sequence_num)`,
			`CREATE TABLE IF NOT EXISTS feedback (
				id SERIAL PRIMARY KEY,
				run_id VARCHAR(255) NOT NULL,
				feedback_key VARCHAR(255) NOT NULL,
				score DOUBLE PRECISION NOT NULL,
				metadata_json TEXT,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
		}
	case "mysql":
		statements = []string{
			`CREATE TABLE IF NOT EXISTS threads (
				thread_id VARCHAR(255) PRIMARY KEY,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE TABLE IF NOT EXISTS thread_messages (
				id BIGINT PRIMARY KEY AUTO_INCREMENT,
				thread_id VARCHAR(255) NOT NULL,
				run_id VARCHAR(255) NOT NULL DEFAULT '',
				message_json TEXT NOT NULL,
				sequence_num INTEGER NOT NULL,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				INDEX idx_thread_messages_thread (thread_id, sequence_num)
			)`,
			`CREATE TABLE IF NOT EXISTS feedback (
				id BIGINT PRIMARY KEY AUTO_INCREMENT,
				run_id VARCHAR(255) NOT NULL,
				feedback_key VARCHAR(255) NOT NULL,
				score DOUBLE NOT NULL,
				metadata_json TEXT,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
		}
	default: // sqlite
		statements = []string{
			`CREATE TABLE IF NOT EXISTS threads (
				thread_id VARCHAR(255) PRIMARY KEY,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE TABLE IF NOT EXISTS thread_messages (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				thread_id VARCHAR(255) NOT NULL,
				run_id VARCHAR(255) NOT NULL DEFAULT '',
				message_json TEXT NOT NULL,
				sequence_num INTEGER NOT NULL,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX IF NOT EXISTS idx_thread_messages_thread
				ON thread_messages(thread_id, sequence_num)`,
			`CREATE TABLE IF NOT EXISTS feedback (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				run_id VARCHAR(255) NOT NULL,
				feedback_key VARCHAR(255) NOT NULL,
				score DOUBLE NOT NULL,
				metadata_json TEXT,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
		}
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders to $1..$N for postgres.
func (s *Store) rebind(query string) string {
	if s.dialect != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// AppendMessages adds messages to a thread, creating the thread if
// needed. Sequence numbers continue from the current maximum so
// history replays in insertion order.
func (s *Store) AppendMessages(ctx context.Context, threadID, runID string, msgs []schema.ChatMessage) error {
	if threadID == "" {
		return fmt.Errorf("thread_id is required")
	}
	if len(msgs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.ensureThread(ctx, tx, threadID); err != nil {
		return err
	}

	var next int
	err = tx.QueryRowContext(ctx,
		s.rebind(`SELECT COALESCE(MAX(sequence_num), 0) FROM thread_messages WHERE thread_id = ?`),
		threadID).Scan(&next)
	if err != nil {
		return fmt.Errorf("failed to read sequence: %w", err)
	}

	for _, msg := range msgs {
		next++
		data, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("failed to marshal message: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			s.rebind(`INSERT INTO thread_messages (thread_id, run_id, message_json, sequence_num) VALUES (?, ?, ?, ?)`),
			threadID, runID, string(data), next)
		if err != nil {
			return fmt.Errorf("failed to insert message: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		s.rebind(`UPDATE threads SET updated_at = CURRENT_TIMESTAMP WHERE thread_id = ?`),
		threadID)
	if err != nil {
		return fmt.Errorf("failed to update thread: %w", err)
	}

	return tx.Commit()
}

func (s *Store) ensureThread(ctx context.Context, tx *sql.Tx, threadID string) error {
	var exists int
	err := tx.QueryRowContext(ctx,
		s.rebind(`SELECT COUNT(*) FROM threads WHERE thread_id = ?`), threadID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check thread: %w", err)
	}
	if exists > 0 {
		return nil
	}
	_, err = tx.ExecContext(ctx,
		s.rebind(`INSERT INTO threads (thread_id) VALUES (?)`), threadID)
	if err != nil {
		return fmt.Errorf("failed to create thread: %w", err)
	}
	return nil
}

// History returns all messages in a thread ordered by insertion. An
// unknown thread yields an empty slice, not an error.
func (s *Store) History(ctx context.Context, threadID string) ([]schema.ChatMessage, error) {
	if threadID == "" {
		return nil, fmt.Errorf("thread_id is required")
	}

	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT message_json FROM thread_messages WHERE thread_id = ? ORDER BY sequence_num ASC`),
		threadID)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	messages := []schema.ChatMessage{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		var msg schema.ChatMessage
		if err := json.Unmarshal([]byte(raw), &msg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// RecordFeedback stores a feedback record for a run.
func (s *Store) RecordFeedback(ctx context.Context, fb schema.Feedback) error {
	var metadata sql.NullString
	if len(fb.Metadata) > 0 {
		data, err := json.Marshal(fb.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal feedback metadata: %w", err)
		}
		metadata = sql.NullString{String: string(data), Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		s.rebind(`INSERT INTO feedback (run_id, feedback_key, score, metadata_json) VALUES (?, ?, ?, ?)`),
		fb.RunID, fb.Key, fb.Score, metadata)
	if err != nil {
		return fmt.Errorf("failed to insert feedback: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
