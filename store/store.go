// Package store persists finished sessions to SQLite and writes the
// session artifacts (transcript, summary JSON, readable summary).
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"meetscribe/summarize"
	"meetscribe/transcript"
)

// Store wraps SQLite access for sessions and utterances.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and runs migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			language TEXT,
			started_at TIMESTAMP,
			ended_at TIMESTAMP,
			utterance_count INTEGER,
			summary_json TEXT,
			llm_used INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS utterances (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT,
			seq INTEGER,
			at TIMESTAMP,
			offset_ms INTEGER,
			text TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_utterances_session ON utterances(session_id, seq);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Session is one finished capture session.
type Session struct {
	ID        string
	Language  string
	StartedAt time.Time
	EndedAt   time.Time
	LLMUsed   bool
}

// SaveSession writes the session row, its utterances, and the final
// summary in one transaction.
func (s *Store) SaveSession(sess Session, entries []transcript.Utterance, doc summarize.Document) error {
	summaryJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	llmUsed := 0
	if sess.LLMUsed {
		llmUsed = 1
	}
	if _, err := tx.Exec(
		`INSERT INTO sessions (session_id, language, started_at, ended_at, utterance_count, summary_json, llm_used)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.Language, sess.StartedAt, sess.EndedAt, len(entries), string(summaryJSON), llmUsed,
	); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	for i, u := range entries {
		if _, err := tx.Exec(
			`INSERT INTO utterances (session_id, seq, at, offset_ms, text) VALUES (?, ?, ?, ?, ?)`,
			sess.ID, i, u.At, u.Offset.Milliseconds(), u.Text,
		); err != nil {
			return fmt.Errorf("insert utterance %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// LoadSession reads a session row and its utterances back.
func (s *Store) LoadSession(id string) (Session, []transcript.Utterance, summarize.Document, error) {
	var (
		sess        Session
		summaryJSON string
		llmUsed     int
	)
	sess.ID = id
	err := s.db.QueryRow(
		`SELECT language, started_at, ended_at, summary_json, llm_used FROM sessions WHERE session_id = ?`, id,
	).Scan(&sess.Language, &sess.StartedAt, &sess.EndedAt, &summaryJSON, &llmUsed)
	if err != nil {
		return sess, nil, summarize.Document{}, err
	}
	sess.LLMUsed = llmUsed != 0

	var doc summarize.Document
	if err := json.Unmarshal([]byte(summaryJSON), &doc); err != nil {
		return sess, nil, doc, fmt.Errorf("unmarshal summary: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT at, offset_ms, text FROM utterances WHERE session_id = ? ORDER BY seq`, id,
	)
	if err != nil {
		return sess, nil, doc, err
	}
	defer rows.Close()

	var entries []transcript.Utterance
	for rows.Next() {
		var (
			u        transcript.Utterance
			offsetMS int64
		)
		if err := rows.Scan(&u.At, &offsetMS, &u.Text); err != nil {
			return sess, nil, doc, err
		}
		u.Offset = time.Duration(offsetMS) * time.Millisecond
		entries = append(entries, u)
	}
	return sess, entries, doc, rows.Err()
}
