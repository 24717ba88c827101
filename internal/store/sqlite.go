package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"codeberg.org/snonux/batchlingo/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	created_at TIMESTAMP NOT NULL,
	target_language TEXT NOT NULL,
	prompt_version TEXT NOT NULL,
	status TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS file_records (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	session_id TEXT NOT NULL,
	source_filename TEXT NOT NULL,
	input_ref TEXT NOT NULL,
	output_ref TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	attempt_count INTEGER NOT NULL DEFAULT 0,
	error_kind TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT '',
	duration_ms INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	FOREIGN KEY(session_id) REFERENCES sessions(id)
);

CREATE INDEX IF NOT EXISTS idx_file_records_session ON file_records(session_id);
`

// SQLiteStore provides SQLite-backed session persistence
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and migrates) the database at the given path
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Serialized writes keep per-record updates atomic under concurrent workers
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateSession appends a new session
func (s *SQLiteStore) CreateSession(session *domain.Session) error {
	_, err := s.db.Exec(`
		INSERT INTO sessions (id, created_at, target_language, prompt_version, status)
		VALUES (?, ?, ?, ?, ?)`,
		session.ID,
		session.CreatedAt,
		session.TargetLanguage,
		session.PromptVersion,
		string(session.Status),
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// CreateFileRecords appends a batch of file records in enumeration order
func (s *SQLiteStore) CreateFileRecords(records []*domain.FileRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO file_records
			(id, session_id, source_filename, input_ref, output_ref, status,
			 attempt_count, error_kind, error_message, duration_ms, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		_, err := stmt.Exec(
			r.ID, r.SessionID, r.SourceFilename, r.InputRef, r.OutputRef,
			string(r.Status), r.AttemptCount, string(r.ErrorKind), r.ErrorMessage,
			r.DurationMS, r.CreatedAt, r.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert file record %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit file records: %w", err)
	}
	return nil
}

// GetSession returns a session by ID, or ErrNotFound
func (s *SQLiteStore) GetSession(id string) (*domain.Session, error) {
	row := s.db.QueryRow(`
		SELECT id, created_at, target_language, prompt_version, status
		FROM sessions WHERE id = ?`, id)

	session := &domain.Session{}
	var status string
	err := row.Scan(&session.ID, &session.CreatedAt, &session.TargetLanguage,
		&session.PromptVersion, &status)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan session: %w", err)
	}
	session.Status = domain.SessionStatus(status)
	return session, nil
}

// ListSessions returns all sessions ordered by creation time
func (s *SQLiteStore) ListSessions() ([]*domain.Session, error) {
	rows, err := s.db.Query(`
		SELECT id, created_at, target_language, prompt_version, status
		FROM sessions ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*domain.Session
	for rows.Next() {
		session := &domain.Session{}
		var status string
		if err := rows.Scan(&session.ID, &session.CreatedAt, &session.TargetLanguage,
			&session.PromptVersion, &status); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		session.Status = domain.SessionStatus(status)
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// ListFileRecords returns a session's records in enumeration order
func (s *SQLiteStore) ListFileRecords(sessionID string) ([]*domain.FileRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, session_id, source_filename, input_ref, output_ref, status,
		       attempt_count, error_kind, error_message, duration_ms, created_at, updated_at
		FROM file_records WHERE session_id = ? ORDER BY seq`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query file records: %w", err)
	}
	defer rows.Close()

	var records []*domain.FileRecord
	for rows.Next() {
		r := &domain.FileRecord{}
		var status, errorKind string
		if err := rows.Scan(&r.ID, &r.SessionID, &r.SourceFilename, &r.InputRef,
			&r.OutputRef, &status, &r.AttemptCount, &errorKind, &r.ErrorMessage,
			&r.DurationMS, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan file record: %w", err)
		}
		r.Status = domain.FileStatus(status)
		r.ErrorKind = domain.ErrorKind(errorKind)
		records = append(records, r)
	}
	return records, rows.Err()
}

// ClaimFileRecord transitions a record from pending to in_progress.
// The conditional UPDATE makes the claim atomic: only one caller can win.
func (s *SQLiteStore) ClaimFileRecord(id string) (bool, error) {
	res, err := s.db.Exec(`
		UPDATE file_records SET status = ?, updated_at = ?
		WHERE id = ? AND status = ?`,
		string(domain.FileInProgress), time.Now(), id, string(domain.FilePending))
	if err != nil {
		return false, fmt.Errorf("failed to claim file record: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// UpdateFileRecord applies an outcome to a record as a single conditional
// UPDATE. Records already in a terminal state are left untouched.
func (s *SQLiteStore) UpdateFileRecord(id string, update RecordUpdate) (bool, error) {
	res, err := s.db.Exec(`
		UPDATE file_records
		SET status = ?, output_ref = ?, error_kind = ?, error_message = ?,
		    attempt_count = ?, duration_ms = ?, updated_at = ?
		WHERE id = ? AND status NOT IN (?, ?)`,
		string(update.Status), update.OutputRef, string(update.ErrorKind),
		update.ErrorMessage, update.AttemptCount, update.DurationMS, time.Now(),
		id, string(domain.FileSuccess), string(domain.FileFailed))
	if err != nil {
		return false, fmt.Errorf("failed to update file record: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// UpdateSessionStatus sets a session's aggregate status
func (s *SQLiteStore) UpdateSessionStatus(id string, status domain.SessionStatus) error {
	res, err := s.db.Exec(`UPDATE sessions SET status = ? WHERE id = ?`,
		string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update session status: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
