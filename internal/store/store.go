package store

import (
	"errors"

	"codeberg.org/snonux/batchlingo/internal/domain"
)

// ErrNotFound is returned when a session or file record does not exist
var ErrNotFound = errors.New("not found")

// RecordUpdate carries the fields written when a file record reaches an
// outcome. The whole update is applied as one atomic write.
type RecordUpdate struct {
	Status       domain.FileStatus
	OutputRef    string
	ErrorKind    domain.ErrorKind
	ErrorMessage string
	AttemptCount int
	DurationMS   int64
}

// Store is the durable log of sessions and per-file records. It offers
// append, query and update operations only; all business logic lives in the
// orchestrator.
type Store interface {
	// CreateSession appends a new session
	CreateSession(session *domain.Session) error

	// CreateFileRecords appends a batch of file records in enumeration order
	CreateFileRecords(records []*domain.FileRecord) error

	// GetSession returns a session by ID, or ErrNotFound
	GetSession(id string) (*domain.Session, error)

	// ListSessions returns all sessions ordered by creation time
	ListSessions() ([]*domain.Session, error)

	// ListFileRecords returns a session's records in enumeration order
	ListFileRecords(sessionID string) ([]*domain.FileRecord, error)

	// ClaimFileRecord transitions a record from pending to in_progress.
	// Returns false if the record was not pending, so no two workers can
	// claim the same record.
	ClaimFileRecord(id string) (bool, error)

	// UpdateFileRecord applies an outcome to a record as a single atomic
	// write. Returns false if the record is already terminal; terminal
	// states are never overwritten.
	UpdateFileRecord(id string, update RecordUpdate) (bool, error)

	// UpdateSessionStatus sets a session's aggregate status
	UpdateSessionStatus(id string, status domain.SessionStatus) error

	// Close releases store resources
	Close() error
}
