package store

import (
	"sort"
	"sync"
	"time"

	"codeberg.org/snonux/batchlingo/internal/domain"
)

// MemoryStore is an in-memory Store used by tests and one-shot CLI runs
// where no durable log is wanted
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
	records  map[string]*domain.FileRecord
	order    []string // record IDs in enumeration order
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*domain.Session),
		records:  make(map[string]*domain.FileRecord),
	}
}

// CreateSession appends a new session
func (s *MemoryStore) CreateSession(session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *session
	s.sessions[session.ID] = &copied
	return nil
}

// CreateFileRecords appends a batch of file records in enumeration order
func (s *MemoryStore) CreateFileRecords(records []*domain.FileRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		copied := *r
		s.records[r.ID] = &copied
		s.order = append(s.order, r.ID)
	}
	return nil
}

// GetSession returns a session by ID, or ErrNotFound
func (s *MemoryStore) GetSession(id string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *session
	return &copied, nil
}

// ListSessions returns all sessions ordered by creation time
func (s *MemoryStore) ListSessions() ([]*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sessions []*domain.Session
	for _, session := range s.sessions {
		copied := *session
		sessions = append(sessions, &copied)
	}
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})
	return sessions, nil
}

// ListFileRecords returns a session's records in enumeration order
func (s *MemoryStore) ListFileRecords(sessionID string) ([]*domain.FileRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []*domain.FileRecord
	for _, id := range s.order {
		r := s.records[id]
		if r.SessionID == sessionID {
			copied := *r
			records = append(records, &copied)
		}
	}
	return records, nil
}

// ClaimFileRecord transitions a record from pending to in_progress
func (s *MemoryStore) ClaimFileRecord(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[id]
	if !ok {
		return false, ErrNotFound
	}
	if r.Status != domain.FilePending {
		return false, nil
	}
	r.Status = domain.FileInProgress
	r.UpdatedAt = time.Now()
	return true, nil
}

// UpdateFileRecord applies an outcome unless the record is already terminal
func (s *MemoryStore) UpdateFileRecord(id string, update RecordUpdate) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[id]
	if !ok {
		return false, ErrNotFound
	}
	if r.Status.Terminal() {
		return false, nil
	}

	r.Status = update.Status
	r.OutputRef = update.OutputRef
	r.ErrorKind = update.ErrorKind
	r.ErrorMessage = update.ErrorMessage
	r.AttemptCount = update.AttemptCount
	r.DurationMS = update.DurationMS
	r.UpdatedAt = time.Now()
	return true, nil
}

// UpdateSessionStatus sets a session's aggregate status
func (s *MemoryStore) UpdateSessionStatus(id string, status domain.SessionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	session.Status = status
	return nil
}

// Close is a no-op for the in-memory store
func (s *MemoryStore) Close() error {
	return nil
}
