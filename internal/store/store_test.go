package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"codeberg.org/snonux/batchlingo/internal/domain"
)

// eachStore runs the given test against both store implementations
func eachStore(t *testing.T, test func(t *testing.T, s Store)) {
	t.Helper()

	t.Run("memory", func(t *testing.T) {
		s := NewMemoryStore()
		defer s.Close()
		test(t, s)
	})

	t.Run("sqlite", func(t *testing.T) {
		s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.sqlite3"))
		if err != nil {
			t.Fatalf("NewSQLiteStore failed: %v", err)
		}
		defer s.Close()
		test(t, s)
	})
}

func newTestSession() *domain.Session {
	return &domain.Session{
		ID:             uuid.NewString(),
		CreatedAt:      time.Now().Truncate(time.Millisecond),
		TargetLanguage: "Japanese",
		PromptVersion:  "poster-v1",
		Status:         domain.SessionPending,
	}
}

func newTestRecords(sessionID string, n int) []*domain.FileRecord {
	var records []*domain.FileRecord
	for i := 0; i < n; i++ {
		records = append(records, &domain.FileRecord{
			ID:             uuid.NewString(),
			SessionID:      sessionID,
			SourceFilename: "poster.png",
			InputRef:       "/tmp/poster.png",
			Status:         domain.FilePending,
			CreatedAt:      time.Now(),
			UpdatedAt:      time.Now(),
		})
	}
	return records
}

func TestCreateAndGetSession(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		session := newTestSession()
		if err := s.CreateSession(session); err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}

		got, err := s.GetSession(session.ID)
		if err != nil {
			t.Fatalf("GetSession failed: %v", err)
		}
		if got.TargetLanguage != "Japanese" {
			t.Errorf("Expected target language Japanese, got %q", got.TargetLanguage)
		}
		if got.Status != domain.SessionPending {
			t.Errorf("Expected pending status, got %v", got.Status)
		}
	})
}

func TestGetSession_NotFound(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		_, err := s.GetSession("does-not-exist")
		if err != ErrNotFound {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})
}

func TestListFileRecords_EnumerationOrder(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		session := newTestSession()
		if err := s.CreateSession(session); err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}

		records := newTestRecords(session.ID, 5)
		for i, r := range records {
			r.SourceFilename = string(rune('a'+i)) + ".png"
		}
		if err := s.CreateFileRecords(records); err != nil {
			t.Fatalf("CreateFileRecords failed: %v", err)
		}

		got, err := s.ListFileRecords(session.ID)
		if err != nil {
			t.Fatalf("ListFileRecords failed: %v", err)
		}
		if len(got) != 5 {
			t.Fatalf("Expected 5 records, got %d", len(got))
		}
		for i, r := range got {
			want := string(rune('a'+i)) + ".png"
			if r.SourceFilename != want {
				t.Errorf("Record %d: expected filename %q, got %q", i, want, r.SourceFilename)
			}
		}
	})
}

func TestClaimFileRecord(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		session := newTestSession()
		if err := s.CreateSession(session); err != nil {
			t.Fatal(err)
		}
		records := newTestRecords(session.ID, 1)
		if err := s.CreateFileRecords(records); err != nil {
			t.Fatal(err)
		}

		claimed, err := s.ClaimFileRecord(records[0].ID)
		if err != nil {
			t.Fatalf("ClaimFileRecord failed: %v", err)
		}
		if !claimed {
			t.Error("First claim should succeed")
		}

		// Second claim must lose: the record is no longer pending
		claimed, err = s.ClaimFileRecord(records[0].ID)
		if err != nil {
			t.Fatalf("ClaimFileRecord failed: %v", err)
		}
		if claimed {
			t.Error("Second claim should fail")
		}

		got, _ := s.ListFileRecords(session.ID)
		if got[0].Status != domain.FileInProgress {
			t.Errorf("Expected in_progress, got %v", got[0].Status)
		}
	})
}

func TestUpdateFileRecord_TerminalIsSticky(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		session := newTestSession()
		if err := s.CreateSession(session); err != nil {
			t.Fatal(err)
		}
		records := newTestRecords(session.ID, 1)
		if err := s.CreateFileRecords(records); err != nil {
			t.Fatal(err)
		}

		updated, err := s.UpdateFileRecord(records[0].ID, RecordUpdate{
			Status:       domain.FileSuccess,
			OutputRef:    "/out/poster.png",
			AttemptCount: 1,
			DurationMS:   1200,
		})
		if err != nil {
			t.Fatalf("UpdateFileRecord failed: %v", err)
		}
		if !updated {
			t.Error("Update of a non-terminal record should succeed")
		}

		// A later write must not overwrite a terminal state
		updated, err = s.UpdateFileRecord(records[0].ID, RecordUpdate{
			Status:    domain.FileFailed,
			ErrorKind: domain.ErrorKindTransient,
		})
		if err != nil {
			t.Fatalf("UpdateFileRecord failed: %v", err)
		}
		if updated {
			t.Error("Update of a terminal record should be rejected")
		}

		got, _ := s.ListFileRecords(session.ID)
		if got[0].Status != domain.FileSuccess {
			t.Errorf("Terminal state was overwritten: %v", got[0].Status)
		}
		if got[0].OutputRef != "/out/poster.png" {
			t.Errorf("OutputRef lost: %q", got[0].OutputRef)
		}
	})
}

func TestUpdateSessionStatus(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		session := newTestSession()
		if err := s.CreateSession(session); err != nil {
			t.Fatal(err)
		}

		if err := s.UpdateSessionStatus(session.ID, domain.SessionCompleted); err != nil {
			t.Fatalf("UpdateSessionStatus failed: %v", err)
		}

		got, _ := s.GetSession(session.ID)
		if got.Status != domain.SessionCompleted {
			t.Errorf("Expected completed, got %v", got.Status)
		}

		if err := s.UpdateSessionStatus("missing", domain.SessionFailed); err != ErrNotFound {
			t.Errorf("Expected ErrNotFound for missing session, got %v", err)
		}
	})
}

func TestListSessions_OrderedByCreation(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		base := time.Now().Truncate(time.Millisecond)
		for i := 2; i >= 0; i-- {
			session := newTestSession()
			session.CreatedAt = base.Add(time.Duration(i) * time.Minute)
			if err := s.CreateSession(session); err != nil {
				t.Fatal(err)
			}
		}

		sessions, err := s.ListSessions()
		if err != nil {
			t.Fatalf("ListSessions failed: %v", err)
		}
		if len(sessions) != 3 {
			t.Fatalf("Expected 3 sessions, got %d", len(sessions))
		}
		for i := 1; i < len(sessions); i++ {
			if sessions[i].CreatedAt.Before(sessions[i-1].CreatedAt) {
				t.Error("Sessions not ordered by creation time")
			}
		}
	})
}
