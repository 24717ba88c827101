package domain

import "time"

// Session represents one batch translation submission
type Session struct {
	ID             string
	CreatedAt      time.Time
	TargetLanguage string
	PromptVersion  string
	Status         SessionStatus
}

// FileRecord tracks the state of one input image within a session
type FileRecord struct {
	ID             string
	SessionID      string
	SourceFilename string
	InputRef       string // path to the source image bytes
	OutputRef      string // path to the translated image, set only on success
	Status         FileStatus
	AttemptCount   int
	ErrorKind      ErrorKind
	ErrorMessage   string
	DurationMS     int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// AggregateStatus derives a session status from its file records.
// The session status is never set independently of the records:
//   - completed: every record succeeded
//   - completed_with_errors: every record is terminal and at least one failed
//   - running: any record is still pending or in progress
//   - failed: no records at all, a whole-batch setup failure
func AggregateStatus(records []*FileRecord) SessionStatus {
	if len(records) == 0 {
		return SessionFailed
	}

	failed := 0
	for _, r := range records {
		if !r.Status.Terminal() {
			return SessionRunning
		}
		if r.Status == FileFailed {
			failed++
		}
	}

	if failed > 0 {
		return SessionCompletedWithErrors
	}
	return SessionCompleted
}

// CountByStatus returns how many records are in each status
func CountByStatus(records []*FileRecord) map[FileStatus]int {
	counts := make(map[FileStatus]int)
	for _, r := range records {
		counts[r.Status]++
	}
	return counts
}
