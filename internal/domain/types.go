package domain

// SessionStatus represents the lifecycle state of a batch session
type SessionStatus string

const (
	SessionPending             SessionStatus = "pending"
	SessionRunning             SessionStatus = "running"
	SessionCompleted           SessionStatus = "completed"
	SessionCompletedWithErrors SessionStatus = "completed_with_errors"
	SessionFailed              SessionStatus = "failed"
)

// FileStatus represents the lifecycle state of a single file within a session
type FileStatus string

const (
	FilePending    FileStatus = "pending"
	FileInProgress FileStatus = "in_progress"
	FileSuccess    FileStatus = "success"
	FileFailed     FileStatus = "failed"
)

// Terminal returns true if the file can no longer change state
func (s FileStatus) Terminal() bool {
	return s == FileSuccess || s == FileFailed
}

// ErrorKind classifies translation failures
type ErrorKind string

const (
	// ErrorKindNone means no error occurred
	ErrorKindNone ErrorKind = ""
	// ErrorKindTransient covers network errors, timeouts and rate limits (retryable)
	ErrorKindTransient ErrorKind = "transient"
	// ErrorKindPermanent covers invalid or unsupported input content (not retryable)
	ErrorKindPermanent ErrorKind = "permanent"
	// ErrorKindAuth covers rejected credentials (not retryable, fatal to the batch)
	ErrorKindAuth ErrorKind = "auth"
)
