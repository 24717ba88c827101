// Package export converts session and file records into a flat CSV report.
// Row ordering is deterministic (session creation time, then file
// enumeration order) so repeated exports over unchanged data are diffable.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"codeberg.org/snonux/batchlingo/internal/domain"
	"codeberg.org/snonux/batchlingo/internal/store"
)

// Columns is the stable column order of the report
var Columns = []string{
	"session_id",
	"created_at",
	"target_language",
	"filename",
	"status",
	"error_kind",
	"attempt_count",
	"duration_ms",
}

// Service exports session records as tabular reports
type Service struct {
	store store.Store
}

// NewService creates a new export service
func NewService(s store.Store) *Service {
	return &Service{store: s}
}

// ExportSession writes one CSV row per file record of the given session
func (s *Service) ExportSession(sessionID string, w io.Writer) error {
	session, err := s.store.GetSession(sessionID)
	if err != nil {
		return err
	}
	return s.write(w, []*domain.Session{session})
}

// ExportAll writes one CSV row per file record across all sessions, ordered
// by session creation time then enumeration order
func (s *Service) ExportAll(w io.Writer) error {
	sessions, err := s.store.ListSessions()
	if err != nil {
		return err
	}
	return s.write(w, sessions)
}

// ExportSessionToFile writes a session report to the given path
func (s *Service) ExportSessionToFile(sessionID, path string) error {
	return s.toFile(path, func(w io.Writer) error {
		return s.ExportSession(sessionID, w)
	})
}

// ExportAllToFile writes the full report to the given path
func (s *Service) ExportAllToFile(path string) error {
	return s.toFile(path, s.ExportAll)
}

func (s *Service) toFile(path string, export func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer file.Close()

	return export(file)
}

func (s *Service) write(w io.Writer, sessions []*domain.Session) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(Columns); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for _, session := range sessions {
		records, err := s.store.ListFileRecords(session.ID)
		if err != nil {
			return err
		}
		for _, r := range records {
			row := []string{
				session.ID,
				session.CreatedAt.Format(time.RFC3339),
				session.TargetLanguage,
				r.SourceFilename,
				string(r.Status),
				string(r.ErrorKind),
				strconv.Itoa(r.AttemptCount),
				strconv.FormatInt(r.DurationMS, 10),
			}
			if err := writer.Write(row); err != nil {
				return fmt.Errorf("failed to write row: %w", err)
			}
		}
	}

	writer.Flush()
	return writer.Error()
}
