// Package packaging builds delivery artifacts from a session's successful
// outputs. It is a pure read and transform over the store plus the output
// blobs; session and record state are never mutated here, so a partially
// failed batch stays packageable.
package packaging

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/snonux/batchlingo/internal/domain"
	"codeberg.org/snonux/batchlingo/internal/store"
)

// ErrNotAvailable is returned when a single-file package is requested for a
// record that did not succeed
var ErrNotAvailable = errors.New("output not available for this file")

// ErrNothingToPackage is returned when a session has no successful outputs
var ErrNothingToPackage = errors.New("no successful outputs to package")

// Service packages translated images for delivery
type Service struct {
	store store.Store
}

// NewService creates a new packaging service
func NewService(s store.Store) *Service {
	return &Service{store: s}
}

// PackageSingle returns the output artifact path for one successful file
// record. Returns ErrNotAvailable if the record is missing, belongs to a
// different session, or did not succeed.
func (s *Service) PackageSingle(sessionID, fileID string) (string, error) {
	records, err := s.store.ListFileRecords(sessionID)
	if err != nil {
		return "", err
	}

	for _, r := range records {
		if r.ID != fileID {
			continue
		}
		if r.Status != domain.FileSuccess {
			return "", ErrNotAvailable
		}
		return r.OutputRef, nil
	}
	return "", ErrNotAvailable
}

// PackageAll builds one zip archive containing every successful record's
// output, named by original filename with collision-safe disambiguation.
// Failed and pending records are skipped. Returns ErrNothingToPackage when
// no record succeeded.
func (s *Service) PackageAll(sessionID, archivePath string) (string, error) {
	if _, err := s.store.GetSession(sessionID); err != nil {
		return "", err
	}

	records, err := s.store.ListFileRecords(sessionID)
	if err != nil {
		return "", err
	}

	var successes []*domain.FileRecord
	for _, r := range records {
		if r.Status == domain.FileSuccess {
			successes = append(successes, r)
		}
	}
	if len(successes) == 0 {
		return "", ErrNothingToPackage
	}

	if err := os.MkdirAll(filepath.Dir(archivePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	zipFile, err := os.Create(archivePath)
	if err != nil {
		return "", fmt.Errorf("failed to create archive: %w", err)
	}
	defer zipFile.Close()

	archive := zip.NewWriter(zipFile)

	used := make(map[string]bool)
	for _, r := range successes {
		arcname := disambiguate(archiveName(r), used)
		used[arcname] = true

		if err := addFileToZip(archive, r.OutputRef, arcname); err != nil {
			return "", fmt.Errorf("failed to add %s to archive: %w", r.SourceFilename, err)
		}
	}

	if err := archive.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize archive: %w", err)
	}
	return archivePath, nil
}

// archiveName derives the entry name from the original basename, keeping
// the output's actual extension
func archiveName(r *domain.FileRecord) string {
	base := filepath.Base(r.SourceFilename)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return stem + filepath.Ext(r.OutputRef)
}

// disambiguate appends a numeric suffix on collision: "name (2).ext"
func disambiguate(name string, used map[string]bool) string {
	if !used[name] {
		return name
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", stem, n, ext)
		if !used[candidate] {
			return candidate
		}
	}
}

// addFileToZip writes one file into the archive under the given entry name
func addFileToZip(archive *zip.Writer, path, arcname string) error {
	writer, err := archive.Create(arcname)
	if err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = io.Copy(writer, file)
	return err
}
