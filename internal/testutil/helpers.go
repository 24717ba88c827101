package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// CreateTestImages writes one file per entry of contents into a temporary
// directory and returns the file paths in the same order. The file content
// doubles as the key for MockProvider failure scripts.
func CreateTestImages(t *testing.T, contents map[string]string, order []string) []string {
	t.Helper()

	dir := t.TempDir()
	var paths []string
	for _, name := range order {
		content, ok := contents[name]
		if !ok {
			t.Fatalf("No content given for test image %s", name)
		}
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to create test image %s: %v", path, err)
		}
		paths = append(paths, path)
	}
	return paths
}

// CreateTestFile creates a test file with content
func CreateTestFile(t *testing.T, path string, content []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory for test file: %v", err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", path, err)
	}
}
