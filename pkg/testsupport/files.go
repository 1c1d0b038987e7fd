package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteTempFile writes content to a file under a per-test temp directory
// and returns its path. Cleanup is handled by the testing framework.
func WriteTempFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp file %s: %v", path, err)
	}
	return path
}
