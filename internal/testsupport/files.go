package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteScript writes a minimal unlock script for id into dir.
func WriteScript(t testing.TB, dir, name, id string) string {
	t.Helper()
	return WriteFile(t, filepath.Join(dir, name), fmt.Sprintf("addappid(%s)\n", id))
}

// WriteManifest writes an empty-bodied manifest into dir.
func WriteManifest(t testing.TB, dir, name string) string {
	t.Helper()
	return WriteFile(t, filepath.Join(dir, name), "manifest")
}
