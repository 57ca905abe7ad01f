package library

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"steamdrop/internal/classify"
	"steamdrop/internal/logging"
)

// FileError records a file that could not be processed.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e FileError) Unwrap() error { return e.Err }

// PartialDeleteError lists the files Remove could not delete. Every other
// file was removed.
type PartialDeleteError struct {
	Failed []FileError
}

func (e *PartialDeleteError) Error() string {
	if len(e.Failed) == 1 {
		return "failed to delete " + e.Failed[0].Error()
	}
	parts := make([]string, len(e.Failed))
	for i, f := range e.Failed {
		parts[i] = f.Error()
	}
	return fmt.Sprintf("failed to delete %d files: %s", len(e.Failed), strings.Join(parts, "; "))
}

// Remove deletes every script file of id and, when includeManifests is set,
// every manifest in manifestDir whose name carries the id. All files are
// attempted; failures are returned as *PartialDeleteError alongside the count
// of files that were deleted. The index itself is not modified; callers
// rebuild afterwards.
func (idx *Index) Remove(id string, includeManifests bool, manifestDir string) (int, error) {
	entry, ok := idx.Get(id)
	if !ok {
		return 0, fmt.Errorf("%s: %w", id, ErrUnknownApp)
	}

	targets := append([]string(nil), entry.ScriptPaths...)
	var failed []FileError
	if includeManifests {
		manifests, err := MatchingManifests(manifestDir, id)
		if err != nil {
			failed = append(failed, FileError{Path: manifestDir, Err: err})
		}
		targets = append(targets, manifests...)
	}

	removed := 0
	for _, path := range targets {
		if err := os.Remove(path); err != nil {
			failed = append(failed, FileError{Path: path, Err: err})
			continue
		}
		removed++
	}

	idx.logger.Info("removed app files",
		logging.AppID(id),
		logging.Int("removed", removed),
		logging.Int("failed", len(failed)),
		logging.Bool("manifests", includeManifests))

	if len(failed) > 0 {
		return removed, &PartialDeleteError{Failed: failed}
	}
	return removed, nil
}

// MatchingManifests lists manifest files directly inside dir whose name
// contains id as a whole number, so "100" does not match "1000_x.manifest".
// A missing directory has no matches.
func MatchingManifests(dir, id string) ([]string, error) {
	if strings.TrimSpace(dir) == "" || id == "" {
		return nil, nil
	}
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list manifest directory: %w", err)
	}
	var matches []string
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		name := de.Name()
		if classify.IsManifestName(name) && containsID(name, id) {
			matches = append(matches, filepath.Join(dir, name))
		}
	}
	return matches, nil
}

// containsID reports whether id occurs in name with no digit directly before
// or after it.
func containsID(name, id string) bool {
	for offset := 0; offset <= len(name)-len(id); {
		i := strings.Index(name[offset:], id)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(id)
		if (start == 0 || !isDigit(name[start-1])) && (end == len(name) || !isDigit(name[end])) {
			return true
		}
		offset = start + 1
	}
	return false
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
