// Package classify maps dropped files to the destination kind they belong to
// and walks dropped directories with a depth bound.
package classify

import (
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"
)

// Kind is the destination category of a file.
type Kind int

const (
	KindOther Kind = iota
	KindScript
	KindManifest
)

// DefaultMaxDepth bounds how deep Walk descends into dropped directories.
const DefaultMaxDepth = 6

const scriptExt = ".lua"

var manifestExts = []string{".manifest", ".mfst"}

func (k Kind) String() string {
	switch k {
	case KindScript:
		return "script"
	case KindManifest:
		return "manifest"
	default:
		return "other"
	}
}

// Classify reports the kind of path using a case-insensitive suffix match.
func Classify(path string) Kind {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, scriptExt) {
		return KindScript
	}
	if IsManifestName(lower) {
		return KindManifest
	}
	return KindOther
}

// IsManifestName reports whether name carries a manifest suffix.
func IsManifestName(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range manifestExts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// Walk yields root itself when it is a file, or every file beneath root when
// it is a directory. A directory at depth == maxDepth (relative to root) still
// has its files yielded but its subdirectories are pruned. Missing roots and
// unreadable subtrees yield nothing. maxDepth <= 0 selects DefaultMaxDepth.
func Walk(root string, maxDepth int) iter.Seq[string] {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return func(yield func(string) bool) {
		info, err := os.Stat(root)
		if err != nil {
			return
		}
		if !info.IsDir() {
			yield(root)
			return
		}
		base := filepath.Clean(root)
		_ = filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if d != nil && d.IsDir() && path != base {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				if path != base && Depth(base, path) > maxDepth {
					return fs.SkipDir
				}
				return nil
			}
			if d.Type()&fs.ModeSymlink != 0 {
				if target, statErr := os.Stat(path); statErr != nil || target.IsDir() {
					return nil
				}
			} else if !d.Type().IsRegular() {
				return nil
			}
			if !yield(path) {
				return fs.SkipAll
			}
			return nil
		})
	}
}

// Depth returns the number of path components of path relative to root.
func Depth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return len(strings.Split(rel, string(filepath.Separator)))
}
