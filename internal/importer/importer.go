// Package importer copies dropped scripts and manifests into the Steam
// destination directories and refreshes the library afterwards.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"steamdrop/internal/classify"
	"steamdrop/internal/fileutil"
	"steamdrop/internal/library"
	"steamdrop/internal/logging"
)

// Dirs names the two destination directories.
type Dirs struct {
	ScriptDir   string
	ManifestDir string
}

// DirsFunc returns the current destinations. It is called on every import so
// configuration changes take effect without rebuilding the importer.
type DirsFunc func() Dirs

// CopiedFile records one successful copy.
type CopiedFile struct {
	Source string
	Dest   string
	Kind   classify.Kind
}

// Result is the outcome of one Import call. Copies that succeeded stay in
// place even when other files failed.
type Result struct {
	Copied  []CopiedFile
	Skipped []string
	Errors  []library.FileError
}

// Count returns the number of files copied for kind.
func (r Result) Count(kind classify.Kind) int {
	n := 0
	for _, c := range r.Copied {
		if c.Kind == kind {
			n++
		}
	}
	return n
}

// Importer is safe for concurrent use; copies are independent and the index
// serializes its own rebuilds.
type Importer struct {
	dirs     DirsFunc
	index    *library.Index
	maxDepth int
	logger   *slog.Logger
}

// New constructs an importer. maxDepth <= 0 selects classify.DefaultMaxDepth.
func New(dirs DirsFunc, index *library.Index, maxDepth int, logger *slog.Logger) *Importer {
	if maxDepth <= 0 {
		maxDepth = classify.DefaultMaxDepth
	}
	return &Importer{
		dirs:     dirs,
		index:    index,
		maxDepth: maxDepth,
		logger:   logging.NewComponentLogger(logger, "importer"),
	}
}

// Import walks each path, copies scripts and manifests into their
// destinations by base name (overwriting), and rebuilds the library. Per-file
// failures are collected and do not stop the import. Cancellation stops
// before the next file and is reported as an error entry.
func (im *Importer) Import(ctx context.Context, paths []string) Result {
	start := time.Now()
	dirs := im.dirs()
	var result Result

	defer func() {
		if im.index != nil {
			im.index.Rebuild(dirs.ScriptDir)
		}
		attrs := []logging.Attr{
			logging.Int("scripts", result.Count(classify.KindScript)),
			logging.Int("manifests", result.Count(classify.KindManifest)),
			logging.Int("skipped", len(result.Skipped)),
			logging.Int("errors", len(result.Errors)),
			logging.Duration("elapsed", time.Since(start)),
		}
		if len(result.Errors) > 0 {
			logging.WarnWithContext(im.logger, "import finished with errors", "import_partial",
				append(attrs,
					logging.String(logging.FieldErrorHint, "check the listed files and destination permissions"),
					logging.String(logging.FieldImpact, "some files were not copied"))...)
			return
		}
		im.logger.Info("import finished", logging.Args(attrs...)...)
	}()

	for _, root := range paths {
		root = strings.TrimSpace(root)
		if root == "" {
			continue
		}
		if _, err := os.Stat(root); err != nil {
			result.Errors = append(result.Errors, library.FileError{Path: root, Err: err})
			continue
		}
		for path := range classify.Walk(root, im.maxDepth) {
			if err := ctx.Err(); err != nil {
				result.Errors = append(result.Errors, library.FileError{Path: path, Err: err})
				return result
			}
			im.importFile(path, dirs, &result)
		}
	}
	return result
}

func (im *Importer) importFile(path string, dirs Dirs, result *Result) {
	kind := classify.Classify(path)
	var destDir string
	switch kind {
	case classify.KindScript:
		destDir = dirs.ScriptDir
	case classify.KindManifest:
		destDir = dirs.ManifestDir
	default:
		return
	}
	if strings.TrimSpace(destDir) == "" {
		result.Errors = append(result.Errors, library.FileError{
			Path: path,
			Err:  fmt.Errorf("no %s destination configured", kind),
		})
		return
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		result.Errors = append(result.Errors, library.FileError{Path: path, Err: fmt.Errorf("create destination: %w", err)})
		return
	}
	if fileutil.SameFile(path, filepath.Join(destDir, filepath.Base(path))) {
		result.Skipped = append(result.Skipped, path)
		return
	}

	dest, err := fileutil.CopyInto(path, destDir)
	if err != nil {
		result.Errors = append(result.Errors, library.FileError{Path: path, Err: err})
		return
	}
	im.logger.Debug("copied file",
		logging.String("kind", kind.String()),
		logging.String("source", path),
		logging.String("dest", dest))
	result.Copied = append(result.Copied, CopiedFile{Source: path, Dest: dest, Kind: kind})
}

// ErrNothingImported is returned by Result.Err when no file was copied and at
// least one failed.
var ErrNothingImported = errors.New("no files imported")

// Err summarizes the result as an error for callers that need one.
func (r Result) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Errors)+1)
	if len(r.Copied) == 0 {
		errs = append(errs, ErrNothingImported)
	}
	for _, fe := range r.Errors {
		errs = append(errs, fe)
	}
	return errors.Join(errs...)
}
