package importer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"steamdrop/internal/classify"
	"steamdrop/internal/library"
)

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newFixture(t *testing.T) (*Importer, *library.Index, Dirs, string) {
	t.Helper()
	root := t.TempDir()
	dirs := Dirs{
		ScriptDir:   filepath.Join(root, "steam", "config", "stplug-in"),
		ManifestDir: filepath.Join(root, "steam", "depotcache"),
	}
	index := library.New(nil, nil)
	im := New(func() Dirs { return dirs }, index, 0, nil)
	return im, index, dirs, filepath.Join(root, "drop")
}

func TestImportCopiesByKind(t *testing.T) {
	im, index, dirs, drop := newFixture(t)
	writeFile(t, filepath.Join(drop, "game.lua"), "addappid(123456)")
	writeFile(t, filepath.Join(drop, "depots", "123456_1.manifest"), "m")
	writeFile(t, filepath.Join(drop, "readme.txt"), "ignored")

	result := im.Import(context.Background(), []string{drop})
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors %v", result.Errors)
	}
	if result.Count(classify.KindScript) != 1 || result.Count(classify.KindManifest) != 1 {
		t.Fatalf("unexpected copies %+v", result.Copied)
	}
	if _, err := os.Stat(filepath.Join(dirs.ScriptDir, "game.lua")); err != nil {
		t.Fatalf("script not copied: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dirs.ManifestDir, "123456_1.manifest")); err != nil {
		t.Fatalf("manifest not copied: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dirs.ScriptDir, "readme.txt")); !os.IsNotExist(err) {
		t.Fatal("other files must not be copied")
	}
	if entry, ok := index.Get("123456"); !ok || len(entry.ScriptPaths) != 1 {
		t.Fatalf("expected library rebuild, got %+v %v", entry, ok)
	}
}

func TestImportSingleFileAndOverwrite(t *testing.T) {
	im, _, dirs, drop := newFixture(t)
	src := writeFile(t, filepath.Join(drop, "game.lua"), "addappid(1)")
	writeFile(t, filepath.Join(dirs.ScriptDir, "game.lua"), "addappid(2)")

	result := im.Import(context.Background(), []string{src})
	if len(result.Copied) != 1 || result.Err() != nil {
		t.Fatalf("unexpected result %+v", result)
	}
	got, _ := os.ReadFile(filepath.Join(dirs.ScriptDir, "game.lua"))
	if string(got) != "addappid(1)" {
		t.Fatalf("expected overwrite, got %q", got)
	}
}

func TestImportIsAdditive(t *testing.T) {
	im, index, dirs, drop := newFixture(t)
	writeFile(t, filepath.Join(dirs.ScriptDir, "existing.lua"), "addappid(10)")
	src := writeFile(t, filepath.Join(drop, "new.lua"), "addappid(20)")

	im.Import(context.Background(), []string{src})
	if index.Len() != 2 {
		t.Fatalf("expected existing and new entries, got %d", index.Len())
	}
}

func TestImportRespectsDepth(t *testing.T) {
	im, index, _, drop := newFixture(t)
	deep := drop
	for range 7 {
		deep = filepath.Join(deep, "d")
	}
	writeFile(t, filepath.Join(deep, "deep.lua"), "addappid(77)")

	result := im.Import(context.Background(), []string{drop})
	if len(result.Copied) != 0 || index.Len() != 0 {
		t.Fatalf("expected files beyond max depth to be ignored, got %+v", result.Copied)
	}
}

func TestImportReportsMissingPaths(t *testing.T) {
	im, _, _, drop := newFixture(t)
	src := writeFile(t, filepath.Join(drop, "ok.lua"), "addappid(5)")
	missing := filepath.Join(drop, "gone.lua")

	result := im.Import(context.Background(), []string{missing, src})
	if len(result.Copied) != 1 {
		t.Fatalf("expected the valid file to be copied, got %+v", result.Copied)
	}
	if len(result.Errors) != 1 || result.Errors[0].Path != missing {
		t.Fatalf("unexpected errors %+v", result.Errors)
	}
	if err := result.Err(); err == nil || errors.Is(err, ErrNothingImported) {
		t.Fatalf("expected partial error, got %v", err)
	}
}

func TestImportCancelled(t *testing.T) {
	im, _, _, drop := newFixture(t)
	writeFile(t, filepath.Join(drop, "a.lua"), "addappid(1)")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result := im.Import(ctx, []string{drop})
	if len(result.Copied) != 0 {
		t.Fatalf("expected no copies, got %+v", result.Copied)
	}
	if !errors.Is(result.Err(), context.Canceled) || !errors.Is(result.Err(), ErrNothingImported) {
		t.Fatalf("expected cancellation error, got %v", result.Err())
	}
}

func TestImportSkipsFilesAlreadyInPlace(t *testing.T) {
	im, _, dirs, _ := newFixture(t)
	inPlace := writeFile(t, filepath.Join(dirs.ScriptDir, "game.lua"), "addappid(3)")

	result := im.Import(context.Background(), []string{inPlace})
	if len(result.Skipped) != 1 || len(result.Copied) != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
}
