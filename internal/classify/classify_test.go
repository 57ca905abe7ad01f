package classify

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		want Kind
	}{
		{"/drop/123456.lua", KindScript},
		{"/drop/UPPER.LUA", KindScript},
		{"/drop/123_456.manifest", KindManifest},
		{"/drop/123_456.MFST", KindManifest},
		{"/drop/readme.txt", KindOther},
		{"/drop/lua", KindOther},
		{"/drop/archive.lua.bak", KindOther},
		{"", KindOther},
	}
	for _, tc := range tests {
		if got := Classify(tc.path); got != tc.want {
			t.Errorf("Classify(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func collect(root string, depth int) []string {
	var out []string
	for path := range Walk(root, depth) {
		out = append(out, path)
	}
	slices.Sort(out)
	return out
}

func TestWalkSingleFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "one.lua")
	writeFile(t, file)

	got := collect(file, DefaultMaxDepth)
	if len(got) != 1 || got[0] != file {
		t.Fatalf("expected only %q, got %v", file, got)
	}
}

func TestWalkMissingRootYieldsNothing(t *testing.T) {
	if got := collect(filepath.Join(t.TempDir(), "missing"), DefaultMaxDepth); len(got) != 0 {
		t.Fatalf("expected nothing, got %v", got)
	}
}

func TestWalkPrunesBelowMaxDepth(t *testing.T) {
	root := t.TempDir()
	// dirs[i] sits at depth i relative to root.
	dirs := []string{root}
	for i := 1; i <= 4; i++ {
		dirs = append(dirs, filepath.Join(dirs[i-1], "d"+string(rune('0'+i))))
	}
	for _, dir := range dirs {
		writeFile(t, filepath.Join(dir, "f.lua"))
	}

	got := collect(root, 2)
	want := []string{
		filepath.Join(dirs[0], "f.lua"),
		filepath.Join(dirs[1], "f.lua"),
		filepath.Join(dirs[2], "f.lua"),
	}
	slices.Sort(want)
	if !slices.Equal(got, want) {
		t.Fatalf("Walk depth 2:\n got %v\nwant %v", got, want)
	}
	for _, path := range got {
		if Depth(root, filepath.Dir(path)) > 2 {
			t.Fatalf("yielded %q from below max depth", path)
		}
	}
}

func TestWalkDefaultDepthReachesSixLevels(t *testing.T) {
	root := t.TempDir()
	deep := filepath.Join(root, "a", "b", "c", "d", "e", "f")
	tooDeep := filepath.Join(deep, "g")
	writeFile(t, filepath.Join(deep, "ok.lua"))
	writeFile(t, filepath.Join(tooDeep, "skip.lua"))

	got := collect(root, 0)
	if len(got) != 1 || !strings.HasSuffix(got[0], "ok.lua") {
		t.Fatalf("expected only the depth-6 file, got %v", got)
	}
}

func TestWalkStopsWhenConsumerStops(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a.lua", "b.lua", "c.lua"} {
		writeFile(t, filepath.Join(root, name))
	}
	count := 0
	for range Walk(root, DefaultMaxDepth) {
		count++
		break
	}
	if count != 1 {
		t.Fatalf("expected early stop after one file, got %d", count)
	}
}

func TestDepth(t *testing.T) {
	root := filepath.FromSlash("/r")
	if got := Depth(root, root); got != 0 {
		t.Fatalf("Depth(root) = %d", got)
	}
	if got := Depth(root, filepath.FromSlash("/r/a/b")); got != 2 {
		t.Fatalf("Depth(/r/a/b) = %d", got)
	}
}
