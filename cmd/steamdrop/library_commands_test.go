package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"steamdrop/internal/testsupport"
)

func TestImportListShowRemove(t *testing.T) {
	env := setupCLITestEnv(t, map[string]string{"480": "Spacewar"})

	drop := filepath.Join(env.baseDir, "drop")
	testsupport.WriteScript(t, drop, "480.lua", "480")
	testsupport.WriteManifest(t, filepath.Join(drop, "depots"), "481_123456789.manifest")

	out, _, err := runCLI(t, []string{"import", drop}, env.configPath)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	requireContains(t, out, "Imported 1 scripts and 1 manifests")

	out, _, err = runCLI(t, []string{"resolve", "480"}, env.configPath)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	requireContains(t, out, "Spacewar")

	out, _, err = runCLI(t, []string{"list"}, env.configPath)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	requireContains(t, out, "Spacewar")
	requireContains(t, out, "480")

	out, _, err = runCLI(t, []string{"show", "480"}, env.configPath)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	requireContains(t, out, filepath.Join(env.cfg.ScriptDir(), "480.lua"))
	requireContains(t, out, "matched by addappid")
	requireContains(t, out, "(none)")

	out, _, err = runCLI(t, []string{"remove", "480"}, env.configPath)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	requireContains(t, out, "Removed 1 files for 480")
	if _, err := os.Stat(filepath.Join(env.cfg.ScriptDir(), "480.lua")); !os.IsNotExist(err) {
		t.Fatalf("expected script to be deleted, stat err=%v", err)
	}
	if _, err := os.Stat(filepath.Join(env.cfg.ManifestDir(), "481_123456789.manifest")); err != nil {
		t.Fatalf("manifest should survive a scripts-only remove: %v", err)
	}

	out, _, err = runCLI(t, []string{"list"}, env.configPath)
	if err != nil {
		t.Fatalf("list after remove: %v", err)
	}
	requireContains(t, out, "No apps installed")
}

func TestListJSONAndPending(t *testing.T) {
	env := setupCLITestEnv(t, map[string]string{"10": "Counter-Strike"})
	testsupport.WriteScript(t, env.cfg.ScriptDir(), "10.lua", "10")
	testsupport.WriteScript(t, env.cfg.ScriptDir(), "20.lua", "20")

	if _, _, err := runCLI(t, []string{"resolve", "10"}, env.configPath); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	out, _, err := runCLI(t, []string{"list", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("list --json: %v", err)
	}
	var entries []entryJSON
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode list output: %v\n%s", err, out)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %+v", entries)
	}

	out, _, err = runCLI(t, []string{"list", "--pending"}, env.configPath)
	if err != nil {
		t.Fatalf("list --pending: %v", err)
	}
	requireContains(t, out, "20")
	requireNotContains(t, out, "Counter-Strike")
}

func TestRemoveUnknownApp(t *testing.T) {
	env := setupCLITestEnv(t, nil)
	_, _, err := runCLI(t, []string{"remove", "999"}, env.configPath)
	if err == nil {
		t.Fatal("expected error for unknown app")
	}
	requireContains(t, err.Error(), "999")
}

func TestResolveRejectsNonNumericID(t *testing.T) {
	env := setupCLITestEnv(t, nil)
	if _, _, err := runCLI(t, []string{"resolve", "abc"}, env.configPath); err == nil {
		t.Fatal("expected error for non-numeric id")
	}
}

func TestRefreshAllResolvesPlaceholders(t *testing.T) {
	env := setupCLITestEnv(t, map[string]string{"1": "One", "2": "Two"})
	testsupport.WriteScript(t, env.cfg.ScriptDir(), "1.lua", "1")
	testsupport.WriteScript(t, env.cfg.ScriptDir(), "2.lua", "2")
	testsupport.WriteScript(t, env.cfg.ScriptDir(), "3.lua", "3")

	out, _, err := runCLI(t, []string{"refresh", "--all"}, env.configPath)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	requireContains(t, out, "Resolved 2 names; 1 still pending")
}
