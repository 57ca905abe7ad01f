package daemonrun

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"steamdrop/internal/testsupport"
)

func TestRunStopsOnContextCancel(t *testing.T) {
	srv := testsupport.NewCatalogServer(t, map[string]string{"10": "Counter-Strike"})
	cfg := testsupport.NewConfig(t, testsupport.WithCatalogURL(srv.URL))
	testsupport.WriteScript(t, cfg.ScriptDir(), "cs.lua", "10")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, cfg, Options{LogLevel: "error"}) }()

	pidPath := filepath.Join(cfg.Paths.StateDir, "steamdrop.pid")
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(pidPath); err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
	if _, err := os.Stat(pidPath); !os.IsNotExist(err) {
		t.Fatal("expected pid file to be removed")
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.LogDir, "steamdrop.log")); err != nil {
		t.Fatalf("expected log file: %v", err)
	}
}
