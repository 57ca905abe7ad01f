package shelf_test

import (
	"context"
	"testing"

	"steamdrop/internal/shelf"
	"steamdrop/internal/testsupport"
)

func TestOpenFromConfig(t *testing.T) {
	for name, opts := range map[string][]testsupport.ConfigOption{
		"json":   nil,
		"sqlite": {testsupport.WithSQLiteCache()},
	} {
		t.Run(name, func(t *testing.T) {
			srv := testsupport.NewCatalogServer(t, map[string]string{"220": "Half-Life 2"})
			cfg := testsupport.NewConfig(t, append(opts, testsupport.WithCatalogURL(srv.URL))...)
			testsupport.WriteScript(t, cfg.ScriptDir(), "hl2.lua", "220")

			s, err := shelf.Open(cfg, nil)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			if got := s.Placeholders(); len(got) != 1 {
				t.Fatalf("expected library loaded on open, got %v", got)
			}
			if updated := s.Refresher().RunOnce(context.Background()); updated != 1 {
				t.Fatalf("expected one refresh, got %d", updated)
			}
			if err := s.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}

			// Reopen: the name comes from the persisted cache.
			reopened, err := shelf.Open(cfg, nil)
			if err != nil {
				t.Fatalf("reopen: %v", err)
			}
			defer reopened.Close()
			if entry, _ := reopened.Get("220"); entry.Name != "Half-Life 2" {
				t.Fatalf("expected persisted name, got %q", entry.Name)
			}
			if srv.Requests() != 1 {
				t.Fatalf("expected a single catalog request, got %d", srv.Requests())
			}
		})
	}
}
