package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// CatalogServer is a fake store appdetails endpoint.
type CatalogServer struct {
	*httptest.Server
	requests atomic.Int64
}

// Requests returns how many lookups the server has answered.
func (s *CatalogServer) Requests() int64 {
	return s.requests.Load()
}

// NewCatalogServer serves names for the given ids and success=false for any
// other id. The server is closed when the test ends.
func NewCatalogServer(t testing.TB, names map[string]string) *CatalogServer {
	t.Helper()

	srv := &CatalogServer{}
	srv.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		srv.requests.Add(1)
		id := r.URL.Query().Get("appids")
		entry := map[string]any{"success": false}
		if name, ok := names[id]; ok {
			entry = map[string]any{"success": true, "data": map[string]any{"name": name}}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{id: entry})
	}))
	t.Cleanup(srv.Close)
	return srv
}
