package notifications_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"steamdrop/internal/config"
	"steamdrop/internal/notifications"
)

type captured struct {
	title    string
	body     string
	tags     string
	priority string
}

func newNtfyServer(t *testing.T, status int) (*httptest.Server, func() []captured) {
	t.Helper()
	var mu sync.Mutex
	var got []captured
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		got = append(got, captured{
			title:    r.Header.Get("Title"),
			body:     string(body),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
		})
		mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []captured {
		mu.Lock()
		defer mu.Unlock()
		return append([]captured(nil), got...)
	}
}

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	svc := notifications.NewService(&cfg)
	if err := svc.Publish(context.Background(), notifications.EventImportCompleted, notifications.Payload{"scripts": 1}); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
	if err := notifications.NewService(nil).Publish(context.Background(), notifications.EventTest, nil); err != nil {
		t.Fatalf("nil config should yield noop, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		event          notifications.Event
		payload        notifications.Payload
		expectTitle    string
		expectBody     string
		expectTags     string
		expectPriority string
	}{
		{
			name:        "import completed",
			event:       notifications.EventImportCompleted,
			payload:     notifications.Payload{"scripts": 2, "manifests": 3, "source": "/inbox/pack"},
			expectTitle: "steamdrop - Imported",
			expectBody:  "Imported 2 scripts and 3 manifests\nFrom: /inbox/pack",
			expectTags:  "steamdrop,import,completed",
		},
		{
			name:           "import failed",
			event:          notifications.EventImportFailed,
			payload:        notifications.Payload{"failed": 1, "detail": "permission denied"},
			expectTitle:    "steamdrop - Import Failed",
			expectBody:     "1 files could not be imported\npermission denied",
			expectTags:     "steamdrop,import,failed",
			expectPriority: "high",
		},
		{
			name:           "error",
			event:          notifications.EventError,
			payload:        notifications.Payload{"context": "inbox watcher", "error": "no such directory"},
			expectTitle:    "steamdrop - Error",
			expectBody:     "Error with inbox watcher: no such directory",
			expectTags:     "steamdrop,error,alert",
			expectPriority: "high",
		},
		{
			name:           "test",
			event:          notifications.EventTest,
			expectTitle:    "steamdrop - Test",
			expectBody:     "Notification system test",
			expectTags:     "steamdrop,test",
			expectPriority: "low",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv, got := newNtfyServer(t, http.StatusOK)
			cfg := config.Default()
			cfg.Notify.NtfyTopic = srv.URL
			svc := notifications.NewService(&cfg)

			if err := svc.Publish(context.Background(), tc.event, tc.payload); err != nil {
				t.Fatalf("Publish: %v", err)
			}
			msgs := got()
			if len(msgs) != 1 {
				t.Fatalf("expected 1 request, got %d", len(msgs))
			}
			msg := msgs[0]
			if msg.title != tc.expectTitle {
				t.Errorf("title = %q, want %q", msg.title, tc.expectTitle)
			}
			if msg.body != tc.expectBody {
				t.Errorf("body = %q, want %q", msg.body, tc.expectBody)
			}
			if msg.tags != tc.expectTags {
				t.Errorf("tags = %q, want %q", msg.tags, tc.expectTags)
			}
			if msg.priority != tc.expectPriority {
				t.Errorf("priority = %q, want %q", msg.priority, tc.expectPriority)
			}
		})
	}
}

func TestNtfyServiceReportsHTTPErrors(t *testing.T) {
	srv, _ := newNtfyServer(t, http.StatusForbidden)
	cfg := config.Default()
	cfg.Notify.NtfyTopic = srv.URL
	err := notifications.NewService(&cfg).Publish(context.Background(), notifications.EventTest, nil)
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected 403 error, got %v", err)
	}
}

func TestNtfyServiceRejectsUnknownEvent(t *testing.T) {
	srv, got := newNtfyServer(t, http.StatusOK)
	cfg := config.Default()
	cfg.Notify.NtfyTopic = srv.URL
	if err := notifications.NewService(&cfg).Publish(context.Background(), "bogus", nil); err == nil {
		t.Fatal("expected error for unknown event")
	}
	if len(got()) != 0 {
		t.Fatal("unknown event should not reach the server")
	}
}
