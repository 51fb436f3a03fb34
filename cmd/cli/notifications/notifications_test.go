package notifications

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/crucial707/mineops/internal/models"
)

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	return buf.String()
}

func serve(t *testing.T, h http.HandlerFunc) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	t.Setenv("MINEOPS_API_URL", srv.URL)
	t.Setenv("MINEOPS_TOKEN_FILE", filepath.Join(t.TempDir(), "token"))
}

func TestList_HumanizedTimes(t *testing.T) {
	serve(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("filter"); got != "unread" {
			t.Errorf("filter: got %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"items": []models.Notification{
				{ID: "n1", Message: "Low disk space on server.", Timestamp: time.Now().Add(-2 * time.Hour)},
			},
			"page": 1, "total_pages": 1, "total_items": 1, "unread": 1,
		})
	})

	cmd := listCmd()
	cmd.Flags().Set("filter", "unread")
	out := captureOutput(t, func() {
		if err := cmd.RunE(cmd, nil); err != nil {
			t.Errorf("RunE: %v", err)
		}
	})

	for _, want := range []string{"Low disk space on server.", "2 hours ago", "1 unread."} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestList_Empty(t *testing.T) {
	serve(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[],"page":1,"total_items":0,"info":"no notifications"}`))
	})

	cmd := listCmd()
	out := captureOutput(t, func() { cmd.RunE(cmd, nil) })
	if !strings.Contains(out, "No notifications.") {
		t.Errorf("got %q", out)
	}
}

func TestMarkRead(t *testing.T) {
	serve(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/notifications/n1/read" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"unread":2,"total":5}`))
	})

	cmd := markCmd("read", "")
	out := captureOutput(t, func() { cmd.RunE(cmd, []string{"n1"}) })
	if !strings.Contains(out, "2 of 5 unread") {
		t.Errorf("got %q", out)
	}
}
