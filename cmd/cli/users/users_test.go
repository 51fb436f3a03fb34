package users

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/crucial707/mineops/internal/models"
)

// captureOutput helps capture stdout during command execution.
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

func TestListUsers_TableOutput(t *testing.T) {
	serve(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/users" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("sort") != "username:desc" {
			t.Errorf("sort not forwarded: %q", r.URL.RawQuery)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []models.User{
				{ID: 1, Username: "alice", Role: models.RoleAdmin},
				{ID: 2, Username: "bob", Role: models.RoleWorker},
			},
			"page": 1, "total_pages": 1, "total_items": 2,
			"warning": "showing last known users",
		})
	})

	cmd := listUsersCmd()
	_ = cmd.Flags().Set("sort", "username:desc")

	var err error
	out := captureOutput(t, func() {
		err = cmd.RunE(cmd, []string{})
	})
	if err != nil {
		t.Fatalf("RunE: %v", err)
	}

	if !strings.Contains(out, "alice") || !strings.Contains(out, "bob") {
		t.Fatalf("expected usernames in output, got: %s", out)
	}
	if !strings.Contains(out, "page 1 of 1 (2 items)") {
		t.Errorf("expected page caption, got: %s", out)
	}
	if !strings.Contains(out, "Warning: showing last known users") {
		t.Errorf("expected warning, got: %s", out)
	}
}

func TestListUsers_JSONOutput(t *testing.T) {
	serve(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []models.User{{ID: 1, Username: "alice"}},
			"page":  1,
		})
	})

	cmd := listUsersCmd()
	_ = cmd.Flags().Set("json", "true")

	out := captureOutput(t, func() {
		cmd.RunE(cmd, []string{})
	})

	if !strings.Contains(out, `"username": "alice"`) {
		t.Fatalf("expected JSON output, got: %s", out)
	}
}

func TestBulk_SendsAction(t *testing.T) {
	var got map[string]string
	serve(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/users/bulk-action" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"items":[]}`))
	})

	cmd := bulkCmd()
	captureOutput(t, func() {
		if err := cmd.RunE(cmd, []string{"deactivate"}); err != nil {
			t.Errorf("RunE: %v", err)
		}
	})
	if got["action"] != "deactivate" {
		t.Errorf("action: got %v", got)
	}
}

func TestDeleteUser_RejectsBadID(t *testing.T) {
	cmd := deleteUserCmd()
	if err := cmd.RunE(cmd, []string{"abc"}); err == nil {
		t.Error("expected error for non-numeric id")
	}
}

func TestAddUser_PrintsWarning(t *testing.T) {
	serve(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"items":   []models.User{{ID: 1, Username: "grace"}},
			"warning": "user list could not be refreshed",
		})
	})

	cmd := addUserCmd()
	_ = cmd.Flags().Set("username", "alice")
	out := captureOutput(t, func() {
		if err := cmd.RunE(cmd, []string{}); err != nil {
			t.Errorf("RunE: %v", err)
		}
	})
	if !strings.Contains(out, "User alice added. 1 users.") {
		t.Errorf("expected confirmation, got: %s", out)
	}
	if !strings.Contains(out, "Warning: user list could not be refreshed") {
		t.Errorf("expected warning, got: %s", out)
	}
}
