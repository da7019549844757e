package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/littlesteps/internal/auth"
	"github.com/julianstephens/littlesteps/internal/errors"
	"github.com/julianstephens/littlesteps/internal/models"
	"github.com/julianstephens/littlesteps/internal/storage"
)

func setupServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.json")
	store := storage.NewJSONStore(path, storage.Options{})
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(NewHandler(store))
	t.Cleanup(srv.Close)
	return srv, path
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return strings.TrimSpace(string(data))
}

func TestHealth(t *testing.T) {
	srv, _ := setupServer(t)
	resp := do(t, http.MethodGet, srv.URL+"/health", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/plain") {
		t.Errorf("content type = %q", resp.Header.Get("Content-Type"))
	}
	if body := readBody(t, resp); body != "ok" {
		t.Errorf("body = %q", body)
	}
}

func TestGetStateInitializesDocument(t *testing.T) {
	srv, path := setupServer(t)
	resp := do(t, http.MethodGet, srv.URL+"/api/state", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "no-store" {
		t.Errorf("Cache-Control = %q", cc)
	}

	doc, err := models.ParseDocument([]byte(readBody(t, resp)))
	if err != nil {
		t.Fatal(err)
	}
	users := doc.Users()
	if len(users) != 1 || users[0].Username != "eddie" {
		t.Errorf("users = %+v", users)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("state file not created: %v", err)
	}
}

func TestPutState(t *testing.T) {
	srv, _ := setupServer(t)
	body := `{"baby":{"name":"June"},"milestones":[{"id":"x"}],"theme":"dark"}`

	resp := do(t, http.MethodPut, srv.URL+"/api/state", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if got := readBody(t, resp); got != `{"ok":true}` {
		t.Errorf("body = %s", got)
	}

	resp = do(t, http.MethodGet, srv.URL+"/api/state", "")
	doc, err := models.ParseDocument([]byte(readBody(t, resp)))
	if err != nil {
		t.Fatal(err)
	}
	if doc["theme"] != "dark" || doc["baby"].(map[string]any)["name"] != "June" {
		t.Errorf("document = %v", doc)
	}
}

func TestPutStateRejectsInvalidWithoutWriting(t *testing.T) {
	srv, path := setupServer(t)
	do(t, http.MethodGet, srv.URL+"/api/state", "")
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		body string
	}{
		{"milestones not a sequence", `{"baby":{},"milestones":{}}`},
		{"missing baby", `{"milestones":[]}`},
		{"null baby", `{"baby":null,"milestones":[]}`},
		{"array document", `[]`},
		{"malformed json", `{"baby":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, http.MethodPut, srv.URL+"/api/state", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
			if got := readBody(t, resp); got != `{"error":"invalid"}` {
				t.Errorf("body = %s", got)
			}
		})
	}

	after, _ := os.ReadFile(path)
	if string(before) != string(after) {
		t.Error("rejected writes modified the state file")
	}
}

func TestPutStateTooLarge(t *testing.T) {
	srv, _ := setupServer(t)
	big := `{"baby":{},"milestones":[],"pad":"` + strings.Repeat("x", 1<<20) + `"}`
	resp := do(t, http.MethodPut, srv.URL+"/api/state", big)
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", resp.StatusCode)
	}
}

func TestLogin(t *testing.T) {
	srv, _ := setupServer(t)
	amy, err := auth.NewUserRecord("amy", "secret")
	if err != nil {
		t.Fatal(err)
	}
	state := map[string]any{
		"baby":       map[string]any{"name": "June"},
		"milestones": []any{},
		"users":      []any{amy, models.UserRecord{Username: "old", Password: "plain"}},
	}
	payload, _ := json.Marshal(state)
	if resp := do(t, http.MethodPut, srv.URL+"/api/state", string(payload)); resp.StatusCode != http.StatusOK {
		t.Fatalf("seed status = %d", resp.StatusCode)
	}

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"hashed user", `{"username":"amy","password":"secret"}`, http.StatusOK},
		{"legacy user", `{"username":"old","password":"plain"}`, http.StatusOK},
		{"default admin", `{"username":"eddie","password":"eddie"}`, http.StatusOK},
		{"wrong password", `{"username":"amy","password":"nope"}`, http.StatusUnauthorized},
		{"unknown user", `{"username":"zed","password":"secret"}`, http.StatusUnauthorized},
		{"case mismatch", `{"username":"Amy","password":"secret"}`, http.StatusUnauthorized},
		{"malformed body", `{`, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, http.MethodPost, srv.URL+"/api/login", tt.body)
			if resp.StatusCode != tt.wantCode {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantCode)
			}
			if cc := resp.Header.Get("Cache-Control"); cc != "no-store" {
				t.Errorf("Cache-Control = %q", cc)
			}
			want := `{"ok":false}`
			if tt.wantCode == http.StatusOK {
				want = `{"ok":true}`
			}
			if got := readBody(t, resp); got != want {
				t.Errorf("body = %s, want %s", got, want)
			}
		})
	}
}

func TestCORS(t *testing.T) {
	srv, _ := setupServer(t)

	resp := do(t, http.MethodOptions, srv.URL+"/api/state", "")
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", resp.StatusCode)
	}
	if origin := resp.Header.Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q", origin)
	}

	resp = do(t, http.MethodGet, srv.URL+"/health", "")
	if origin := resp.Header.Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Errorf("Access-Control-Allow-Origin on GET = %q", origin)
	}
}

type failingStore struct{}

func (failingStore) Init() error  { return nil }
func (failingStore) Close() error { return nil }
func (failingStore) Load(context.Context) (models.Document, error) {
	return nil, errors.ErrStorageUnavailable
}
func (failingStore) Save(context.Context, models.Document) error {
	return errors.ErrStorageUnavailable
}
func (failingStore) GetConfigPath() string { return "failing" }

func TestStorageFailure(t *testing.T) {
	srv := httptest.NewServer(NewHandler(failingStore{}))
	defer srv.Close()

	resp := do(t, http.MethodGet, srv.URL+"/api/state", "")
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("GET status = %d, want 500", resp.StatusCode)
	}
	resp = do(t, http.MethodPut, srv.URL+"/api/state", `{"baby":{},"milestones":[]}`)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("PUT status = %d, want 500", resp.StatusCode)
	}
}
