package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/julianstephens/littlesteps/internal/constants"
	"github.com/julianstephens/littlesteps/internal/errors"
	"github.com/julianstephens/littlesteps/internal/models"
)

func readFileDoc(t *testing.T, path string) models.Document {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	doc, err := models.ParseDocument(data)
	if err != nil {
		t.Fatalf("failed to parse %s: %v", path, err)
	}
	return doc
}

func hasDefaultAdmin(doc models.Document) bool {
	users, _ := doc[models.KeyUsers].([]any)
	for _, u := range users {
		if m, ok := u.(map[string]any); ok && m["username"] == constants.DefaultAdminUsername {
			return true
		}
	}
	return false
}

func TestJSONStoreLoadInitializesMissingState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "state.json")
	store := NewJSONStore(path, Options{})

	doc, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !hasDefaultAdmin(doc) {
		t.Error("loaded document lacks the default admin")
	}

	// The normalized default is persisted
	persisted := readFileDoc(t, path)
	if !hasDefaultAdmin(persisted) {
		t.Error("persisted document lacks the default admin")
	}
}

func TestJSONStoreLoadSelfHealsCorruptState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{truncated"), 0600); err != nil {
		t.Fatal(err)
	}

	store := NewJSONStore(path, Options{})
	doc, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, ok := doc[models.KeyBaby].(map[string]any); !ok {
		t.Error("reinitialized document has no baby")
	}
	readFileDoc(t, path)
}

func TestJSONStoreLoadUsesCustomDefault(t *testing.T) {
	dir := t.TempDir()
	defaultPath := filepath.Join(dir, "default-state.json")
	if err := os.WriteFile(defaultPath, []byte(`{"baby":{"name":"June"},"milestones":[]}`), 0600); err != nil {
		t.Fatal(err)
	}

	store := NewJSONStore(filepath.Join(dir, "state.json"), Options{DefaultStatePath: defaultPath})
	doc, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if doc[models.KeyBaby].(map[string]any)["name"] != "June" {
		t.Errorf("baby = %v, want June from custom default", doc[models.KeyBaby])
	}
}

func TestJSONStoreLoadNormalizesWithoutRewriting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	raw := `{"baby":{"name":"June"},"milestones":[],"chores":[{"id":"c1"}]}`
	if err := os.WriteFile(path, []byte(raw), 0600); err != nil {
		t.Fatal(err)
	}

	store := NewJSONStore(path, Options{})
	doc, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	chore := doc[models.KeyChores].([]any)[0].(map[string]any)
	if chore["category"] != "bio" {
		t.Errorf("chore category = %v, want bio", chore["category"])
	}

	data, _ := os.ReadFile(path)
	if string(data) != raw {
		t.Errorf("plain read rewrote the file: %s", data)
	}
}

func TestJSONStoreSavePersistsAsIs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store := NewJSONStore(path, Options{})
	ctx := context.Background()

	doc := models.Document{
		"baby":       map[string]any{"name": "June"},
		"milestones": []any{},
		"chores":     []any{map[string]any{"id": "c1"}},
	}
	if err := store.Save(ctx, doc); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	persisted := readFileDoc(t, path)
	if _, ok := persisted[models.KeyUsers]; ok {
		t.Error("Save normalized the document (users added)")
	}
	chore := persisted[models.KeyChores].([]any)[0].(map[string]any)
	if _, ok := chore["category"]; ok {
		t.Error("Save normalized the document (chore category added)")
	}
}

func TestJSONStoreSaveRejectsInvalidWithoutWriting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store := NewJSONStore(path, Options{})
	ctx := context.Background()

	if _, err := store.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	before, _ := os.ReadFile(path)

	invalid := []models.Document{
		{"baby": map[string]any{}, "milestones": map[string]any{}},
		{"milestones": []any{}},
		{"baby": nil, "milestones": []any{}},
	}
	for _, doc := range invalid {
		err := store.Save(ctx, doc)
		if !errors.Is(err, errors.ErrInvalidDocument) {
			t.Errorf("Save(%v) error = %v, want ErrInvalidDocument", doc, err)
		}
	}

	after, _ := os.ReadFile(path)
	if string(before) != string(after) {
		t.Error("rejected save modified the persisted document")
	}
}

func TestJSONStoreSaveTakesBackups(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	store := NewJSONStore(path, Options{Backups: true})
	ctx := context.Background()

	if _, err := store.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	doc := models.Document{"baby": map[string]any{"name": "June"}, "milestones": []any{}}
	if err := store.Save(ctx, doc); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	matches, _ := filepath.Glob(filepath.Join(dir, "backups", "state-*.json"))
	if len(matches) != 1 {
		t.Fatalf("expected 1 backup, got %d", len(matches))
	}
	backup := readFileDoc(t, matches[0])
	if backup[models.KeyBaby].(map[string]any)["name"] != "Everly" {
		t.Error("backup does not hold the previous document")
	}
}

func TestJSONStoreLoadPropagatesStorageErrors(t *testing.T) {
	// A directory where the state file should be cannot be read
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.Mkdir(path, 0700); err != nil {
		t.Fatal(err)
	}

	store := NewJSONStore(path, Options{})
	_, err := store.Load(context.Background())
	if !errors.Is(err, errors.ErrStorageUnavailable) {
		t.Errorf("Load() error = %v, want ErrStorageUnavailable", err)
	}
}

func TestJSONStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store := NewJSONStore(path, Options{})
	ctx := context.Background()

	doc, err := store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	doc[models.KeyMilestones] = []any{map[string]any{"id": "roll-over", "level": "didIt"}}
	doc["theme"] = "dark"
	if err := store.Save(ctx, doc); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	again, err := store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	got, _ := json.Marshal(again)
	want, _ := json.Marshal(doc)
	if string(got) != string(want) {
		t.Errorf("round trip mismatch:\n got %s\nwant %s", got, want)
	}
}

func TestOpenSelectsBackend(t *testing.T) {
	tests := []struct {
		location string
		want     string
	}{
		{"/data/state.json", "*storage.JSONStore"},
		{"/data/STATE.JSON", "*storage.JSONStore"},
		{"/data/state.db", "*storage.SQLiteStore"},
		{"postgres://db/littlesteps", "*storage.PostgresStore"},
		{"postgresql://db/littlesteps", "*storage.PostgresStore"},
	}
	for _, tt := range tests {
		got := typeName(Open(tt.location, Options{}))
		if got != tt.want {
			t.Errorf("Open(%q) = %s, want %s", tt.location, got, tt.want)
		}
	}
}

func typeName(p Provider) string {
	switch p.(type) {
	case *JSONStore:
		return "*storage.JSONStore"
	case *SQLiteStore:
		return "*storage.SQLiteStore"
	case *PostgresStore:
		return "*storage.PostgresStore"
	}
	return "unknown"
}
