package backups

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/littlesteps/internal/backup"
	"github.com/julianstephens/littlesteps/internal/cli/clitest"
)

func TestBackupCreateListRestore(t *testing.T) {
	env := clitest.New(t)
	// Materialize the state file with the default document
	original := env.Document(t)

	out := env.MustRun(t, &BackupCreateCmd{State: env.StatePath})
	if !strings.Contains(out, "✓ Backup created: state-") {
		t.Fatalf("create output = %q", out)
	}

	out = env.MustRun(t, &BackupListCmd{State: env.StatePath})
	if !strings.Contains(out, "Available backups (1 total") {
		t.Errorf("list output:\n%s", out)
	}

	backups, err := backup.NewManager(env.StatePath).ListBackups()
	if err != nil || len(backups) != 1 {
		t.Fatalf("ListBackups() = %v, %v", backups, err)
	}

	changed := original.Clone()
	changed["baby"] = map[string]any{"name": "June", "birthDateIso": "2025-01-01T00:00:00"}
	if err := env.Store.Save(context.Background(), changed); err != nil {
		t.Fatal(err)
	}

	out = env.MustRun(t, &BackupRestoreCmd{BackupFile: filepath.Base(backups[0].Path), State: env.StatePath, Yes: true})
	if !strings.Contains(out, "✓ State restored successfully!") {
		t.Errorf("restore output:\n%s", out)
	}
	if got := env.State(t).Baby.Name; got != "Everly" {
		t.Errorf("baby after restore = %q, want Everly", got)
	}
}

func TestBackupListEmpty(t *testing.T) {
	env := clitest.New(t)

	out := env.MustRun(t, &BackupListCmd{State: env.StatePath})
	if !strings.Contains(out, "No backups found.") {
		t.Errorf("list output = %q", out)
	}
}

func TestBackupRejectsPostgres(t *testing.T) {
	env := clitest.New(t)

	if err := env.Run(t, &BackupCreateCmd{State: "postgres://db/littlesteps"}); err == nil {
		t.Error("backup of a postgres location should fail")
	}
}

func TestBackupRestoreMissingFile(t *testing.T) {
	env := clitest.New(t)
	if err := os.WriteFile(env.StatePath, []byte(`{"baby":{},"milestones":[]}`), 0644); err != nil {
		t.Fatal(err)
	}

	err := env.Run(t, &BackupRestoreCmd{BackupFile: "state-19700101-000000.json", State: env.StatePath, Yes: true})
	if err == nil || !strings.Contains(err.Error(), "backup file not found") {
		t.Errorf("restore of missing backup error = %v", err)
	}
}
