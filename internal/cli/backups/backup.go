package backups

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/littlesteps/internal/backup"
	"github.com/julianstephens/littlesteps/internal/cli"
)

// stateFile resolves the local state file the server writes. Backups only
// exist for file-backed stores.
func stateFile(path string) (string, error) {
	if strings.HasPrefix(path, "postgres://") || strings.HasPrefix(path, "postgresql://") {
		return "", fmt.Errorf("backups are only available for JSON and SQLite state files")
	}
	return path, nil
}

type BackupCreateCmd struct {
	State string `help:"State file the server uses." env:"LITTLESTEPS_STATE" default:"/data/state.json"`
}

func (c *BackupCreateCmd) Run(ctx *cli.Context) error {
	path, err := stateFile(c.State)
	if err != nil {
		return err
	}
	mgr := backup.NewManager(path)
	backupPath, err := mgr.CreateBackup()
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}

	ctx.Printf("✓ Backup created: %s\n", filepath.Base(backupPath))
	return nil
}

type BackupListCmd struct {
	State string `help:"State file the server uses." env:"LITTLESTEPS_STATE" default:"/data/state.json"`
}

func (c *BackupListCmd) Run(ctx *cli.Context) error {
	path, err := stateFile(c.State)
	if err != nil {
		return err
	}
	mgr := backup.NewManager(path)
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if len(backups) == 0 {
		ctx.Println("No backups found.")
		ctx.Printf("Backups are stored in: %s\n", mgr.GetBackupDir())
		return nil
	}

	ctx.Printf("Available backups (%d total, keeping most recent %d):\n\n", len(backups), backup.MaxBackups)
	for _, b := range backups {
		sizeKB := float64(b.Size) / 1024.0
		timestamp := b.Timestamp.Format("2006-01-02 15:04:05")
		ctx.Printf("  %s  %s  (%.1f KB)\n", timestamp, filepath.Base(b.Path), sizeKB)
	}
	ctx.Printf("\nBackup directory: %s\n", mgr.GetBackupDir())

	return nil
}

type BackupRestoreCmd struct {
	BackupFile string `arg:"" help:"Path or filename of the backup to restore."`
	State      string `help:"State file the server uses." env:"LITTLESTEPS_STATE" default:"/data/state.json"`
	Yes        bool   `short:"y" help:"Restore without asking."`
}

func (c *BackupRestoreCmd) Run(ctx *cli.Context) error {
	path, err := stateFile(c.State)
	if err != nil {
		return err
	}
	mgr := backup.NewManager(path)

	backupPath, err := resolveBackup(mgr, c.BackupFile)
	if err != nil {
		return err
	}

	ctx.Println("⚠️  WARNING: This will replace the household state with the backup.")
	ctx.Println("⚠️  IMPORTANT: Stop the server before restoring; it does not reload the file.")
	ctx.Println("A backup of the current state will be created before restoring.")
	ctx.Printf("\nRestore from: %s\n", backupPath)

	ok, err := cli.Confirm("Continue?", c.Yes)
	if err != nil {
		return err
	}
	if !ok {
		ctx.Println("Restore cancelled.")
		return nil
	}

	if err := mgr.RestoreBackup(backupPath); err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}

	ctx.Println("✓ State restored successfully!")
	ctx.Println("⚠️  Remember to restart the server.")
	return nil
}

// resolveBackup accepts an absolute path, a path relative to the working
// directory, or a file name inside the backup directory.
func resolveBackup(mgr *backup.Manager, name string) (string, error) {
	if filepath.IsAbs(name) {
		if _, err := os.Stat(name); os.IsNotExist(err) {
			return "", fmt.Errorf("backup file not found: %s", name)
		}
		return name, nil
	}
	if _, err := os.Stat(name); err == nil {
		absPath, err := filepath.Abs(name)
		if err != nil {
			return "", fmt.Errorf("failed to resolve backup path: %w", err)
		}
		return absPath, nil
	}
	possiblePath := filepath.Join(mgr.GetBackupDir(), name)
	if _, err := os.Stat(possiblePath); err == nil {
		return possiblePath, nil
	}
	return "", fmt.Errorf("backup file not found: tried current directory and %s", mgr.GetBackupDir())
}
