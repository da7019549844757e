package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/julianstephens/littlesteps/internal/constants"
)

func TestLoadServerDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "LITTLESTEPS_STATE", "LITTLESTEPS_DEFAULT_STATE", "LITTLESTEPS_BACKUPS", "LITTLESTEPS_DEBUG", "LITTLESTEPS_LOG_DIR"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if cfg.Port != constants.DefaultPort || cfg.Addr() != ":3001" {
		t.Errorf("port = %d, addr = %s", cfg.Port, cfg.Addr())
	}
	if cfg.State != constants.DefaultStatePath {
		t.Errorf("state = %s", cfg.State)
	}
	if !cfg.Backups || cfg.Debug {
		t.Errorf("backups = %v, debug = %v", cfg.Backups, cfg.Debug)
	}
}

func TestLoadServerFromEnv(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("LITTLESTEPS_STATE", "/tmp/state.db")
	t.Setenv("LITTLESTEPS_DEFAULT_STATE", "/etc/littlesteps/default.json")
	t.Setenv("LITTLESTEPS_BACKUPS", "false")
	t.Setenv("LITTLESTEPS_DEBUG", "true")

	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if cfg.Addr() != ":8080" || cfg.State != "/tmp/state.db" || !cfg.Debug {
		t.Errorf("cfg = %+v", cfg)
	}
	opts := cfg.StoreOptions()
	if opts.Backups || opts.DefaultStatePath != "/etc/littlesteps/default.json" {
		t.Errorf("store options = %+v", opts)
	}
}

func TestLoadServerRejectsBadPort(t *testing.T) {
	tests := []string{"0", "70000", "abc"}
	for _, port := range tests {
		t.Setenv("PORT", port)
		if _, err := LoadServer(); err == nil {
			t.Errorf("PORT=%s accepted", port)
		}
	}
}

func TestLoadProfileMissingFile(t *testing.T) {
	profile, err := LoadProfile(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("LoadProfile() error = %v", err)
	}
	if profile != DefaultProfile() {
		t.Errorf("profile = %+v", profile)
	}
}

func TestSaveAndLoadProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	want := Profile{Server: "http://nas.local:3001", Username: "amy", Timezone: "America/New_York"}

	if err := SaveProfile(path, want); err != nil {
		t.Fatalf("SaveProfile() error = %v", err)
	}
	got, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile() error = %v", err)
	}
	if got != want {
		t.Errorf("LoadProfile() = %+v, want %+v", got, want)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("profile mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestLoadProfileErrors(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]string{
		"malformed.toml": "server = ",
		"badzone.toml":   "server = \"http://x\"\ntimezone = \"Mars/Olympus\"\n",
	}
	for name, content := range tests {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadProfile(path); err == nil {
			t.Errorf("LoadProfile(%s) should fail", name)
		}
	}
}

func TestLoadProfileFillsServer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("username = \"amy\"\n"), 0600); err != nil {
		t.Fatal(err)
	}
	profile, err := LoadProfile(path)
	if err != nil {
		t.Fatal(err)
	}
	if profile.Server != constants.DefaultServerURL || profile.Username != "amy" {
		t.Errorf("profile = %+v", profile)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err := ExpandPath("~/.config/littlesteps/config.toml")
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(home, ".config/littlesteps/config.toml") {
		t.Errorf("ExpandPath() = %s", got)
	}
	if got, _ := ExpandPath("/etc/x"); got != "/etc/x" {
		t.Errorf("ExpandPath(abs) = %s", got)
	}
}
