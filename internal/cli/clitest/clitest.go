// Package clitest runs CLI commands against an in-process server backed by a
// temporary JSON state file.
package clitest

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/littlesteps/internal/cli"
	"github.com/julianstephens/littlesteps/internal/config"
	"github.com/julianstephens/littlesteps/internal/constants"
	"github.com/julianstephens/littlesteps/internal/models"
	"github.com/julianstephens/littlesteps/internal/server"
	"github.com/julianstephens/littlesteps/internal/storage"
)

// Now is the clock every command sees: the reference baby is 10 months old.
var Now = time.Date(2025, 8, 30, 12, 0, 0, 0, time.UTC)

type Env struct {
	Dir       string
	StatePath string
	Store     storage.Provider
	Server    *httptest.Server
	Out       *bytes.Buffer

	profile  config.Profile
	password string
}

func New(t testing.TB) *Env {
	t.Helper()
	dir := t.TempDir()
	statePath := filepath.Join(dir, "state.json")

	store := storage.NewJSONStore(statePath, storage.Options{})
	if err := store.Init(); err != nil {
		t.Fatalf("store init: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	ts := httptest.NewServer(server.NewHandler(store))
	t.Cleanup(ts.Close)

	return &Env{
		Dir:       dir,
		StatePath: statePath,
		Store:     store,
		Server:    ts,
		Out:       &bytes.Buffer{},
		profile:   config.Profile{Server: ts.URL, Timezone: "UTC"},
	}
}

// SignIn makes later contexts use the default admin credentials.
func (e *Env) SignIn() {
	e.profile.Username = constants.DefaultAdminUsername
	e.password = constants.DefaultAdminPassword
}

// SignInAs makes later contexts use the given credentials.
func (e *Env) SignInAs(username, password string) {
	e.profile.Username = username
	e.password = password
}

// Context returns a fresh context for one command invocation and clears Out.
func (e *Env) Context() *cli.Context {
	e.Out.Reset()
	return &cli.Context{
		Ctx:         context.Background(),
		ProfilePath: filepath.Join(e.Dir, "config.toml"),
		Profile:     e.profile,
		Password:    e.password,
		Out:         e.Out,
		Clock:       func() time.Time { return Now },
	}
}

// Run executes one command the way main does: run, then wait for pushes.
func (e *Env) Run(t testing.TB, cmd interface{ Run(*cli.Context) error }) error {
	t.Helper()
	ctx := e.Context()
	err := cmd.Run(ctx)
	if closeErr := ctx.Close(); err == nil {
		err = closeErr
	}
	return err
}

// MustRun fails the test when the command fails and returns its output.
func (e *Env) MustRun(t testing.TB, cmd interface{ Run(*cli.Context) error }) string {
	t.Helper()
	if err := e.Run(t, cmd); err != nil {
		t.Fatalf("%T failed: %v\noutput:\n%s", cmd, err, e.Out.String())
	}
	return e.Out.String()
}

// Document reads the state the server holds.
func (e *Env) Document(t testing.TB) models.Document {
	t.Helper()
	doc, err := e.Store.Load(context.Background())
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	return doc
}

func (e *Env) State(t testing.TB) models.ServerState {
	t.Helper()
	st, err := e.Document(t).Decode()
	if err != nil {
		t.Fatalf("decode state: %v", err)
	}
	return st
}
