package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/julianstephens/littlesteps/internal/api"
	"github.com/julianstephens/littlesteps/internal/config"
	"github.com/julianstephens/littlesteps/internal/errors"
	"github.com/julianstephens/littlesteps/internal/keyring"
	"github.com/julianstephens/littlesteps/internal/stores"
)

// ErrNotSignedIn is returned by commands that change the household when no
// credentials are stored for the profile.
var ErrNotSignedIn = errors.New("not signed in, run `littlesteps login` first")

type Context struct {
	Ctx         context.Context
	ProfilePath string
	Profile     config.Profile
	// Password overrides the keyring, for hosts without one.
	Password string
	Out      io.Writer
	Clock    func() time.Time

	app *stores.App
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.out(), format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.out(), args...)
}

// Context is the command context, Background when unset.
func (c *Context) Context() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}

// Client talks to the server named by the profile.
func (c *Context) Client() *api.HTTPClient {
	return api.NewHTTPClient(c.Profile.Server, nil)
}

// Open builds the client application and hydrates it from the server. When
// the server cannot be reached the compiled-in defaults are shown.
func (c *Context) Open() (*stores.App, error) {
	if c.app != nil {
		return c.app, nil
	}
	loc, err := c.Profile.Location()
	if err != nil {
		return nil, err
	}
	app := stores.NewApp(c.Context(), stores.Options{
		Client:   c.Client(),
		Clock:    c.Clock,
		Location: loc,
	})
	if err := app.Hydrate(c.Context()); err != nil {
		c.Printf("⚠ Server unreachable at %s, showing defaults\n", c.Profile.Server)
	}
	app.Syncer.Wait()
	// Pushes made while hydrating are retried by the next client
	_ = app.Syncer.Err()
	c.app = app
	return app, nil
}

// OpenSignedIn opens the application and signs in with the stored credentials.
func (c *Context) OpenSignedIn() (*stores.App, error) {
	app, err := c.Open()
	if err != nil {
		return nil, err
	}
	if app.Auth.CanEdit() {
		return app, nil
	}

	username := c.Profile.Username
	if username == "" {
		return nil, ErrNotSignedIn
	}
	password, err := c.storedPassword()
	if err != nil {
		return nil, err
	}
	ok, err := app.Auth.Login(c.Context(), username, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("stored credentials for %s were rejected: %w", username, errors.ErrUnauthorized)
	}
	app.Syncer.Wait()
	return app, nil
}

func (c *Context) storedPassword() (string, error) {
	if c.Password != "" {
		return c.Password, nil
	}
	password, err := keyring.GetPassword(keyring.Account(c.Profile.Server, c.Profile.Username))
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotSignedIn
	}
	return password, err
}

// Close waits for pending pushes. A push that failed means the change never
// reached the server.
func (c *Context) Close() error {
	if c.app == nil {
		return nil
	}
	if err := c.app.Close(); err != nil {
		return fmt.Errorf("changes were not saved to %s: %w", c.Profile.Server, err)
	}
	return nil
}

// SaveProfile persists the profile to ProfilePath.
func (c *Context) SaveProfile() error {
	return config.SaveProfile(c.ProfilePath, c.Profile)
}
