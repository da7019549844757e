package session

import (
	"fmt"
	"strings"

	"github.com/julianstephens/littlesteps/internal/cli"
	"github.com/julianstephens/littlesteps/internal/errors"
	"github.com/julianstephens/littlesteps/internal/keyring"
	"github.com/julianstephens/littlesteps/internal/logger"
)

type LoginCmd struct {
	Username string `arg:"" optional:"" help:"Household username (prompted when omitted)."`
	Server   string `help:"Server URL to sign in to. Saved to the profile."`
}

func (c *LoginCmd) Run(ctx *cli.Context) error {
	if c.Server != "" {
		ctx.Profile.Server = strings.TrimRight(c.Server, "/")
	}

	username := strings.TrimSpace(c.Username)
	if username == "" {
		var err error
		if username, err = cli.PromptInput("Username"); err != nil {
			return err
		}
		username = strings.TrimSpace(username)
	}
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}

	password := ctx.Password
	if password == "" {
		var err error
		if password, err = cli.PromptPassword("Password for " + username); err != nil {
			return err
		}
	}

	app, err := ctx.Open()
	if err != nil {
		return err
	}
	ok, err := app.Auth.Login(ctx.Context(), username, password)
	if err != nil {
		return err
	}
	if !ok {
		return errors.ErrUnauthorized
	}

	ctx.Profile.Username = username
	if err := ctx.SaveProfile(); err != nil {
		return err
	}

	if err := keyring.SetPassword(keyring.Account(ctx.Profile.Server, username), password); err != nil {
		logger.Warn("Could not store password", "error", err)
		if ctx.Password == "" {
			ctx.Println("⚠ Password not stored in the OS keyring. Set LITTLESTEPS_PASSWORD to make changes.")
		}
	}

	ctx.Printf("✓ Signed in as %s on %s\n", username, ctx.Profile.Server)
	return nil
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx *cli.Context) error {
	username := ctx.Profile.Username
	if username == "" {
		ctx.Println("Not signed in.")
		return nil
	}

	err := keyring.DeletePassword(keyring.Account(ctx.Profile.Server, username))
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	ctx.Profile.Username = ""
	if err := ctx.SaveProfile(); err != nil {
		return err
	}

	ctx.Printf("✓ Signed out %s\n", username)
	return nil
}

type WhoamiCmd struct{}

func (c *WhoamiCmd) Run(ctx *cli.Context) error {
	ctx.Printf("Server: %s\n", ctx.Profile.Server)
	if ctx.Profile.Username == "" {
		ctx.Println("Not signed in (read-only).")
		return nil
	}
	ctx.Printf("Signed in as: %s\n", ctx.Profile.Username)
	return nil
}
