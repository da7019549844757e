package users

import (
	"fmt"

	"github.com/julianstephens/littlesteps/internal/auth"
	"github.com/julianstephens/littlesteps/internal/cli"
	"github.com/julianstephens/littlesteps/internal/keyring"
	"github.com/julianstephens/littlesteps/internal/logger"
)

type UserListCmd struct{}

func (c *UserListCmd) Run(ctx *cli.Context) error {
	app, err := ctx.Open()
	if err != nil {
		return err
	}

	ctx.Println("Users:")
	for _, u := range app.Auth.Users.Get() {
		var notes string
		if auth.IsDefaultAdmin(u.Username) {
			notes += " (admin)"
		}
		if u.IsLegacy() {
			notes += cli.DimStyle.Render(" (plaintext password, run `user migrate`)")
		}
		ctx.Printf("  %s%s\n", u.Username, notes)
	}
	return nil
}

// passwordOrPrompt returns the flag value or asks for a new password twice.
func passwordOrPrompt(password, username string) (string, error) {
	if password != "" {
		return password, nil
	}
	first, err := cli.PromptPassword("New password for " + username)
	if err != nil {
		return "", err
	}
	second, err := cli.PromptPassword("Repeat password")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", fmt.Errorf("passwords do not match")
	}
	return first, nil
}

type UserAddCmd struct {
	Username string `arg:"" help:"New username."`
	Password string `help:"Password for the new user (prompted when omitted)."`
}

func (c *UserAddCmd) Run(ctx *cli.Context) error {
	app, err := ctx.OpenSignedIn()
	if err != nil {
		return err
	}
	password, err := passwordOrPrompt(c.Password, c.Username)
	if err != nil {
		return err
	}
	if err := app.Auth.AddUser(c.Username, password); err != nil {
		return err
	}

	ctx.Printf("✓ Added user: %s\n", c.Username)
	return nil
}

type UserRemoveCmd struct {
	Username string `arg:"" help:"Username to remove."`
	Yes      bool   `short:"y" help:"Remove without asking."`
}

func (c *UserRemoveCmd) Run(ctx *cli.Context) error {
	app, err := ctx.OpenSignedIn()
	if err != nil {
		return err
	}
	ok, err := cli.Confirm(fmt.Sprintf("Remove user %q?", c.Username), c.Yes)
	if err != nil {
		return err
	}
	if !ok {
		ctx.Println("Remove cancelled.")
		return nil
	}
	if err := app.Auth.RemoveUser(c.Username); err != nil {
		return err
	}

	ctx.Printf("✓ Removed user: %s\n", c.Username)
	return nil
}

type UserPasswdCmd struct {
	Username string `arg:"" optional:"" help:"User whose password changes. Defaults to you."`
	Password string `help:"New password (prompted when omitted)."`
}

func (c *UserPasswdCmd) Run(ctx *cli.Context) error {
	app, err := ctx.OpenSignedIn()
	if err != nil {
		return err
	}
	username := c.Username
	if username == "" {
		username = app.Auth.Current()
	}
	password, err := passwordOrPrompt(c.Password, username)
	if err != nil {
		return err
	}
	if err := app.Auth.ChangePassword(username, password); err != nil {
		return err
	}

	// Keep the stored credential in step with the new password
	if username == ctx.Profile.Username && ctx.Password == "" {
		if err := keyring.SetPassword(keyring.Account(ctx.Profile.Server, username), password); err != nil {
			logger.Warn("Could not update stored password", "error", err)
		}
	}

	ctx.Printf("✓ Password changed for %s\n", username)
	return nil
}

type UserMigrateCmd struct{}

func (c *UserMigrateCmd) Run(ctx *cli.Context) error {
	app, err := ctx.OpenSignedIn()
	if err != nil {
		return err
	}
	n, err := app.Auth.MigrateLegacy()
	if err != nil {
		return err
	}
	if n == 0 {
		ctx.Println("No plaintext passwords found.")
		return nil
	}

	ctx.Printf("✓ Hashed %d plaintext password(s)\n", n)
	return nil
}
