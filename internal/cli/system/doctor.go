package system

import (
	"fmt"
	"time"

	"github.com/julianstephens/littlesteps/internal/backup"
	"github.com/julianstephens/littlesteps/internal/cli"
	"github.com/julianstephens/littlesteps/internal/errors"
	"github.com/julianstephens/littlesteps/internal/keyring"
	"github.com/julianstephens/littlesteps/internal/models"
	"github.com/julianstephens/littlesteps/internal/validation"
)

type DoctorCmd struct {
	State string `help:"Also check backups next to this local state file."`
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false

	// Check 1: Profile timezone
	loc, err := ctx.Profile.Location()
	if err != nil {
		ctx.Printf("❌ Profile timezone: FAIL\n")
		ctx.Printf("   Error: %v\n", err)
		hasError = true
		loc = time.Local
	} else {
		ctx.Printf("✓ Profile timezone: OK (%s)\n", loc)
	}

	// Check 2: Server reachable
	doc, err := ctx.Client().FetchState(ctx.Context())
	serverReachable := err == nil
	if err != nil {
		ctx.Printf("❌ Server reachable: FAIL\n")
		ctx.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		ctx.Printf("✓ Server reachable: OK (%s)\n", ctx.Profile.Server)
	}

	// Check 3: Document validation (only if the server is reachable)
	if serverReachable {
		if checkDocument(ctx, doc, loc) {
			hasError = true
		}
	} else {
		ctx.Printf("⊘ Data validation: SKIPPED (server not reachable)\n")
	}

	// Check 4: Keyring (warning only)
	if keyring.IsAvailable() {
		ctx.Printf("✓ OS keyring: OK\n")
	} else {
		ctx.Printf("⚠ OS keyring: WARNING\n")
		ctx.Printf("   Keyring unavailable; set LITTLESTEPS_PASSWORD to make changes\n")
	}

	// Check 5: Stored credentials (only if signed in and reachable)
	switch {
	case ctx.Profile.Username == "":
		ctx.Printf("⊘ Credentials: SKIPPED (not signed in)\n")
	case !serverReachable:
		ctx.Printf("⊘ Credentials: SKIPPED (server not reachable)\n")
	default:
		if err := checkCredentials(ctx); err != nil {
			ctx.Printf("❌ Credentials: FAIL\n")
			ctx.Printf("   Error: %v\n", err)
			hasError = true
		} else {
			ctx.Printf("✓ Credentials: OK (%s)\n", ctx.Profile.Username)
		}
	}

	// Check 6: Backups present (warning only)
	if cmd.State != "" {
		if err := checkBackupsPresent(cmd.State); err != nil {
			ctx.Printf("⚠ Backups present: WARNING\n")
			ctx.Printf("   %v\n", err)
		} else {
			ctx.Printf("✓ Backups present: OK\n")
		}
	}

	// Check 7: Clock sanity
	if err := checkClock(ctx.Clock); err != nil {
		ctx.Printf("❌ Clock: FAIL\n")
		ctx.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		ctx.Printf("✓ Clock: OK\n")
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	ctx.Println("All diagnostics passed!")
	return nil
}

// checkDocument prints the validation result and reports whether it failed.
// Only shape problems fail; everything else is a warning.
func checkDocument(ctx *cli.Context, doc models.Document, loc *time.Location) bool {
	result := validation.New(loc).ValidateDocument(doc)
	if !result.HasConflicts() {
		ctx.Printf("✓ Data validation: OK\n")
		return false
	}

	failed := result.Count(validation.ConflictInvalidShape) > 0
	if failed {
		ctx.Printf("❌ Data validation: FAIL\n")
	} else {
		ctx.Printf("⚠ Data validation: WARNING\n")
	}
	for _, c := range result.Conflicts {
		ctx.Printf("   %s\n", c.Description)
	}
	return failed
}

func checkCredentials(ctx *cli.Context) error {
	password := ctx.Password
	if password == "" {
		var err error
		password, err = keyring.GetPassword(keyring.Account(ctx.Profile.Server, ctx.Profile.Username))
		if err != nil {
			return err
		}
	}
	ok, err := ctx.Client().Login(ctx.Context(), ctx.Profile.Username, password)
	if err != nil {
		return err
	}
	if !ok {
		return errors.ErrUnauthorized
	}
	return nil
}

func checkBackupsPresent(statePath string) error {
	mgr := backup.NewManager(statePath)
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found in %s", mgr.GetBackupDir())
	}
	return nil
}

func checkClock(clock func() time.Time) error {
	now := time.Now()
	if clock != nil {
		now = clock()
	}
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}
