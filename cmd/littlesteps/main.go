package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/littlesteps/internal/cli"
	"github.com/julianstephens/littlesteps/internal/cli/backups"
	"github.com/julianstephens/littlesteps/internal/cli/baby"
	"github.com/julianstephens/littlesteps/internal/cli/chore"
	"github.com/julianstephens/littlesteps/internal/cli/milestone"
	"github.com/julianstephens/littlesteps/internal/cli/session"
	"github.com/julianstephens/littlesteps/internal/cli/system"
	"github.com/julianstephens/littlesteps/internal/cli/users"
	"github.com/julianstephens/littlesteps/internal/config"
	"github.com/julianstephens/littlesteps/internal/constants"
	"github.com/julianstephens/littlesteps/internal/errors"
	"github.com/julianstephens/littlesteps/internal/logger"
)

var CLI struct {
	Version  kong.VersionFlag
	Profile  string `help:"Client profile path." env:"LITTLESTEPS_PROFILE" default:"~/.config/littlesteps/config.toml"`
	Server   string `help:"Server URL (overrides the profile)." env:"LITTLESTEPS_SERVER"`
	Password string `help:"Sign in with this password instead of the OS keyring." env:"LITTLESTEPS_PASSWORD"`
	Verbose  bool   `short:"v" help:"Enable debug logging."`
	LogDir   string `help:"Also write logs to this directory." env:"LITTLESTEPS_LOG_DIR"`

	Tui    system.TuiCmd     `cmd:"" help:"Launch the interactive dashboard." default:"1"`
	Serve  system.ServeCmd   `cmd:"" help:"Run the household state server."`
	Login  session.LoginCmd  `cmd:"" help:"Sign in to the household."`
	Logout session.LogoutCmd `cmd:"" help:"Sign out and forget the stored password."`
	Whoami session.WhoamiCmd `cmd:"" help:"Show who is signed in."`
	Baby   struct {
		Show   baby.BabyShowCmd   `cmd:"" help:"Show the baby profile." default:"1"`
		Set    baby.BabySetCmd    `cmd:"" help:"Update the baby profile."`
		Weight baby.BabyWeightCmd `cmd:"" help:"Record the baby's weight."`
	} `cmd:"" help:"Manage the baby profile."`
	Milestone struct {
		List      milestone.MilestoneListCmd      `cmd:"" help:"List all milestones." default:"1"`
		Upcoming  milestone.MilestoneUpcomingCmd  `cmd:"" help:"Show the milestones to work on next."`
		Completed milestone.MilestoneCompletedCmd `cmd:"" help:"List mastered milestones."`
		Archive   milestone.MilestoneArchiveCmd   `cmd:"" help:"List every milestone reached at any level."`
		Add       milestone.MilestoneAddCmd       `cmd:"" help:"Add a custom milestone."`
		Edit      milestone.MilestoneEditCmd      `cmd:"" help:"Edit a milestone."`
		Advance   milestone.MilestoneAdvanceCmd   `cmd:"" help:"Move a milestone to its next level."`
		Level     milestone.MilestoneLevelCmd     `cmd:"" help:"Record a specific level."`
		Undo      milestone.MilestoneUndoCmd      `cmd:"" help:"Undo the last level change."`
		History   milestone.MilestoneHistoryCmd   `cmd:"" help:"Show or replace a milestone's level history."`
		Delete    milestone.MilestoneDeleteCmd    `cmd:"" help:"Delete a custom milestone."`
	} `cmd:"" help:"Track developmental milestones."`
	Chore struct {
		List   chore.ChoreListCmd   `cmd:"" help:"Show today's chores." default:"1"`
		Add    chore.ChoreAddCmd    `cmd:"" help:"Add a chore."`
		Edit   chore.ChoreEditCmd   `cmd:"" help:"Edit a chore."`
		Toggle chore.ChoreToggleCmd `cmd:"" help:"Mark a chore done for today, or undo it."`
		Delete chore.ChoreDeleteCmd `cmd:"" help:"Delete a chore."`
	} `cmd:"" help:"Manage daily chores."`
	User struct {
		List    users.UserListCmd    `cmd:"" help:"List household users." default:"1"`
		Add     users.UserAddCmd     `cmd:"" help:"Add a user."`
		Remove  users.UserRemoveCmd  `cmd:"" help:"Remove a user."`
		Passwd  users.UserPasswdCmd  `cmd:"" help:"Change a password."`
		Migrate users.UserMigrateCmd `cmd:"" help:"Hash plaintext passwords."`
	} `cmd:"" help:"Manage household users."`
	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage backups of the server state file."`
	Doctor system.DoctorCmd `cmd:"" help:"Run health checks and diagnostics."`
	Debug  system.DebugCmd  `cmd:"" help:"Debug commands for troubleshooting."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Household tracker for baby milestones and daily chores"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	if err := logger.Init(logger.Config{Debug: CLI.Verbose, LogDir: CLI.LogDir}); err != nil {
		errors.Fatal(err)
	}

	profile, err := config.LoadProfile(CLI.Profile)
	if err != nil {
		errors.Fatal(err)
	}
	if CLI.Server != "" {
		profile.Server = strings.TrimRight(CLI.Server, "/")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCtx := &cli.Context{
		Ctx:         ctx,
		ProfilePath: CLI.Profile,
		Profile:     profile,
		Password:    CLI.Password,
	}

	err = kctx.Run(appCtx)
	if closeErr := appCtx.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		stop()
		fmt.Fprintln(os.Stderr, errors.Format(err))
		os.Exit(1)
	}
}
