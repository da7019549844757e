package constants

import "time"

const (
	AppName          = "littlesteps"
	DefaultServerURL = "http://localhost:3001"
	Version          = "v0.3.0"

	// DateFormat is the chore completion date format (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// LocalTimestampFormat is the ISO-8601 local timestamp used for birth dates (no zone)
	LocalTimestampFormat = "2006-01-02T15:04:05"

	// Server defaults
	DefaultPort         = 3001
	DefaultStatePath    = "/data/state.json"
	MaxBodyBytes        = 1 << 20
	ReadHeaderTimeout   = 5 * time.Second
	ShutdownGracePeriod = 5 * time.Second

	// Default admin account. It always exists and only it may change its own password.
	DefaultAdminUsername = "eddie"
	DefaultAdminPassword = "eddie"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "state-"

	// UpcomingLimit is how many milestones the upcoming view shows by default
	UpcomingLimit = 10

	// Id prefixes for user-created items
	CustomMilestonePrefix = "custom-"
	ChorePrefix           = "chore-"
)
