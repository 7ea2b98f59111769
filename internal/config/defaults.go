package config

// Default values for configuration
const (
	// Log defaults
	DefaultLogLevel = "info"
	DefaultLogJSON  = true

	// Source defaults: listen to both plain messages and channel posts,
	// from any chat the bot is a member of.
	DefaultSourceMode = "any"

	// Rules defaults
	DefaultRulesPath = "rules.yaml"

	// Database defaults
	DefaultDBPath        = "topicrelay.db" // Default SQLite database name
	DefaultRetentionDays = 30              // How long delivery journal entries are kept

	// Scheduler defaults. Cron schedules use six fields (with seconds).
	DefaultMaintenanceSchedule = "0 0 4 * * *" // Daily at 04:00: prune journal, then VACUUM
	DefaultStatsSchedule       = "0 0 * * * *" // Hourly: log delivery outcome counts
)
