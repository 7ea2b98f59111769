// Package config manages application configuration from default values,
// an optional YAML config file, and BOT_* environment variables.
package config

import "errors"

// ErrConfiguration indicates invalid or missing configuration. It is always
// fatal at startup.
var ErrConfiguration = errors.New("configuration error")

// Config defines the application configuration. Values can be set via the
// config file or environment variables prefixed with BOT_
// (e.g. BOT_TELEGRAM_TOKEN).
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Source    SourceConfig    `mapstructure:"source"`
	Rules     RulesConfig     `mapstructure:"rules"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// LoggerConfig controls log level and output format.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds the bot credentials and the destination superchat.
// SuperchatID is the forum supergroup all matched messages are forwarded
// to; each rule picks a topic inside it.
type TelegramConfig struct {
	Token       string `mapstructure:"token"        validate:"required"`
	SuperchatID int64  `mapstructure:"superchat_id" validate:"required"`
}

// SourceConfig restricts which chats are listened to. Mode picks the kind
// of source (plain group messages, channel posts, or both); the ids are
// optional and, when zero, accept every chat of the matching kind.
type SourceConfig struct {
	Mode      string `mapstructure:"mode" validate:"required,oneof=group channel any"`
	GroupID   int64  `mapstructure:"group_id"`
	ChannelID int64  `mapstructure:"channel_id"`
}

// RulesConfig points at the forwarding rules file.
type RulesConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// DatabaseConfig holds the delivery journal settings.
type DatabaseConfig struct {
	Path          string `mapstructure:"path"           validate:"required"`
	RetentionDays int    `mapstructure:"retention_days" validate:"required,gte=1,lte=365"`
}

// SchedulerConfig holds the scheduled task definitions, keyed by task name.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// TaskConfig enables one scheduled task and sets its cron schedule. The
// schedule uses six fields (with seconds).
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}
