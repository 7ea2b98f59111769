package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// LoadConfig loads and validates configuration from:
// 1. Default values
// 2. The YAML config file at path (optional)
// 3. BOT_* environment variables
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Environment variables override file values: BOT_TELEGRAM_TOKEN maps
	// to telegram.token. Every key needs a registered default for the env
	// binding to be picked up by Unmarshal.
	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Allow missing config file; defaults and environment still apply.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: failed to read config file: %v", ErrConfiguration, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrConfiguration, err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	return cfg, nil
}

// setDefaults registers default values for all configuration keys.
func setDefaults(v *viper.Viper) {
	// Logger defaults
	v.SetDefault("logger.level", DefaultLogLevel)
	v.SetDefault("logger.json", DefaultLogJSON)

	// Telegram settings have no usable defaults, but the keys must be
	// registered so environment-only configuration works.
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.superchat_id", 0)

	// Source defaults
	v.SetDefault("source.mode", DefaultSourceMode)
	v.SetDefault("source.group_id", 0)
	v.SetDefault("source.channel_id", 0)

	// Rules defaults
	v.SetDefault("rules.path", DefaultRulesPath)

	// Database defaults
	v.SetDefault("database.path", DefaultDBPath)
	v.SetDefault("database.retention_days", DefaultRetentionDays)

	// Scheduler defaults
	v.SetDefault("scheduler.tasks.journal_maintenance.enabled", true)
	v.SetDefault("scheduler.tasks.journal_maintenance.schedule", DefaultMaintenanceSchedule)
	v.SetDefault("scheduler.tasks.journal_stats.enabled", true)
	v.SetDefault("scheduler.tasks.journal_stats.schedule", DefaultStatsSchedule)
}
