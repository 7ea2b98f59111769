// Package main contains the entrypoint for the topic relay application.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"

	"github.com/edgard/topicrelay/internal/bot"
	"github.com/edgard/topicrelay/internal/bot/tasks"
	"github.com/edgard/topicrelay/internal/config"
	"github.com/edgard/topicrelay/internal/database"
	"github.com/edgard/topicrelay/internal/logger"
	"github.com/edgard/topicrelay/internal/router"
	"github.com/edgard/topicrelay/internal/rules"
	"github.com/edgard/topicrelay/internal/telegram"

	_ "modernc.org/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop() // Ensure context cancellation is signaled before exit
	os.Exit(exitCode)
}

// run initializes and starts all application components (config, logger, db, rules, router, bot, scheduler),
// handles graceful shutdown, and returns an exit code (0 for success, 1 for failure).
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db) // Ensure DB is closed on function exit
	store := database.NewStore(db, log)

	ruleSet, err := rules.Load(cfg.Rules.Path, log)
	if err != nil {
		log.Error("Failed to load forwarding rules", "path", cfg.Rules.Path, "error", err)
		return 1
	}

	filter, err := router.NewSourceFilter(cfg.Source.Mode, cfg.Source.GroupID, cfg.Source.ChannelID)
	if err != nil {
		log.Error("Failed to configure source filter", "error", err)
		return 1
	}
	log.Info("Relay configured",
		"source_mode", cfg.Source.Mode,
		"group_id", cfg.Source.GroupID,
		"channel_id", cfg.Source.ChannelID,
		"superchat_id", cfg.Telegram.SuperchatID,
		"rules", ruleSet.Len(),
	)

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithAllowedUpdates(tgbot.AllowedUpdates{"message", "channel_post"}),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	sender := telegram.NewSender(tg, log)
	rtr := router.New(ruleSet, sender, cfg.Telegram.SuperchatID, filter, log)

	hDeps := telegram.HandlerDeps{
		Logger: log,
		Router: rtr,
		Store:  store,
	}
	if err := telegram.RegisterForwardHandler(tg, hDeps); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}

	tDeps := tasks.TaskDeps{
		Logger: log,
		Store:  store,
		Config: cfg,
	}
	sched := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	app := bot.NewBot(log, cfg, db, store, tg, sched)

	log.Info("Starting bot...")
	runErr := app.Run(ctx) // Run blocks until context is cancelled or an error occurs
	log.Info("Bot run loop finished. Initiating shutdown...")

	// Check if the error is significant (not just context cancellation)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		// Allow logs to flush before exiting on error
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	// Allow logs to flush before exiting gracefully
	log.Info("Waiting briefly before exit...")
	time.Sleep(time.Second)
	return 0
}
