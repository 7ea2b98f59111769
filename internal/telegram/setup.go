// Package telegram handles Telegram connectivity: bot setup, outbound topic
// delivery, and registration of the inbound forward handler.
package telegram

import (
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewTelegramBot creates a new Telegram bot instance using the go-telegram/bot library.
func NewTelegramBot(token string, logger *slog.Logger, opts ...bot.Option) (*bot.Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "telegram_bot")

	b, err := bot.New(token, opts...)
	if err != nil {
		log.Error("Failed to create Telegram bot instance", "error", err)
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	prefix := token
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	log.Info("Telegram bot instance created successfully", "token_prefix", prefix+"...")
	return b, nil
}

// RegisterForwardHandler attaches the forward handler to every update that
// carries a message or channel post. The source filter inside the router
// decides which of those are actually routed.
func RegisterForwardHandler(b *bot.Bot, deps HandlerDeps) error {
	if b == nil {
		return fmt.Errorf("bot instance cannot be nil")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	log := deps.Logger.With("component", "handler_registry")

	matchMessages := func(update *models.Update) bool {
		return update.Message != nil || update.ChannelPost != nil
	}
	b.RegisterHandlerMatchFunc(matchMessages, NewForwardHandler(deps))

	log.Info("Registered forward handler for messages and channel posts")
	return nil
}
