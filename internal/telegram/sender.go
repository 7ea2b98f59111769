package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Sender delivers rendered messages to topics of the destination superchat.
// It satisfies router.Gateway.
type Sender struct {
	bot    *bot.Bot
	logger *slog.Logger
}

// NewSender wraps a bot instance for topic delivery.
func NewSender(b *bot.Bot, logger *slog.Logger) *Sender {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sender{
		bot:    b,
		logger: logger.With("component", "sender"),
	}
}

// Send posts text to the given message thread of chatID. Output is plain
// text with no parse mode, so captured input can never inject markup, and
// link previews are disabled.
func (s *Sender) Send(ctx context.Context, chatID int64, threadID int, text string) error {
	s.logger.DebugContext(ctx, "Sending message to topic",
		"chat_id", chatID, "topic_id", threadID, "text_len", len(text))

	_, err := s.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          chatID,
		MessageThreadID: threadID,
		Text:            text,
		LinkPreviewOptions: &models.LinkPreviewOptions{
			IsDisabled: bot.True(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send message to topic %d: %w", threadID, err)
	}
	return nil
}
