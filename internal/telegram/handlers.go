package telegram

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/topicrelay/internal/database"
	"github.com/edgard/topicrelay/internal/router"
)

const journalWriteTimeout = 5 * time.Second

type forwardHandler struct {
	deps HandlerDeps
}

// NewForwardHandler creates the handler that feeds every inbound message or
// channel post through the rule router and journals the outcome of matched
// messages. Journal failures are logged and swallowed: routing must keep
// working when the journal does not.
func NewForwardHandler(deps HandlerDeps) bot.HandlerFunc {
	return forwardHandler{deps}.Handle
}

func (h forwardHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "forward")

	in, ok := inboundFromUpdate(update)
	if !ok {
		log.DebugContext(ctx, "Ignoring update without message payload", "update_id", update.ID)
		return
	}

	res := h.deps.Router.Route(ctx, in)
	if !res.Matched() {
		return
	}

	delivery := &database.Delivery{
		SourceChatID: in.ChatID,
		RuleIndex:    res.RuleIndex,
		TopicID:      res.TopicID,
		Outcome:      res.Outcome.String(),
	}
	if res.Err != nil {
		delivery.Error = sql.NullString{String: res.Err.Error(), Valid: true}
	}

	journalCtx, cancel := context.WithTimeout(ctx, journalWriteTimeout)
	defer cancel()
	if err := h.deps.Store.RecordDelivery(journalCtx, delivery); err != nil {
		log.WarnContext(ctx, "Failed to record delivery in journal", "error", err, "outcome", delivery.Outcome)
	}
}

// inboundFromUpdate extracts the routable message from an update. Channel
// posts and plain messages arrive in different update fields but carry the
// same message shape.
func inboundFromUpdate(update *models.Update) (router.Inbound, bool) {
	var (
		msg         *models.Message
		channelPost bool
	)

	switch {
	case update.Message != nil:
		msg = update.Message
	case update.ChannelPost != nil:
		msg = update.ChannelPost
		channelPost = true
	default:
		return router.Inbound{}, false
	}

	return router.Inbound{
		ChatID:      msg.Chat.ID,
		ChannelPost: channelPost,
		Text:        msg.Text,
		Caption:     msg.Caption,
	}, true
}
