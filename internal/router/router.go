// Package router evaluates inbound chat messages against the ordered rule
// set and forwards the first matching rule's rendering to its destination
// topic. The router is transport-agnostic: delivery goes through the
// Gateway interface, so routing decisions can be tested without a live
// messaging backend.
package router

import (
	"context"
	"log/slog"

	"github.com/edgard/topicrelay/internal/rules"
)

// Gateway delivers one rendered message to a thread of the destination
// chat. Implementations own presentation concerns such as parse mode and
// link previews.
type Gateway interface {
	Send(ctx context.Context, chatID int64, threadID int, text string) error
}

// Inbound is one received message, reduced to the fields routing needs.
// ChannelPost distinguishes channel posts from plain group messages.
type Inbound struct {
	ChatID      int64
	ChannelPost bool
	Text        string
	Caption     string
}

// Body returns the routable text: the message text, or the media caption
// when there is no text.
func (in Inbound) Body() string {
	if in.Text != "" {
		return in.Text
	}
	return in.Caption
}

// Router applies the rule set to inbound messages and forwards matches to
// the destination superchat. It holds no mutable state, so concurrent
// Route calls are safe.
type Router struct {
	rules   *rules.Set
	gateway Gateway
	chatID  int64
	filter  SourceFilter
	logger  *slog.Logger
}

// New builds a Router forwarding to chatID via gateway. Messages rejected
// by filter are skipped before any rule is evaluated.
func New(set *rules.Set, gateway Gateway, chatID int64, filter SourceFilter, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		rules:   set,
		gateway: gateway,
		chatID:  chatID,
		filter:  filter,
		logger:  logger.With("component", "router"),
	}
}

// Route evaluates one inbound message. It never returns an error: per
// message faults are reported in the Result and logged, so a bad message
// or a transient delivery failure cannot take down the stream.
func (r *Router) Route(ctx context.Context, in Inbound) Result {
	if !r.filter(in) {
		r.logger.DebugContext(ctx, "Message from ignored source, skipping",
			"chat_id", in.ChatID, "channel_post", in.ChannelPost)
		return Result{Outcome: OutcomeSkipped, RuleIndex: -1}
	}

	text := in.Body()
	if text == "" {
		r.logger.DebugContext(ctx, "Message has no routable text, skipping", "chat_id", in.ChatID)
		return Result{Outcome: OutcomeSkipped, RuleIndex: -1}
	}

	m, ok := r.rules.FirstMatch(text)
	if !ok {
		r.logger.DebugContext(ctx, "No rule matched message", "chat_id", in.ChatID, "text_len", len(text))
		return Result{Outcome: OutcomeNoMatch, RuleIndex: -1}
	}

	rendered, err := m.Rule.Render(m.Context)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to render rule template",
			"error", err, "rule_index", m.Index, "topic_id", m.Rule.TopicID())
		return Result{Outcome: OutcomeRenderFailed, RuleIndex: m.Index, TopicID: m.Rule.TopicID(), Err: err}
	}

	if err := r.gateway.Send(ctx, r.chatID, m.Rule.TopicID(), rendered); err != nil {
		r.logger.ErrorContext(ctx, "Failed to deliver routed message",
			"error", err, "rule_index", m.Index, "topic_id", m.Rule.TopicID())
		return Result{Outcome: OutcomeDeliveryFailed, RuleIndex: m.Index, TopicID: m.Rule.TopicID(), Err: err}
	}

	r.logger.InfoContext(ctx, "Message routed", "rule_index", m.Index, "topic_id", m.Rule.TopicID())
	return Result{Outcome: OutcomeDelivered, RuleIndex: m.Index, TopicID: m.Rule.TopicID()}
}
