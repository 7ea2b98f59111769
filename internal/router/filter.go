package router

import "fmt"

// Listening modes accepted by NewSourceFilter.
const (
	ModeGroup   = "group"
	ModeChannel = "channel"
	ModeAny     = "any"
)

// SourceFilter decides whether an inbound message's origin is eligible for
// routing. Filters see only origin fields, never the message text.
type SourceFilter func(in Inbound) bool

// NewSourceFilter builds the origin predicate for the configured listening
// mode. groupID and channelID restrict the accepted source chat when
// non-zero; a zero id accepts every chat of the matching kind.
func NewSourceFilter(mode string, groupID, channelID int64) (SourceFilter, error) {
	switch mode {
	case ModeGroup:
		return func(in Inbound) bool {
			return !in.ChannelPost && (groupID == 0 || in.ChatID == groupID)
		}, nil
	case ModeChannel:
		return func(in Inbound) bool {
			return in.ChannelPost && (channelID == 0 || in.ChatID == channelID)
		}, nil
	case ModeAny:
		return func(in Inbound) bool {
			if in.ChannelPost {
				return channelID == 0 || in.ChatID == channelID
			}
			return groupID == 0 || in.ChatID == groupID
		}, nil
	default:
		return nil, fmt.Errorf("unknown source mode %q", mode)
	}
}
