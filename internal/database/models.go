package database

import (
	"database/sql"
	"time"
)

// Delivery is one journal entry for a routed message. The journal records
// routing outcomes only: which rule fired, the destination topic, and the
// failure reason if delivery or rendering failed. Message text is never
// stored.
type Delivery struct {
	ID        uint      `db:"id"`
	CreatedAt time.Time `db:"created_at"`

	SourceChatID int64          `db:"source_chat_id"`
	RuleIndex    int            `db:"rule_index"`
	TopicID      int            `db:"topic_id"`
	Outcome      string         `db:"outcome"`
	Error        sql.NullString `db:"error"` // nullable, set for failure outcomes
}
