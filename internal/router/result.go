package router

// Outcome classifies what Route did with one inbound message.
type Outcome int

const (
	// OutcomeSkipped: the message never reached rule evaluation, either
	// because its origin was filtered out or because it carried no text.
	OutcomeSkipped Outcome = iota
	// OutcomeNoMatch: no rule pattern occurred in the message text.
	OutcomeNoMatch
	// OutcomeDelivered: a rule matched and the rendered message reached
	// the destination topic.
	OutcomeDelivered
	// OutcomeDeliveryFailed: a rule matched but the gateway send failed.
	OutcomeDeliveryFailed
	// OutcomeRenderFailed: a rule matched but its template could not be
	// rendered.
	OutcomeRenderFailed
)

// String returns the stable outcome name used in logs and in the delivery
// journal.
func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeNoMatch:
		return "no_match"
	case OutcomeDelivered:
		return "delivered"
	case OutcomeDeliveryFailed:
		return "delivery_failed"
	case OutcomeRenderFailed:
		return "render_failed"
	default:
		return "unknown"
	}
}

// Result reports how one inbound message was handled. Err is set only for
// the failure outcomes.
type Result struct {
	Outcome   Outcome
	RuleIndex int // -1 unless a rule was selected
	TopicID   int // destination topic, 0 unless a rule was selected
	Err       error
}

// Matched reports whether a rule was selected for the message, regardless
// of whether rendering or delivery then succeeded.
func (r Result) Matched() bool {
	switch r.Outcome {
	case OutcomeDelivered, OutcomeDeliveryFailed, OutcomeRenderFailed:
		return true
	default:
		return false
	}
}
