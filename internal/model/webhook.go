package model

import "time"

// Outcomes recorded for verified webhook deliveries.
const (
	OutcomeApplied = "applied" // state transition performed
	OutcomeStale   = "stale"   // order already terminal, delivery was a replay or late signal
	OutcomeIgnored = "ignored" // no order context, unknown order, or irrelevant event type
)

// WebhookEvent is one verified delivery from the gateway. Failed-signature
// requests are never recorded; they are rejected before parsing.
type WebhookEvent struct {
	ID         int64     `json:"id"`
	EventType  string    `json:"event_type"`
	OrderID    string    `json:"order_id,omitempty"`
	PaymentID  string    `json:"payment_id,omitempty"`
	Outcome    string    `json:"outcome"`
	ReceivedAt time.Time `json:"received_at"`
}
