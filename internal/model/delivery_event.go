// internal/model/delivery_event.go
package model

import "time"

// Delivery event types published on the campaign_events queue.
const (
	DeliverySent   = "sent"
	DeliveryFailed = "failed"
)

// DeliveryEvent records the final outcome of one recipient in a campaign run.
type DeliveryEvent struct {
	ID         int       `db:"id" json:"id,omitempty"`
	Type       string    `db:"type" json:"type"`
	Recipient  string    `db:"recipient" json:"recipient"`
	Account    string    `db:"account" json:"account"`
	Attempts   int       `db:"attempts" json:"attempts"`
	LastError  string    `db:"last_error" json:"last_error,omitempty"`
	OccurredAt time.Time `db:"occurred_at" json:"occurred_at"`
}
