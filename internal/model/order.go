package model

import "time"

const (
	StatusPending = "PENDING"
	StatusPaid    = "PAID"
	StatusFailed  = "FAILED"
)

// Order is the unit of work: one gateway-issued order id, one amount, one
// payment outcome. Amounts are whole rupees; the gateway client converts to
// paise at the API boundary and nowhere else. Orders are never deleted:
// the table doubles as the dispense audit trail.
type Order struct {
	OrderID    string    `json:"order_id"`
	Amount     int64     `json:"amount"`
	PaymentRef string    `json:"payment_ref,omitempty"`
	Status     string    `json:"status"` // PENDING, PAID, FAILED
	PaymentID  string    `json:"payment_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func (o *Order) Paid() bool   { return o.Status == StatusPaid }
func (o *Order) Failed() bool { return o.Status == StatusFailed }
