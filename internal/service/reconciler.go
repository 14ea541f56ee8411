package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"vendbridge/internal/model"
)

var ErrBadSignature = errors.New("webhook signature mismatch")

const (
	eventPaymentCaptured = "payment.captured"
	eventPaymentFailed   = "payment.failed"
)

// Ack is what the webhook endpoint returns to the gateway on a verified
// delivery.
type Ack struct {
	Status string `json:"status"` // "ok" or "ignored"
}

// Reconciler is the authoritative writer of terminal order state. It
// verifies each delivery against the shared webhook secret before touching
// anything, applies the state transition for payment lifecycle events, and
// acknowledges everything else so the gateway stops redelivering.
type Reconciler struct {
	secret []byte
	store  OrderStore
}

func NewReconciler(secret string, store OrderStore) *Reconciler {
	return &Reconciler{secret: []byte(secret), store: store}
}

// webhookEvent mirrors the slice of the Razorpay event envelope this
// system cares about.
type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// VerifySignature checks the hex HMAC-SHA256 of the exact raw payload in
// constant time.
func (r *Reconciler) VerifySignature(payload []byte, signature string) bool {
	mac := hmac.New(sha256.New, r.secret)
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Process verifies and applies one webhook delivery. The payload is not
// parsed until the signature checks out. Replayed deliveries are normal
// gateway behavior: the conditional updates in the store make a replay a
// no-op, and the delivery is still acknowledged.
func (r *Reconciler) Process(ctx context.Context, payload []byte, signature string) (*Ack, error) {
	if !r.VerifySignature(payload, signature) {
		return nil, ErrBadSignature
	}

	var event webhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("parse webhook payload: %w", err)
	}

	orderID := event.Payload.Payment.Entity.OrderID
	paymentID := event.Payload.Payment.Entity.ID

	// Some event types carry no order context. Rejecting them would only
	// make the gateway retry, so they are acknowledged as ignored.
	if orderID == "" {
		r.audit(ctx, event.Event, "", "", model.OutcomeIgnored)
		return &Ack{Status: "ignored"}, nil
	}

	var (
		applied bool
		err     error
	)
	switch event.Event {
	case eventPaymentCaptured:
		applied, err = r.store.ApplyPaid(ctx, orderID, paymentID)
	case eventPaymentFailed:
		applied, err = r.store.ApplyFailed(ctx, orderID)
	default:
		r.audit(ctx, event.Event, orderID, paymentID, model.OutcomeIgnored)
		return &Ack{Status: "ok"}, nil
	}

	switch {
	case errors.Is(err, ErrOrderNotFound):
		// Unknown order: acknowledge so the gateway does not retry forever.
		slog.Warn("webhook for unknown order", "event", event.Event, "order_id", orderID)
		r.audit(ctx, event.Event, orderID, paymentID, model.OutcomeIgnored)
		return &Ack{Status: "ok"}, nil
	case err != nil:
		return nil, fmt.Errorf("apply %s: %w", event.Event, err)
	}

	outcome := model.OutcomeApplied
	if !applied {
		outcome = model.OutcomeStale
	}
	r.audit(ctx, event.Event, orderID, paymentID, outcome)

	return &Ack{Status: "ok"}, nil
}

// audit is best-effort: losing an audit row must not fail a delivery the
// state machine already handled.
func (r *Reconciler) audit(ctx context.Context, eventType, orderID, paymentID, outcome string) {
	err := r.store.RecordWebhookEvent(ctx, model.WebhookEvent{
		EventType: eventType,
		OrderID:   orderID,
		PaymentID: paymentID,
		Outcome:   outcome,
	})
	if err != nil {
		slog.Error("failed to record webhook event", "event", eventType, "order_id", orderID, "error", err)
	}
}
