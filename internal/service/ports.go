package service

import (
	"context"

	"vendbridge/internal/model"
)

// OrderStore is the single shared mutable resource. The reconciler and the
// status service depend on this interface rather than on *Store so state
// transitions can be exercised without a database.
type OrderStore interface {
	CreateOrder(ctx context.Context, orderID string, amount int64, paymentRef string) (*model.Order, error)
	GetOrder(ctx context.Context, orderID string) (*model.Order, error)
	ListOrders(ctx context.Context) ([]model.Order, error)
	ApplyPaid(ctx context.Context, orderID, paymentID string) (bool, error)
	ApplyFailed(ctx context.Context, orderID string) (bool, error)
	RecordWebhookEvent(ctx context.Context, evt model.WebhookEvent) error
}

// PaymentLister is the slice of the gateway the status service needs for
// active reconciliation.
type PaymentLister interface {
	ListPayments(ctx context.Context, orderID string) ([]Payment, error)
}
