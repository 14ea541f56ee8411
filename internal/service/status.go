package service

import (
	"context"
	"log/slog"
	"time"

	"vendbridge/internal/model"
)

// StatusService serves the controller's polling reads. The webhook path is
// the source of truth, but deliveries can be lost or delayed, so a read of
// a still-PENDING order also asks the gateway whether a capture happened.
// That lookup is strictly best-effort: any gateway problem falls back to
// the locally stored state.
type StatusService struct {
	store         OrderStore
	payments      PaymentLister
	lookupTimeout time.Duration
}

func NewStatusService(store OrderStore, payments PaymentLister) *StatusService {
	return &StatusService{
		store:         store,
		payments:      payments,
		lookupTimeout: 5 * time.Second,
	}
}

func (s *StatusService) Get(ctx context.Context, orderID string) (*model.Order, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status != model.StatusPending {
		return order, nil
	}

	if s.reconcile(ctx, orderID) {
		return s.store.GetOrder(ctx, orderID)
	}
	return order, nil
}

// reconcile checks the gateway for a captured payment and applies it.
// Reports whether the order should be re-read.
func (s *StatusService) reconcile(ctx context.Context, orderID string) bool {
	lookupCtx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	defer cancel()

	payments, err := s.payments.ListPayments(lookupCtx, orderID)
	if err != nil {
		slog.Warn("gateway lookup failed, using local state", "order_id", orderID, "error", err)
		return false
	}

	var captured *Payment
	for i := range payments {
		if payments[i].Status == "captured" {
			if captured != nil {
				// More than one capture for one order should not happen;
				// leave it to the webhook path rather than guess.
				slog.Warn("multiple captured payments for order", "order_id", orderID)
				return false
			}
			captured = &payments[i]
		}
	}
	if captured == nil {
		return false
	}

	applied, err := s.store.ApplyPaid(ctx, orderID, captured.ID)
	if err != nil {
		slog.Error("failed to apply captured payment", "order_id", orderID, "payment_id", captured.ID, "error", err)
		return false
	}
	if applied {
		slog.Info("order reconciled via gateway lookup", "order_id", orderID, "payment_id", captured.ID)
	}
	return true
}
