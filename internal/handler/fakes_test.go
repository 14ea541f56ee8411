package handler

import (
	"context"
	"errors"
	"sort"
	"time"

	"vendbridge/internal/model"
	"vendbridge/internal/service"
)

// memStore is an in-memory service.OrderStore for handler tests.
type memStore struct {
	orders map[string]*model.Order
	events []model.WebhookEvent
}

func newMemStore() *memStore {
	return &memStore{orders: make(map[string]*model.Order)}
}

func (m *memStore) CreateOrder(_ context.Context, orderID string, amount int64, paymentRef string) (*model.Order, error) {
	if o, ok := m.orders[orderID]; ok {
		cp := *o
		return &cp, nil
	}
	o := &model.Order{
		OrderID:    orderID,
		Amount:     amount,
		PaymentRef: paymentRef,
		Status:     model.StatusPending,
		CreatedAt:  time.Now(),
	}
	m.orders[orderID] = o
	cp := *o
	return &cp, nil
}

func (m *memStore) GetOrder(_ context.Context, orderID string) (*model.Order, error) {
	o, ok := m.orders[orderID]
	if !ok {
		return nil, service.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memStore) ListOrders(_ context.Context) ([]model.Order, error) {
	var out []model.Order
	for _, o := range m.orders {
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) ApplyPaid(_ context.Context, orderID, paymentID string) (bool, error) {
	o, ok := m.orders[orderID]
	if !ok {
		return false, service.ErrOrderNotFound
	}
	if o.Status == model.StatusPaid {
		return false, nil
	}
	o.Status = model.StatusPaid
	o.PaymentID = paymentID
	return true, nil
}

func (m *memStore) ApplyFailed(_ context.Context, orderID string) (bool, error) {
	o, ok := m.orders[orderID]
	if !ok {
		return false, service.ErrOrderNotFound
	}
	if o.Status != model.StatusPending {
		return false, nil
	}
	o.Status = model.StatusFailed
	return true, nil
}

func (m *memStore) RecordWebhookEvent(_ context.Context, evt model.WebhookEvent) error {
	m.events = append(m.events, evt)
	return nil
}

// fakeGateway hands out sequential order ids or fails on demand.
type fakeGateway struct {
	nextID string
	linkID string
	fail   bool
}

func (g *fakeGateway) CreateOrder(context.Context, int64) (*service.GatewayOrder, error) {
	if g.fail {
		return nil, errors.New("gateway down")
	}
	return &service.GatewayOrder{ID: g.nextID}, nil
}

func (g *fakeGateway) CreatePaymentLink(context.Context, int64, string) (*service.PaymentLink, error) {
	if g.fail {
		return nil, errors.New("gateway down")
	}
	return &service.PaymentLink{ID: g.linkID, ShortURL: "https://rzp.io/i/" + g.linkID}, nil
}

// noPayments is a PaymentLister with nothing to report.
type noPayments struct{}

func (noPayments) ListPayments(context.Context, string) ([]service.Payment, error) {
	return nil, nil
}
