package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"vendbridge/internal/model"
)

// fakeStore is an in-memory OrderStore implementing the same conditional
// transition rules as the Postgres store.
type fakeStore struct {
	mu     sync.Mutex
	orders map[string]*model.Order
	events []model.WebhookEvent

	paidCalls   int
	failedCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{orders: make(map[string]*model.Order)}
}

func (f *fakeStore) CreateOrder(_ context.Context, orderID string, amount int64, paymentRef string) (*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.orders[orderID]; ok {
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
	f.orders[orderID] = o
	cp := *o
	return &cp, nil
}

func (f *fakeStore) GetOrder(_ context.Context, orderID string) (*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeStore) ListOrders(_ context.Context) ([]model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Order
	for _, o := range f.orders {
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) ApplyPaid(_ context.Context, orderID, paymentID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paidCalls++
	o, ok := f.orders[orderID]
	if !ok {
		return false, ErrOrderNotFound
	}
	if o.Status == model.StatusPaid {
		return false, nil
	}
	o.Status = model.StatusPaid
	o.PaymentID = paymentID
	return true, nil
}

func (f *fakeStore) ApplyFailed(_ context.Context, orderID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failedCalls++
	o, ok := f.orders[orderID]
	if !ok {
		return false, ErrOrderNotFound
	}
	if o.Status != model.StatusPending {
		return false, nil
	}
	o.Status = model.StatusFailed
	return true, nil
}

func (f *fakeStore) RecordWebhookEvent(_ context.Context, evt model.WebhookEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, evt)
	return nil
}

func (f *fakeStore) mustGet(orderID string) model.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.orders[orderID]
}

// fakePaymentLister returns canned payments or an error.
type fakePaymentLister struct {
	payments []Payment
	err      error
	calls    int
}

func (f *fakePaymentLister) ListPayments(context.Context, string) ([]Payment, error) {
	f.calls++
	return f.payments, f.err
}
