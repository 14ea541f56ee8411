package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"vendbridge/internal/model"
)

var ErrOrderNotFound = errors.New("order not found")

// Store persists orders in Postgres. All state transitions are single
// conditional UPDATE statements, so concurrent writers on the same order id
// are serialized by row locking and the status conditions decide who wins.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// CreateOrder inserts a PENDING order, or returns the existing record when
// the gateway-issued id is already present. The controller retries creation
// after network timeouts, so the insert has to be idempotent.
func (s *Store) CreateOrder(ctx context.Context, orderID string, amount int64, paymentRef string) (*model.Order, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO orders (order_id, amount, payment_ref, status)
		VALUES ($1, $2, NULLIF($3, ''), 'PENDING')
		ON CONFLICT (order_id) DO NOTHING
	`, orderID, amount, paymentRef)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	return s.GetOrder(ctx, orderID)
}

func (s *Store) GetOrder(ctx context.Context, orderID string) (*model.Order, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT order_id, amount, payment_ref, status, payment_id, created_at
		FROM orders
		WHERE order_id = $1
	`, orderID)

	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

func (s *Store) ListOrders(ctx context.Context) ([]model.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT order_id, amount, payment_ref, status, payment_id, created_at
		FROM orders
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return orders, nil
}

// ApplyPaid transitions an order to PAID and records the capturing payment.
// An order that is already PAID is left untouched, whatever payment id a
// replayed or conflicting delivery carries: capture is irreversible and the
// first writer wins. Returns whether a transition actually happened.
func (s *Store) ApplyPaid(ctx context.Context, orderID, paymentID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE orders
		SET status = 'PAID', payment_id = $2
		WHERE order_id = $1 AND status <> 'PAID'
	`, orderID, paymentID)
	if err != nil {
		return false, fmt.Errorf("mark paid: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		// Either the order is already PAID (fine) or it does not exist.
		return false, s.checkExists(ctx, orderID)
	}
	return true, nil
}

// ApplyFailed transitions PENDING to FAILED. A PAID order stays PAID (a
// late failure signal never un-pays an order) and a repeated failure is a
// no-op.
func (s *Store) ApplyFailed(ctx context.Context, orderID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE orders
		SET status = 'FAILED'
		WHERE order_id = $1 AND status = 'PENDING'
	`, orderID)
	if err != nil {
		return false, fmt.Errorf("mark failed: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return false, s.checkExists(ctx, orderID)
	}
	return true, nil
}

// RecordWebhookEvent appends one verified delivery to the audit log.
func (s *Store) RecordWebhookEvent(ctx context.Context, evt model.WebhookEvent) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO webhook_events (event_type, order_id, payment_id, outcome)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4)
	`, evt.EventType, evt.OrderID, evt.PaymentID, evt.Outcome)
	if err != nil {
		return fmt.Errorf("record webhook event: %w", err)
	}
	return nil
}

func (s *Store) checkExists(ctx context.Context, orderID string) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM orders WHERE order_id = $1`, orderID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrOrderNotFound
	}
	if err != nil {
		return fmt.Errorf("check order: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*model.Order, error) {
	var o model.Order
	var paymentRef, paymentID sql.NullString
	if err := row.Scan(&o.OrderID, &o.Amount, &paymentRef, &o.Status, &paymentID, &o.CreatedAt); err != nil {
		return nil, err
	}
	if paymentRef.Valid {
		o.PaymentRef = paymentRef.String
	}
	if paymentID.Valid {
		o.PaymentID = paymentID.String
	}
	return &o, nil
}
