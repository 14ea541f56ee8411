package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vendbridge/internal/service"
)

// Gateway is the slice of the payment processor the create-order endpoint
// needs.
type Gateway interface {
	CreateOrder(ctx context.Context, amount int64) (*service.GatewayOrder, error)
	CreatePaymentLink(ctx context.Context, amount int64, description string) (*service.PaymentLink, error)
}

type createOrderRequest struct {
	Amount int64 `json:"amount"`
	Link   bool  `json:"link,omitempty"`
}

// CreateOrderHandler registers an order with the gateway and only then
// stores it locally, so a gateway failure never leaves a half-created
// record. With "link": true the hosted payment-link flow is used and the
// short URL is returned instead of the bare order id.
func CreateOrderHandler(gw Gateway, store service.OrderStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		if req.Amount <= 0 {
			writeError(w, http.StatusBadRequest, "invalid amount")
			return
		}

		if req.Link {
			link, err := gw.CreatePaymentLink(r.Context(), req.Amount, "Vending purchase")
			if err != nil {
				slog.Error("payment link creation failed", "error", err)
				writeError(w, http.StatusBadGateway, "payment gateway unavailable")
				return
			}

			if _, err := store.CreateOrder(r.Context(), link.ID, req.Amount, link.ShortURL); err != nil {
				slog.Error("order insert failed", "order_id", link.ID, "error", err)
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}

			writeJSON(w, http.StatusOK, map[string]any{
				"order_id":    link.ID,
				"payment_uri": link.ShortURL,
			})
			return
		}

		order, err := gw.CreateOrder(r.Context(), req.Amount)
		if err != nil {
			slog.Error("gateway order creation failed", "error", err)
			writeError(w, http.StatusBadGateway, "payment gateway unavailable")
			return
		}

		if _, err := store.CreateOrder(r.Context(), order.ID, req.Amount, ""); err != nil {
			slog.Error("order insert failed", "order_id", order.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"order_id": order.ID,
			"amount":   req.Amount,
		})
	}
}

type statusResponse struct {
	OrderID   string `json:"order_id"`
	Amount    int64  `json:"amount"`
	Paid      bool   `json:"paid"`
	Failed    bool   `json:"failed"`
	PaymentID string `json:"payment_id"`
}

// OrderStatusHandler serves the controller's polling loop with the
// reconciled view of one order.
func OrderStatusHandler(statusSvc *service.StatusService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID := chi.URLParam(r, "order_id")

		order, err := statusSvc.Get(r.Context(), orderID)
		if err != nil {
			if errors.Is(err, service.ErrOrderNotFound) {
				writeError(w, http.StatusNotFound, "order not found")
				return
			}
			slog.Error("status query failed", "order_id", orderID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, statusResponse{
			OrderID:   order.OrderID,
			Amount:    order.Amount,
			Paid:      order.Paid(),
			Failed:    order.Failed(),
			PaymentID: order.PaymentID,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
