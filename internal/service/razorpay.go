package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RazorpayClient talks to the Razorpay REST API with basic auth. It never
// retries; the gateway owns webhook redelivery and the status service owns
// fallback behavior.
type RazorpayClient struct {
	baseURL   string
	keyID     string
	keySecret string
	client    *http.Client
}

type GatewayOrder struct {
	ID string `json:"id"`
}

type PaymentLink struct {
	ID       string `json:"id"`
	ShortURL string `json:"short_url"`
}

type Payment struct {
	ID     string `json:"id"`
	Status string `json:"status"` // created, authorized, captured, refunded, failed
	Method string `json:"method"`
}

func NewRazorpayClient(baseURL, keyID, keySecret string) *RazorpayClient {
	return &RazorpayClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		keyID:     keyID,
		keySecret: keySecret,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// CreateOrder registers an order with the gateway and returns its id. The
// caller supplies whole rupees; the paise conversion happens here and only
// here.
func (c *RazorpayClient) CreateOrder(ctx context.Context, amount int64) (*GatewayOrder, error) {
	body := map[string]any{
		"amount":          amount * 100,
		"currency":        "INR",
		"receipt":         newReceipt(),
		"payment_capture": 1,
	}

	var order GatewayOrder
	if err := c.post(ctx, "/v1/orders", body, &order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return &order, nil
}

// CreatePaymentLink creates a hosted checkout link for flows where the
// buyer pays on a page instead of the device-driven checkout.
func (c *RazorpayClient) CreatePaymentLink(ctx context.Context, amount int64, description string) (*PaymentLink, error) {
	body := map[string]any{
		"amount":       amount * 100,
		"currency":     "INR",
		"reference_id": newReceipt(),
		"description":  description,
	}

	var link PaymentLink
	if err := c.post(ctx, "/v1/payment_links", body, &link); err != nil {
		return nil, fmt.Errorf("create payment link: %w", err)
	}
	return &link, nil
}

// ListPayments returns the payments the gateway has recorded against an
// order id.
func (c *RazorpayClient) ListPayments(ctx context.Context, orderID string) ([]Payment, error) {
	url := fmt.Sprintf("%s/v1/orders/%s/payments", c.baseURL, orderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status: %d, body: %s", resp.StatusCode, string(body))
	}

	var res struct {
		Items []Payment `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return res.Items, nil
}

func (c *RazorpayClient) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status: %d, body: %s", resp.StatusCode, string(respBody))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func newReceipt() string {
	return "rcpt_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}
