package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"jascshop/models"
	"jascshop/utils"
)

// Notifier is the outbound notification collaborator: it receives an order
// summary once per successful paid transition. Formatting and delivery of
// the actual email belong to the external sender.
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, order *models.OrderResponse) error
}

// orderSummaryLine is one line of the payload handed to the sender.
type orderSummaryLine struct {
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
	Size        string `json:"size,omitempty"`
	Color       string `json:"color,omitempty"`
	Subtotal    string `json:"subtotal"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

type orderSummary struct {
	OrderID        int64              `json:"orderId"`
	CustomerName   string             `json:"customerName"`
	CustomerEmail  string             `json:"customerEmail"`
	PaymentMethod  string             `json:"paymentMethod"`
	Total          string             `json:"total"`
	TotalFormatted string             `json:"totalFormatted"`
	Lines          []orderSummaryLine `json:"lines"`
}

// WebhookNotifier posts the order summary as JSON to the transactional email
// sender's endpoint.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

// NewWebhookNotifier creates a notifier from NOTIFY_WEBHOOK_URL. Returns nil
// and false when the variable is unset so the caller can fall back to the
// noop notifier.
func NewWebhookNotifier() (*WebhookNotifier, bool) {
	url := os.Getenv("NOTIFY_WEBHOOK_URL")
	if url == "" {
		return nil, false
	}
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}, true
}

// Ensure WebhookNotifier implements Notifier
var _ Notifier = (*WebhookNotifier)(nil)

// SendOrderConfirmation posts the summary. Callers treat failures as
// log-only; the payment transition is never reversed for a lost email.
func (n *WebhookNotifier) SendOrderConfirmation(ctx context.Context, order *models.OrderResponse) error {
	summary := orderSummary{
		OrderID:        order.ID,
		CustomerName:   order.CustomerName,
		CustomerEmail:  order.CustomerEmail,
		PaymentMethod:  order.PaymentMethod,
		Total:          order.Total.String(),
		TotalFormatted: utils.FormatCOP(order.Total),
	}
	for _, line := range order.Lines {
		summary.Lines = append(summary.Lines, orderSummaryLine{
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			Size:        line.Size,
			Color:       line.Color,
			Subtotal:    utils.FormatCOP(line.Subtotal),
			ImageURL:    line.ImageURL,
		})
	}

	body, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal order summary: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notification endpoint returned %d", resp.StatusCode)
	}
	return nil
}

// NoopNotifier logs the summary instead of sending it. Used when no sender
// is configured and in tests.
type NoopNotifier struct{}

// Ensure NoopNotifier implements Notifier
var _ Notifier = (*NoopNotifier)(nil)

// SendOrderConfirmation logs and succeeds
func (n *NoopNotifier) SendOrderConfirmation(ctx context.Context, order *models.OrderResponse) error {
	log.Printf("📧 NoopNotifier: order %d for %s, total %s (no sender configured)",
		order.ID, order.CustomerEmail, utils.FormatCOP(order.Total))
	return nil
}
