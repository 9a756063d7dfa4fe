package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Class selects which downstream endpoint receives a notification.
type Class string

const (
	ClassPayment      Class = "payment"
	ClassCancellation Class = "cancellation"
	ClassLogging      Class = "logging"
	ClassRefund       Class = "refund"
)

// Customer is the customer block of a payment notification.
type Customer struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// PaymentNotification is forwarded when an order is confirmed paid.
type PaymentNotification struct {
	Event         string          `json:"event"`
	OrderID       json.Number     `json:"order_id"`
	ReferenceID   json.Number     `json:"reference_id"`
	Amount        json.RawMessage `json:"amount,omitempty"`
	Currency      string          `json:"currency,omitempty"`
	Customer      *Customer       `json:"customer,omitempty"`
	Status        string          `json:"status,omitempty"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	PaidAt        string          `json:"paid_at"`
}

// CancellationNotification is forwarded when an order is cancelled.
type CancellationNotification struct {
	Event       string      `json:"event"`
	OrderID     json.Number `json:"order_id"`
	ReferenceID json.Number `json:"reference_id"`
	CancelledAt string      `json:"cancelled_at"`
	Reason      string      `json:"reason,omitempty"`
}

// CreatedNotification is forwarded for order-created tracking.
type CreatedNotification struct {
	Event       string      `json:"event"`
	OrderID     json.Number `json:"order_id"`
	ReferenceID json.Number `json:"reference_id"`
	CreatedAt   string      `json:"created_at"`
}

// RefundNotification is forwarded when an order is refunded.
type RefundNotification struct {
	Event        string          `json:"event"`
	OrderID      json.Number     `json:"order_id"`
	ReferenceID  json.Number     `json:"reference_id"`
	RefundAmount json.RawMessage `json:"refund_amount,omitempty"`
	RefundedAt   string          `json:"refunded_at"`
}

// Forwarder delivers a derived notification to the downstream receiver.
// Delivery is best effort: failures are logged, never propagated.
type Forwarder interface {
	Forward(ctx context.Context, class Class, payload any)
}

// NotifierConfig holds the downstream endpoint URLs per notification class.
// An empty URL disables that class.
type NotifierConfig struct {
	PaymentURL      string
	CancellationURL string
	LoggingURL      string
	RefundURL       string
	Timeout         time.Duration
}

// DefaultNotifyTimeout bounds one downstream POST.
const DefaultNotifyTimeout = 10 * time.Second

// Notifier posts notifications to per-class downstream endpoints, fire-and-forget.
type Notifier struct {
	endpoints map[Class]string
	client    *http.Client
}

// Compile-time check to ensure Notifier implements Forwarder
var _ Forwarder = (*Notifier)(nil)

// NewNotifier creates a Notifier from the configured endpoints.
func NewNotifier(cfg NotifierConfig) *Notifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultNotifyTimeout
	}

	return &Notifier{
		endpoints: map[Class]string{
			ClassPayment:      cfg.PaymentURL,
			ClassCancellation: cfg.CancellationURL,
			ClassLogging:      cfg.LoggingURL,
			ClassRefund:       cfg.RefundURL,
		},
		client: &http.Client{Timeout: timeout},
	}
}

// Forward dispatches the notification asynchronously and returns immediately.
// The POST is detached from the request context so the upstream acknowledgment is
// never delayed by, and never waits on, downstream delivery.
func (n *Notifier) Forward(ctx context.Context, class Class, payload any) {
	url := n.endpoints[class]
	if url == "" {
		slog.DebugContext(ctx, "no downstream endpoint configured", "class", class)
		return
	}

	go n.post(context.WithoutCancel(ctx), class, url, payload)
}

func (n *Notifier) post(ctx context.Context, class Class, url string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		slog.ErrorContext(ctx, "failed to encode downstream notification", "class", class, "error", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		slog.ErrorContext(ctx, "failed to build downstream request", "class", class, "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		slog.ErrorContext(ctx, "failed to notify downstream", "class", class, "error", err)
		return
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.ErrorContext(ctx, "downstream rejected notification",
			"class", class, "error", fmt.Sprintf("unexpected status %d", resp.StatusCode))
		return
	}

	slog.InfoContext(ctx, "downstream notified", "class", class)
}
