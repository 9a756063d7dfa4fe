package webhook

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/soukly/salla-relay/internal/tokenstore"
)

// ack is the success acknowledgment returned for every verified payload.
type ack struct {
	Received    bool        `json:"received"`
	Event       string      `json:"event"`
	OrderID     json.Number `json:"order_id,omitempty"`
	ProcessedAt string      `json:"processed_at"`
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithNow overrides the handler's clock.
func WithNow(now func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.now = now
	}
}

// Handler is the webhook ingress endpoint.
//
// It verifies the request signature, seeds token records from authorization events,
// and relays order events downstream. Any verified payload is acknowledged with 200
// regardless of dispatch outcome.
type Handler struct {
	secret    string
	store     tokenstore.Store
	forwarder Forwarder
	now       func() time.Time
}

// Compile-time check that Handler implements http.Handler
var _ http.Handler = (*Handler)(nil)

// NewHandler creates a Handler. The store receives token records from authorization
// events; the forwarder delivers derived order notifications.
func NewHandler(secret string, store tokenstore.Store, forwarder Forwarder, opts ...HandlerOption) *Handler {
	h := &Handler{
		secret:    secret,
		store:     store,
		forwarder: forwarder,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		writeJSONError(ctx, w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSONError(ctx, w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if !VerifySignature(h.secret, body, r.Header.Get(SignatureHeader)) {
		slog.WarnContext(ctx, "webhook signature verification failed")
		writeJSONError(ctx, w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		// Verified but unparseable. Acknowledge anyway: redelivery would not help.
		slog.WarnContext(ctx, "verified webhook body is not valid JSON", "error", err)
		h.acknowledge(ctx, w, "", "")
		return
	}

	slog.InfoContext(ctx, "webhook received", "event", env.Event)

	orderID := h.dispatch(ctx, &env)
	h.acknowledge(ctx, w, env.Event, orderID)
}

func (h *Handler) acknowledge(ctx context.Context, w http.ResponseWriter, event string, orderID json.Number) {
	writeJSON(ctx, w, ack{
		Received:    true,
		Event:       event,
		OrderID:     orderID,
		ProcessedAt: h.now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// dispatch routes a verified envelope by event kind and returns the order id for the
// acknowledgment, if the event carried one. Failures are logged, never returned: the
// response code must not depend on dispatch outcome.
func (h *Handler) dispatch(ctx context.Context, env *envelope) json.Number {
	event := ParseEvent(env.Event)

	if event == EventAuthorize {
		h.handleAuthorize(ctx, env)
		return ""
	}

	var order orderData
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &order); err != nil {
			slog.WarnContext(ctx, "failed to decode order data", "event", env.Event, "error", err)
			return ""
		}
	}

	switch event {
	case EventOrderStatusUpdated:
		switch ClassifyStatus(order.Status.Name) {
		case StatusPaid:
			h.forwarder.Forward(ctx, ClassPayment, h.paymentNotification(&order))
		case StatusCancelled:
			h.forwarder.Forward(ctx, ClassCancellation, h.cancellationNotification(&order))
		case StatusOther:
			// Status changes like "Processing" are not relayed.
		}

	case EventOrderCanceled:
		h.forwarder.Forward(ctx, ClassCancellation, h.cancellationNotification(&order))

	case EventOrderCreated:
		h.forwarder.Forward(ctx, ClassLogging, CreatedNotification{
			Event:       "order_created",
			OrderID:     order.ID,
			ReferenceID: order.ReferenceID,
			CreatedAt:   h.orDefaultTime(order.Date.Created),
		})

	case EventOrderRefunded:
		h.forwarder.Forward(ctx, ClassRefund, RefundNotification{
			Event:        "order_refunded",
			OrderID:      order.ID,
			ReferenceID:  order.ReferenceID,
			RefundAmount: order.Refund.Amount,
			RefundedAt:   h.nowRFC3339(),
		})

	case EventOrderPaymentUpdated:
		// A payment-method update only signals payment when the payment block says so.
		if order.Payment.Status == "paid" {
			h.forwarder.Forward(ctx, ClassPayment, PaymentNotification{
				Event:         "payment_received",
				OrderID:       order.ID,
				ReferenceID:   order.ReferenceID,
				Amount:        order.Amounts.Total,
				PaymentMethod: order.Payment.Method,
				PaidAt:        h.nowRFC3339(),
			})
		}

	case EventUnknown:
		slog.InfoContext(ctx, "unhandled webhook event", "event", env.Event)
	}

	return order.ID
}

// handleAuthorize persists the token record issued when a merchant installs the
// integration. This is the write path that the bulk refresh coordinator later rotates.
func (h *Handler) handleAuthorize(ctx context.Context, env *envelope) {
	var data authorizationData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		slog.ErrorContext(ctx, "failed to decode authorization data", "error", err)
		return
	}

	merchant := env.Merchant.String()
	if merchant == "" {
		merchant = data.Merchant.String()
	}
	if merchant == "" || data.RefreshToken == "" {
		slog.ErrorContext(ctx, "authorization event missing merchant or refresh token")
		return
	}

	token := &tokenstore.TenantToken{
		AccessToken:  data.AccessToken,
		RefreshToken: data.RefreshToken,
		ExpiresAt:    h.now().UnixMilli() + data.lifetimeSeconds()*1000,
		Merchant:     merchant,
	}
	if err := h.store.Put(ctx, merchant, token); err != nil {
		slog.ErrorContext(ctx, "failed to store merchant tokens", "merchant", merchant, "error", err)
		return
	}

	slog.InfoContext(ctx, "merchant authorized", "merchant", merchant)
}

func (h *Handler) paymentNotification(order *orderData) PaymentNotification {
	return PaymentNotification{
		Event:       "payment_received",
		OrderID:     order.ID,
		ReferenceID: order.ReferenceID,
		Amount:      order.Amounts.Total,
		Currency:    order.Amounts.CurrencyCode,
		Customer: &Customer{
			Name:  order.Customer.Name,
			Phone: order.Customer.Mobile,
			Email: order.Customer.Email,
		},
		Status: strings.ToLower(strings.TrimSpace(order.Status.Name)),
		PaidAt: h.orDefaultTime(order.Date.Paid),
	}
}

func (h *Handler) cancellationNotification(order *orderData) CancellationNotification {
	return CancellationNotification{
		Event:       "order_cancelled",
		OrderID:     order.ID,
		ReferenceID: order.ReferenceID,
		CancelledAt: h.orDefaultTime(order.Date.Cancelled),
		Reason:      order.CancellationReason,
	}
}

// orDefaultTime returns the provider-supplied timestamp, or the current time when the
// payload omitted it.
func (h *Handler) orDefaultTime(s string) string {
	if s != "" {
		return s
	}
	return h.nowRFC3339()
}

func (h *Handler) nowRFC3339() string {
	return h.now().UTC().Format(time.RFC3339)
}
