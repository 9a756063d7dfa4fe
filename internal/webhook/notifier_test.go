package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNotifier_ForwardPostsJSON(t *testing.T) {
	received := make(chan []byte, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		body, _ := io.ReadAll(r.Body)
		received <- body
	}))
	defer srv.Close()

	notifier := NewNotifier(NotifierConfig{PaymentURL: srv.URL})
	notifier.Forward(context.Background(), ClassPayment, PaymentNotification{
		Event:   "payment_received",
		OrderID: "42",
		PaidAt:  "2026-08-01T12:00:00Z",
	})

	select {
	case body := <-received:
		var got PaymentNotification
		if err := json.Unmarshal(body, &got); err != nil {
			t.Fatalf("decode forwarded body: %v", err)
		}
		if got.Event != "payment_received" || got.OrderID.String() != "42" {
			t.Errorf("forwarded = %+v", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("downstream never received the notification")
	}
}

func TestNotifier_ForwardSurvivesRequestCancellation(t *testing.T) {
	received := make(chan struct{}, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received <- struct{}{}
	}))
	defer srv.Close()

	notifier := NewNotifier(NotifierConfig{CancellationURL: srv.URL})

	// Cancel the request context immediately after dispatch; delivery must proceed.
	ctx, cancel := context.WithCancel(context.Background())
	notifier.Forward(ctx, ClassCancellation, CancellationNotification{Event: "order_cancelled"})
	cancel()

	select {
	case <-received:
	case <-time.After(5 * time.Second):
		t.Fatal("notification dropped when request context was cancelled")
	}
}

func TestNotifier_NoEndpointConfigured(t *testing.T) {
	notifier := NewNotifier(NotifierConfig{})

	// Must not panic or block; nothing is configured for any class.
	notifier.Forward(context.Background(), ClassRefund, RefundNotification{Event: "order_refunded"})
}
