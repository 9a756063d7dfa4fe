package webhook

import (
	"encoding/json"
	"strings"
)

// Event is the closed set of recognized webhook event kinds.
// Unrecognized discriminators map to EventUnknown and are acknowledged but ignored.
type Event string

const (
	EventAuthorize           Event = "app.store.authorize"
	EventOrderStatusUpdated  Event = "order.status.updated"
	EventOrderCanceled       Event = "order.canceled"
	EventOrderCreated        Event = "order.created"
	EventOrderPaymentUpdated Event = "order.payment.updated"
	EventOrderRefunded       Event = "order.refunded"
	EventUnknown             Event = ""
)

// ParseEvent maps a discriminator string to an Event.
func ParseEvent(s string) Event {
	switch Event(s) {
	case EventAuthorize, EventOrderStatusUpdated, EventOrderCanceled,
		EventOrderCreated, EventOrderPaymentUpdated, EventOrderRefunded:
		return Event(s)
	default:
		return EventUnknown
	}
}

// StatusClass is the normalized classification of an order status name.
type StatusClass int

const (
	StatusOther StatusClass = iota
	StatusPaid
	StatusCancelled
)

// ClassifyStatus normalizes an order status name into a StatusClass.
// Salla reports cancellation with both spellings.
func ClassifyStatus(name string) StatusClass {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "paid", "completed":
		return StatusPaid
	case "canceled", "cancelled":
		return StatusCancelled
	default:
		return StatusOther
	}
}

// envelope is the outer webhook payload: a discriminator plus event-specific data.
// The merchant id rides at the envelope level on current Salla payloads.
type envelope struct {
	Event    string          `json:"event"`
	Merchant json.Number     `json:"merchant"`
	Data     json.RawMessage `json:"data"`
}

// authorizationData carries the token fields of an app.store.authorize event.
// Older payloads name the lifetime "expires" rather than "expires_in", and some nest
// the merchant id inside data.
type authorizationData struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int64       `json:"expires_in"`
	Expires      int64       `json:"expires"`
	Merchant     json.Number `json:"merchant"`
}

// lifetimeSeconds returns the access token lifetime, whichever field carried it.
func (d *authorizationData) lifetimeSeconds() int64 {
	if d.ExpiresIn > 0 {
		return d.ExpiresIn
	}
	return d.Expires
}

// orderData carries the order fields used to derive downstream notifications.
// Fields mirror what Salla actually sends; anything unused is left unmapped.
type orderData struct {
	ID          json.Number `json:"id"`
	ReferenceID json.Number `json:"reference_id"`
	Status      struct {
		Name string `json:"name"`
	} `json:"status"`
	Amounts struct {
		Total        json.RawMessage `json:"total"`
		CurrencyCode string          `json:"currency_code"`
	} `json:"amounts"`
	Customer struct {
		Name   string `json:"name"`
		Mobile string `json:"mobile"`
		Email  string `json:"email"`
	} `json:"customer"`
	Date struct {
		Created   string `json:"created"`
		Paid      string `json:"paid"`
		Cancelled string `json:"cancelled"`
	} `json:"date"`
	CancellationReason string `json:"cancellation_reason"`
	Payment            struct {
		Status string `json:"status"`
		Method string `json:"method"`
	} `json:"payment"`
	Refund struct {
		Amount json.RawMessage `json:"amount"`
	} `json:"refund"`
}
