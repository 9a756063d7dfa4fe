package webhook

import (
	"testing"
)

func TestVerifySignature(t *testing.T) {
	secret := "shhh"
	body := []byte(`{"event":"order.status.updated","data":{"id":42}}`)
	valid := Signature(secret, body)

	tests := []struct {
		name      string
		secret    string
		body      []byte
		signature string
		want      bool
	}{
		{
			name:      "correctly signed body accepted",
			secret:    secret,
			body:      body,
			signature: valid,
			want:      true,
		},
		{
			name:      "tampered body with unchanged signature rejected",
			secret:    secret,
			body:      []byte(`{"event":"order.status.updated","data":{"id":43}}`),
			signature: valid,
			want:      false,
		},
		{
			name:      "wrong secret rejected",
			secret:    "other",
			body:      body,
			signature: valid,
			want:      false,
		},
		{
			name:      "missing signature rejected",
			secret:    secret,
			body:      body,
			signature: "",
			want:      false,
		},
		{
			name:      "missing secret rejected",
			secret:    "",
			body:      body,
			signature: valid,
			want:      false,
		},
		{
			name:      "non-hex signature rejected",
			secret:    secret,
			body:      body,
			signature: "not-hex!",
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VerifySignature(tt.secret, tt.body, tt.signature); got != tt.want {
				t.Errorf("VerifySignature() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name string
		want StatusClass
	}{
		{"Paid", StatusPaid},
		{"paid", StatusPaid},
		{"Completed", StatusPaid},
		{"Cancelled", StatusCancelled},
		{"Canceled", StatusCancelled},
		{"Processing", StatusOther},
		{"Under Review", StatusOther},
		{"", StatusOther},
	}

	for _, tt := range tests {
		if got := ClassifyStatus(tt.name); got != tt.want {
			t.Errorf("ClassifyStatus(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestParseEvent(t *testing.T) {
	tests := []struct {
		in   string
		want Event
	}{
		{"app.store.authorize", EventAuthorize},
		{"order.status.updated", EventOrderStatusUpdated},
		{"order.canceled", EventOrderCanceled},
		{"order.created", EventOrderCreated},
		{"order.payment.updated", EventOrderPaymentUpdated},
		{"order.refunded", EventOrderRefunded},
		{"customer.login", EventUnknown},
		{"", EventUnknown},
	}

	for _, tt := range tests {
		if got := ParseEvent(tt.in); got != tt.want {
			t.Errorf("ParseEvent(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
