package relay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/soukly/salla-relay/internal/refresh"
)

type fakeRunner struct {
	report *refresh.Report
	err    error
	calls  int
}

func (f *fakeRunner) Run(ctx context.Context) (*refresh.Report, error) {
	f.calls++
	return f.report, f.err
}

func TestRefreshHandler_RejectsBadBearer(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong secret", "Bearer wrong"},
		{"no bearer prefix", "cron-secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{report: &refresh.Report{}}
			handler := NewRefreshHandler("cron-secret", runner)

			req := httptest.NewRequest(http.MethodPost, "/api/refresh-tokens", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
			if runner.calls != 0 {
				t.Fatalf("unauthorized request triggered a refresh run")
			}
		})
	}
}

func TestRefreshHandler_ReturnsReport(t *testing.T) {
	runner := &fakeRunner{report: &refresh.Report{Results: []refresh.Result{
		{Merchant: "a", Success: true},
		{Merchant: "b", Success: false, Error: "refresh token rejected by provider"},
	}}}
	handler := NewRefreshHandler("cron-secret", runner)

	req := httptest.NewRequest(http.MethodPost, "/api/refresh-tokens", nil)
	req.Header.Set("Authorization", "Bearer cron-secret")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Success   bool             `json:"success"`
		Refreshed int              `json:"refreshed"`
		Results   []refresh.Result `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.Refreshed != 2 || len(resp.Results) != 2 {
		t.Fatalf("response = %+v", resp)
	}
}

func TestRefreshHandler_EnumerationFailureReturns500(t *testing.T) {
	runner := &fakeRunner{err: errors.New("enumerate merchants: token store unavailable")}
	handler := NewRefreshHandler("cron-secret", runner)

	req := httptest.NewRequest(http.MethodPost, "/api/refresh-tokens", nil)
	req.Header.Set("Authorization", "Bearer cron-secret")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Error == "" {
		t.Fatalf("500 response missing error detail")
	}
}
