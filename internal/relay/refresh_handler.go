package relay

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/soukly/salla-relay/internal/refresh"
)

// refreshRunner runs one bulk refresh pass. Satisfied by *refresh.Coordinator.
type refreshRunner interface {
	Run(ctx context.Context) (*refresh.Report, error)
}

// refreshResponse is the bulk refresh endpoint's success body.
type refreshResponse struct {
	Success   bool             `json:"success"`
	Refreshed int              `json:"refreshed"`
	Results   []refresh.Result `json:"results"`
}

// RefreshHandler triggers a bulk token refresh. It is meant for the scheduler (or an
// operator) and is guarded by a shared bearer secret.
type RefreshHandler struct {
	secret string
	runner refreshRunner
}

// Compile-time check that RefreshHandler implements http.Handler
var _ http.Handler = (*RefreshHandler)(nil)

// NewRefreshHandler creates a RefreshHandler guarded by the given secret.
func NewRefreshHandler(secret string, runner refreshRunner) *RefreshHandler {
	return &RefreshHandler{
		secret: secret,
		runner: runner,
	}
}

// ServeHTTP implements http.Handler.
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	expected := "Bearer " + h.secret
	auth := r.Header.Get("Authorization")
	if h.secret == "" || subtle.ConstantTimeCompare([]byte(auth), []byte(expected)) != 1 {
		writeJSONError(ctx, w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	report, err := h.runner.Run(ctx)
	if err != nil {
		// Only enumeration-level failure reaches here; per-merchant failures are in
		// the report.
		slog.ErrorContext(ctx, "bulk token refresh aborted", "error", err)
		writeJSONError(ctx, w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(ctx, w, refreshResponse{
		Success:   true,
		Refreshed: report.Refreshed(),
		Results:   report.Results,
	}, http.StatusOK)
}
