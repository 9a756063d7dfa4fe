package relay

import (
	"net/http"

	"github.com/soukly/salla-relay/internal/tokenstore"
)

// healthResponse is the health probe's success body.
type healthResponse struct {
	Status string `json:"status"`
}

// HealthHandler probes the token store with a cheap read. Absence of the probe key is
// healthy; only an unreachable store fails the check.
type HealthHandler struct {
	store tokenstore.Store
}

// Compile-time check that HealthHandler implements http.Handler
var _ http.Handler = (*HealthHandler)(nil)

// NewHealthHandler creates a HealthHandler over the given store.
func NewHealthHandler(store tokenstore.Store) *HealthHandler {
	return &HealthHandler{store: store}
}

// ServeHTTP implements http.Handler.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, err := h.store.Get(ctx, "healthcheck"); err != nil {
		writeJSONError(ctx, w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeJSON(ctx, w, healthResponse{Status: "ok"}, http.StatusOK)
}
