// Package refresh rotates every merchant's OAuth tokens in a single coordinated pass.
package refresh

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/soukly/salla-relay/internal/oauth"
	"github.com/soukly/salla-relay/internal/tokenstore"
)

// Refresher performs a single refresh-token exchange.
// Satisfied by *oauth.Client.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (oauth.Credentials, error)
}

// Result is the outcome of one merchant's refresh attempt.
type Result struct {
	Merchant string `json:"merchant"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

// Report aggregates the outcomes of one bulk refresh run.
type Report struct {
	Results []Result `json:"results"`
}

// Refreshed returns the number of merchants considered, successes and failures alike.
// Merchants whose record disappeared between enumeration and lookup are not counted.
func (r *Report) Refreshed() int {
	return len(r.Results)
}

// Succeeded returns the number of merchants whose tokens were rotated and stored.
func (r *Report) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.Success {
			n++
		}
	}
	return n
}

// Failed returns the number of merchants with a recorded failure.
func (r *Report) Failed() int {
	return len(r.Results) - r.Succeeded()
}

// Default coordinator tuning.
const (
	DefaultConcurrency   = 4
	DefaultTenantTimeout = 30 * time.Second
)

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithConcurrency bounds how many merchants are refreshed in parallel.
func WithConcurrency(n int) CoordinatorOption {
	return func(c *Coordinator) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithTenantTimeout bounds one merchant's read-refresh-write sequence.
func WithTenantTimeout(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// Coordinator refreshes every stored merchant's tokens with full isolation between
// merchants: one merchant's failure is recorded and never aborts the others.
type Coordinator struct {
	store       tokenstore.Store
	refresher   Refresher
	concurrency int
	timeout     time.Duration
}

// New creates a Coordinator over the given store and refresher.
func New(store tokenstore.Store, refresher Refresher, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		store:       store,
		refresher:   refresher,
		concurrency: DefaultConcurrency,
		timeout:     DefaultTenantTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run executes one bulk refresh over all currently enumerable merchants.
//
// Enumeration failure aborts the run before any refresh call is issued. Everything
// downstream of a successfully enumerated merchant list is isolated per merchant and
// ends up in the report. Results are sorted by merchant id for a stable report;
// processing order is unspecified.
func (c *Coordinator) Run(ctx context.Context) (*Report, error) {
	logger := slog.With("run_id", uuid.NewString())

	// Drain enumeration fully first so a store failure here issues zero refresh calls.
	var merchants []string
	for merchant, err := range c.store.Merchants(ctx) {
		if err != nil {
			return nil, fmt.Errorf("enumerate merchants: %w", err)
		}
		merchants = append(merchants, merchant)
	}

	logger.InfoContext(ctx, "starting bulk token refresh", "merchants", len(merchants))

	var (
		mu      sync.Mutex
		results = make([]Result, 0, len(merchants))
	)

	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for _, merchant := range merchants {
		g.Go(func() error {
			result, considered := c.refreshOne(ctx, logger, merchant)
			if considered {
				mu.Lock()
				results = append(results, result)
				mu.Unlock()
			}
			return nil
		})
	}
	// Workers never return errors; failures are recorded per merchant.
	_ = g.Wait()

	slices.SortFunc(results, func(a, b Result) int {
		return cmp.Compare(a.Merchant, b.Merchant)
	})

	report := &Report{Results: results}
	logger.InfoContext(ctx, "bulk token refresh finished",
		"refreshed", report.Refreshed(), "succeeded", report.Succeeded(), "failed", report.Failed())
	return report, nil
}

// refreshOne runs the read-refresh-write sequence for one merchant.
// The second return value is false when the merchant's record was absent, which is a
// skip rather than a failure.
func (c *Coordinator) refreshOne(ctx context.Context, logger *slog.Logger, merchant string) (Result, bool) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	token, err := c.store.Get(ctx, merchant)
	if err != nil {
		logger.ErrorContext(ctx, "failed to load tokens", "merchant", merchant, "error", err)
		return Result{Merchant: merchant, Error: err.Error()}, true
	}
	if token == nil {
		// Removed between enumeration and lookup.
		logger.DebugContext(ctx, "no token record for enumerated merchant", "merchant", merchant)
		return Result{}, false
	}

	creds, err := c.refresher.Refresh(ctx, token.RefreshToken)
	if err != nil {
		logger.ErrorContext(ctx, "token refresh failed", "merchant", merchant, "error", err)
		return Result{Merchant: merchant, Error: err.Error()}, true
	}

	rotated := &tokenstore.TenantToken{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		ExpiresAt:    creds.ExpiresAt.UnixMilli(),
		Merchant:     merchant,
	}
	if err := c.store.Put(ctx, merchant, rotated); err != nil {
		// The provider has already rotated the refresh token; losing this write means
		// the merchant needs re-authorization once the stored token goes stale.
		logger.ErrorContext(ctx, "failed to persist rotated tokens", "merchant", merchant, "error", err)
		return Result{Merchant: merchant, Error: err.Error()}, true
	}

	logger.InfoContext(ctx, "token refreshed", "merchant", merchant)
	return Result{Merchant: merchant, Success: true}, true
}
