package tokenstore

import (
	"context"
	"errors"
	"iter"
)

// ErrUnavailable indicates the backing store could not be reached.
// Absence of a record is not an error; Get reports it with a nil record.
var ErrUnavailable = errors.New("token store unavailable")

// Store reads and writes merchant token records.
type Store interface {
	// Get returns the record for the merchant, or (nil, nil) if none exists.
	Get(ctx context.Context, merchant string) (*TenantToken, error)

	// Put replaces the merchant's record. Writes are last-write-wins: two overlapping
	// refreshes of the same merchant may lose one rotation. Repeating a Put with an
	// identical record is a no-op observably.
	Put(ctx context.Context, merchant string, token *TenantToken) error

	// Merchants enumerates all merchants with a stored record in a single lazy pass.
	// The sequence is non-restartable and its ordering is unspecified. A backend
	// failure yields one non-nil error and ends the sequence. Merchants may be added
	// or removed concurrently; callers must tolerate Get returning absent for an
	// enumerated merchant.
	Merchants(ctx context.Context) iter.Seq2[string, error]
}
