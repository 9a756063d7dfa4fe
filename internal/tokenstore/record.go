package tokenstore

import "time"

// TenantToken is a merchant's current OAuth credential pair.
// RefreshToken is single-use per rotation: after a successful refresh only the newly
// issued value is valid, so the stored record must always hold the latest pair.
type TenantToken struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	// ExpiresAt is the access token's expiry in epoch milliseconds, computed once at
	// issuance as now + expires_in.
	ExpiresAt int64  `json:"expires_at"`
	Merchant  string `json:"merchant"`
}

// ExpiryTime returns ExpiresAt as a time.Time.
func (t *TenantToken) ExpiryTime() time.Time {
	return time.UnixMilli(t.ExpiresAt)
}
