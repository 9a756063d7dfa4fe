// Package webhook receives and relays Salla order-lifecycle webhooks.
//
// Inbound requests are authenticated with a hex HMAC-SHA256 signature over the raw
// body. Once a payload verifies, the handler always acknowledges with 200: Salla's
// retry semantics key on the HTTP status, and a downstream notification failure must
// not trigger a redelivery storm. Dispatch outcomes are logged, never surfaced.
//
// The authorization event is the write path that seeds token records later rotated by
// the bulk refresh coordinator.
package webhook
