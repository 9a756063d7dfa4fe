// Package oauth performs refresh-token exchanges against the Salla merchant platform.
//
// A refresh is a single outbound call with no side effects; persisting the rotated
// credentials is the caller's job. Failures split into two classes:
//   - ErrRefreshRejected: the provider answered with a non-success status. The refresh
//     token is expired, revoked, or the client credentials are wrong. Terminal for that
//     merchant until it re-authorizes.
//   - ErrNetwork: the exchange could not complete (timeout, connection failure,
//     malformed response). Transient; a later run may succeed.
package oauth
