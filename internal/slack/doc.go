// Package slack authenticates Slack slash-command webhooks and models the
// request and response envelopes.
//
// # Signature Scheme
//
// Slack signs each request with the app's signing secret:
//
//	basestring := "v0:" + X-Slack-Request-Timestamp + ":" + rawBody
//	signature  := "v0=" + hex(HMAC-SHA256(secret, basestring))
//
// The Verifier recomputes the signature, compares it with crypto/subtle and
// rejects requests whose timestamp is more than five minutes from the receipt
// time. Accepted signatures are claimed in a replay.Guard so the same signed
// request cannot be accepted twice while it is still fresh.
//
// Verification is fail-closed: any missing header, parse error or guard error
// is a rejection. Rejection reasons are logged without the computed signature.
package slack
