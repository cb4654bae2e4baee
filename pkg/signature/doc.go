// Package signature computes and verifies keyed integrity signatures for
// webhook payloads.
//
// Every payload handed to the delivery queue carries an HMAC-SHA256 hex
// digest computed over its canonical JSON serialization with the owning
// application's secret. Consumers recompute the digest before delivery to
// detect tampering or a stale secret, and subscribers can use the same
// scheme to authenticate inbound webhooks.
//
// # Usage
//
//	sig := signature.Sign(body, app.Secret)
//	if !signature.Verify(body, app.Secret, sig) {
//	    // reject the payload
//	}
//
// Sign is a pure function: identical input bytes and secret always produce
// the same digest. An empty secret is accepted and treated as a zero-length
// signing key.
package signature
