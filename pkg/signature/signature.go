package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign computes the HMAC-SHA256 digest of payload keyed with secret and
// returns it as a lowercase hexadecimal string.
//
// An empty secret is a valid zero-length key: the digest is still well
// defined and stable, matching what subscribers compute on their side.
func Sign(payload []byte, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

// Verify reports whether sig is the signature of payload under secret.
// The comparison is constant-time to avoid leaking digest prefixes through
// timing side channels.
func Verify(payload []byte, secret, sig string) bool {
	expected := Sign(payload, secret)
	return hmac.Equal([]byte(expected), []byte(sig))
}
