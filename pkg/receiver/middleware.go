package receiver

import (
	"bytes"
	"io"
	"net/http"

	"github.com/dmitrymomot/hookrelay/pkg/dispatch"
	"github.com/dmitrymomot/hookrelay/pkg/signature"
)

// DefaultMaxBodySize caps how much of a request body the middleware reads
// while verifying. Webhook payloads are small; anything bigger is suspect.
const DefaultMaxBodySize = 1 << 20 // 1 MiB

// SecretFunc resolves the signing secret for an app key. Returning false
// rejects the request.
type SecretFunc func(key string) (secret string, ok bool)

// Option configures the middleware.
type Option func(*options)

type options struct {
	maxBodySize int64
}

// WithMaxBodySize overrides the verification body-size cap.
func WithMaxBodySize(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxBodySize = n
		}
	}
}

// VerifySignature returns chi-compatible middleware that authenticates
// inbound webhook deliveries. The body is restored afterwards so downstream
// handlers can read it normally.
func VerifySignature(secretFor SecretFunc, opts ...Option) func(http.Handler) http.Handler {
	o := &options{maxBodySize: DefaultMaxBodySize}
	for _, opt := range opts {
		opt(o)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(dispatch.HeaderKey)
			sig := r.Header.Get(dispatch.HeaderSignature)
			if key == "" || sig == "" {
				http.Error(w, "missing webhook signature headers", http.StatusUnauthorized)
				return
			}

			secret, ok := secretFor(key)
			if !ok {
				http.Error(w, "unknown app key", http.StatusUnauthorized)
				return
			}

			body, err := io.ReadAll(io.LimitReader(r.Body, o.maxBodySize+1))
			if err != nil {
				http.Error(w, "failed to read request body", http.StatusBadRequest)
				return
			}
			_ = r.Body.Close()
			if int64(len(body)) > o.maxBodySize {
				http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
				return
			}

			if !signature.Verify(body, secret, sig) {
				http.Error(w, "invalid webhook signature", http.StatusUnauthorized)
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r)
		})
	}
}
