package transport

import (
	"context"

	"github.com/dmitrymomot/hookrelay/pkg/hook"
)

// Transport delivers one payload to one subscription. The body is the
// serialized payload envelope; headers carry the protocol headers the
// dispatcher built (content negotiation, user agent, app key, signature).
//
// Implementations make exactly one attempt and return the outcome. The
// returned error is informational: callers log it but never fail the job
// over it.
type Transport interface {
	Deliver(ctx context.Context, sub hook.Subscription, body []byte, headers map[string]string) error
}
