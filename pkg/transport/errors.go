package transport

import "errors"

// Delivery errors, designed for errors.Is classification by the dispatcher.
// All of them are terminal for a single attempt: the queue, not the
// transport, owns redelivery.
var (
	// ErrInvalidURL is returned when a subscription URL is empty, malformed,
	// or uses a scheme other than http/https.
	ErrInvalidURL = errors.New("invalid webhook URL")

	// ErrDeliveryFailed wraps network-level failures of an HTTP attempt.
	ErrDeliveryFailed = errors.New("webhook delivery failed")

	// ErrUnexpectedStatus is returned when the subscriber answered outside
	// the 2xx range.
	ErrUnexpectedStatus = errors.New("webhook endpoint returned non-2xx status")

	// ErrInvocationFailed wraps Lambda invocation failures, including
	// in-function errors reported on request-response invocations.
	ErrInvocationFailed = errors.New("lambda invocation failed")

	// ErrNoTarget is returned when a subscription has neither an HTTP URL
	// nor a Lambda function configured.
	ErrNoTarget = errors.New("subscription has no delivery target")
)
