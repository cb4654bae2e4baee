// Package transport implements the two webhook delivery mechanisms: HTTP
// callbacks and AWS Lambda invocations.
//
// Both satisfy the Transport interface. A transport attempts exactly one
// delivery and reports the outcome as an error value; it never retries and
// never logs. Retry semantics belong to the queue that redelivers jobs, and
// the dispatch fan-out decides what to do with failures: log and move on,
// since a failed attempt must not abort sibling subscriptions.
//
// The HTTP transport shares one pooled http.Client across all requests. The
// Lambda transport lazily builds one SDK client per region/endpoint pair and
// supports both request-response and fire-and-forget invocation modes.
package transport
