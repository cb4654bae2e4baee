// Package dispatch is the webhook dispatch engine: it turns events raised
// inside the service into signed queue jobs and consumes those jobs into
// HTTP and Lambda deliveries.
//
// # Producing
//
// The six Send* methods accept one event each. An event is dropped
// immediately when the owning app has no subscription for its kind. With
// batching disabled each event becomes one signed job; with batching
// enabled events raised within the configured window are merged into a
// single job per (app, queue) pair before being signed and enqueued.
//
// # Consuming
//
// Start registers a consumer on all six queue contexts. For every job the
// worker re-resolves the app, re-validates the job's integrity signature,
// filters events per subscription, re-signs the payload when filtering
// changed it, and fans deliveries out to all matching subscriptions
// concurrently. The job is acknowledged only after every subscription's
// attempt has resolved, but individual delivery failures are logged and
// swallowed: delivery is best-effort, redelivery policy belongs to the
// queue.
package dispatch
