// Package hook defines the domain model of the webhook dispatch engine:
// applications (tenants) and their webhook subscriptions, notification
// events, the timestamped payload envelope, and the signed queue job.
//
// The types here are wire types. Their JSON field names are part of the
// protocol spoken to HTTP and Lambda subscribers and must not change:
// a payload serializes as {"time_ms": ..., "events": [...]}, and events use
// the name/channel/event/data/socket_id/user_id fields subscribers already
// parse.
//
// Subscription.Match implements per-subscription event filtering: kind
// membership plus optional channel-name prefix/suffix predicates. Filtering
// preserves event order and is idempotent, which the dispatcher relies on
// when deciding whether an outgoing payload needs a fresh signature.
package hook
