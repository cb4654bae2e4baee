package hook

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind identifies the category of a webhook event.
type Kind string

const (
	KindClientEvent     Kind = "client_event"
	KindMemberAdded     Kind = "member_added"
	KindMemberRemoved   Kind = "member_removed"
	KindChannelVacated  Kind = "channel_vacated"
	KindChannelOccupied Kind = "channel_occupied"
	KindCacheMissed     Kind = "cache_missed"
)

// Queue context names, one independent consumer stream per event kind.
const (
	QueueClientEvent     = "client_event_webhooks"
	QueueMemberAdded     = "member_added_webhooks"
	QueueMemberRemoved   = "member_removed_webhooks"
	QueueChannelVacated  = "channel_vacated_webhooks"
	QueueChannelOccupied = "channel_occupied_webhooks"
	QueueCacheMissed     = "cache_miss_webhooks"
)

// Queues lists every queue context the dispatch worker consumes.
func Queues() []string {
	return []string{
		QueueClientEvent,
		QueueMemberAdded,
		QueueMemberRemoved,
		QueueChannelVacated,
		QueueChannelOccupied,
		QueueCacheMissed,
	}
}

// Queue returns the queue context carrying events of this kind.
// Returns an empty string for unknown kinds.
func (k Kind) Queue() string {
	switch k {
	case KindClientEvent:
		return QueueClientEvent
	case KindMemberAdded:
		return QueueMemberAdded
	case KindMemberRemoved:
		return QueueMemberRemoved
	case KindChannelVacated:
		return QueueChannelVacated
	case KindChannelOccupied:
		return QueueChannelOccupied
	case KindCacheMissed:
		return QueueCacheMissed
	}
	return ""
}

// Valid reports whether k is one of the known event kinds.
func (k Kind) Valid() bool {
	return k.Queue() != ""
}

// Event is a single notification record. Events are immutable once created:
// the dispatcher copies slices, never mutates elements.
type Event struct {
	Name    Kind   `json:"name"`
	Channel string `json:"channel"`

	// Client event fields, empty for lifecycle events.
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`

	SocketID string `json:"socket_id,omitempty"`
	UserID   string `json:"user_id,omitempty"`
}

// Payload is the timestamped envelope delivered to subscribers. The
// integrity signature is computed over the canonical JSON of this struct
// but transmitted alongside it, never inside it.
type Payload struct {
	TimeMS int64   `json:"time_ms"`
	Events []Event `json:"events"`
}

// Job is one unit of queued work: a signed payload plus the identity of the
// application that owns it. Payload holds the exact serialized envelope the
// signature was computed over; it is carried as raw bytes so queue codecs
// cannot disturb the signed form (re-encoding free-form event data could
// reorder object keys and invalidate the signature).
type Job struct {
	AppKey    string          `json:"app_key"`
	AppID     string          `json:"app_id"`
	Payload   json.RawMessage `json:"payload"`
	Signature string          `json:"signature"`
}

// DecodePayload unmarshals the signed envelope bytes.
func (j Job) DecodePayload() (Payload, error) {
	var p Payload
	if err := json.Unmarshal(j.Payload, &p); err != nil {
		return Payload{}, fmt.Errorf("failed to decode job payload: %w", err)
	}
	return p, nil
}

// IsPresenceChannel reports whether channel is a presence channel. User
// identity is only attached to client events raised on presence channels.
func IsPresenceChannel(channel string) bool {
	return strings.HasPrefix(channel, "presence-")
}
