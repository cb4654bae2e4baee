package hook_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/hookrelay/pkg/hook"
)

func TestKindQueue(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "client_event_webhooks", hook.KindClientEvent.Queue())
	assert.Equal(t, "member_added_webhooks", hook.KindMemberAdded.Queue())
	assert.Equal(t, "member_removed_webhooks", hook.KindMemberRemoved.Queue())
	assert.Equal(t, "channel_vacated_webhooks", hook.KindChannelVacated.Queue())
	assert.Equal(t, "channel_occupied_webhooks", hook.KindChannelOccupied.Queue())
	// The cache queue name deliberately differs from the event kind.
	assert.Equal(t, "cache_miss_webhooks", hook.KindCacheMissed.Queue())

	assert.False(t, hook.Kind("unknown").Valid())
	assert.Len(t, hook.Queues(), 6)
}

func TestPayloadWireFormat(t *testing.T) {
	t.Parallel()

	p := hook.Payload{
		TimeMS: 1000,
		Events: []hook.Event{
			{Name: hook.KindClientEvent, Channel: "private-x"},
		},
	}

	body, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"time_ms":1000,"events":[{"name":"client_event","channel":"private-x"}]}`, string(body))
}

func TestEventOmitsEmptyFields(t *testing.T) {
	t.Parallel()

	body, err := json.Marshal(hook.Event{Name: hook.KindChannelOccupied, Channel: "room"})
	require.NoError(t, err)
	assert.Equal(t, `{"name":"channel_occupied","channel":"room"}`, string(body))
}

func TestSubscriptionTarget(t *testing.T) {
	t.Parallel()

	assert.Equal(t, hook.TargetHTTP, hook.Subscription{URL: "https://example.com"}.Target())
	assert.Equal(t, hook.TargetLambda, hook.Subscription{LambdaFunction: "fn"}.Target())
	assert.Equal(t, hook.TargetInvalid, hook.Subscription{}.Target())
	// URL wins on misconfiguration.
	assert.Equal(t, hook.TargetHTTP, hook.Subscription{URL: "https://example.com", LambdaFunction: "fn"}.Target())
}

func TestAppWebhookFlags(t *testing.T) {
	t.Parallel()

	app := &hook.App{
		ID:     "app-1",
		Key:    "key-1",
		Secret: "secret-1",
		Webhooks: []hook.Subscription{
			{URL: "https://example.com/a", EventTypes: []hook.Kind{hook.KindClientEvent, hook.KindMemberAdded}},
			{LambdaFunction: "fn", EventTypes: []hook.Kind{hook.KindCacheMissed}},
		},
	}
	app.RefreshWebhookFlags()

	assert.True(t, app.HasWebhooksFor(hook.KindClientEvent))
	assert.True(t, app.HasWebhooksFor(hook.KindMemberAdded))
	assert.True(t, app.HasWebhooksFor(hook.KindCacheMissed))
	assert.False(t, app.HasWebhooksFor(hook.KindMemberRemoved))
	assert.False(t, app.HasWebhooksFor(hook.KindChannelVacated))
	assert.False(t, app.HasWebhooksFor(hook.KindChannelOccupied))
}

func TestIsPresenceChannel(t *testing.T) {
	t.Parallel()

	assert.True(t, hook.IsPresenceChannel("presence-room"))
	assert.False(t, hook.IsPresenceChannel("private-room"))
	assert.False(t, hook.IsPresenceChannel(""))
}
