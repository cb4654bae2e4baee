package dispatch_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/hookrelay/pkg/dispatch"
	"github.com/dmitrymomot/hookrelay/pkg/hook"
	"github.com/dmitrymomot/hookrelay/pkg/queue"
	"github.com/dmitrymomot/hookrelay/pkg/registry"
	"github.com/dmitrymomot/hookrelay/pkg/signature"
)

// captureDriver records enqueued jobs without consuming them.
type captureDriver struct {
	mu   sync.Mutex
	jobs []capturedJob
}

type capturedJob struct {
	queue string
	job   hook.Job
}

func (d *captureDriver) Enqueue(ctx context.Context, queueName string, job hook.Job) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.jobs = append(d.jobs, capturedJob{queue: queueName, job: job})
	return nil
}

func (d *captureDriver) Process(queueName string, h queue.Handler) error { return nil }
func (d *captureDriver) Start(ctx context.Context) error                 { return nil }
func (d *captureDriver) Stop() error                                     { return nil }

func (d *captureDriver) all() []capturedJob {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]capturedJob{}, d.jobs...)
}

func subscribedApp(kinds ...hook.Kind) *hook.App {
	app := &hook.App{
		ID:     "app-1",
		Key:    "key-1",
		Secret: "abc",
		Webhooks: []hook.Subscription{
			{URL: "https://example.com/hook", EventTypes: kinds},
		},
	}
	app.RefreshWebhookFlags()
	return app
}

func newProducer(driver *captureDriver, cfg dispatch.Config) *dispatch.Dispatcher {
	return dispatch.New(registry.NewMemory(), driver, cfg, dispatch.WithLogger(discardLogger()))
}

func decodePayload(t *testing.T, job hook.Job) hook.Payload {
	t.Helper()
	payload, err := job.DecodePayload()
	require.NoError(t, err)
	return payload
}

func TestSendShortCircuitsWithoutSubscribers(t *testing.T) {
	t.Parallel()

	driver := &captureDriver{}
	d := newProducer(driver, dispatch.Config{})

	app := subscribedApp(hook.KindMemberAdded) // not client events

	require.NoError(t, d.SendClientEvent(context.Background(), app, "ch", "ev", nil, "", ""))
	require.NoError(t, d.SendChannelVacated(context.Background(), app, "ch"))
	require.NoError(t, d.SendCacheMissed(context.Background(), app, "ch"))

	assert.Empty(t, driver.all(), "events without subscribers never reach the queue")
}

func TestSendBuildsSignedJob(t *testing.T) {
	t.Parallel()

	driver := &captureDriver{}
	d := newProducer(driver, dispatch.Config{})

	app := subscribedApp(hook.KindClientEvent)
	before := time.Now().UnixMilli()
	require.NoError(t, d.SendClientEvent(context.Background(), app, "private-x", "client-typing", "payload", "sock-1", ""))
	after := time.Now().UnixMilli()

	jobs := driver.all()
	require.Len(t, jobs, 1)
	assert.Equal(t, hook.QueueClientEvent, jobs[0].queue)

	job := jobs[0].job
	assert.Equal(t, "key-1", job.AppKey)
	assert.Equal(t, "app-1", job.AppID)

	payload := decodePayload(t, job)
	assert.GreaterOrEqual(t, payload.TimeMS, before)
	assert.LessOrEqual(t, payload.TimeMS, after)

	require.Len(t, payload.Events, 1)
	ev := payload.Events[0]
	assert.Equal(t, hook.KindClientEvent, ev.Name)
	assert.Equal(t, "sock-1", ev.SocketID)

	// Signature invariant: the carried signature matches the signed bytes
	// the job transports, under the app secret.
	assert.True(t, signature.Verify(job.Payload, "abc", job.Signature))
}

func TestSendClientEventUserIDOnlyOnPresenceChannels(t *testing.T) {
	t.Parallel()

	driver := &captureDriver{}
	d := newProducer(driver, dispatch.Config{})
	app := subscribedApp(hook.KindClientEvent)

	require.NoError(t, d.SendClientEvent(context.Background(), app, "private-x", "ev", nil, "", "u1"))
	require.NoError(t, d.SendClientEvent(context.Background(), app, "presence-room", "ev", nil, "", "u1"))

	jobs := driver.all()
	require.Len(t, jobs, 2)
	assert.Empty(t, decodePayload(t, jobs[0].job).Events[0].UserID, "user id dropped on non-presence channels")
	assert.Equal(t, "u1", decodePayload(t, jobs[1].job).Events[0].UserID)
}

func TestSendRoutesKindsToQueues(t *testing.T) {
	t.Parallel()

	driver := &captureDriver{}
	d := newProducer(driver, dispatch.Config{})
	app := subscribedApp(
		hook.KindMemberAdded, hook.KindMemberRemoved,
		hook.KindChannelOccupied, hook.KindChannelVacated, hook.KindCacheMissed,
	)

	ctx := context.Background()
	require.NoError(t, d.SendMemberAdded(ctx, app, "presence-room", "u1"))
	require.NoError(t, d.SendMemberRemoved(ctx, app, "presence-room", "u1"))
	require.NoError(t, d.SendChannelOccupied(ctx, app, "room"))
	require.NoError(t, d.SendChannelVacated(ctx, app, "room"))
	require.NoError(t, d.SendCacheMissed(ctx, app, "cache-room"))

	jobs := driver.all()
	require.Len(t, jobs, 5)
	assert.Equal(t, hook.QueueMemberAdded, jobs[0].queue)
	assert.Equal(t, hook.QueueMemberRemoved, jobs[1].queue)
	assert.Equal(t, hook.QueueChannelOccupied, jobs[2].queue)
	assert.Equal(t, hook.QueueChannelVacated, jobs[3].queue)
	assert.Equal(t, hook.QueueCacheMissed, jobs[4].queue)

	assert.Equal(t, "u1", decodePayload(t, jobs[0].job).Events[0].UserID)
}

func TestBatchingMergesEventsWithinWindow(t *testing.T) {
	t.Parallel()

	driver := &captureDriver{}
	d := newProducer(driver, dispatch.Config{
		BatchingEnabled:  true,
		BatchingDuration: 40 * time.Millisecond,
	})
	app := subscribedApp(hook.KindClientEvent)

	ctx := context.Background()
	require.NoError(t, d.SendClientEvent(ctx, app, "ch", "e1", nil, "", ""))
	require.NoError(t, d.SendClientEvent(ctx, app, "ch", "e2", nil, "", ""))
	require.NoError(t, d.SendClientEvent(ctx, app, "ch", "e3", nil, "", ""))

	assert.Empty(t, driver.all(), "nothing enqueued before the window closes")

	waitFor(t, func() bool { return len(driver.all()) == 1 })

	job := driver.all()[0].job
	payload := decodePayload(t, job)
	require.Len(t, payload.Events, 3)
	// Call order is preserved inside the merged payload.
	assert.Equal(t, "e1", payload.Events[0].Event)
	assert.Equal(t, "e2", payload.Events[1].Event)
	assert.Equal(t, "e3", payload.Events[2].Event)

	// The merged payload is signed as one unit.
	assert.True(t, signature.Verify(job.Payload, "abc", job.Signature))
}

func TestBatchingSplitWindowsProduceSeparateJobs(t *testing.T) {
	t.Parallel()

	driver := &captureDriver{}
	d := newProducer(driver, dispatch.Config{
		BatchingEnabled:  true,
		BatchingDuration: 30 * time.Millisecond,
	})
	app := subscribedApp(hook.KindClientEvent)

	ctx := context.Background()
	require.NoError(t, d.SendClientEvent(ctx, app, "ch", "w1-a", nil, "", ""))
	require.NoError(t, d.SendClientEvent(ctx, app, "ch", "w1-b", nil, "", ""))

	waitFor(t, func() bool { return len(driver.all()) == 1 })

	require.NoError(t, d.SendClientEvent(ctx, app, "ch", "w2-a", nil, "", ""))

	waitFor(t, func() bool { return len(driver.all()) == 2 })

	jobs := driver.all()
	first := decodePayload(t, jobs[0].job)
	second := decodePayload(t, jobs[1].job)
	require.Len(t, first.Events, 2)
	require.Len(t, second.Events, 1)
	assert.Equal(t, "w1-a", first.Events[0].Event)
	assert.Equal(t, "w1-b", first.Events[1].Event)
	assert.Equal(t, "w2-a", second.Events[0].Event)
}

func TestBatchingKeepsQueuesSeparate(t *testing.T) {
	t.Parallel()

	driver := &captureDriver{}
	d := newProducer(driver, dispatch.Config{
		BatchingEnabled:  true,
		BatchingDuration: 30 * time.Millisecond,
	})
	app := subscribedApp(hook.KindMemberAdded, hook.KindMemberRemoved)

	ctx := context.Background()
	require.NoError(t, d.SendMemberAdded(ctx, app, "presence-room", "u1"))
	require.NoError(t, d.SendMemberRemoved(ctx, app, "presence-room", "u2"))

	waitFor(t, func() bool { return len(driver.all()) == 2 })

	queues := map[string]int{}
	for _, j := range driver.all() {
		queues[j.queue]++
	}
	assert.Equal(t, map[string]int{
		hook.QueueMemberAdded:   1,
		hook.QueueMemberRemoved: 1,
	}, queues)
}

func TestBatchingConcurrentProducersSingleJob(t *testing.T) {
	t.Parallel()

	driver := &captureDriver{}
	d := newProducer(driver, dispatch.Config{
		BatchingEnabled:  true,
		BatchingDuration: 50 * time.Millisecond,
	})
	app := subscribedApp(hook.KindClientEvent)

	const producers = 20
	var wg sync.WaitGroup
	wg.Add(producers)
	for range producers {
		go func() {
			defer wg.Done()
			_ = d.SendClientEvent(context.Background(), app, "ch", "ev", nil, "", "")
		}()
	}
	wg.Wait()

	waitFor(t, func() bool { return len(driver.all()) >= 1 })
	settle()

	// Exactly one leader flushed exactly one job carrying every event.
	jobs := driver.all()
	require.Len(t, jobs, 1)
	assert.Len(t, decodePayload(t, jobs[0].job).Events, producers)
}
