package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/hookrelay/pkg/hook"
	"github.com/dmitrymomot/hookrelay/pkg/signature"
)

// SendClientEvent queues a notification for a client-originated event.
// SocketID is attached when present; UserID only on presence channels.
func (d *Dispatcher) SendClientEvent(ctx context.Context, app *hook.App, channel, event string, data any, socketID, userID string) error {
	if !app.HasClientEventWebhooks {
		return nil
	}

	ev := hook.Event{
		Name:    hook.KindClientEvent,
		Channel: channel,
		Event:   event,
		Data:    data,
	}
	if socketID != "" {
		ev.SocketID = socketID
	}
	if userID != "" && hook.IsPresenceChannel(channel) {
		ev.UserID = userID
	}
	return d.send(ctx, app, ev)
}

// SendMemberAdded queues a notification for a member joining a presence
// channel.
func (d *Dispatcher) SendMemberAdded(ctx context.Context, app *hook.App, channel, userID string) error {
	if !app.HasMemberAddedWebhooks {
		return nil
	}
	return d.send(ctx, app, hook.Event{
		Name:    hook.KindMemberAdded,
		Channel: channel,
		UserID:  userID,
	})
}

// SendMemberRemoved queues a notification for a member leaving a presence
// channel.
func (d *Dispatcher) SendMemberRemoved(ctx context.Context, app *hook.App, channel, userID string) error {
	if !app.HasMemberRemovedWebhooks {
		return nil
	}
	return d.send(ctx, app, hook.Event{
		Name:    hook.KindMemberRemoved,
		Channel: channel,
		UserID:  userID,
	})
}

// SendChannelOccupied queues a notification for a channel gaining its first
// subscriber.
func (d *Dispatcher) SendChannelOccupied(ctx context.Context, app *hook.App, channel string) error {
	if !app.HasChannelOccupiedWebhooks {
		return nil
	}
	return d.send(ctx, app, hook.Event{
		Name:    hook.KindChannelOccupied,
		Channel: channel,
	})
}

// SendChannelVacated queues a notification for a channel losing its last
// subscriber.
func (d *Dispatcher) SendChannelVacated(ctx context.Context, app *hook.App, channel string) error {
	if !app.HasChannelVacatedWebhooks {
		return nil
	}
	return d.send(ctx, app, hook.Event{
		Name:    hook.KindChannelVacated,
		Channel: channel,
	})
}

// SendCacheMissed queues a notification for a read on a cache channel with
// no cached content.
func (d *Dispatcher) SendCacheMissed(ctx context.Context, app *hook.App, channel string) error {
	if !app.HasCacheMissedWebhooks {
		return nil
	}
	return d.send(ctx, app, hook.Event{
		Name:    hook.KindCacheMissed,
		Channel: channel,
	})
}

// send routes one event to its queue context, either directly or through
// the batching window.
func (d *Dispatcher) send(ctx context.Context, app *hook.App, ev hook.Event) error {
	queueName := ev.Name.Queue()
	if queueName == "" {
		return fmt.Errorf("unknown event kind %q", ev.Name)
	}

	if d.cfg.BatchingEnabled {
		d.batcher.add(app, queueName, ev)
		return nil
	}
	return d.enqueue(ctx, app, queueName, []hook.Event{ev}, time.Now())
}

// enqueue builds the payload envelope, signs its serialization with the app
// secret, and hands the job to the queue. The job carries the signed bytes
// verbatim, so job.Signature matches job.Payload until a filtering step
// changes the outgoing event set.
func (d *Dispatcher) enqueue(ctx context.Context, app *hook.App, queueName string, events []hook.Event, now time.Time) error {
	if len(events) == 0 {
		return nil
	}

	payload := hook.Payload{
		TimeMS: now.UnixMilli(),
		Events: events,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	job := hook.Job{
		AppKey:    app.Key,
		AppID:     app.ID,
		Payload:   body,
		Signature: signature.Sign(body, app.Secret),
	}
	if err := d.driver.Enqueue(ctx, queueName, job); err != nil {
		return fmt.Errorf("failed to enqueue webhook job: %w", err)
	}

	if d.cfg.Debug {
		d.logger.Debug("webhook job enqueued",
			slog.String("queue", queueName),
			slog.String("app_key", app.Key),
			slog.Int("events", len(events)))
	}
	return nil
}

// flushBatch is invoked by the batching leader when its window closes.
func (d *Dispatcher) flushBatch(app *hook.App, queueName string, events []hook.Event) {
	if err := d.enqueue(context.Background(), app, queueName, events, time.Now()); err != nil {
		d.logger.Error("failed to flush webhook batch",
			slog.String("queue", queueName),
			slog.String("app_key", app.Key),
			slog.Int("events", len(events)),
			slog.String("error", err.Error()))
	}
}
