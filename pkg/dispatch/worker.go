package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/hookrelay/pkg/async"
	"github.com/dmitrymomot/hookrelay/pkg/hook"
	"github.com/dmitrymomot/hookrelay/pkg/registry"
	"github.com/dmitrymomot/hookrelay/pkg/signature"
)

// Start registers the job consumer on all six queue contexts and launches
// the queue driver. Each context consumes independently, so a slow
// subscriber in one category never blocks the others.
func (d *Dispatcher) Start(ctx context.Context) error {
	for _, queueName := range hook.Queues() {
		if err := d.driver.Process(queueName, d.processJob); err != nil {
			return fmt.Errorf("failed to register consumer for %q: %w", queueName, err)
		}
	}
	return d.driver.Start(ctx)
}

// Stop shuts down consumption, waiting for in-flight jobs to finish their
// fan-out.
func (d *Dispatcher) Stop() error {
	return d.driver.Stop()
}

// processJob drives one job through the dispatch state machine: resolve the
// app, verify the carried signature, fan out to subscriptions, acknowledge.
// Returning nil acknowledges regardless of delivery outcomes; only a
// transient registry failure is surfaced for redelivery.
func (d *Dispatcher) processJob(ctx context.Context, job hook.Job) error {
	app, err := d.registry.FindByKey(ctx, job.AppKey)
	if err != nil {
		if errors.Is(err, registry.ErrAppNotFound) {
			// Non-recoverable: acknowledge so the queue does not spin on
			// a job whose app was deleted.
			d.logger.Error("dropping webhook job for unknown app",
				slog.String("app_key", job.AppKey),
				slog.String("app_id", job.AppID))
			return nil
		}
		return fmt.Errorf("failed to resolve app %q: %w", job.AppKey, err)
	}

	// Verify over the raw bytes signed at enqueue time. Decoding and
	// re-encoding the envelope here would reorder free-form event data
	// keys and break the signature for legitimate jobs.
	if !signature.Verify(job.Payload, app.Secret, job.Signature) {
		// Tampering or a rotated secret. Distinct from ordinary drops.
		d.logger.Warn("dropping webhook job with invalid signature",
			slog.String("app_key", job.AppKey),
			slog.String("app_id", job.AppID))
		return nil
	}

	payload, err := job.DecodePayload()
	if err != nil {
		d.logger.Error("dropping webhook job with malformed payload",
			slog.String("app_key", job.AppKey),
			slog.String("error", err.Error()))
		return nil
	}

	if d.cfg.Debug {
		d.logger.Debug("processing webhook job",
			slog.String("app_key", job.AppKey),
			slog.Int("events", len(payload.Events)))
	}

	// Fan out to every subscription concurrently and join before
	// acknowledging. A failed attempt never aborts its siblings.
	futures := make([]*async.Future, len(app.Webhooks))
	for i, sub := range app.Webhooks {
		futures[i] = async.Go(ctx, func(ctx context.Context) error {
			return d.deliverToSubscription(ctx, app, sub, job, payload)
		})
	}
	for i, err := range async.Join(futures...) {
		if err != nil && d.cfg.Debug {
			d.logger.Debug("webhook delivery attempt failed",
				slog.String("app_key", job.AppKey),
				slog.Int("subscription", i),
				slog.String("error", err.Error()))
		}
	}
	return nil
}

// deliverToSubscription filters the payload for one subscription and, when
// anything is left, delivers it through the matching transport. The signed
// bytes and signature are reused verbatim unless filtering changed the
// event set, in which case the filtered payload is re-signed with the app
// secret.
func (d *Dispatcher) deliverToSubscription(ctx context.Context, app *hook.App, sub hook.Subscription, job hook.Job, payload hook.Payload) error {
	matched := sub.Match(payload.Events)
	if len(matched) == 0 {
		return nil
	}

	body := []byte(job.Payload)
	sig := job.Signature
	if len(matched) != len(payload.Events) {
		filtered := hook.Payload{
			TimeMS: payload.TimeMS,
			Events: matched,
		}
		filteredBody, err := json.Marshal(filtered)
		if err != nil {
			return fmt.Errorf("failed to marshal filtered payload: %w", err)
		}
		body = filteredBody
		sig = signature.Sign(body, app.Secret)
	}

	headers := d.buildHeaders(sub.Headers, app.Key, sig)

	switch sub.Target() {
	case hook.TargetHTTP:
		return d.httpTransport.Deliver(ctx, sub, body, headers)
	case hook.TargetLambda:
		return d.lambdaTransport.Deliver(ctx, sub, body, headers)
	default:
		d.logger.Warn("subscription has no delivery target",
			slog.String("app_key", app.Key),
			slog.String("app_id", app.ID))
		return nil
	}
}
