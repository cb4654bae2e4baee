package dispatch

import (
	"sync"
	"time"

	"github.com/dmitrymomot/hookrelay/pkg/hook"
)

// batcher accumulates events for a short window and flushes them as one
// job. Buffers are keyed by (app, queue context); each buffer has at most
// one active flush timer, the "leader", no matter how many producers
// append concurrently.
type batcher struct {
	duration time.Duration
	flush    func(app *hook.App, queueName string, events []hook.Event)

	mu      sync.Mutex
	buffers map[string]*batchBuffer
}

type batchBuffer struct {
	mu        sync.Mutex
	app       *hook.App
	queueName string
	events    []hook.Event
	hasLeader bool
}

func newBatcher(duration time.Duration, flush func(*hook.App, string, []hook.Event)) *batcher {
	return &batcher{
		duration: duration,
		flush:    flush,
		buffers:  make(map[string]*batchBuffer),
	}
}

// add appends the event to its buffer and elects this producer as leader
// if no flush timer is pending. The leader's timer drains the buffer once,
// then releases leadership; events arriving after the drain start a fresh
// window.
func (b *batcher) add(app *hook.App, queueName string, ev hook.Event) {
	buf := b.bufferFor(app.ID, queueName)

	buf.mu.Lock()
	buf.app = app
	buf.queueName = queueName
	buf.events = append(buf.events, ev)
	lead := !buf.hasLeader
	if lead {
		buf.hasLeader = true
	}
	buf.mu.Unlock()

	if lead {
		time.AfterFunc(b.duration, func() { b.drain(buf) })
	}
}

func (b *batcher) drain(buf *batchBuffer) {
	buf.mu.Lock()
	app := buf.app
	queueName := buf.queueName
	events := buf.events
	buf.events = nil
	buf.hasLeader = false
	buf.mu.Unlock()

	if len(events) > 0 {
		b.flush(app, queueName, events)
	}
}

func (b *batcher) bufferFor(appID, queueName string) *batchBuffer {
	key := appID + "|" + queueName

	b.mu.Lock()
	defer b.mu.Unlock()

	buf, ok := b.buffers[key]
	if !ok {
		buf = &batchBuffer{}
		b.buffers[key] = buf
	}
	return buf
}
