package registry

import (
	"context"
	"sync"

	"github.com/dmitrymomot/hookrelay/pkg/hook"
)

// Registry resolves an application by its public key.
type Registry interface {
	// FindByKey returns the app owning the given public key, or
	// ErrAppNotFound when no app matches.
	FindByKey(ctx context.Context, key string) (*hook.App, error)
}

// Memory is a Registry backed by a seeded map. Apps can be added and
// removed at runtime; reads return copies so callers cannot mutate the
// stored record.
type Memory struct {
	mu   sync.RWMutex
	apps map[string]hook.App
}

// NewMemory creates an in-memory registry seeded with the given apps.
func NewMemory(apps ...hook.App) *Memory {
	m := &Memory{apps: make(map[string]hook.App, len(apps))}
	for _, app := range apps {
		m.Upsert(app)
	}
	return m
}

// Upsert stores or replaces an app, refreshing its webhook flags.
func (m *Memory) Upsert(app hook.App) {
	app.RefreshWebhookFlags()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.apps[app.Key] = app
}

// Remove deletes the app with the given key, if present.
func (m *Memory) Remove(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.apps, key)
}

// FindByKey implements Registry.
func (m *Memory) FindByKey(ctx context.Context, key string) (*hook.App, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	app, ok := m.apps[key]
	if !ok {
		return nil, ErrAppNotFound
	}
	return &app, nil
}
