package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/hookrelay/pkg/hook"
)

// PostgresConfig describes the connection to the apps database.
type PostgresConfig struct {
	ConnectionURL  string        `env:"HOOKRELAY_DATABASE_URL,required"`
	ConnectTimeout time.Duration `env:"HOOKRELAY_DATABASE_CONNECT_TIMEOUT" envDefault:"30s"`
}

// ConnectPostgres opens a pgx pool and verifies the connection.
func ConnectPostgres(ctx context.Context, cfg PostgresConfig) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.ConnectionURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database is not reachable: %w", err)
	}
	return pool, nil
}

// pgQuerier is the subset of pgxpool.Pool the registry uses; mockable in tests.
type pgQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres is a Registry reading apps from a Postgres table. The webhooks
// column holds the subscription list as JSONB; per-kind flags are derived
// on load rather than stored.
type Postgres struct {
	db    pgQuerier
	table string
}

// PostgresOption configures the Postgres registry.
type PostgresOption func(*Postgres)

// WithTable overrides the apps table name.
func WithTable(table string) PostgresOption {
	return func(r *Postgres) {
		if table != "" {
			r.table = table
		}
	}
}

// NewPostgres creates a Postgres-backed registry.
func NewPostgres(db pgQuerier, opts ...PostgresOption) *Postgres {
	r := &Postgres{db: db, table: "apps"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FindByKey implements Registry.
func (r *Postgres) FindByKey(ctx context.Context, key string) (*hook.App, error) {
	query := fmt.Sprintf(`SELECT id, key, secret, webhooks FROM %s WHERE key = $1`, r.table)

	var (
		app      hook.App
		webhooks []byte
	)
	err := r.db.QueryRow(ctx, query, key).Scan(&app.ID, &app.Key, &app.Secret, &webhooks)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}

	if len(webhooks) > 0 {
		if err := json.Unmarshal(webhooks, &app.Webhooks); err != nil {
			return nil, fmt.Errorf("%w: app %s: %w", ErrInvalidWebhooks, app.ID, err)
		}
	}
	app.RefreshWebhookFlags()

	return &app, nil
}
