package mongo

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// New creates a MongoDB client, retrying the initial connection per the
// config. Every attempt is verified with a ping so the returned client is
// actually usable, not just constructed.
func New(ctx context.Context, cfg Config) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(cfg.ConnectionURL).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize).
		SetMaxConnIdleTime(cfg.MaxConnIdleTime).
		SetRetryWrites(cfg.RetryWrites).
		SetRetryReads(cfg.RetryReads)

	attempts := cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, errors.Join(ErrFailedToConnectToMongo, ctx.Err())
			case <-time.After(cfg.RetryInterval):
			}
		}

		client, err := mongo.Connect(opts)
		if err != nil {
			lastErr = err
			continue
		}

		pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
		err = client.Ping(pingCtx, nil)
		cancel()
		if err == nil {
			return client, nil
		}
		lastErr = err
		_ = client.Disconnect(ctx)
	}

	return nil, errors.Join(ErrFailedToConnectToMongo, lastErr)
}

// NewWithDatabase creates a client and returns the named database handle.
func NewWithDatabase(ctx context.Context, cfg Config, name string) (*mongo.Database, error) {
	client, err := New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return client.Database(name), nil
}

// Lazy is a connection handle whose establishment is deferred until first
// use. All concurrent early callers await the same connection attempt; the
// outcome, success or failure, is then fixed for the process lifetime. It
// replaces ambient global client caches: construct one Lazy at startup and
// inject it.
type Lazy struct {
	cfg  Config
	once sync.Once

	client *mongo.Client
	err    error
}

// NewLazy creates an unconnected handle.
func NewLazy(cfg Config) *Lazy {
	return &Lazy{cfg: cfg}
}

// Client returns the shared client, connecting on first call. The first
// caller's context bounds the connection attempt.
func (l *Lazy) Client(ctx context.Context) (*mongo.Client, error) {
	l.once.Do(func() {
		l.client, l.err = New(ctx, l.cfg)
	})
	return l.client, l.err
}

// Healthcheck returns a probe function suitable for readiness endpoints.
func Healthcheck(client *mongo.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if err := client.Ping(ctx, nil); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
