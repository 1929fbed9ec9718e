package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fentz26/breakroom/internal/store"
)

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// Options selects and configures a backend.
type Options struct {
	Backend string

	// Store is required for BackendSQLite.
	Store *store.Store

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisStream   string
}

// Open returns the configured sink and a function that releases its
// resources.
func Open(ctx context.Context, o Options) (Sink, func() error, error) {
	noop := func() error { return nil }

	switch o.Backend {
	case BackendSQLite, "":
		if o.Store == nil {
			return nil, nil, fmt.Errorf("sqlite ledger: store is required")
		}
		return NewSQLite(o.Store), noop, nil

	case BackendRedis:
		client, err := initRedis(ctx, o)
		if err != nil {
			return nil, nil, err
		}
		return NewRedis(client, o.RedisStream), client.Close, nil

	case BackendNone:
		return Nop{}, noop, nil
	}
	return nil, nil, fmt.Errorf("%w: %q", ErrUnsupportedBackend, o.Backend)
}

func initRedis(ctx context.Context, o Options) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     o.RedisAddr,
		Password: o.RedisPassword,
		DB:       o.RedisDB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect redis: %w", err)
	}
	return client, nil
}
