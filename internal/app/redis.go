package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"roadtrip/internal/config"
)

// NewRedisClient creates the client behind the route cache, trip locks and
// idempotency store, instrumented with New Relic when nrApp is set.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig, nrApp *newrelic.Application) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if nrApp != nil {
		client.AddHook(nrRedisHook{})
	}

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// nrRedisHook records each command as a datastore segment of the request's
// New Relic transaction.
type nrRedisHook struct{}

func (nrRedisHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (nrRedisHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		if txn := newrelic.FromContext(ctx); txn != nil {
			segment := newrelic.DatastoreSegment{
				StartTime:  txn.StartSegmentNow(),
				Product:    newrelic.DatastoreRedis,
				Operation:  cmd.Name(),
				Collection: keyspace(cmd),
			}
			defer segment.End()
		}
		return next(ctx, cmd)
	}
}

func (nrRedisHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		if txn := newrelic.FromContext(ctx); txn != nil {
			segment := newrelic.DatastoreSegment{
				StartTime:  txn.StartSegmentNow(),
				Product:    newrelic.DatastoreRedis,
				Operation:  "pipeline",
				Collection: "redis",
			}
			defer segment.End()
		}
		return next(ctx, cmds)
	}
}

// keyspace names a command's collection after its key prefix, such as
// "route", "trip" or "lock".
func keyspace(cmd redis.Cmder) string {
	args := cmd.Args()
	if len(args) < 2 {
		return "redis"
	}
	key, ok := args[1].(string)
	if !ok {
		return "redis"
	}
	if prefix, _, found := strings.Cut(key, ":"); found {
		return prefix
	}
	return "redis"
}
