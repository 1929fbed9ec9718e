package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Open absences: one hash per agent and category.
	openKeyPrefix = "breakroom:absence:open:"
	// Stream entries are trimmed to roughly this many events.
	defaultStreamLen = 10000
	timeLayout       = time.RFC3339Nano
)

// Redis appends events to a stream and tracks open absences in hashes, so
// an end can carry the start time it closes.
type Redis struct {
	client    *redis.Client
	stream    string
	streamLen int64
}

// NewRedis creates a sink writing to stream.
func NewRedis(client *redis.Client, stream string) *Redis {
	return &Redis{
		client:    client,
		stream:    stream,
		streamLen: defaultStreamLen,
	}
}

// Name implements Sink.
func (l *Redis) Name() string { return "redis" }

func (l *Redis) openKey(ev Event) string {
	return fmt.Sprintf("%s%s:%s", openKeyPrefix, ev.AgentID, ev.Category)
}

// Start implements Sink.
func (l *Redis) Start(ctx context.Context, ev Event) error {
	started := ev.At.UTC().Format(timeLayout)

	pipe := l.client.TxPipeline()
	pipe.HSet(ctx, l.openKey(ev), map[string]interface{}{
		"agent_id":     string(ev.AgentID),
		"display_name": ev.DisplayName,
		"category":     string(ev.Category),
		"started_at":   started,
	})
	pipe.XAdd(ctx, l.addArgs(ev, "start", started, ""))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis ledger start: %w", err)
	}
	return nil
}

// End implements Sink. Ending with no open absence only appends the event.
func (l *Redis) End(ctx context.Context, ev Event) error {
	key := l.openKey(ev)
	started, err := l.client.HGet(ctx, key, "started_at").Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("redis ledger lookup: %w", err)
	}

	pipe := l.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.XAdd(ctx, l.addArgs(ev, "end", started, ev.At.UTC().Format(timeLayout)))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis ledger end: %w", err)
	}
	return nil
}

func (l *Redis) addArgs(ev Event, kind, started, ended string) *redis.XAddArgs {
	return &redis.XAddArgs{
		Stream: l.stream,
		MaxLen: l.streamLen,
		Approx: true,
		Values: map[string]interface{}{
			"event":        kind,
			"agent_id":     string(ev.AgentID),
			"display_name": ev.DisplayName,
			"category":     string(ev.Category),
			"started_at":   started,
			"ended_at":     ended,
		},
	}
}
