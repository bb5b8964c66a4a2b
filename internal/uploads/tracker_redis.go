package uploads

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"resume-review/internal/shared/util"
)

const redisKeyPrefix = "resume-review:upload-state:"

// beginScript sets the uploading marker unless it is already present.
var beginScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
  return 0
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
return 1
`)

// RedisTracker shares upload states between API replicas through Redis.
type RedisTracker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisTracker builds a Redis-backed tracker.
func NewRedisTracker(client *redis.Client, ttl time.Duration) *RedisTracker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisTracker{client: client, ttl: ttl}
}

func (t *RedisTracker) Begin(ctx context.Context, client string) error {
	ok, err := beginScript.Run(ctx, t.client, []string{redisKey(client)}, string(StateUploading), t.ttl.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("redis begin upload: %w", err)
	}
	if ok == 0 {
		return ErrUploadInFlight
	}
	return nil
}

func (t *RedisTracker) Finish(ctx context.Context, client string, outcome State) error {
	if err := checkOutcome(outcome); err != nil {
		return err
	}
	if err := t.client.Set(ctx, redisKey(client), string(outcome), outcomeTTL).Err(); err != nil {
		return fmt.Errorf("redis finish upload: %w", err)
	}
	return nil
}

func (t *RedisTracker) State(ctx context.Context, client string) (State, error) {
	val, err := t.client.Get(ctx, redisKey(client)).Result()
	if errors.Is(err, redis.Nil) {
		return StateIdle, nil
	}
	if err != nil {
		return "", fmt.Errorf("redis upload state: %w", err)
	}
	return ParseState(val)
}

// Ping reports whether Redis is reachable.
func (t *RedisTracker) Ping(ctx context.Context) error {
	return t.client.Ping(ctx).Err()
}

func redisKey(client string) string {
	return redisKeyPrefix + util.HashUserKey(client)
}

var _ Tracker = (*RedisTracker)(nil)
