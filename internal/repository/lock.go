package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisLocker serializes read-modify-write sections per record id. A lock
// is SET NX with a TTL so a crashed holder cannot wedge a record, and the
// release script only deletes the key when the token still matches.
type RedisLocker struct {
	client *redis.Client
	log    *zap.SugaredLogger
	ttl    time.Duration
}

const lockRetryInterval = 25 * time.Millisecond

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

func NewRedisLocker(client *redis.Client, log *zap.SugaredLogger, ttl time.Duration) *RedisLocker {
	return &RedisLocker{
		client: client,
		log:    log,
		ttl:    ttl,
	}
}

// Acquire blocks until the lock is held or ctx expires. The returned
// function releases the lock.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	for {
		release, ok, err := l.TryAcquire(ctx, key)
		if err != nil {
			return nil, err
		}
		if ok {
			return release, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}
}

// TryAcquire attempts the lock exactly once; ok=false means another caller
// holds it.
func (l *RedisLocker) TryAcquire(ctx context.Context, key string) (func(), bool, error) {
	token := uuid.New().String()
	ok, err := l.client.SetNX(ctx, "lock:"+key, token, l.ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	release := func() {
		// Release must survive request cancellation.
		ctxRel, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := releaseScript.Run(ctxRel, l.client, []string{"lock:" + key}, token).Err(); err != nil {
			l.log.Errorf("failed to release lock %s: %v", key, err)
		}
	}
	return release, true, nil
}
