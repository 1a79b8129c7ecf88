package repo

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const sessionTTL = 11 * time.Hour

// RedisSessionStorage maps session ids handed out at login to user ids.
// Session issuance itself lives outside this service; we only resolve.
type RedisSessionStorage struct {
	client *redis.Client
	log    *zap.SugaredLogger
}

func NewSessionRedisStorage(client *redis.Client, log *zap.SugaredLogger) *RedisSessionStorage {
	return &RedisSessionStorage{
		client: client,
		log:    log,
	}
}

func (r *RedisSessionStorage) GetUserIDBySession(ctx context.Context, sessionID string) (string, bool) {
	v, err := r.client.Get(ctx, "session:"+sessionID).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.Errorf("failed to look up session: %v", err)
		}
		return "", false
	}
	return v, true
}

func (r *RedisSessionStorage) StoreSession(ctx context.Context, sessionID string, uid string) error {
	return r.client.Set(ctx, "session:"+sessionID, uid, sessionTTL).Err()
}

func (r *RedisSessionStorage) DeleteSession(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, "session:"+sessionID).Err()
}
