package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

const (
	swapStatusMissing  int64 = 0
	swapStatusCorrupt  int64 = 1
	swapStatusMismatch int64 = 2
	swapStatusSwapped  int64 = 3
)

// Compare-and-swap on the stored refreshTokenId. Runs atomically on the
// Redis side so two racing renewals cannot both win.
const swapScript = `
local cur = redis.call("GET", KEYS[1])
if not cur then
  return 0
end
local ok, rec = pcall(cjson.decode, cur)
if not ok then
  return 1
end
if rec["refreshTokenId"] ~= ARGV[1] then
  return 2
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 3
`

var swapLua = redis.NewScript(swapScript)

// RedisStore keeps session records as JSON blobs with a Redis-enforced
// TTL. Get additionally checks the record's own ExpiresAt, so an
// unreaped record past its expiry is still reported as absent.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func key(sessionID string) string {
	return keyPrefix + sessionID
}

func (r *RedisStore) Put(ctx context.Context, rec *SessionRecord, ttl time.Duration) error {
	if rec.SessionID == "" {
		return fmt.Errorf("store: missing session id")
	}
	if ttl <= 0 {
		return fmt.Errorf("store: ttl must be positive")
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("store: marshal session %s: %w", rec.SessionID, err)
	}

	return r.client.Set(ctx, key(rec.SessionID), data, ttl).Err()
}

func (r *RedisStore) Get(ctx context.Context, sessionID string) (*SessionRecord, error) {
	val, err := r.client.Get(ctx, key(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var rec SessionRecord
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return nil, fmt.Errorf("store: unmarshal session %s: %w", sessionID, err)
	}
	if !rec.ExpiresAt.After(time.Now()) {
		return nil, ErrNotFound
	}

	return &rec, nil
}

func (r *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, key(sessionID)).Err()
}

func (r *RedisStore) Swap(ctx context.Context, rec *SessionRecord, ttl time.Duration, expectedRefreshTokenID string) error {
	if ttl <= 0 {
		return fmt.Errorf("store: ttl must be positive")
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("store: marshal session %s: %w", rec.SessionID, err)
	}

	status, err := swapLua.Run(ctx, r.client,
		[]string{key(rec.SessionID)},
		expectedRefreshTokenID, string(data), ttl.Milliseconds(),
	).Int64()
	if err != nil {
		return err
	}

	switch status {
	case swapStatusSwapped:
		return nil
	case swapStatusMissing:
		return ErrNotFound
	case swapStatusMismatch:
		return ErrRefreshTokenMismatch
	case swapStatusCorrupt:
		return fmt.Errorf("store: corrupt session blob for %s", rec.SessionID)
	default:
		return fmt.Errorf("store: unexpected swap status %d", status)
	}
}
