package noncestore

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/layer-3/rangda/core"
	"github.com/layer-3/rangda/ports"
)

// consumeScript is the conditional write behind Consume: the used check
// and the flag write execute inside one script, so Redis serializes
// concurrent consumers of the same nonce.
var consumeScript = redis.NewScript(`
local created = redis.call("HGET", KEYS[1], "created_at")
if not created then
	return 0
end
if redis.call("HGET", KEYS[1], "used") == "1" then
	return 0
end
if tonumber(ARGV[1]) - tonumber(created) > tonumber(ARGV[2]) then
	return 0
end
redis.call("HSET", KEYS[1], "used", "1", "used_at", ARGV[1])
return 1
`)

// RedisStore is a Redis implementation of the NonceStore interface,
// shareable across service instances. Records are hashes with a native
// TTL, so expiry cleanup needs no sweep of our own.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a new Redis nonce store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "rangda:nonce:",
	}
}

// Generate creates and persists a fresh nonce under the store prefix.
func (s *RedisStore) Generate(ctx context.Context, address string) (core.Nonce, error) {
	buf := make([]byte, nonceBytes)
	if _, err := rand.Read(buf); err != nil {
		return core.Nonce{}, err
	}

	now := time.Now()
	nonce := core.Nonce{
		Value:     hex.EncodeToString(buf),
		Address:   address,
		CreatedAt: now,
		ExpiresAt: now.Add(core.NonceTTL),
	}

	key := s.prefix + nonce.Value
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key,
		"created_at", now.UnixMilli(),
		"used", "0",
		"address", address,
	)
	// Hold the record slightly past TTL so a replay inside the window
	// still finds the used flag instead of an absent key.
	pipe.Expire(ctx, key, core.NonceTTL+time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		return core.Nonce{}, fmt.Errorf("failed to store nonce: %w", err)
	}

	return nonce, nil
}

// Validate reports whether the nonce exists, is unused and within TTL.
func (s *RedisStore) Validate(ctx context.Context, value string, now time.Time) (bool, error) {
	fields, err := s.client.HGetAll(ctx, s.prefix+value).Result()
	if err != nil {
		return false, fmt.Errorf("failed to read nonce: %w", err)
	}
	if len(fields) == 0 || fields["used"] == "1" {
		return false, nil
	}

	createdMilli, err := strconv.ParseInt(fields["created_at"], 10, 64)
	if err != nil {
		return false, nil
	}
	if now.UnixMilli()-createdMilli > core.NonceTTL.Milliseconds() {
		return false, nil
	}
	return true, nil
}

// Consume runs the conditional-write script; true for exactly one caller.
func (s *RedisStore) Consume(ctx context.Context, value string, usedAt time.Time) (bool, error) {
	res, err := consumeScript.Run(ctx, s.client,
		[]string{s.prefix + value},
		usedAt.UnixMilli(), core.NonceTTL.Milliseconds(),
	).Int64()
	if err != nil {
		return false, fmt.Errorf("failed to consume nonce: %w", err)
	}
	return res == 1, nil
}

// Bound returns the address recorded at generation, if any.
func (s *RedisStore) Bound(ctx context.Context, value string) (string, error) {
	address, err := s.client.HGet(ctx, s.prefix+value, "address").Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", fmt.Errorf("failed to read nonce binding: %w", err)
	}
	return address, nil
}

var _ ports.NonceStore = (*RedisStore)(nil)
