package credkit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const revocationKeyPrefix = "ckr"

// redisRevocationStore persists revoked token ids in Redis so that every
// node of a deployment observes a revocation. Entries expire with the
// longest token lifetime: once no token carrying the id can still be valid,
// the record is useless.
type redisRevocationStore struct {
	redis  *redis.Client
	prefix string
	ttl    time.Duration
}

func newRedisRevocationStore(client *redis.Client, ttl time.Duration) *redisRevocationStore {
	return &redisRevocationStore{
		redis:  client,
		prefix: revocationKeyPrefix,
		ttl:    ttl,
	}
}

func (s *redisRevocationStore) key(id string) string {
	return s.prefix + ":" + id
}

func (s *redisRevocationStore) Revoke(ctx context.Context, id string, at time.Time) error {
	// NX keeps the first revocation timestamp on repeated revokes.
	err := s.redis.SetNX(ctx, s.key(id), strconv.FormatInt(at.Unix(), 10), s.ttl).Err()
	if err != nil {
		return fmt.Errorf("revocation store unavailable: %w", err)
	}
	return nil
}

func (s *redisRevocationStore) IsRevoked(ctx context.Context, id string) (bool, error) {
	err := s.redis.Get(ctx, s.key(id)).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redis.Nil):
		return false, nil
	default:
		return false, fmt.Errorf("revocation store unavailable: %w", err)
	}
}
