package cache

import (
	"context"
	"strconv"

	"github.com/go-redis/redis/v8"
)

const genKeyPrefix = "cachegen:"

// redisGenStore keeps tag generations in Redis so invalidations from one
// replica are seen by all of them. Counters survive process restarts, which
// only makes entries look fresher than a cold cache would.
type redisGenStore struct {
	client *redis.Client
}

// NewRedisGenStore connects to the given address and returns a store backed
// by Redis INCR/MGET.
func NewRedisGenStore(addr string) GenStore {
	return &redisGenStore{
		client: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

func (s *redisGenStore) Bump(ctx context.Context, tags ...string) error {
	pipe := s.client.Pipeline()
	for _, tag := range tags {
		pipe.Incr(ctx, genKeyPrefix+tag)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *redisGenStore) Gens(ctx context.Context, tags ...string) ([]uint64, error) {
	keys := make([]string, len(tags))
	for i, tag := range tags {
		keys[i] = genKeyPrefix + tag
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	out := make([]uint64, len(tags))
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			continue
		}
		out[i] = parsed
	}
	return out, nil
}
