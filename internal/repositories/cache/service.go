package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"simex/internal/models"
	keys "simex/internal/utils/cache"

	"github.com/redis/go-redis/v9"
)

// generationTTL keeps eviction counters alive well past any in-flight read.
const generationTTL = 24 * time.Hour

var errStaleGeneration = errors.New("cache generation moved")

type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheService(client *redis.Client, defaultTTL time.Duration) *CacheService {
	return &CacheService{
		client: client,
		ttl:    defaultTTL,
	}
}

// Base operations
func (s *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	return s.SetWithTTL(ctx, key, value, s.ttl)
}

func (s *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache value: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return true, nil
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

// Balance caching.
//
// A reader takes BalancesGeneration before it reads the database and writes
// back with SetBalancesIfGeneration. Every eviction bumps the generation, so
// a read that raced with a committed change is never cached.

func (s *CacheService) GetBalances(ctx context.Context, userID uint) ([]models.Balance, bool, error) {
	var balances []models.Balance
	found, err := s.Get(ctx, keys.BalancesKey(userID), &balances)
	if err != nil || !found {
		return nil, false, err
	}
	return balances, true, nil
}

func (s *CacheService) BalancesGeneration(ctx context.Context, userID uint) (int64, error) {
	gen, err := s.client.Get(ctx, keys.BalancesGenerationKey(userID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read cache generation: %w", err)
	}
	return gen, nil
}

// SetBalancesIfGeneration stores balances only if no eviction happened since
// gen was read. It reports whether the value was written.
func (s *CacheService) SetBalancesIfGeneration(ctx context.Context, userID uint, gen int64, balances []models.Balance) (bool, error) {
	data, err := json.Marshal(balances)
	if err != nil {
		return false, fmt.Errorf("failed to marshal cache value: %w", err)
	}
	genKey := keys.BalancesGenerationKey(userID)

	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Int64()
		if err != nil && err != redis.Nil {
			return err
		}
		if cur != gen {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, keys.BalancesKey(userID), data, s.ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
		return false, nil
	default:
		return false, fmt.Errorf("failed to set cache value: %w", err)
	}
}

// InvalidateBalances drops the cached balances and bumps the generation.
func (s *CacheService) InvalidateBalances(ctx context.Context, userID uint) error {
	genKey := keys.BalancesGenerationKey(userID)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys.BalancesKey(userID))
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, generationTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate balances: %w", err)
	}
	return nil
}

// FlushAll flushes all keys from the cache
func (s *CacheService) FlushAll(ctx context.Context) error {
	return s.client.FlushAll(ctx).Err()
}

// Close closes the Redis client connection
func (s *CacheService) Close() error {
	return s.client.Close()
}
