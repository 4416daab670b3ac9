package wallet

import (
	"context"
	"strconv"
	"time"

	"simex/internal/models"
	keys "simex/internal/utils/cache"
	"simex/internal/validation"

	"go.uber.org/zap"
)

// GetBalances returns every balance of the user. It reads through the
// balance cache when one is configured; concurrent misses for the same user
// share one database read.
func (s *service) GetBalances(ctx context.Context, userID uint) (balances []models.Balance, err error) {
	defer s.observe(opGetBalances, time.Now(), &err)

	if err := validation.ValidateUserID(userID); err != nil {
		return nil, s.fail(opGetBalances, err)
	}

	if s.cache != nil {
		key := keys.BalancesKey(userID)
		cached, found, err := s.cache.GetBalances(ctx, userID)
		switch {
		case err != nil:
			s.logger.Warn("balance cache read failed", zap.Uint("user_id", userID), zap.Error(err))
			s.metrics.RecordCacheMiss(key)
		case found:
			s.metrics.RecordCacheHit(key)
			return cached, nil
		default:
			s.metrics.RecordCacheMiss(key)
		}
	}

	v, err, _ := s.balanceLoads.Do(strconv.FormatUint(uint64(userID), 10), func() (interface{}, error) {
		return s.loadBalances(context.WithoutCancel(ctx), userID)
	})
	if err != nil {
		return nil, s.fail(opGetBalances, err)
	}
	// Callers sharing a load must not share the slice.
	shared := v.([]models.Balance)
	balances = make([]models.Balance, len(shared))
	copy(balances, shared)
	return balances, nil
}

// loadBalances reads the database and refills the cache unless an eviction
// happened in between.
func (s *service) loadBalances(ctx context.Context, userID uint) ([]models.Balance, error) {
	var gen int64
	cacheable := false
	if s.cache != nil {
		g, err := s.cache.BalancesGeneration(ctx, userID)
		if err != nil {
			s.logger.Warn("balance cache generation read failed", zap.Uint("user_id", userID), zap.Error(err))
		} else {
			gen, cacheable = g, true
		}
	}

	balances, err := s.repo.ListBalances(ctx, userID)
	if err != nil {
		return nil, err
	}
	if balances == nil {
		balances = []models.Balance{}
	}

	if cacheable {
		stored, err := s.cache.SetBalancesIfGeneration(ctx, userID, gen, balances)
		if err != nil {
			s.logger.Warn("balance cache write failed", zap.Uint("user_id", userID), zap.Error(err))
		} else if !stored {
			s.logger.Debug("balances changed during read, not cached", zap.Uint("user_id", userID))
		}
	}
	return balances, nil
}
