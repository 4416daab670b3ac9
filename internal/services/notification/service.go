// Package notification delivers the balance-changed signal emitted by the
// ledger after a commit. Delivery is at-least-once and every consumer treats
// the signal as an idempotent cache eviction.
package notification

import (
	"context"
	"errors"
)

// Notifier is told, after commit, that a user's balances changed.
type Notifier interface {
	BalanceChanged(ctx context.Context, userID uint) error
}

// BalanceChangedEvent is the pub/sub payload.
type BalanceChangedEvent struct {
	UserID uint `json:"user_id"`
}

// Noop drops every notification.
type Noop struct{}

func (Noop) BalanceChanged(context.Context, uint) error { return nil }

type multi []Notifier

// Multi fans a notification out to every notifier. All of them are called
// even when one fails; the failures are joined.
func Multi(notifiers ...Notifier) Notifier {
	return multi(notifiers)
}

func (m multi) BalanceChanged(ctx context.Context, userID uint) error {
	var errs []error
	for _, n := range m {
		if err := n.BalanceChanged(ctx, userID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// BalanceEvictor drops a user's cached balances.
type BalanceEvictor interface {
	InvalidateBalances(ctx context.Context, userID uint) error
}

// CacheEvictor evicts the cache in-process.
type CacheEvictor struct {
	cache BalanceEvictor
}

func NewCacheEvictor(cache BalanceEvictor) *CacheEvictor {
	return &CacheEvictor{cache: cache}
}

func (e *CacheEvictor) BalanceChanged(ctx context.Context, userID uint) error {
	return e.cache.InvalidateBalances(ctx, userID)
}
