package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	DefaultChannel = "ledger:balance-changed"

	publishAttempts = 3
	publishBackoff  = 50 * time.Millisecond
)

// RedisPublisher publishes BalanceChangedEvent on a pub/sub channel.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) BalanceChanged(ctx context.Context, userID uint) error {
	payload, err := json.Marshal(BalanceChangedEvent{UserID: userID})
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt < publishAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(publishBackoff * time.Duration(attempt)):
			}
		}
		if lastErr = p.client.Publish(ctx, p.channel, payload).Err(); lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("failed to publish balance change for user %d: %w", userID, lastErr)
}

// Subscriber evicts cached balances for every event on the channel. Events
// may arrive more than once; eviction is idempotent.
type Subscriber struct {
	client  *redis.Client
	channel string
	evictor BalanceEvictor
	logger  *zap.Logger
}

func NewSubscriber(client *redis.Client, channel string, evictor BalanceEvictor, logger *zap.Logger) *Subscriber {
	if channel == "" {
		channel = DefaultChannel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Subscriber{client: client, channel: channel, evictor: evictor, logger: logger}
}

// Run consumes the channel until ctx is done.
func (s *Subscriber) Run(ctx context.Context) error {
	pubsub := s.client.Subscribe(ctx, s.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to subscribe to %s: %w", s.channel, err)
	}
	s.logger.Info("balance change subscriber started", zap.String("channel", s.channel))

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			s.handle(ctx, msg.Payload)
		}
	}
}

func (s *Subscriber) handle(ctx context.Context, payload string) {
	var event BalanceChangedEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil || event.UserID == 0 {
		s.logger.Warn("dropping malformed balance event", zap.String("payload", payload))
		return
	}
	if err := s.evictor.InvalidateBalances(ctx, event.UserID); err != nil {
		s.logger.Error("failed to evict balances",
			zap.Uint("user_id", event.UserID), zap.Error(err))
	}
}
