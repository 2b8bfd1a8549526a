package events

import (
	"context"
	"encoding/json"

	"naebak-messaging/pkg/logger"

	goredis "github.com/redis/go-redis/v9"
)

type RedisBroker struct {
	Client *goredis.Client
	log    *logger.Logger
}

func NewRedisBroker(client *goredis.Client, log *logger.Logger) *RedisBroker {
	return &RedisBroker{Client: client, log: log}
}

func (b *RedisBroker) Publish(ctx context.Context, channel string, payload []byte) error {
	return b.Client.Publish(ctx, channel, payload).Err()
}

func (b *RedisBroker) Subscribe(ctx context.Context, channel string, handler Handler) error {
	return b.consume(ctx, b.Client.Subscribe(ctx, channel), channel, handler)
}

func (b *RedisBroker) SubscribePattern(ctx context.Context, pattern string, handler Handler) error {
	return b.consume(ctx, b.Client.PSubscribe(ctx, pattern), pattern, handler)
}

func (b *RedisBroker) consume(ctx context.Context, pubsub *goredis.PubSub, channel string, handler Handler) error {
	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for msg := range ch {
			var env Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				if b.log != nil {
					b.log.Errorf("events: bad envelope on %s: %v", channel, err)
				}
				continue
			}
			if err := handler(ctx, env); err != nil {
				if b.log != nil {
					b.log.Errorf("events: handler failed for %s: %v", env.EventType, err)
				}
			}
		}
	}()

	return nil
}
