package notify

import (
	"context"
	"encoding/json"

	"github.com/codehive/codehive/globals"
	"github.com/redis/go-redis/v9"
)

// RedisNotifier publishes events on a pub/sub channel. Every gateway process
// subscribed to the channel fans the event out to its local room connections,
// which also covers horizontally scaled gateways.
type RedisNotifier struct {
	rdb     *redis.Client
	channel string
}

func NewRedisNotifier(rdb *redis.Client, channel string) *RedisNotifier {
	return &RedisNotifier{rdb: rdb, channel: channel}
}

func (n *RedisNotifier) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return n.rdb.Publish(ctx, n.channel, data).Err()
}

func (n *RedisNotifier) Close() error {
	return n.rdb.Close()
}

// RunSubscriber consumes the notify channel and feeds events into sink until
// ctx is cancelled. Malformed messages are logged and skipped.
func RunSubscriber(ctx context.Context, rdb *redis.Client, channel string, sink Sink) {
	sub := rdb.Subscribe(ctx, channel)
	defer sub.Close()
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			event := Event{}
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				globals.AppLogger.Error("could not unmarshal notify event", "error", err)
				continue
			}
			Deliver(sink, event)
		}
	}
}
