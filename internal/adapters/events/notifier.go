package events

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// RedisNotifier broadcasts live updates over a single logical pub/sub channel.
// Subscribers receive each published envelope once per causing request; no
// ordering or delivery guarantee is promised.
type RedisNotifier struct {
	client  *redis.Client
	channel string
}

func NewRedisNotifier(client *redis.Client, channel string) *RedisNotifier {
	if channel == "" {
		channel = "opinions"
	}
	return &RedisNotifier{client: client, channel: channel}
}

func (n *RedisNotifier) Publish(ctx context.Context, _ string, payload []byte) error {
	return n.client.Publish(ctx, n.channel, payload).Err()
}

// LoggingNotifier stands in for the live channel when Redis is not configured.
type LoggingNotifier struct {
	logger *slog.Logger
}

func NewLoggingNotifier(logger *slog.Logger) *LoggingNotifier {
	return &LoggingNotifier{logger: logger}
}

func (n *LoggingNotifier) Publish(ctx context.Context, event string, payload []byte) error {
	n.logger.InfoContext(ctx, "notification published",
		"module", "events.notifier",
		"layer", "adapter",
		"operation", "publish",
		"outcome", "success",
		"event", event,
		"payload_bytes", len(payload),
	)
	return nil
}
