package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/PratikDhanave/trapwatch-service/internal/escalation"
)

// RedisNotifier appends alerts to a Redis stream for downstream dispatchers.
type RedisNotifier struct {
	client *redis.Client
	stream string
	logger *slog.Logger
}

// NewRedisNotifier parses url and checks connectivity.
func NewRedisNotifier(ctx context.Context, url, stream string, logger *slog.Logger) (*RedisNotifier, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &RedisNotifier{client: client, stream: stream, logger: logger}, nil
}

func (n *RedisNotifier) Notify(ctx context.Context, contact string, alert escalation.Alert) error {
	values, err := streamValues(contact, alert)
	if err != nil {
		return err
	}
	id, err := n.client.XAdd(ctx, &redis.XAddArgs{
		Stream: n.stream,
		Values: values,
	}).Result()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", n.stream, err)
	}
	n.logger.Debug("redis alert appended", "stream", n.stream, "entry_id", id, "alert_id", alert.ID)
	return nil
}

func (n *RedisNotifier) Close() error {
	return n.client.Close()
}

func streamValues(contact string, alert escalation.Alert) (map[string]any, error) {
	payload, err := json.Marshal(alert)
	if err != nil {
		return nil, fmt.Errorf("serialize alert: %w", err)
	}
	return map[string]any{
		"alert_id": alert.ID,
		"contact":  contact,
		"trap_id":  alert.TrapID,
		"payload":  string(payload),
	}, nil
}
