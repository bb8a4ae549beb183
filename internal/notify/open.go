package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/PratikDhanave/trapwatch-service/internal/config"
	"github.com/PratikDhanave/trapwatch-service/internal/escalation"
)

// Open builds the notifier named by cfg.Notifier. The returned close func
// releases transport resources and is never nil.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (escalation.Notifier, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Notifier {
	case "log", "":
		return NewLogNotifier(logger), noop, nil
	case "webhook":
		return NewWebhookNotifier(&http.Client{Timeout: cfg.NotifyTimeout}, logger), noop, nil
	case "smtp":
		n, err := NewSMTPNotifier(SMTPConfig{
			Addr:     cfg.SMTPAddr,
			From:     cfg.SMTPFrom,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		return n, noop, nil
	case "kafka":
		n := NewKafkaNotifier(cfg.KafkaBrokers, cfg.KafkaAlertTopic, logger)
		return n, n.Close, nil
	case "redis":
		n, err := NewRedisNotifier(ctx, cfg.RedisURL, cfg.RedisAlertStream, logger)
		if err != nil {
			return nil, nil, err
		}
		return n, n.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown notifier %s", cfg.Notifier)
	}
}
