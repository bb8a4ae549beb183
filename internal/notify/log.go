package notify

import (
	"context"
	"log/slog"

	"github.com/PratikDhanave/trapwatch-service/internal/escalation"
)

// LogNotifier writes alerts to the structured log. It is the default when no
// transport is configured and never fails.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, contact string, alert escalation.Alert) error {
	n.logger.WarnContext(ctx, alert.Subject(),
		"contact", contact,
		"alert_id", alert.ID,
		"trap_id", alert.TrapID,
		"gps", alert.GPS,
		"egg_count", alert.EggCount,
		"zone", alert.Zone,
	)
	return nil
}
