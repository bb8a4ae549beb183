package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PratikDhanave/trapwatch-service/internal/escalation"
	"github.com/PratikDhanave/trapwatch-service/internal/ingest"
	"github.com/PratikDhanave/trapwatch-service/internal/models"
)

// RegisterEscalateRoutes registers the on-demand escalation trigger.
// guards run before the handler (e.g. the operator key check).
//
// POST /api/escalate
// - 200 when an alert was sent or skipped below threshold
// - 400 no data, 422 routing failure, 502 notifier failure
func RegisterEscalateRoutes(r gin.IRoutes, svc *ingest.Service, guards ...gin.HandlerFunc) {
	chain := append(append([]gin.HandlerFunc{}, guards...), func(c *gin.Context) {
		out := svc.Escalate(c.Request.Context())

		switch out.Status {
		case escalation.StatusSent, escalation.StatusSkipped:
			c.JSON(http.StatusOK, models.EscalateResponse{
				Success:  true,
				Status:   string(out.Status),
				Message:  escalationMessage(out),
				Contact:  out.Contact,
				Zone:     out.Zone,
				TrapID:   out.Record.TrapID,
				EggCount: out.Record.EggCount,
				AlertID:  out.AlertID,
			})
		default:
			writeError(c, out.Err)
		}
	})
	r.POST("/api/escalate", chain...)
}

func escalationMessage(out escalation.Outcome) string {
	if out.Status == escalation.StatusSkipped {
		return fmt.Sprintf("below threshold: highest egg count %d from trap %s", out.Record.EggCount, out.Record.TrapID)
	}
	zone := out.Zone
	if zone == "" {
		zone = "default contact"
	}
	return fmt.Sprintf("alert sent to %s (%s) for trap %s with %d eggs", out.Contact, zone, out.Record.TrapID, out.Record.EggCount)
}
