package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PratikDhanave/trapwatch-service/internal/escalation"
	"github.com/PratikDhanave/trapwatch-service/internal/geofence"
	"github.com/PratikDhanave/trapwatch-service/internal/ingest"
	"github.com/PratikDhanave/trapwatch-service/internal/models"
	"github.com/PratikDhanave/trapwatch-service/internal/store"
)

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, models.ErrorResponse{Success: false, Error: msg})
}

// writeError maps domain errors to status codes. Wrapped details (record
// IDs, stored values, transport errors) are logged where they occur and
// never echoed to the client.
func writeError(c *gin.Context, err error) {
	var verr *ingest.ValidationError
	switch {
	case errors.As(err, &verr):
		fail(c, http.StatusBadRequest, verr.Error())
	case errors.Is(err, escalation.ErrNoData):
		fail(c, http.StatusBadRequest, "no data available for escalation")
	case errors.Is(err, geofence.ErrMalformedCoordinate):
		fail(c, http.StatusUnprocessableEntity, "routing failed: malformed coordinate")
	case errors.Is(err, escalation.ErrNotify):
		fail(c, http.StatusBadGateway, "notification failed")
	case errors.Is(err, store.ErrStorage):
		fail(c, http.StatusInternalServerError, "storage failure")
	default:
		fail(c, http.StatusInternalServerError, "internal error")
	}
}
