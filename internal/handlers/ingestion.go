package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/PratikDhanave/trapwatch-service/internal/ingest"
	"github.com/PratikDhanave/trapwatch-service/internal/models"
	"github.com/PratikDhanave/trapwatch-service/internal/store"
)

// RegisterIngestionRoutes registers the dashboard data endpoint.
//
// GET /api/ingestion?limit=N
// - Most recent first, at most 200 entries; larger limits are truncated
func RegisterIngestionRoutes(r gin.IRoutes, svc *ingest.Service) {
	r.GET("/api/ingestion", func(c *gin.Context) {
		limit := store.DefaultListLimit
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				fail(c, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			limit = n
		}

		recs, err := svc.Recent(c.Request.Context(), limit)
		if err != nil {
			writeError(c, err)
			return
		}

		out := make([]models.IngestionEntry, 0, len(recs))
		for _, r := range recs {
			out = append(out, toEntry(r))
		}
		c.JSON(http.StatusOK, out)
	})
}

func toEntry(r store.Record) models.IngestionEntry {
	return models.IngestionEntry{
		ID:          r.ID,
		Timestamp:   r.Timestamp.UTC().Format(time.RFC3339Nano),
		TrapID:      r.TrapID,
		TrapType:    r.TrapType,
		GPS:         r.GPS,
		EggCount:    r.EggCount,
		Barangay:    r.Barangay,
		SHA256Valid: r.IntegrityValid,
	}
}
