package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PratikDhanave/trapwatch-service/internal/ingest"
	"github.com/PratikDhanave/trapwatch-service/internal/models"
)

// RegisterSubmitRoutes registers the ingestion-path endpoint.
//
// POST /api/submit
// - Every well-formed submission is stored, even when the digest is wrong
// - No deduplication: resubmitting yields a new record
func RegisterSubmitRoutes(r gin.IRoutes, svc *ingest.Service) {
	r.POST("/api/submit", func(c *gin.Context) {
		var req models.SubmitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, "invalid JSON payload")
			return
		}

		res, err := svc.Submit(c.Request.Context(), ingest.Submission{
			TrapID:   req.TrapID,
			TrapType: req.TrapType,
			GPS:      req.GPS,
			EggCount: req.EggCount,
			Barangay: req.Barangay,
			Digest:   req.SHA256,
		})
		if err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SubmitResponse{
			Success:     true,
			SHA256Valid: res.IntegrityValid,
			ID:          res.ID,
		})
	})
}
