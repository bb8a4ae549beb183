package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/PratikDhanave/trapwatch-service/internal/auth"
	"github.com/PratikDhanave/trapwatch-service/internal/config"
	"github.com/PratikDhanave/trapwatch-service/internal/handlers"
	"github.com/PratikDhanave/trapwatch-service/internal/ingest"
)

// Pinger reports whether the record store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewRouter wires operational endpoints and the ingestion API.
// Operational: /health, /ready, /metrics
// API: /api/submit, /api/ingestion, /api/escalate, /api/health
func NewRouter(cfg *config.Config, svc *ingest.Service, db Pinger, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(logger))

	// Liveness: confirms the process is running.
	health := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	r.GET("/health", health)
	r.GET("/api/health", health)

	// Readiness: confirms the record store is reachable.
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handlers.RegisterSubmitRoutes(r, svc)
	handlers.RegisterIngestionRoutes(r, svc)

	// Escalation is open unless operator keys are configured.
	var guards []gin.HandlerFunc
	if len(cfg.OperatorKeys) > 0 {
		guards = append(guards, auth.OperatorKeyMiddleware(cfg.OperatorKeys))
	}
	handlers.RegisterEscalateRoutes(r, svc, guards...)

	return r
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelDebug
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		attrs := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		}
		if op := auth.Operator(c); op != "" {
			attrs = append(attrs, "operator", op)
		}
		logger.Log(c.Request.Context(), level, "http request", attrs...)
	}
}
