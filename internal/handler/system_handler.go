package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/stemsi/institute-console/internal/response"
)

// SystemHandler reports the health of the console and its stores.
type SystemHandler struct {
	rdb       *redis.Client
	pool      *pgxpool.Pool
	startTime time.Time
}

// NewSystemHandler creates a SystemHandler. rdb and pool may be nil when the
// deployment runs without them.
func NewSystemHandler(rdb *redis.Client, pool *pgxpool.Pool) *SystemHandler {
	return &SystemHandler{rdb: rdb, pool: pool, startTime: time.Now()}
}

// Health godoc
// GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{}
	status := http.StatusOK
	if h.rdb != nil {
		checks["redis"] = "ok"
		if err := h.rdb.Ping(ctx).Err(); err != nil {
			checks["redis"] = err.Error()
			status = http.StatusServiceUnavailable
		}
	}
	if h.pool != nil {
		checks["postgres"] = "ok"
		if err := h.pool.Ping(ctx); err != nil {
			checks["postgres"] = err.Error()
			status = http.StatusServiceUnavailable
		}
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	response.Success(c, status, gin.H{
		"status": state,
		"uptime": time.Since(h.startTime).Round(time.Second).String(),
		"checks": checks,
	})
}
