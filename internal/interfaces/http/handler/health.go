package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/backoffice/backend/internal/interfaces/http/dto"
)

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping() error
}

// HealthHandler serves the health endpoint
type HealthHandler struct {
	BaseHandler
	db        Pinger
	startedAt time.Time
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{
		db:        db,
		startedAt: time.Now(),
	}
}

// RegisterRoutes registers the health route
func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.Health)
}

// Health reports service liveness and database reachability
func (h *HealthHandler) Health(c *gin.Context) {
	status := "ok"
	database := "up"
	code := http.StatusOK

	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			status = "degraded"
			database = "down"
			code = http.StatusServiceUnavailable
		}
	}

	c.JSON(code, dto.NewSuccessResponse(gin.H{
		"status":   status,
		"database": database,
		"uptime":   time.Since(h.startedAt).Round(time.Second).String(),
	}))
}
