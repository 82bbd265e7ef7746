package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/termlab/termlab/internal/infrastructure/logging"
	"github.com/termlab/termlab/internal/session"
	"github.com/termlab/termlab/internal/shared/types"
)

// Handlers serves the terminal REST endpoints.
type Handlers struct {
	sessions *session.Manager
	logger   *logging.Logger
	started  time.Time
}

// NewHandlers creates the handler set.
func NewHandlers(sessions *session.Manager, logger *logging.Logger) *Handlers {
	if logger == nil {
		logger = logging.NewDefault()
	}
	return &Handlers{
		sessions: sessions,
		logger:   logger,
		started:  time.Now(),
	}
}

// Root describes the service.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "terminal",
		"version": "1.0.0",
		"endpoints": gin.H{
			"enter":    "POST /terminal/enter",
			"input":    "POST /terminal/input",
			"sessions": "GET /terminal/sessions",
			"stream":   "GET /stream",
			"health":   "GET /health",
			"metrics":  "GET /metrics",
		},
	})
}

// Health reports service liveness.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "healthy",
		"uptime_seconds": int(time.Since(h.started).Seconds()),
	})
}

// Enter starts a terminal session, or begins account provisioning when
// the user has no account yet.
func (h *Handlers) Enter(c *gin.Context) {
	var req types.EnterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request: " + err.Error(),
		})
		return
	}

	reply, err := h.sessions.Enter(c.Request.Context(), req.UserID)
	if err != nil {
		h.logger.Error("enter failed", zap.Int64("user_id", req.UserID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error":   "Terminal error. Please try again.",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"reply":   reply,
	})
}

// Input routes one line of terminal input for a user.
func (h *Handlers) Input(c *gin.Context) {
	var req types.InputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request: " + err.Error(),
		})
		return
	}

	reply, err := h.sessions.Handle(c.Request.Context(), req.UserID, req.Text)
	if err != nil {
		h.logger.Error("input failed", zap.Int64("user_id", req.UserID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error":   "Terminal error. Please try again.",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"reply":   reply,
	})
}

// Sessions lists active terminal sessions.
func (h *Handlers) Sessions(c *gin.Context) {
	sessions := h.sessions.Sessions()
	if sessions == nil {
		sessions = []session.Session{}
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"count":    len(sessions),
		"sessions": sessions,
	})
}
