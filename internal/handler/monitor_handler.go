package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/itskys/jszs/internal/model"
	"github.com/itskys/jszs/internal/response"
	"github.com/itskys/jszs/internal/service"
	"github.com/itskys/jszs/internal/validator"
)

// MonitorHandler receives exam heartbeats and serves the live roster.
type MonitorHandler struct {
	monitor *service.MonitorService
}

// NewMonitorHandler creates a new MonitorHandler.
func NewMonitorHandler(monitor *service.MonitorService) *MonitorHandler {
	return &MonitorHandler{monitor: monitor}
}

// Heartbeat godoc
// POST /api/monitor
func (h *MonitorHandler) Heartbeat(c *gin.Context) {
	var req model.HeartbeatRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.monitor.Heartbeat(c.Request.Context(), &req); err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "recorded"})
}

// List godoc
// GET /api/monitor (admin)
// Stale rows are purged before listing, so the roster only shows
// sessions with a recent heartbeat.
func (h *MonitorHandler) List(c *gin.Context) {
	rows, err := h.monitor.List(c.Request.Context())
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"sessions": rows})
}
