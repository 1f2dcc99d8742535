package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/itskys/jszs/internal/response"
	"github.com/itskys/jszs/internal/service"
)

// HistoryHandler serves the per-student history ledger.
type HistoryHandler struct {
	history *service.HistoryService
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(history *service.HistoryService) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// List godoc
// GET /api/v1/students/:student_id/history
func (h *HistoryHandler) List(c *gin.Context) {
	records, err := h.history.List(c.Request.Context(), c.Param("student_id"))
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"history": records})
}

// Clear godoc
// DELETE /api/v1/students/:student_id/history?confirm=true
// Without confirm=true the call is rejected; clearing is destructive.
func (h *HistoryHandler) Clear(c *gin.Context) {
	confirm := c.Query("confirm") == "true"

	if err := h.history.Clear(c.Request.Context(), c.Param("student_id"), confirm); err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "cleared"})
}

// Snapshot godoc
// GET /api/v1/students/:student_id/history/:index/snapshot
// Rebuilds a finished attempt from a ledger entry for read-only review.
func (h *HistoryHandler) Snapshot(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	state, err := h.history.LoadSnapshot(c.Request.Context(), c.Param("student_id"), index)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": state})
}
