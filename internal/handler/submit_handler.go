package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/itskys/jszs/internal/response"
	"github.com/itskys/jszs/internal/service"
)

// SubmitHandler exposes the pending-submission slot.
type SubmitHandler struct {
	submits *service.SubmitService
}

// NewSubmitHandler creates a new SubmitHandler.
func NewSubmitHandler(submits *service.SubmitService) *SubmitHandler {
	return &SubmitHandler{submits: submits}
}

// Pending godoc
// GET /api/v1/students/:student_id/pending
func (h *SubmitHandler) Pending(c *gin.Context) {
	data, err := h.submits.Pending(c.Request.Context(), c.Param("student_id"))
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"pending": data})
}

// Retry godoc
// POST /api/v1/students/:student_id/pending/retry
// Re-posts the held result; the slot is cleared only on success.
func (h *SubmitHandler) Retry(c *gin.Context) {
	if err := h.submits.Retry(c.Request.Context(), c.Param("student_id")); err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "submitted"})
}
