package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/itskys/jszs/internal/model"
	"github.com/itskys/jszs/internal/response"
	"github.com/itskys/jszs/internal/service"
)

// ResultHandler is the ingest-and-admin side of the result store. The
// submit endpoint keeps a bare {"success": ...} body because the exam
// client's retry pipeline checks exactly that field.
type ResultHandler struct {
	results *service.ResultService
	log     zerolog.Logger
}

// NewResultHandler creates a new ResultHandler.
func NewResultHandler(results *service.ResultService, log zerolog.Logger) *ResultHandler {
	return &ResultHandler{
		results: results,
		log:     log.With().Str("component", "result_handler").Logger(),
	}
}

// Submit godoc
// POST /api/submit
func (h *ResultHandler) Submit(c *gin.Context) {
	var data model.ExamData
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid payload"})
		return
	}
	if data.StudentName == "" || data.StudentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "missing student identity"})
		return
	}

	id, err := h.results.Record(c.Request.Context(), &data)
	if err != nil {
		h.log.Error().Err(err).Str("student_id", data.StudentID).Msg("failed to record result")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "storage failure"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
}

// List godoc
// GET /api/results (admin)
func (h *ResultHandler) List(c *gin.Context) {
	rows, err := h.results.List(c.Request.Context())
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"results": rows})
}

// Delete godoc
// DELETE /api/results/:id (admin)
func (h *ResultHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	deleted, err := h.results.Delete(c.Request.Context(), id)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": deleted})
}
