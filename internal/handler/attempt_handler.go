package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/itskys/jszs/internal/model"
	"github.com/itskys/jszs/internal/response"
	"github.com/itskys/jszs/internal/service"
	"github.com/itskys/jszs/internal/validator"
)

// AttemptHandler exposes the attempt lifecycle over HTTP.
type AttemptHandler struct {
	attempts *service.AttemptService
}

// NewAttemptHandler creates a new AttemptHandler.
func NewAttemptHandler(attempts *service.AttemptService) *AttemptHandler {
	return &AttemptHandler{attempts: attempts}
}

// Start godoc
// POST /api/v1/attempts
// Opens a fresh attempt; the paper defaults to the full question bank.
func (h *AttemptHandler) Start(c *gin.Context) {
	var req model.StartAttemptRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	state, err := h.attempts.Start(c.Request.Context(),
		model.Student{Name: req.Name, ID: req.StudentID}, req.QuestionIDs)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"attempt": state})
}

// Answer godoc
// POST /api/v1/attempts/:id/answers
func (h *AttemptHandler) Answer(c *gin.Context) {
	var req model.AnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.attempts.Answer(c.Request.Context(), c.Param("id"), req.QuestionID, req.Answer); err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "saved"})
}

// TabSwitch godoc
// POST /api/v1/attempts/:id/tab-switch
func (h *AttemptHandler) TabSwitch(c *gin.Context) {
	count, err := h.attempts.TabSwitch(c.Request.Context(), c.Param("id"))
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"tab_switch_count": count})
}

// State godoc
// GET /api/v1/attempts/:id
func (h *AttemptHandler) State(c *gin.Context) {
	state, err := h.attempts.State(c.Param("id"))
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": state})
}

// Finish godoc
// POST /api/v1/attempts/:id/finish
// Manual submission; races against the timer's forced path, and exactly
// one of the two finalizes.
func (h *AttemptHandler) Finish(c *gin.Context) {
	outcome, err := h.attempts.Finalize(c.Request.Context(), c.Param("id"), service.CauseManual)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"outcome": outcome})
}

// PeekResume godoc
// GET /api/v1/students/:student_id/resume
// Surfaces the saved-session summary backing the confirmation prompt.
func (h *AttemptHandler) PeekResume(c *gin.Context) {
	summary, err := h.attempts.PeekResume(c.Request.Context(), c.Param("student_id"))
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"resume": summary})
}

// Resume godoc
// POST /api/v1/students/:student_id/resume
// Applies or discards the saved session after the user's decision.
func (h *AttemptHandler) Resume(c *gin.Context) {
	var req model.ResumeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	state, err := h.attempts.Resume(c.Request.Context(), c.Param("student_id"), req.Accept)
	if err != nil {
		failFromService(c, err)
		return
	}
	if state == nil {
		response.Success(c, http.StatusOK, gin.H{"status": "discarded"})
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": state})
}
