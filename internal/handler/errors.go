package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/itskys/jszs/internal/response"
	"github.com/itskys/jszs/internal/service"
)

// failFromService maps service sentinel errors onto typed API failures.
func failFromService(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAttemptNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrAttemptNotFound)
	case errors.Is(err, service.ErrAttemptFinished):
		response.Fail(c, http.StatusConflict, response.ErrAttemptFinished)
	case errors.Is(err, service.ErrAttemptActive):
		response.Fail(c, http.StatusConflict, response.ErrAttemptActive)
	case errors.Is(err, service.ErrUnknownQuestion):
		response.Fail(c, http.StatusBadRequest, response.ErrQuestionUnknown)
	case errors.Is(err, service.ErrDuplicatePaperID):
		response.Fail(c, http.StatusBadRequest, response.ErrDuplicatePaperID)
	case errors.Is(err, service.ErrEmptyPaper):
		response.Fail(c, http.StatusBadRequest, response.ErrEmptyPaper)
	case errors.Is(err, service.ErrNoSavedSession):
		response.Fail(c, http.StatusNotFound, response.ErrNoSavedSession)
	case errors.Is(err, service.ErrSessionExpired):
		response.Fail(c, http.StatusGone, response.ErrSessionExpired)
	case errors.Is(err, service.ErrNothingToRetry):
		response.Fail(c, http.StatusNotFound, response.ErrNothingToRetry)
	case errors.Is(err, service.ErrRecordNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrRecordNotFound)
	case errors.Is(err, service.ErrNoSnapshot):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrNoSnapshot)
	case errors.Is(err, service.ErrConfirmationRequired):
		response.Fail(c, http.StatusBadRequest, response.ErrConfirmationNeeded)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
