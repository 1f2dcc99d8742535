package service

import "errors"

// Sentinel errors shared across services. Handlers map these onto typed
// response codes.
var (
	ErrAttemptNotFound      = errors.New("no active attempt with this session id")
	ErrAttemptFinished      = errors.New("attempt is already finalized")
	ErrAttemptActive        = errors.New("an attempt is already in progress for this student")
	ErrUnknownQuestion      = errors.New("question id is not part of this paper")
	ErrDuplicatePaperID     = errors.New("paper contains duplicate question ids")
	ErrEmptyPaper           = errors.New("paper resolves to zero questions")
	ErrNoSavedSession       = errors.New("no resumable session saved for this student")
	ErrSessionExpired       = errors.New("saved session is too old to restore")
	ErrNothingToRetry       = errors.New("no pending submission to retry")
	ErrRecordNotFound       = errors.New("history record index out of range")
	ErrNoSnapshot           = errors.New("history record has no replayable snapshot")
	ErrConfirmationRequired = errors.New("irreversible action requires explicit confirmation")
)
