package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authorization ─────────────────────────────────────────────────
	ErrAdminKeyRequired ErrCode = "ADMIN_KEY_REQUIRED"
	ErrAdminKeyInvalid  ErrCode = "ADMIN_KEY_INVALID"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Attempts ──────────────────────────────────────────────────────
	ErrAttemptNotFound  ErrCode = "ATTEMPT_NOT_FOUND"
	ErrAttemptFinished  ErrCode = "ATTEMPT_FINISHED"
	ErrQuestionUnknown  ErrCode = "QUESTION_UNKNOWN"
	ErrDuplicatePaperID ErrCode = "DUPLICATE_PAPER_ID"
	ErrEmptyPaper       ErrCode = "EMPTY_PAPER"

	// ─── Session restoration ───────────────────────────────────────────
	ErrNoSavedSession ErrCode = "NO_SAVED_SESSION"
	ErrSessionExpired ErrCode = "SESSION_EXPIRED"
	ErrAttemptActive  ErrCode = "ATTEMPT_ALREADY_ACTIVE"

	// ─── History ───────────────────────────────────────────────────────
	ErrRecordNotFound     ErrCode = "RECORD_NOT_FOUND"
	ErrNoSnapshot         ErrCode = "NO_SNAPSHOT"
	ErrConfirmationNeeded ErrCode = "CONFIRMATION_REQUIRED"

	// ─── Submission ────────────────────────────────────────────────────
	ErrSubmitFailed   ErrCode = "SUBMIT_FAILED"
	ErrNothingToRetry ErrCode = "NOTHING_TO_RETRY"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrAdminKeyRequired:
		return "Admin key is required."
	case ErrAdminKeyInvalid:
		return "Admin key is invalid."
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid identifier format."
	case ErrInvalidPayload:
		return "Request payload is invalid."
	case ErrAttemptNotFound:
		return "No active attempt with this session id."
	case ErrAttemptFinished:
		return "This attempt has already been finalized."
	case ErrQuestionUnknown:
		return "Question id is not part of this paper."
	case ErrDuplicatePaperID:
		return "Paper contains duplicate question ids."
	case ErrEmptyPaper:
		return "Paper resolves to zero questions."
	case ErrNoSavedSession:
		return "No resumable session is saved for this student."
	case ErrSessionExpired:
		return "The saved session is too old to restore."
	case ErrAttemptActive:
		return "An attempt is already in progress for this student."
	case ErrRecordNotFound:
		return "History record index is out of range."
	case ErrNoSnapshot:
		return "This history record has no replayable snapshot."
	case ErrConfirmationNeeded:
		return "This irreversible action requires explicit confirmation."
	case ErrSubmitFailed:
		return "Result upload failed; the payload was queued locally."
	case ErrNothingToRetry:
		return "No pending submission to retry."
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
