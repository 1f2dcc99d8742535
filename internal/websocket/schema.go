package websocket

import (
	"github.com/itskys/jszs/internal/model"
	"github.com/itskys/jszs/internal/service"
)

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer    Action = "answer"
	ActionTabSwitch Action = "tab_switch"
	ActionFinish    Action = "finish"
	ActionPing      Action = "ping"
)

// RequestPayload carries any client action; unused fields stay empty.
type RequestPayload struct {
	Action     Action `json:"action"`
	QuestionID string `json:"question_id,omitempty"`
	Answer     string `json:"answer,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError   Event = "error"
	EventSuccess Event = "success"
	EventState   Event = "state"
	EventGraded  Event = "graded"
	EventPong    Event = "pong"
)

// StateResponse is the periodic attempt snapshot push.
type StateResponse struct {
	Event Event               `json:"event"`
	State *model.AttemptState `json:"state"`
}

// GradedResponse closes the stream after finalization.
type GradedResponse struct {
	Event   Event                    `json:"event"`
	Outcome *service.FinalizeOutcome `json:"outcome"`
}

type SuccessResponse struct {
	Event  Event  `json:"event"`
	Status string `json:"status"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
