package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/itskys/jszs/internal/service"
	ws "github.com/itskys/jszs/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams one attempt over WebSocket: the client sends answer
// and tab-switch actions, the server pushes a state snapshot every tick
// and a graded event when the attempt ends.
type WSHandler struct {
	attempts *service.AttemptService
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(attempts *service.AttemptService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		attempts: attempts,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// AttemptStream godoc
// WS /ws/v1/attempts/:id/stream
func (h *WSHandler) AttemptStream(c *gin.Context) {
	sessionID := c.Param("id")

	// Reject unknown sessions before paying for the upgrade.
	if _, err := h.attempts.State(sessionID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "attempt not found"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("session_id", sessionID).Logger()
	wsLog.Info().Msg("Attempt stream connected")

	// Writes come from both the read loop and the state pusher; the
	// gorilla conn allows only one concurrent writer.
	var writeMu sync.Mutex
	write := func(v interface{}) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return ws.WriteTyped(conn, v)
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	go h.pushState(ctx, sessionID, write, wsLog)

	for {
		var msg ws.RequestPayload
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionAnswer:
			h.handleAnswer(ctx, sessionID, &msg, write, wsLog)
		case ws.ActionTabSwitch:
			h.handleTabSwitch(ctx, sessionID, write, wsLog)
		case ws.ActionFinish:
			h.handleFinish(ctx, sessionID, write, wsLog)
			return
		case ws.ActionPing:
			write(ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			write(ws.ErrorResponse{Event: ws.EventError, Error: "unknown action: " + string(msg.Action)})
		}
	}
}

// pushState mirrors the countdown to the client once per second. It
// stops quietly when the attempt is finalized or the socket goes away.
func (h *WSHandler) pushState(ctx context.Context, sessionID string, write func(interface{}) error, wsLog zerolog.Logger) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			state, err := h.attempts.State(sessionID)
			if err != nil {
				return
			}
			if err := write(ws.StateResponse{Event: ws.EventState, State: state}); err != nil {
				wsLog.Debug().Err(err).Msg("State push failed")
				return
			}
		}
	}
}

func (h *WSHandler) handleAnswer(ctx context.Context, sessionID string, msg *ws.RequestPayload, write func(interface{}) error, wsLog zerolog.Logger) {
	if msg.QuestionID == "" {
		write(ws.ErrorResponse{Event: ws.EventError, Error: "question_id is required"})
		return
	}

	if err := h.attempts.Answer(ctx, sessionID, msg.QuestionID, msg.Answer); err != nil {
		wsLog.Debug().Err(err).Str("question_id", msg.QuestionID).Msg("Answer rejected")
		write(ws.ErrorResponse{Event: ws.EventError, Error: err.Error()})
		return
	}

	write(ws.SuccessResponse{Event: ws.EventSuccess, Status: "saved"})
}

func (h *WSHandler) handleTabSwitch(ctx context.Context, sessionID string, write func(interface{}) error, wsLog zerolog.Logger) {
	if _, err := h.attempts.TabSwitch(ctx, sessionID); err != nil {
		wsLog.Debug().Err(err).Msg("Tab switch rejected")
		write(ws.ErrorResponse{Event: ws.EventError, Error: err.Error()})
		return
	}

	write(ws.SuccessResponse{Event: ws.EventSuccess, Status: "counted"})
}

func (h *WSHandler) handleFinish(ctx context.Context, sessionID string, write func(interface{}) error, wsLog zerolog.Logger) {
	outcome, err := h.attempts.Finalize(ctx, sessionID, service.CauseManual)
	if err != nil {
		// The timer can win the race; surface that as a plain error and
		// let the client fetch the result over HTTP.
		if errors.Is(err, service.ErrAttemptFinished) {
			write(ws.ErrorResponse{Event: ws.EventError, Error: "attempt already finalized"})
			return
		}
		wsLog.Error().Err(err).Msg("Finalize over WebSocket failed")
		write(ws.ErrorResponse{Event: ws.EventError, Error: "finalize failed"})
		return
	}

	wsLog.Info().Float64("score", outcome.Score).Msg("Attempt graded over WebSocket")
	write(ws.GradedResponse{Event: ws.EventGraded, Outcome: outcome})
}
