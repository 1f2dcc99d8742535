package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/itskys/jszs/internal/config"
	"github.com/itskys/jszs/internal/localstore"
	"github.com/itskys/jszs/internal/model"
	"github.com/rs/zerolog"
)

// SubmitService is the submission pipeline: it delivers a finished
// attempt's payload to the result store, and on failure queues exactly one
// pending record locally for manual retry.
type SubmitService struct {
	client   *http.Client
	endpoint string
	store    *localstore.Store
	log      zerolog.Logger
}

// NewSubmitService creates a SubmitService posting to the configured
// result store. Every network call carries the configured timeout.
func NewSubmitService(cfg *config.Config, store *localstore.Store, log zerolog.Logger) *SubmitService {
	return &SubmitService{
		client:   &http.Client{Timeout: cfg.SubmitTimeout},
		endpoint: strings.TrimRight(cfg.ResultStoreURL, "/") + "/api/submit",
		store:    store,
		log:      log.With().Str("component", "submit_service").Logger(),
	}
}

type submitResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Submit sends examData to the result store. On success any previously
// queued pending submission is cleared. On any failure (transport error,
// non-2xx status, or a success:false body) the payload is stored as the
// single pending submission — overwriting a prior one — and the error is
// returned for the caller to surface a retry affordance.
func (s *SubmitService) Submit(ctx context.Context, data *model.ExamData) error {
	if err := s.post(ctx, data); err != nil {
		if saveErr := s.store.SavePending(ctx, data.StudentID, data); saveErr != nil {
			s.log.Error().Err(saveErr).
				Str("student_id", data.StudentID).
				Msg("Failed to queue pending submission")
		} else {
			s.log.Warn().Err(err).
				Str("student_id", data.StudentID).
				Msg("Submission failed, payload queued locally")
		}
		return fmt.Errorf("submit result: %w", err)
	}

	if err := s.store.ClearPending(ctx, data.StudentID); err != nil {
		s.log.Warn().Err(err).Msg("Failed to clear pending slot after success")
	}
	return nil
}

// Retry re-sends the queued pending submission. An empty slot yields
// ErrNothingToRetry. Success clears the slot; failure leaves it unchanged.
func (s *SubmitService) Retry(ctx context.Context, studentID string) error {
	pending, err := s.store.LoadPending(ctx, studentID)
	if err != nil {
		return fmt.Errorf("load pending: %w", err)
	}
	if pending == nil {
		return ErrNothingToRetry
	}

	if err := s.post(ctx, pending); err != nil {
		return fmt.Errorf("retry submit: %w", err)
	}

	if err := s.store.ClearPending(ctx, studentID); err != nil {
		return fmt.Errorf("clear pending: %w", err)
	}
	s.log.Info().Str("student_id", studentID).Msg("Pending submission delivered")
	return nil
}

// Pending returns the currently queued payload, or nil when the slot is empty.
func (s *SubmitService) Pending(ctx context.Context, studentID string) (*model.ExamData, error) {
	return s.store.LoadPending(ctx, studentID)
}

// post performs the single network call of the pipeline.
func (s *SubmitService) post(ctx context.Context, data *model.ExamData) error {
	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post result: %w", err)
	}
	defer resp.Body.Close()

	var result submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	if !result.Success {
		if result.Error == "" {
			result.Error = fmt.Sprintf("result store returned status %d", resp.StatusCode)
		}
		return fmt.Errorf("result store rejected submission: %s", result.Error)
	}
	return nil
}
