package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/itskys/jszs/internal/model"
	"github.com/itskys/jszs/internal/repository"
	"github.com/rs/zerolog"
)

// ResultService is the result store: append-only rows written by the
// submit endpoint and read/pruned by the admin surface.
type ResultService struct {
	repo *repository.ResultRepository
	log  zerolog.Logger
}

// NewResultService creates a ResultService.
func NewResultService(repo *repository.ResultRepository, log zerolog.Logger) *ResultService {
	return &ResultService{
		repo: repo,
		log:  log.With().Str("component", "result_service").Logger(),
	}
}

// Record appends one result row and returns its id.
func (s *ResultService) Record(ctx context.Context, data *model.ExamData) (int64, error) {
	statsJSON, err := json.Marshal(data.Stats)
	if err != nil {
		return 0, fmt.Errorf("marshal stats: %w", err)
	}

	id, err := s.repo.Insert(ctx, data, statsJSON)
	if err != nil {
		return 0, fmt.Errorf("insert result: %w", err)
	}

	s.log.Info().
		Int64("id", id).
		Str("student_id", data.StudentID).
		Float64("score", data.Score).
		Msg("Result recorded")
	return id, nil
}

// List returns all stored rows, newest first.
func (s *ResultService) List(ctx context.Context) ([]model.ResultRow, error) {
	return s.repo.List(ctx)
}

// Delete removes one row by id and reports how many rows went away.
// Deleting an absent id is a zero-rows outcome, not an error.
func (s *ResultService) Delete(ctx context.Context, id int64) (int64, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("delete result: %w", err)
	}
	return deleted, nil
}
