package service

import (
	"context"
	"fmt"

	"github.com/itskys/jszs/internal/localstore"
	"github.com/itskys/jszs/internal/model"
	"github.com/itskys/jszs/internal/qbank"
	"github.com/rs/zerolog"
)

// HistoryService maintains the append-only, capacity-bounded ledger of
// completed attempts and rehydrates past attempts for review.
type HistoryService struct {
	store *localstore.Store
	index *qbank.Index
	limit int
	log   zerolog.Logger
}

// NewHistoryService creates a HistoryService with the given ledger capacity.
func NewHistoryService(store *localstore.Store, index *qbank.Index, limit int, log zerolog.Logger) *HistoryService {
	return &HistoryService{
		store: store,
		index: index,
		limit: limit,
		log:   log.With().Str("component", "history_service").Logger(),
	}
}

// Append prepends a record to the student's ledger, evicting the oldest
// entries beyond the capacity, and persists the result.
func (s *HistoryService) Append(ctx context.Context, studentID string, rec model.HistoryRecord) error {
	records, err := s.store.LoadHistory(ctx, studentID)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	records = append([]model.HistoryRecord{rec}, records...)
	if len(records) > s.limit {
		records = records[:s.limit]
	}

	if err := s.store.SaveHistory(ctx, studentID, records); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

// List returns the student's ledger, newest first.
func (s *HistoryService) List(ctx context.Context, studentID string) ([]model.HistoryRecord, error) {
	return s.store.LoadHistory(ctx, studentID)
}

// Clear irreversibly drops the student's ledger. The caller must pass an
// explicit confirmation flag; this is the service-side guard behind the
// "are you sure" prompt.
func (s *HistoryService) Clear(ctx context.Context, studentID string, confirm bool) error {
	if !confirm {
		return ErrConfirmationRequired
	}
	if err := s.store.ClearHistory(ctx, studentID); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	s.log.Info().Str("student_id", studentID).Msg("History ledger cleared")
	return nil
}

// LoadSnapshot rehydrates a past attempt as a read-only finished session
// for review. Question ids that no longer resolve in the index are
// dropped, same as session restoration.
func (s *HistoryService) LoadSnapshot(ctx context.Context, studentID string, index int) (*model.AttemptState, error) {
	records, err := s.store.LoadHistory(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	if index < 0 || index >= len(records) {
		return nil, ErrRecordNotFound
	}

	rec := records[index]
	if len(rec.Snapshot.QuestionIDs) == 0 {
		return nil, ErrNoSnapshot
	}

	paper := s.index.ResolvePaper(rec.Snapshot.QuestionIDs)
	ids := make([]string, 0, len(paper))
	for _, q := range paper {
		ids = append(ids, q.ID)
	}

	answers := rec.Snapshot.Answers
	if answers == nil {
		answers = map[string]string{}
	}

	return &model.AttemptState{
		Student:          model.Student{ID: studentID},
		PaperQuestionIDs: ids,
		Answers:          answers,
		Finished:         true,
	}, nil
}
