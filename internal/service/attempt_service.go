package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/itskys/jszs/internal/exam"
	"github.com/itskys/jszs/internal/localstore"
	"github.com/itskys/jszs/internal/model"
	"github.com/itskys/jszs/internal/qbank"
	"github.com/rs/zerolog"
)

// FinalizeCause distinguishes the two finalization paths.
type FinalizeCause string

const (
	CauseManual  FinalizeCause = "manual"
	CauseTimeout FinalizeCause = "timeout"
)

// Presence is the heartbeat sink the attempt service reports liveness to.
// A nil Presence disables reporting.
type Presence interface {
	Heartbeat(ctx context.Context, req *model.HeartbeatRequest) error
}

// FinalizeOutcome is everything a finalized attempt produces.
type FinalizeOutcome struct {
	Score       float64        `json:"score"`
	Result      exam.Result    `json:"result"`
	Duration    string         `json:"duration"`
	Submitted   bool           `json:"submitted"`
	SubmitError string         `json:"submit_error,omitempty"`
	ExamData    model.ExamData `json:"exam_data"`
}

// liveAttempt pairs an attempt's state with its countdown. The mutex
// serializes every mutation of one attempt, which is what settles the race
// between timer expiry and a manual finish: both paths check-and-set
// Finished under it, so exactly one wins. saveMu orders snapshot writes:
// each write clones the state while holding it, so the last write to the
// store always carries the newest state.
type liveAttempt struct {
	mu       sync.Mutex
	saveMu   sync.Mutex
	state    *model.AttemptState
	timer    *exam.Timer
	paperSet map[string]bool
}

// AttemptService owns all in-progress attempts: answer capture, the
// countdown, snapshot persistence on every mutation, restoration, and
// finalization into grading, history, and the submission pipeline.
type AttemptService struct {
	index    *qbank.Index
	store    *localstore.Store
	submits  *SubmitService
	history  *HistoryService
	presence Presence
	policy   exam.ScorePolicy

	durationSec  int
	sessionTTL   time.Duration
	examVersion  string
	tickInterval time.Duration
	finishedTTL  time.Duration

	mu       sync.Mutex
	attempts map[string]*liveAttempt // session id → attempt
	active   map[string]string       // student id → unfinished session id

	log zerolog.Logger
}

// NewAttemptService creates an AttemptService.
func NewAttemptService(
	index *qbank.Index,
	store *localstore.Store,
	submits *SubmitService,
	history *HistoryService,
	presence Presence,
	policy exam.ScorePolicy,
	durationSec int,
	sessionTTL time.Duration,
	examVersion string,
	log zerolog.Logger,
) *AttemptService {
	return &AttemptService{
		index:        index,
		store:        store,
		submits:      submits,
		history:      history,
		presence:     presence,
		policy:       policy,
		durationSec:  durationSec,
		sessionTTL:   sessionTTL,
		examVersion:  examVersion,
		tickInterval: time.Second,
		finishedTTL:  time.Minute,
		attempts:     make(map[string]*liveAttempt),
		active:       make(map[string]string),
		log:          log.With().Str("component", "attempt_service").Logger(),
	}
}

// SetTickInterval overrides the countdown tick length. Tests shrink it;
// production keeps the one-second default.
func (s *AttemptService) SetTickInterval(d time.Duration) {
	s.tickInterval = d
}

// SetFinishedRetention overrides how long a finalized attempt stays
// readable in the registry before eviction.
func (s *AttemptService) SetFinishedRetention(d time.Duration) {
	s.finishedTTL = d
}

// Start opens a fresh attempt for a student. The paper is either the
// given question ids (duplicates rejected, unknown ids dropped) or the
// full bank in section order.
func (s *AttemptService) Start(ctx context.Context, student model.Student, questionIDs []string) (*model.AttemptState, error) {
	ids := questionIDs
	if len(ids) == 0 {
		ids = s.index.FullPaper()
	} else {
		seen := make(map[string]bool, len(ids))
		for _, id := range ids {
			if seen[id] {
				return nil, ErrDuplicatePaperID
			}
			seen[id] = true
		}
	}

	paper := s.index.ResolvePaper(ids)
	if len(paper) == 0 {
		return nil, ErrEmptyPaper
	}
	paperIDs := make([]string, 0, len(paper))
	for _, q := range paper {
		paperIDs = append(paperIDs, q.ID)
	}

	state := &model.AttemptState{
		SessionID:        uuid.New().String(),
		Student:          student,
		PaperQuestionIDs: paperIDs,
		Answers:          make(map[string]string),
		TimeLeftSeconds:  s.durationSec,
		CreatedAt:        time.Now(),
	}

	la, err := s.register(state)
	if err != nil {
		return nil, err
	}

	if err := s.persist(ctx, la); err != nil {
		s.log.Error().Err(err).Str("session_id", state.SessionID).Msg("Initial snapshot save failed")
	}
	s.heartbeat(ctx, la)
	la.timer.Start()

	s.log.Info().
		Str("session_id", state.SessionID).
		Str("student_id", student.ID).
		Int("paper_size", len(paperIDs)).
		Msg("Attempt started")

	return state.Clone(), nil
}

// register inserts a live attempt into the registry and wires its timer.
// Fails with ErrAttemptActive if the student already has an unfinished one.
func (s *AttemptService) register(state *model.AttemptState) (*liveAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.active[state.Student.ID]; busy {
		return nil, ErrAttemptActive
	}

	paperSet := make(map[string]bool, len(state.PaperQuestionIDs))
	for _, id := range state.PaperQuestionIDs {
		paperSet[id] = true
	}

	la := &liveAttempt{state: state, paperSet: paperSet}
	sessionID := state.SessionID
	la.timer = exam.NewTimer(state.TimeLeftSeconds, s.tickInterval,
		func(remaining int) { s.onTick(sessionID, remaining) },
		func() { s.onExpire(sessionID) },
	)

	s.attempts[sessionID] = la
	s.active[state.Student.ID] = sessionID
	return la, nil
}

func (s *AttemptService) get(sessionID string) (*liveAttempt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	la, ok := s.attempts[sessionID]
	return la, ok
}

// evict drops a finalized attempt from the registry.
func (s *AttemptService) evict(sessionID string) {
	s.mu.Lock()
	delete(s.attempts, sessionID)
	s.mu.Unlock()
}

// persist writes one attempt's snapshot to the store. Writes for the same
// attempt are serialized by saveMu, and the clone is taken while holding
// it: a pair of racing mutations can never leave the older snapshot as the
// stored value. Finished attempts are skipped — Finalize clears their
// envelope and nothing may write it back.
func (s *AttemptService) persist(ctx context.Context, la *liveAttempt) error {
	la.saveMu.Lock()
	defer la.saveMu.Unlock()

	la.mu.Lock()
	if la.state.Finished {
		la.mu.Unlock()
		return nil
	}
	snapshot := la.state.Clone()
	la.mu.Unlock()

	return s.store.SaveSession(ctx, snapshot)
}

// onTick mirrors the countdown into the attempt state and persists a
// snapshot, so a crash costs at most one second of clock drift.
func (s *AttemptService) onTick(sessionID string, remaining int) {
	la, ok := s.get(sessionID)
	if !ok {
		return
	}

	la.mu.Lock()
	if la.state.Finished {
		la.mu.Unlock()
		return
	}
	la.state.TimeLeftSeconds = remaining
	la.mu.Unlock()

	if err := s.persist(context.Background(), la); err != nil {
		s.log.Warn().Err(err).Str("session_id", sessionID).Msg("Tick snapshot save failed")
	}
}

// onExpire is the forced-submission path when the countdown hits zero.
func (s *AttemptService) onExpire(sessionID string) {
	if _, err := s.Finalize(context.Background(), sessionID, CauseTimeout); err != nil && err != ErrAttemptFinished {
		s.log.Error().Err(err).Str("session_id", sessionID).Msg("Forced finalization failed")
	}
}

// Answer captures one submitted answer. An empty answer clears a previous
// selection, keeping the answers-⊆-paper invariant intact.
func (s *AttemptService) Answer(ctx context.Context, sessionID, questionID, answer string) error {
	la, ok := s.get(sessionID)
	if !ok {
		return ErrAttemptNotFound
	}

	la.mu.Lock()
	if la.state.Finished {
		la.mu.Unlock()
		return ErrAttemptFinished
	}
	if !la.paperSet[questionID] {
		la.mu.Unlock()
		return ErrUnknownQuestion
	}
	if answer == "" {
		delete(la.state.Answers, questionID)
	} else {
		la.state.Answers[questionID] = answer
	}
	la.mu.Unlock()

	if err := s.persist(ctx, la); err != nil {
		return fmt.Errorf("persist snapshot: %w", err)
	}
	s.heartbeat(ctx, la)
	return nil
}

// TabSwitch increments the attempt's tab-switch counter.
func (s *AttemptService) TabSwitch(ctx context.Context, sessionID string) (int, error) {
	la, ok := s.get(sessionID)
	if !ok {
		return 0, ErrAttemptNotFound
	}

	la.mu.Lock()
	if la.state.Finished {
		la.mu.Unlock()
		return 0, ErrAttemptFinished
	}
	la.state.TabSwitchCount++
	count := la.state.TabSwitchCount
	la.mu.Unlock()

	if err := s.persist(ctx, la); err != nil {
		return count, fmt.Errorf("persist snapshot: %w", err)
	}
	return count, nil
}

// State returns a read-only copy of the attempt's current state.
func (s *AttemptService) State(sessionID string) (*model.AttemptState, error) {
	la, ok := s.get(sessionID)
	if !ok {
		return nil, ErrAttemptNotFound
	}

	la.mu.Lock()
	defer la.mu.Unlock()
	return la.state.Clone(), nil
}

// Finalize closes the attempt: exactly one caller (manual submit or timer
// expiry) wins the Finished flag; every later caller gets
// ErrAttemptFinished. The winner grades the paper, appends the history
// record, pushes the payload through the submission pipeline, and clears
// the persisted session envelope. A failed upload never loses the result:
// it is already in the ledger and queued for retry.
func (s *AttemptService) Finalize(ctx context.Context, sessionID string, cause FinalizeCause) (*FinalizeOutcome, error) {
	la, ok := s.get(sessionID)
	if !ok {
		return nil, ErrAttemptNotFound
	}

	la.mu.Lock()
	if la.state.Finished {
		la.mu.Unlock()
		return nil, ErrAttemptFinished
	}
	la.state.Finished = true
	snapshot := la.state.Clone()
	la.mu.Unlock()

	// Stop outside the attempt lock; the timer callbacks also take it.
	la.timer.Stop()

	elapsed := s.durationSec - snapshot.TimeLeftSeconds
	paper := s.index.ResolvePaper(snapshot.PaperQuestionIDs)
	result := exam.Grade(paper, snapshot.Answers)
	score := s.policy.Score(result)
	now := time.Now()

	record := model.HistoryRecord{
		Date:     now.Format("2006-01-02 15:04:05"),
		Score:    score,
		Duration: exam.FormatDuration(elapsed),
		Stats:    result.StatsDisplay(),
		Snapshot: model.Snapshot{
			QuestionIDs: snapshot.PaperQuestionIDs,
			Answers:     snapshot.Answers,
		},
	}
	if err := s.history.Append(ctx, snapshot.Student.ID, record); err != nil {
		// The ledger is the local source of truth for finished attempts;
		// losing an append is worth a loud log even though finalization
		// continues.
		s.log.Error().Err(err).Str("session_id", sessionID).Msg("History append failed")
	}

	examData := model.ExamData{
		StudentName:  snapshot.Student.Name,
		StudentID:    snapshot.Student.ID,
		Score:        score,
		Duration:     exam.FormatDuration(elapsed),
		CorrectCount: result.CorrectCount,
		SubmitTime:   now.Format("2006-01-02 15:04:05"),
		ExamVersion:  s.examVersion,
		SwitchCount:  snapshot.TabSwitchCount,
		Stats: model.DetailedStats{
			Breakdown: result.Breakdown(),
			WrongIDs:  result.WrongIDs,
			PaperIDs:  snapshot.PaperQuestionIDs,
		},
	}

	outcome := &FinalizeOutcome{
		Score:    score,
		Result:   result,
		Duration: exam.FormatDuration(elapsed),
		ExamData: examData,
	}
	if err := s.submits.Submit(ctx, &examData); err != nil {
		outcome.SubmitError = err.Error()
	} else {
		outcome.Submitted = true
	}

	// A completed attempt must not be resumable. Clearing under saveMu
	// fences any in-flight snapshot write: it either lands before the
	// clear or observes Finished and skips.
	la.saveMu.Lock()
	if err := s.store.ClearSession(ctx, snapshot.Student.ID); err != nil {
		s.log.Warn().Err(err).Str("session_id", sessionID).Msg("Session envelope clear failed")
	}
	la.saveMu.Unlock()

	s.mu.Lock()
	if s.active[snapshot.Student.ID] == sessionID {
		delete(s.active, snapshot.Student.ID)
	}
	s.mu.Unlock()

	// Keep the finished attempt readable briefly so a streaming client
	// can observe the final snapshot, then drop it from the registry.
	time.AfterFunc(s.finishedTTL, func() { s.evict(sessionID) })

	s.heartbeat(ctx, la)

	s.log.Info().
		Str("session_id", sessionID).
		Str("cause", string(cause)).
		Float64("score", score).
		Int("correct", result.CorrectCount).
		Bool("submitted", outcome.Submitted).
		Msg("Attempt finalized")

	return outcome, nil
}

// PeekResume surfaces the confirmation-prompt summary for a saved session:
// student name, remaining time, and when it was saved. Envelopes older
// than the session TTL are discarded as expired.
func (s *AttemptService) PeekResume(ctx context.Context, studentID string) (*model.ResumeSummary, error) {
	env, err := s.loadFreshEnvelope(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return &model.ResumeSummary{
		StudentName:     env.State.Student.Name,
		TimeLeftSeconds: env.State.TimeLeftSeconds,
		SavedAt:         env.SavedAt(),
	}, nil
}

// Resume applies or discards a saved session after the user's decision.
// Declining discards the envelope and returns (nil, nil). Accepting
// rebuilds the attempt — question ids no longer in the bank are silently
// dropped — and restarts the countdown at the saved remaining seconds.
func (s *AttemptService) Resume(ctx context.Context, studentID string, accept bool) (*model.AttemptState, error) {
	env, err := s.loadFreshEnvelope(ctx, studentID)
	if err != nil {
		return nil, err
	}

	if !accept {
		if err := s.store.ClearSession(ctx, studentID); err != nil {
			return nil, fmt.Errorf("discard session: %w", err)
		}
		return nil, nil
	}

	paper := s.index.ResolvePaper(env.State.PaperQuestionIDs)
	if len(paper) == 0 {
		_ = s.store.ClearSession(ctx, studentID)
		return nil, ErrEmptyPaper
	}
	paperIDs := make([]string, 0, len(paper))
	for _, q := range paper {
		paperIDs = append(paperIDs, q.ID)
	}

	// Keep only answers whose question survived the bank change.
	answers := make(map[string]string, len(env.State.Answers))
	for _, id := range paperIDs {
		if a, ok := env.State.Answers[id]; ok {
			answers[id] = a
		}
	}

	sessionID := env.State.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	state := &model.AttemptState{
		SessionID:        sessionID,
		Student:          env.State.Student,
		PaperQuestionIDs: paperIDs,
		Answers:          answers,
		TimeLeftSeconds:  env.State.TimeLeftSeconds,
		TabSwitchCount:   env.State.TabSwitchCount,
		CreatedAt:        env.State.CreatedAt,
	}

	la, err := s.register(state)
	if err != nil {
		return nil, err
	}

	if err := s.persist(ctx, la); err != nil {
		s.log.Warn().Err(err).Str("session_id", sessionID).Msg("Resumed snapshot save failed")
	}
	s.heartbeat(ctx, la)
	la.timer.Start()

	s.log.Info().
		Str("session_id", sessionID).
		Str("student_id", studentID).
		Int("time_left", state.TimeLeftSeconds).
		Msg("Attempt resumed")

	return state.Clone(), nil
}

// loadFreshEnvelope loads a saved session and enforces the TTL. Expired
// envelopes are removed on sight.
func (s *AttemptService) loadFreshEnvelope(ctx context.Context, studentID string) (*localstore.SessionEnvelope, error) {
	env, err := s.store.LoadSession(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if env == nil {
		return nil, ErrNoSavedSession
	}
	if time.Since(env.SavedAt()) > s.sessionTTL {
		if err := s.store.ClearSession(ctx, studentID); err != nil {
			s.log.Warn().Err(err).Str("student_id", studentID).Msg("Expired envelope clear failed")
		}
		return nil, ErrSessionExpired
	}
	return env, nil
}

// heartbeat reports attempt liveness to the presence sink, best effort.
func (s *AttemptService) heartbeat(ctx context.Context, la *liveAttempt) {
	if s.presence == nil {
		return
	}

	la.mu.Lock()
	progress := fmt.Sprintf("%d/%d", len(la.state.Answers), len(la.state.PaperQuestionIDs))
	if la.state.Finished {
		progress = "finished"
	}
	req := &model.HeartbeatRequest{
		SessionID: la.state.SessionID,
		Name:      la.state.Student.Name,
		ID:        la.state.Student.ID,
		Version:   s.examVersion,
		Progress:  progress,
		StartTime: la.state.CreatedAt.UnixMilli(),
	}
	la.mu.Unlock()

	if err := s.presence.Heartbeat(ctx, req); err != nil {
		s.log.Debug().Err(err).Str("session_id", req.SessionID).Msg("Heartbeat failed")
	}
}
