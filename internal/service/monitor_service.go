package service

import (
	"context"
	"fmt"
	"time"

	"github.com/itskys/jszs/internal/model"
	"github.com/itskys/jszs/internal/repository"
	"github.com/rs/zerolog"
)

// MonitorService tracks which attempts are live via heartbeats and serves
// the admin presence listing.
type MonitorService struct {
	repo       *repository.MonitorRepository
	staleAfter time.Duration
	log        zerolog.Logger
}

// NewMonitorService creates a MonitorService.
func NewMonitorService(repo *repository.MonitorRepository, staleAfter time.Duration, log zerolog.Logger) *MonitorService {
	return &MonitorService{
		repo:       repo,
		staleAfter: staleAfter,
		log:        log.With().Str("component", "monitor_service").Logger(),
	}
}

// Heartbeat upserts a presence row keyed by session id. A repeat beat
// refreshes last_heartbeat and progress only; start_time keeps its
// original value from the first beat.
func (s *MonitorService) Heartbeat(ctx context.Context, req *model.HeartbeatRequest) error {
	now := time.Now().UnixMilli()
	startTime := req.StartTime
	if startTime == 0 {
		startTime = now
	}

	row := &model.MonitorRow{
		SessionID:     req.SessionID,
		StudentName:   req.Name,
		StudentID:     req.ID,
		ExamVersion:   req.Version,
		StartTime:     startTime,
		LastHeartbeat: now,
		Progress:      req.Progress,
	}
	if err := s.repo.Upsert(ctx, row); err != nil {
		return fmt.Errorf("upsert heartbeat: %w", err)
	}
	return nil
}

// List purges rows whose heartbeat went stale, then returns the remaining
// rows ordered by most recent heartbeat.
func (s *MonitorService) List(ctx context.Context) ([]model.MonitorRow, error) {
	purged, err := s.Purge(ctx)
	if err != nil {
		return nil, err
	}
	if purged > 0 {
		s.log.Debug().Int64("purged", purged).Msg("Stale monitor rows removed")
	}
	return s.repo.List(ctx)
}

// Purge removes rows older than the stale cutoff. The sweeper worker also
// calls this between listings.
func (s *MonitorService) Purge(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-s.staleAfter).UnixMilli()
	purged, err := s.repo.PurgeStale(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge stale rows: %w", err)
	}
	return purged, nil
}
