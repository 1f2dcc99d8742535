package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/itskys/jszs/internal/config"
	"github.com/itskys/jszs/internal/model"
)

// SchemaVersion tags every persisted envelope. A version mismatch means
// the envelope predates the current format and is discarded rather than
// migrated in place.
const SchemaVersion = 2

// SessionEnvelope wraps a persisted in-progress attempt with the metadata
// restoration needs.
type SessionEnvelope struct {
	SchemaVersion int                `json:"schema_version"`
	Timestamp     int64              `json:"timestamp"` // unix ms at save time
	State         model.AttemptState `json:"state"`
}

// SavedAt returns the envelope's save time.
func (e *SessionEnvelope) SavedAt() time.Time {
	return time.UnixMilli(e.Timestamp)
}

type historyEnvelope struct {
	SchemaVersion int                   `json:"schema_version"`
	Records       []model.HistoryRecord `json:"records"`
}

type pendingEnvelope struct {
	SchemaVersion int            `json:"schema_version"`
	Timestamp     int64          `json:"timestamp"`
	Payload       model.ExamData `json:"payload"`
}

// Store is the typed persistence interface over a KV backend. Corrupt or
// version-mismatched values are treated as absent: the caller gets a clean
// slate, never an error it must recover from. That keeps malformed local
// state non-fatal across the board.
type Store struct {
	kv KV
}

// New creates a Store on the given backend.
func New(kv KV) *Store {
	return &Store{kv: kv}
}

// ─── Session envelope ──────────────────────────────────────────────

// SaveSession persists an attempt snapshot under the student's session key.
func (s *Store) SaveSession(ctx context.Context, state *model.AttemptState) error {
	env := SessionEnvelope{
		SchemaVersion: SchemaVersion,
		Timestamp:     time.Now().UnixMilli(),
		State:         *state,
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, config.StoreKey.SessionKey(state.Student.ID), raw)
}

// LoadSession returns the persisted session envelope for a student, or
// (nil, nil) when none exists or the stored value is unusable.
func (s *Store) LoadSession(ctx context.Context, studentID string) (*SessionEnvelope, error) {
	raw, err := s.kv.Get(ctx, config.StoreKey.SessionKey(studentID))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var env SessionEnvelope
	if err := json.Unmarshal(raw, &env); err != nil || env.SchemaVersion != SchemaVersion {
		// Corrupt or stale-format envelope: discard it.
		_ = s.kv.Del(ctx, config.StoreKey.SessionKey(studentID))
		return nil, nil
	}
	return &env, nil
}

// ClearSession removes a student's persisted session envelope.
func (s *Store) ClearSession(ctx context.Context, studentID string) error {
	return s.kv.Del(ctx, config.StoreKey.SessionKey(studentID))
}

// ─── History ledger ────────────────────────────────────────────────

// SaveHistory persists a student's full history ledger.
func (s *Store) SaveHistory(ctx context.Context, studentID string, records []model.HistoryRecord) error {
	raw, err := json.Marshal(historyEnvelope{
		SchemaVersion: SchemaVersion,
		Records:       records,
	})
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, config.StoreKey.HistoryKey(studentID), raw)
}

// LoadHistory returns a student's history ledger, newest first. Missing or
// unusable data yields an empty ledger.
func (s *Store) LoadHistory(ctx context.Context, studentID string) ([]model.HistoryRecord, error) {
	raw, err := s.kv.Get(ctx, config.StoreKey.HistoryKey(studentID))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var env historyEnvelope
	if err := json.Unmarshal(raw, &env); err != nil || env.SchemaVersion != SchemaVersion {
		return nil, nil
	}
	return env.Records, nil
}

// ClearHistory irreversibly drops a student's history ledger.
func (s *Store) ClearHistory(ctx context.Context, studentID string) error {
	return s.kv.Del(ctx, config.StoreKey.HistoryKey(studentID))
}

// ─── Pending submission slot ───────────────────────────────────────

// SavePending stores the single pending submission, overwriting any prior
// one (last-attempt-wins).
func (s *Store) SavePending(ctx context.Context, studentID string, payload *model.ExamData) error {
	raw, err := json.Marshal(pendingEnvelope{
		SchemaVersion: SchemaVersion,
		Timestamp:     time.Now().UnixMilli(),
		Payload:       *payload,
	})
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, config.StoreKey.PendingKey(studentID), raw)
}

// LoadPending returns the queued submission payload, or (nil, nil) when
// the slot is empty or unusable.
func (s *Store) LoadPending(ctx context.Context, studentID string) (*model.ExamData, error) {
	raw, err := s.kv.Get(ctx, config.StoreKey.PendingKey(studentID))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var env pendingEnvelope
	if err := json.Unmarshal(raw, &env); err != nil || env.SchemaVersion != SchemaVersion {
		_ = s.kv.Del(ctx, config.StoreKey.PendingKey(studentID))
		return nil, nil
	}
	return &env.Payload, nil
}

// ClearPending empties the pending submission slot.
func (s *Store) ClearPending(ctx context.Context, studentID string) error {
	return s.kv.Del(ctx, config.StoreKey.PendingKey(studentID))
}
