package localstore

import (
	"context"
	"testing"
	"time"

	"github.com/itskys/jszs/internal/config"
	"github.com/itskys/jszs/internal/model"
)

func testState(studentID string) *model.AttemptState {
	return &model.AttemptState{
		SessionID:        "sess-1",
		Student:          model.Student{Name: "张三", ID: studentID},
		PaperQuestionIDs: []string{"s1", "m1"},
		Answers:          map[string]string{"s1": "A"},
		TimeLeftSeconds:  1800,
		CreatedAt:        time.Now(),
	}
}

func TestSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := New(NewMemKV())

	if err := store.SaveSession(ctx, testState("stu-1")); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	env, err := store.LoadSession(ctx, "stu-1")
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if env == nil {
		t.Fatal("LoadSession returned nil for a saved session")
	}
	if env.SchemaVersion != SchemaVersion {
		t.Errorf("SchemaVersion = %d, want %d", env.SchemaVersion, SchemaVersion)
	}
	if env.State.SessionID != "sess-1" || env.State.Answers["s1"] != "A" {
		t.Errorf("restored state mismatch: %+v", env.State)
	}
	if time.Since(env.SavedAt()) > time.Minute {
		t.Errorf("SavedAt implausibly old: %v", env.SavedAt())
	}
}

func TestLoadSessionMissing(t *testing.T) {
	store := New(NewMemKV())

	env, err := store.LoadSession(context.Background(), "absent")
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if env != nil {
		t.Errorf("expected nil envelope for missing key, got %+v", env)
	}
}

func TestLoadSessionCorruptIsDiscarded(t *testing.T) {
	ctx := context.Background()
	kv := NewMemKV()
	store := New(kv)

	key := config.StoreKey.SessionKey("stu-1")
	if err := kv.Set(ctx, key, []byte("{not json")); err != nil {
		t.Fatal(err)
	}

	env, err := store.LoadSession(ctx, "stu-1")
	if err != nil {
		t.Fatalf("corrupt value must not surface an error, got %v", err)
	}
	if env != nil {
		t.Fatalf("corrupt value must read as absent, got %+v", env)
	}

	// The bad value is deleted, not left to fail again.
	if _, err := kv.Get(ctx, key); err != ErrNotFound {
		t.Errorf("corrupt key still present after load")
	}
}

func TestLoadSessionVersionMismatchIsDiscarded(t *testing.T) {
	ctx := context.Background()
	kv := NewMemKV()
	store := New(kv)

	key := config.StoreKey.SessionKey("stu-1")
	stale := []byte(`{"schema_version":1,"timestamp":0,"state":{}}`)
	if err := kv.Set(ctx, key, stale); err != nil {
		t.Fatal(err)
	}

	env, err := store.LoadSession(ctx, "stu-1")
	if err != nil || env != nil {
		t.Fatalf("stale-version envelope must read as absent, got %+v, %v", env, err)
	}
}

func TestClearSession(t *testing.T) {
	ctx := context.Background()
	store := New(NewMemKV())

	if err := store.SaveSession(ctx, testState("stu-1")); err != nil {
		t.Fatal(err)
	}
	if err := store.ClearSession(ctx, "stu-1"); err != nil {
		t.Fatalf("ClearSession: %v", err)
	}

	env, err := store.LoadSession(ctx, "stu-1")
	if err != nil || env != nil {
		t.Errorf("session survived ClearSession: %+v, %v", env, err)
	}
}

func TestHistoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := New(NewMemKV())

	records := []model.HistoryRecord{
		{Date: "2026-08-29 10:00:00", Score: 42, Duration: "10分0秒"},
		{Date: "2026-08-28 09:00:00", Score: 30, Duration: "8分30秒"},
	}
	if err := store.SaveHistory(ctx, "stu-1", records); err != nil {
		t.Fatalf("SaveHistory: %v", err)
	}

	got, err := store.LoadHistory(ctx, "stu-1")
	if err != nil {
		t.Fatalf("LoadHistory: %v", err)
	}
	if len(got) != 2 || got[0].Score != 42 {
		t.Errorf("restored ledger mismatch: %+v", got)
	}
}

func TestLoadHistoryMissingIsEmpty(t *testing.T) {
	store := New(NewMemKV())

	got, err := store.LoadHistory(context.Background(), "absent")
	if err != nil {
		t.Fatalf("LoadHistory: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty ledger, got %+v", got)
	}
}

func TestPendingSlotLastWins(t *testing.T) {
	ctx := context.Background()
	store := New(NewMemKV())

	first := &model.ExamData{StudentName: "张三", StudentID: "stu-1", Score: 10}
	second := &model.ExamData{StudentName: "张三", StudentID: "stu-1", Score: 25}

	if err := store.SavePending(ctx, "stu-1", first); err != nil {
		t.Fatal(err)
	}
	if err := store.SavePending(ctx, "stu-1", second); err != nil {
		t.Fatal(err)
	}

	got, err := store.LoadPending(ctx, "stu-1")
	if err != nil {
		t.Fatalf("LoadPending: %v", err)
	}
	if got == nil || got.Score != 25 {
		t.Errorf("pending slot = %+v, want the later payload", got)
	}

	if err := store.ClearPending(ctx, "stu-1"); err != nil {
		t.Fatal(err)
	}
	got, err = store.LoadPending(ctx, "stu-1")
	if err != nil || got != nil {
		t.Errorf("pending slot survived ClearPending: %+v, %v", got, err)
	}
}
