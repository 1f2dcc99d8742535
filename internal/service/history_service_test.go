package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/itskys/jszs/internal/localstore"
	"github.com/itskys/jszs/internal/model"
	"github.com/itskys/jszs/internal/qbank"
)

var testBank = []byte(`{
	"single": [
		{"id": "s1", "text": "q1", "options": ["a", "b"], "answer": "A"},
		{"id": "s2", "text": "q2", "options": ["c", "d"], "answer": "B"}
	],
	"true_false": [
		{"id": "t1", "text": "q3", "answer": "对"}
	]
}`)

func newHistoryFixture(t *testing.T, limit int) (*HistoryService, *localstore.Store) {
	t.Helper()
	idx, err := qbank.Parse(testBank)
	if err != nil {
		t.Fatal(err)
	}
	store := localstore.New(localstore.NewMemKV())
	return NewHistoryService(store, idx, limit, zerolog.Nop()), store
}

func TestHistoryAppendNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc, _ := newHistoryFixture(t, 20)

	for i := 1; i <= 3; i++ {
		rec := model.HistoryRecord{Date: fmt.Sprintf("2026-08-0%d 10:00:00", i), Score: float64(i)}
		if err := svc.Append(ctx, "stu-1", rec); err != nil {
			t.Fatalf("Append #%d: %v", i, err)
		}
	}

	records, err := svc.List(ctx, "stu-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("ledger length = %d, want 3", len(records))
	}
	if records[0].Score != 3 || records[2].Score != 1 {
		t.Errorf("ledger not newest-first: %+v", records)
	}
}

func TestHistoryCapEvictsOldest(t *testing.T) {
	ctx := context.Background()
	svc, _ := newHistoryFixture(t, 20)

	for i := 1; i <= 25; i++ {
		rec := model.HistoryRecord{Score: float64(i)}
		if err := svc.Append(ctx, "stu-1", rec); err != nil {
			t.Fatal(err)
		}
	}

	records, err := svc.List(ctx, "stu-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 20 {
		t.Fatalf("ledger length = %d, want capacity 20", len(records))
	}
	if records[0].Score != 25 {
		t.Errorf("newest record score = %v, want 25", records[0].Score)
	}
	if records[19].Score != 6 {
		t.Errorf("oldest surviving score = %v, want 6", records[19].Score)
	}
}

func TestHistoryClearRequiresConfirmation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newHistoryFixture(t, 20)

	if err := svc.Append(ctx, "stu-1", model.HistoryRecord{Score: 1}); err != nil {
		t.Fatal(err)
	}

	if err := svc.Clear(ctx, "stu-1", false); !errors.Is(err, ErrConfirmationRequired) {
		t.Fatalf("unconfirmed clear returned %v, want ErrConfirmationRequired", err)
	}

	records, _ := svc.List(ctx, "stu-1")
	if len(records) != 1 {
		t.Fatal("unconfirmed clear still dropped the ledger")
	}

	if err := svc.Clear(ctx, "stu-1", true); err != nil {
		t.Fatalf("confirmed clear: %v", err)
	}
	records, _ = svc.List(ctx, "stu-1")
	if len(records) != 0 {
		t.Errorf("ledger survived confirmed clear: %+v", records)
	}
}

func TestLoadSnapshot(t *testing.T) {
	ctx := context.Background()
	svc, _ := newHistoryFixture(t, 20)

	rec := model.HistoryRecord{
		Score: 2,
		Snapshot: model.Snapshot{
			QuestionIDs: []string{"s1", "removed", "t1"},
			Answers:     map[string]string{"s1": "A", "removed": "B"},
		},
	}
	if err := svc.Append(ctx, "stu-1", rec); err != nil {
		t.Fatal(err)
	}

	state, err := svc.LoadSnapshot(ctx, "stu-1", 0)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if !state.Finished {
		t.Error("rehydrated snapshot must be finished/read-only")
	}
	// The id that no longer resolves is dropped from the paper.
	if len(state.PaperQuestionIDs) != 2 {
		t.Errorf("paper = %v, want the 2 surviving ids", state.PaperQuestionIDs)
	}
}

func TestLoadSnapshotOutOfRange(t *testing.T) {
	ctx := context.Background()
	svc, _ := newHistoryFixture(t, 20)

	if err := svc.Append(ctx, "stu-1", model.HistoryRecord{
		Snapshot: model.Snapshot{QuestionIDs: []string{"s1"}},
	}); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.LoadSnapshot(ctx, "stu-1", 5); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("out-of-range index returned %v, want ErrRecordNotFound", err)
	}
	if _, err := svc.LoadSnapshot(ctx, "stu-1", -1); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("negative index returned %v, want ErrRecordNotFound", err)
	}
}

func TestLoadSnapshotWithoutData(t *testing.T) {
	ctx := context.Background()
	svc, _ := newHistoryFixture(t, 20)

	// A legacy record without a snapshot cannot be replayed.
	if err := svc.Append(ctx, "stu-1", model.HistoryRecord{Score: 9}); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.LoadSnapshot(ctx, "stu-1", 0); !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("snapshotless record returned %v, want ErrNoSnapshot", err)
	}
}
