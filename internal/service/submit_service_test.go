package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/itskys/jszs/internal/config"
	"github.com/itskys/jszs/internal/localstore"
	"github.com/itskys/jszs/internal/model"
)

func newSubmitFixture(t *testing.T, storeURL string) (*SubmitService, *localstore.Store) {
	t.Helper()
	cfg := &config.Config{
		ResultStoreURL: storeURL,
		SubmitTimeout:  2 * time.Second,
	}
	kv := localstore.New(localstore.NewMemKV())
	return NewSubmitService(cfg, kv, zerolog.Nop()), kv
}

func examData(score float64) *model.ExamData {
	return &model.ExamData{
		StudentName: "张三",
		StudentID:   "stu-1",
		Score:       score,
		Duration:    "10分0秒",
	}
}

func TestSubmitSuccess(t *testing.T) {
	var received atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/submit" {
			t.Errorf("posted to %s, want /api/submit", r.URL.Path)
		}
		var data model.ExamData
		if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
			t.Errorf("bad payload: %v", err)
		}
		received.Add(1)
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer srv.Close()

	svc, store := newSubmitFixture(t, srv.URL)
	ctx := context.Background()

	if err := svc.Submit(ctx, examData(10)); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if received.Load() != 1 {
		t.Errorf("store received %d posts, want 1", received.Load())
	}

	pending, _ := store.LoadPending(ctx, "stu-1")
	if pending != nil {
		t.Errorf("successful submit left a pending record: %+v", pending)
	}
}

func TestSubmitFailureQueuesPending(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "down"})
	}))
	defer srv.Close()

	svc, store := newSubmitFixture(t, srv.URL)
	ctx := context.Background()

	if err := svc.Submit(ctx, examData(10)); err == nil {
		t.Fatal("Submit succeeded against a failing store")
	}

	pending, err := store.LoadPending(ctx, "stu-1")
	if err != nil {
		t.Fatal(err)
	}
	if pending == nil || pending.Score != 10 {
		t.Errorf("pending slot = %+v, want the failed payload", pending)
	}
}

func TestSubmitSlotIsLastWins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "down"})
	}))
	defer srv.Close()

	svc, store := newSubmitFixture(t, srv.URL)
	ctx := context.Background()

	svc.Submit(ctx, examData(10))
	svc.Submit(ctx, examData(25))

	pending, _ := store.LoadPending(ctx, "stu-1")
	if pending == nil || pending.Score != 25 {
		t.Errorf("pending slot = %+v, want only the second payload", pending)
	}
}

func TestRetryDeliversAndClears(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "down"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer srv.Close()

	svc, store := newSubmitFixture(t, srv.URL)
	ctx := context.Background()

	svc.Submit(ctx, examData(10)) // queues

	// Store still down: the slot must survive a failed retry.
	if err := svc.Retry(ctx, "stu-1"); err == nil {
		t.Fatal("retry succeeded against a failing store")
	}
	if pending, _ := store.LoadPending(ctx, "stu-1"); pending == nil {
		t.Fatal("failed retry cleared the pending slot")
	}

	// Store recovers.
	fail.Store(false)
	if err := svc.Retry(ctx, "stu-1"); err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if pending, _ := store.LoadPending(ctx, "stu-1"); pending != nil {
		t.Errorf("delivered retry left a pending record: %+v", pending)
	}
}

func TestRetryWithEmptySlot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer srv.Close()

	svc, _ := newSubmitFixture(t, srv.URL)

	if err := svc.Retry(context.Background(), "stu-1"); !errors.Is(err, ErrNothingToRetry) {
		t.Errorf("empty-slot retry returned %v, want ErrNothingToRetry", err)
	}
}

func TestSubmitTransportErrorQueuesPending(t *testing.T) {
	// Point at a closed server to force a connection error.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	svc, store := newSubmitFixture(t, srv.URL)
	ctx := context.Background()

	if err := svc.Submit(ctx, examData(7)); err == nil {
		t.Fatal("Submit succeeded against a dead store")
	}
	if pending, _ := store.LoadPending(ctx, "stu-1"); pending == nil {
		t.Error("transport failure did not queue the payload")
	}
}
