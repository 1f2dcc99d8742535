package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/itskys/jszs/internal/config"
	"github.com/itskys/jszs/internal/handler"
	"github.com/itskys/jszs/internal/response"
)

const testAdminKey = "router-test-key"

// testRouter wires the route table with inert handlers; the routes under
// test fail before any service call.
func testRouter() *gin.Engine {
	cfg := &config.Config{GinMode: gin.TestMode, AdminKey: testAdminKey}
	handlers := &Handlers{
		Attempt: handler.NewAttemptHandler(nil),
		History: handler.NewHistoryHandler(nil),
		Submit:  handler.NewSubmitHandler(nil),
		Result:  handler.NewResultHandler(nil, zerolog.Nop()),
		Monitor: handler.NewMonitorHandler(nil),
		WS:      handler.NewWSHandler(nil, zerolog.Nop(), nil),
	}
	return SetupRouter(handlers, cfg)
}

func errCodeOf(t *testing.T, body []byte) response.ErrCode {
	t.Helper()
	var envelope struct {
		Error *struct {
			Code response.ErrCode `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error == nil {
		t.Fatal("response carries no error body")
	}
	return envelope.Error.Code
}

func TestHealthRoute(t *testing.T) {
	r := testRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("GET /health → %d, want 200", w.Code)
	}
}

func TestAdminRoutesRequireKey(t *testing.T) {
	r := testRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/results/1", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("keyless delete → %d, want 401", w.Code)
	}
	if code := errCodeOf(t, w.Body.Bytes()); code != response.ErrAdminKeyRequired {
		t.Errorf("error code = %s, want %s", code, response.ErrAdminKeyRequired)
	}
}

func TestDeleteResultWithoutID(t *testing.T) {
	r := testRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/results", nil)
	req.Header.Set("X-Admin-Key", testAdminKey)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("id-less delete → %d, want 400", w.Code)
	}
	if code := errCodeOf(t, w.Body.Bytes()); code != response.ErrInvalidID {
		t.Errorf("error code = %s, want %s", code, response.ErrInvalidID)
	}
}

func TestDeleteResultWithMalformedID(t *testing.T) {
	r := testRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/results/abc", nil)
	req.Header.Set("X-Admin-Key", testAdminKey)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("malformed id delete → %d, want 400", w.Code)
	}
	if code := errCodeOf(t, w.Body.Bytes()); code != response.ErrInvalidID {
		t.Errorf("error code = %s, want %s", code, response.ErrInvalidID)
	}
}
