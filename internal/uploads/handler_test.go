package uploads

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"resume-review/internal/shared/server/middleware"
)

type brokenTracker struct{}

func (brokenTracker) Begin(context.Context, string) error         { return errors.New("down") }
func (brokenTracker) Finish(context.Context, string, State) error { return errors.New("down") }
func (brokenTracker) State(context.Context, string) (State, error) {
	return "", errors.New("down")
}

func newStateRouter(tracker Tracker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Identity())
	NewHandler(tracker).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestStateEndpointReportsCallerState(t *testing.T) {
	tracker := NewMemoryTracker(time.Minute, nil)
	if err := tracker.Begin(context.Background(), "client:client-1"); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	router := newStateRouter(tracker)

	cases := []struct {
		clientID string
		want     State
	}{
		{clientID: "client-1", want: StateUploading},
		{clientID: "client-2", want: StateIdle},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/uploads/state", nil)
		req.Header.Set("X-Client-Id", tc.clientID)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.Code)
		}
		var body stateResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.State != tc.want {
			t.Fatalf("client %s: expected %q, got %q", tc.clientID, tc.want, body.State)
		}
	}
}

func TestStateEndpointTrackerFailure(t *testing.T) {
	router := newStateRouter(brokenTracker{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/uploads/state", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
}
