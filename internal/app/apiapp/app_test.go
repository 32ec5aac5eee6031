package apiapp

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"go.uber.org/zap"

	"github.com/Jayce162/Petpals/internal/config"
	"github.com/Jayce162/Petpals/internal/domain/model"
)

func TestNewServesHealthWithoutBackends(t *testing.T) {
	cfg := config.Default()
	cfg.Redis.Addr = ""

	app, err := New(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(func() { _ = app.Shutdown(context.Background()) })

	rr := httptest.NewRecorder()
	app.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
}

func TestRunAndShutdownConcurrently(t *testing.T) {
	cfg := config.Default()
	cfg.Redis.Addr = ""
	cfg.HTTP.Addr = "127.0.0.1:0"
	cfg.Sessions.IdleTTL = time.Minute

	for i := 0; i < 20; i++ {
		app, err := New(context.Background(), cfg, zap.NewNop())
		if err != nil {
			t.Fatalf("new app: %v", err)
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- app.Run()
		}()
		if err := app.Shutdown(context.Background()); err != nil {
			t.Fatalf("shutdown #%d: %v", i, err)
		}

		select {
		case err := <-errCh:
			if err != nil {
				t.Fatalf("run #%d: %v", i, err)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("run #%d did not return after shutdown", i)
		}

		app.jobsMu.Lock()
		closed := app.closed
		app.jobsMu.Unlock()
		if !closed {
			t.Fatalf("shutdown #%d must mark jobs closed", i)
		}
	}
}

func TestRunAfterShutdownStartsNoJobs(t *testing.T) {
	cfg := config.Default()
	cfg.Redis.Addr = ""
	cfg.HTTP.Addr = "127.0.0.1:0"
	cfg.Sessions.IdleTTL = time.Minute

	app, err := New(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	if err := app.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if err := app.Run(); err != nil {
		t.Fatalf("run after shutdown: %v", err)
	}

	done := make(chan struct{})
	go func() {
		app.jobsWG.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("sweeper started after shutdown")
	}
}

func TestNewRejectsNilLogger(t *testing.T) {
	if _, err := New(context.Background(), config.Default(), nil); err == nil {
		t.Fatalf("expected error for nil logger")
	}
}

func TestSwipeFlowThrottledThroughRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := config.Default()
	cfg.Redis.Addr = mr.Addr()
	cfg.Match.CommitDelay = 0
	cfg.Match.Probability = 1
	cfg.SwipeRate.Per10Seconds = 2

	app, err := New(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(func() { _ = app.Shutdown(context.Background()) })
	h := app.Handler()

	rr := doJSON(t, h, http.MethodPost, "/v1/sessions", map[string]any{"actor_id": 5, "gender": "female"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create session: status %d body %s", rr.Code, rr.Body.String())
	}
	var session struct {
		ID        string `json:"id"`
		Remaining int    `json:"remaining"`
	}
	decodeInto(t, rr, &session)
	if session.Remaining != len(cfg.Candidates.Static) {
		t.Fatalf("unexpected pool size: %d", session.Remaining)
	}

	swipe := func(candidateID string) *httptest.ResponseRecorder {
		return doJSON(t, h, http.MethodPost, "/v1/sessions/"+session.ID+"/swipes", map[string]any{
			"candidate_id": candidateID,
			"direction":    "like",
		})
	}

	for _, candidateID := range []string{"pet-luna", "pet-max"} {
		rr = swipe(candidateID)
		if rr.Code != http.StatusOK {
			t.Fatalf("swipe %s: status %d body %s", candidateID, rr.Code, rr.Body.String())
		}
		var resp struct {
			Matched bool `json:"matched"`
			Match   struct {
				IsFirstMoveYours bool `json:"is_first_move_yours"`
			} `json:"match"`
		}
		decodeInto(t, rr, &resp)
		if !resp.Matched || !resp.Match.IsFirstMoveYours {
			t.Fatalf("female actor with certain match should match and move first: %+v", resp)
		}
	}

	rr = swipe("pet-mochi")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected throttle on third swipe, got %d", rr.Code)
	}
	var throttled struct {
		Code          string `json:"code"`
		RetryAfterSec int64  `json:"retry_after_sec"`
	}
	decodeInto(t, rr, &throttled)
	if throttled.Code != "TOO_FAST" || throttled.RetryAfterSec <= 0 || throttled.RetryAfterSec > 10 {
		t.Fatalf("unexpected throttle payload: %+v", throttled)
	}

	rr = doJSON(t, h, http.MethodGet, "/v1/sessions/"+session.ID+"/candidate", nil)
	var current struct {
		SwipeRetryAfterSec int64 `json:"swipe_retry_after_sec"`
	}
	decodeInto(t, rr, &current)
	if current.SwipeRetryAfterSec <= 0 || current.SwipeRetryAfterSec > 10 {
		t.Fatalf("candidate view should report the throttle wait, got %d", current.SwipeRetryAfterSec)
	}

	mr.FastForward(11 * time.Second)
	rr = swipe("pet-mochi")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected swipe after window reset, got %d body %s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, h, http.MethodGet, "/v1/sessions/"+session.ID+"/matches", nil)
	var matches struct {
		Items []struct {
			CandidateID string `json:"candidate_id"`
		} `json:"items"`
	}
	decodeInto(t, rr, &matches)
	if len(matches.Items) != 3 {
		t.Fatalf("expected three matches, got %d", len(matches.Items))
	}
}

func TestResolverFactoryIsDeterministicForFixedSeed(t *testing.T) {
	cfg := config.MatchConfig{Probability: 0.5, RandomSeed: 99}
	first := resolverFactory(cfg)
	second := resolverFactory(cfg)

	for session := 0; session < 3; session++ {
		a, b := first(), second()
		for i := 0; i < 20; i++ {
			if a.Resolve(model.Candidate{}) != b.Resolve(model.Candidate{}) {
				t.Fatalf("session %d draw %d diverged", session, i)
			}
		}
	}
}

func TestNewCandidateSourceRejectsBadStaticEntries(t *testing.T) {
	cfg := config.Default()
	cfg.Candidates.Static = []config.CandidateConfig{{ID: "pet-x", Gender: "unknown"}}

	if _, err := newCandidateSource(cfg, nil); err == nil {
		t.Fatalf("expected error for invalid gender")
	}
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeInto(t *testing.T, rr *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), target); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
}
