package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/Jayce162/Petpals/internal/app/apiapp"
	"github.com/Jayce162/Petpals/internal/config"
)

func TestHealthz(t *testing.T) {
	ts := newServer(t, config.Default())

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get healthz: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", resp.StatusCode, http.StatusOK)
	}

	var payload struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !payload.OK {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestSessionSwipeAndUndo(t *testing.T) {
	cfg := config.Default()
	cfg.Match.Probability = 0
	cfg.Premium.DefaultIsPremium = true
	ts := newServer(t, cfg)

	var session struct {
		ID        string `json:"id"`
		IsPremium bool   `json:"is_premium"`
	}
	postJSON(t, ts.URL+"/v1/sessions", map[string]any{"actor_id": 3, "gender": "male"}, http.StatusCreated, &session)
	if session.ID == "" || !session.IsPremium {
		t.Fatalf("unexpected session: %+v", session)
	}
	base := ts.URL + "/v1/sessions/" + session.ID

	var swipe struct {
		Committed bool `json:"committed"`
		Matched   bool `json:"matched"`
		Remaining int  `json:"remaining"`
	}
	postJSON(t, base+"/swipes", map[string]any{"candidate_id": "pet-luna", "direction": "like"}, http.StatusOK, &swipe)
	if !swipe.Committed || swipe.Matched || swipe.Remaining != len(cfg.Candidates.Static)-1 {
		t.Fatalf("unexpected swipe: %+v", swipe)
	}

	var undo struct {
		Candidate struct {
			ID string `json:"id"`
		} `json:"candidate"`
		Remaining int `json:"remaining"`
	}
	postJSON(t, base+"/undo", map[string]any{}, http.StatusOK, &undo)
	if undo.Candidate.ID != "pet-luna" || undo.Remaining != len(cfg.Candidates.Static) {
		t.Fatalf("unexpected undo: %+v", undo)
	}
}

func newServer(t *testing.T, cfg config.Config) *httptest.Server {
	t.Helper()

	cfg.HTTP.Addr = ":0"
	cfg.Redis.Addr = ""
	cfg.Match.CommitDelay = 0

	app, err := apiapp.New(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("create app: %v", err)
	}
	ts := httptest.NewServer(app.Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = app.Shutdown(context.Background())
	})
	return ts
}

func postJSON(t *testing.T, url string, body any, wantStatus int, target any) {
	t.Helper()

	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("encode body: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		t.Fatalf("post %s: got status %d want %d", url, resp.StatusCode, wantStatus)
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
}
