package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testServer() *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(logger, 500*time.Millisecond, nil)
}

const moveRequest = `{
	"game": {"id": "g1", "timeout": 500},
	"turn": 3,
	"board": {
		"width": 11,
		"height": 11,
		"food": [{"x": 5, "y": 8}],
		"snakes": [
			{"id": "me", "health": 90, "body": [{"x":5,"y":5},{"x":5,"y":4},{"x":5,"y":3}]}
		]
	},
	"you": {"id": "me", "health": 90, "body": [{"x":5,"y":5},{"x":5,"y":4},{"x":5,"y":3}]}
}`

func TestToGameState(t *testing.T) {
	var req GameRequest
	if err := json.Unmarshal([]byte(moveRequest), &req); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}

	state := toGameState(&req)
	if state.Width != 11 || state.Height != 11 {
		t.Fatalf("dimensions %dx%d want 11x11", state.Width, state.Height)
	}
	if state.YouId != "me" || state.Turn != 3 {
		t.Fatalf("you=%q turn=%d", state.YouId, state.Turn)
	}
	if len(state.Snakes) != 1 || state.Snakes[0].Health != 90 {
		t.Fatalf("snakes=%v", state.Snakes)
	}
	if got := state.Snakes[0].Head(); got.X != 5 || got.Y != 5 {
		t.Fatalf("head=%v want (5,5)", got)
	}
	if len(state.Food) != 1 || state.Food[0].X != 5 || state.Food[0].Y != 8 {
		t.Fatalf("food=%v", state.Food)
	}
}

func TestHandleMove(t *testing.T) {
	handler := testServer().routes()

	req := httptest.NewRequest(http.MethodPost, "/move", strings.NewReader(moveRequest))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Server"); got != serverHeader {
		t.Fatalf("server header=%q want=%q", got, serverHeader)
	}

	var resp MoveResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	// Open space plus food straight above the head: the engine goes up.
	if resp.Move != "up" {
		t.Fatalf("move=%q want up", resp.Move)
	}
}

func TestHandleMove_MalformedSnapshotRejected(t *testing.T) {
	handler := testServer().routes()

	// The acting snake id is absent from the board's snake list.
	body := `{
		"game": {"id": "g1"},
		"turn": 0,
		"board": {"width": 11, "height": 11, "food": [], "snakes": []},
		"you": {"id": "ghost", "health": 100, "body": [{"x":5,"y":5}]}
	}`
	req := httptest.NewRequest(http.MethodPost, "/move", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d want 400, body=%s", rec.Code, rec.Body.String())
	}
}

func TestHandleIndex(t *testing.T) {
	handler := testServer().routes()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	var info InfoResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("unmarshal info: %v", err)
	}
	if info.APIVersion != "1" {
		t.Fatalf("apiversion=%q want 1", info.APIVersion)
	}
}
