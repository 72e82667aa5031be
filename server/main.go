// Package main implements the Battlesnake API server.
//
// It is a thin transport shell around the brain package: decode the
// snapshot, validate it, score the four moves, answer with the best one.
// Decisions can optionally be archived to parquet for later analysis.
package main

import (
	"encoding/json"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/finhall/snakemind/brain"
	"github.com/finhall/snakemind/game"
	"github.com/finhall/snakemind/logging"
	"github.com/finhall/snakemind/rules"
	"github.com/finhall/snakemind/store"
)

// serverHeader identifies this implementation on every response.
const serverHeader = "battlesnake/github/snakemind"

type Server struct {
	logger      *slog.Logger
	moveTimeout time.Duration
	archive     *decisionArchiver
}

func NewServer(logger *slog.Logger, moveTimeout time.Duration, archive *decisionArchiver) *Server {
	return &Server{
		logger:      logger,
		moveTimeout: moveTimeout,
		archive:     archive,
	}
}

// handleIndex returns the static identity record. It has no bearing on
// decision logic; the cosmetics are just how the snake appears in games.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	response := InfoResponse{
		APIVersion: "1",
		Author:     "finhall",
		Color:      "#12a434",
		Head:       "lantern-fish",
		Tail:       "do-sammy",
		Version:    "1.0.0",
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req GameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.logger.Info("game started", "game_id", req.Game.ID, "snakes", len(req.Board.Snakes))
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()

	var req GameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	state := toGameState(&req)
	if err := game.Validate(state); err != nil {
		// Malformed snapshots are a request failure, never defaulted.
		s.logger.Warn("rejected snapshot", "game_id", req.Game.ID, "turn", req.Turn, "err", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// The engine imposes a wall-clock deadline per move; reserve a buffer
	// for network latency and flag computations that eat into it.
	budget := s.moveTimeout
	if req.Game.Timeout > 0 {
		budget = time.Duration(req.Game.Timeout) * time.Millisecond
	}
	budget -= 200 * time.Millisecond
	if budget < 50*time.Millisecond {
		budget = 50 * time.Millisecond
	}

	scores := brain.Scores(state)
	move := brain.Best(scores)

	elapsed := time.Since(startTime)
	if elapsed > budget {
		s.logger.Warn("move exceeded budget",
			"game_id", req.Game.ID, "turn", req.Turn, "elapsed", elapsed, "budget", budget)
	}

	s.logger.Info("move",
		"game_id", req.Game.ID,
		"turn", req.Turn,
		"move", rules.MoveName(move),
		"score", scores[move],
		"elapsed", elapsed,
	)

	if s.archive != nil {
		s.archive.Add(store.DecisionRow{
			GameID:    req.Game.ID,
			Turn:      int32(req.Turn),
			Width:     state.Width,
			Height:    state.Height,
			State:     store.EncodeState(state),
			Move:      int32(move),
			MoveName:  rules.MoveName(move),
			ScoreUp:   scores[rules.MoveUp],
			ScoreDown: scores[rules.MoveDown],
			ScoreLeft: scores[rules.MoveLeft],
			ScoreRght: scores[rules.MoveRight],
			ElapsedUs: elapsed.Microseconds(),
			Source:    "server",
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(MoveResponse{Move: rules.MoveName(move)})
}

func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request) {
	var req GameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	youAlive := false
	for _, snake := range req.Board.Snakes {
		if snake.ID == req.You.ID {
			youAlive = true
			break
		}
	}

	result := "lost"
	if youAlive {
		result = "won"
	} else if len(req.Board.Snakes) == 0 {
		result = "draw"
	}

	s.logger.Info("game ended", "game_id", req.Game.ID, "turn", req.Turn, "result", result)
	w.WriteHeader(http.StatusOK)
}

// routes wires the handlers up behind the identify-header middleware.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/start", s.handleStart)
	mux.HandleFunc("/move", s.handleMove)
	mux.HandleFunc("/end", s.handleEnd)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", serverHeader)
		mux.ServeHTTP(w, r)
	})
}

func main() {
	listen := flag.String("listen", getEnvOrDefault("LISTEN", ":8080"), "HTTP listen address")
	moveTimeout := flag.Duration("move-timeout", 500*time.Millisecond, "Default move timeout when the request carries none")
	archiveDir := flag.String("archive-dir", getEnvOrDefault("ARCHIVE_DIR", ""), "Directory for decision parquet batches (empty disables archiving)")
	flushRows := flag.Int("flush-rows", 5000, "Flush the decision archive after this many rows")
	flushEvery := flag.Duration("flush-every", 15*time.Minute, "Flush the decision archive at this interval")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(logging.NewPrettyJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	var archive *decisionArchiver
	if *archiveDir != "" {
		var err error
		archive, err = newDecisionArchiver(*archiveDir, *flushRows, *flushEvery, logger)
		if err != nil {
			logger.Error("open decision archive", "err", err)
			os.Exit(1)
		}
		defer archive.Close()
		logger.Info("decision archive enabled", "dir", *archiveDir)
	}

	server := NewServer(logger, *moveTimeout, archive)

	srv := &http.Server{
		Addr:              *listen,
		Handler:           server.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("battlesnake server listening", "addr", *listen)
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
