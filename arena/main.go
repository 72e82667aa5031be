package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/finhall/snakemind/arena/selfplay"
	"github.com/finhall/snakemind/store"
)

var totalMoves atomic.Int64
var totalGames atomic.Int64

type GameUpdate struct {
	WorkerID int
	Result   selfplay.GameResult
	Rows     int
}

type gameWriteRequest struct {
	rows   []store.TurnRow
	result store.GameResult
}

type model struct {
	gamesPlayed int
	totalRows   int
	moves       int64
	wins        map[string]int
	draws       int
	startTime   time.Time
	recentGames []string
	updates     chan GameUpdate
}

func initialModel(updates chan GameUpdate) model {
	return model{
		startTime: time.Now(),
		wins:      make(map[string]int),
		updates:   updates,
	}
}

type TickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m model) Init() tea.Cmd {
	return tea.Batch(waitForUpdate(m.updates), tickCmd())
}

func waitForUpdate(updates chan GameUpdate) tea.Cmd {
	return func() tea.Msg {
		return <-updates
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case TickMsg:
		m.moves = totalMoves.Load()
		return m, tickCmd()
	case GameUpdate:
		m.gamesPlayed++
		m.totalRows += msg.Rows
		if msg.Result.WinnerId == "" {
			m.draws++
		} else {
			m.wins[msg.Result.WinnerId]++
		}
		logMsg := fmt.Sprintf("Worker %d: Winner %s, Steps %d, Rows %d", msg.WorkerID, msg.Result.WinnerId, msg.Result.Steps, msg.Rows)
		m.recentGames = append([]string{logMsg}, m.recentGames...)
		if len(m.recentGames) > 10 {
			m.recentGames = m.recentGames[:10]
		}
		return m, waitForUpdate(m.updates)
	}
	return m, nil
}

func (m model) View() string {
	duration := time.Since(m.startTime)
	gamesPerSec := float64(m.gamesPlayed) / duration.Seconds()
	movesPerSec := float64(m.moves) / duration.Seconds()
	if duration.Seconds() < 1 {
		gamesPerSec = 0
		movesPerSec = 0
	}

	s := fmt.Sprintf("Games Played: %d\n", m.gamesPlayed)
	s += fmt.Sprintf("Total Rows:   %d\n", m.totalRows)
	s += fmt.Sprintf("Total Moves:  %d\n", m.moves)
	s += fmt.Sprintf("Duration:     %s\n", duration.Round(time.Second))
	s += fmt.Sprintf("Games/Sec:    %.2f\n", gamesPerSec)
	s += fmt.Sprintf("Moves/Sec:    %.2f\n\n", movesPerSec)

	s += fmt.Sprintf("Wins: snake1=%d snake2=%d draws=%d\n\n", m.wins["snake1"], m.wins["snake2"], m.draws)

	s += "Recent Games:\n"
	for _, g := range m.recentGames {
		s += g + "\n"
	}

	s += "\nPress q to quit.\n"
	return s
}

func main() {
	outDir := flag.String("out-dir", "data/arena", "Output directory for per-turn parquet batches")
	resultsPath := flag.String("results-db", "data/results.db", "SQLite database for game results")
	workers := flag.Int("workers", runtime.NumCPU(), "Number of self-play workers")
	gamesPerFlush := flag.Int("games-per-flush", 50, "Number of games to buffer per parquet flush")
	maxGames := flag.Int64("max-games", 0, "If > 0, stop after this many games (across all workers)")
	noTUI := flag.Bool("no-tui", false, "Log progress lines instead of the interactive dashboard")
	logFile := flag.String("log-file", "", "Redirect log output to this file (recommended with the dashboard)")
	flag.Parse()

	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
		if err != nil {
			log.Fatalf("error opening log file: %v", err)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	results, err := store.OpenResultsDB(*resultsPath)
	if err != nil {
		log.Fatalf("Failed to open results db: %v", err)
	}
	defer results.Close()

	updates := make(chan GameUpdate, *workers)
	writeReqs := make(chan gameWriteRequest, (*workers)*4)

	writerDone := make(chan struct{})
	go func() {
		parquetWriterLoop(*outDir, *gamesPerFlush, results, writeReqs)
		close(writerDone)
	}()

	log.Printf("Starting self-play with %d workers", *workers)

	var workerWG sync.WaitGroup
	for i := 0; i < *workers; i++ {
		workerWG.Add(1)
		go func(workerID int) {
			defer workerWG.Done()
			for {
				select {
				case <-ctx.Done():
					return
				default:
				}

				opts := selfplay.Options{
					Verbose: *noTUI && workerID == 0,
					OnStep:  func() { totalMoves.Add(1) },
				}
				rows, result := selfplay.PlayGame(ctx, workerID, opts)
				if rows == nil {
					// Cancelled mid-game.
					return
				}

				total := totalGames.Add(1)
				if *maxGames > 0 && total >= *maxGames {
					cancel()
				}

				writeReqs <- gameWriteRequest{
					rows: rows,
					result: store.GameResult{
						ID:     rows[0].GameID,
						Winner: result.WinnerId,
						Turns:  result.Steps,
						Source: "arena",
					},
				}

				// Never block shutdown on a stalled UI.
				select {
				case updates <- GameUpdate{WorkerID: workerID, Result: result, Rows: len(rows)}:
				default:
				}
			}
		}(i)
	}

	if *noTUI {
		runHeadless(ctx, updates)
	} else {
		p := tea.NewProgram(initialModel(updates), tea.WithAltScreen())
		go func() {
			<-ctx.Done()
			p.Quit()
		}()
		if _, err := p.Run(); err != nil {
			log.Printf("dashboard error: %v", err)
		}
		cancel()
	}

	log.Printf("Shutdown requested; waiting for workers to finish current games...")
	workerWG.Wait()
	close(writeReqs)
	<-writerDone
	log.Printf("Shutdown complete: final parquet flush done (games=%d)", totalGames.Load())
}

func runHeadless(ctx context.Context, updates <-chan GameUpdate) {
	startTime := time.Now()
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case update := <-updates:
			log.Printf("Worker %d: Winner %s, Steps %d, Rows %d", update.WorkerID, update.Result.WinnerId, update.Result.Steps, update.Rows)
		case <-ticker.C:
			duration := time.Since(startTime)
			moves := totalMoves.Load()
			log.Printf("Stats: Games: %d, Moves/s: %.2f", totalGames.Load(), float64(moves)/duration.Seconds())
		}
	}
}

// parquetWriterLoop is the single consumer of finished games: it appends
// rows to the current batch, records the result row, and rotates the
// batch file every gamesPerFlush games.
func parquetWriterLoop(outDir string, gamesPerFlush int, results *store.ResultsDB, in <-chan gameWriteRequest) {
	if gamesPerFlush <= 0 {
		gamesPerFlush = 50
	}

	var batch *store.BatchWriter[store.TurnRow]

	finalize := func() {
		if batch == nil {
			return
		}
		outPath, rows, games, err := batch.Finalize()
		if err != nil {
			log.Printf("Parquet flush failed: %v", err)
		} else if outPath != "" {
			log.Printf("Parquet flush ok: %s (games=%d rows=%d)", outPath, games, rows)
		}
		batch = nil
	}

	for req := range in {
		if len(req.rows) == 0 {
			continue
		}

		if batch == nil {
			var err error
			batch, err = store.NewBatchWriter[store.TurnRow](outDir, "turn_row_v1")
			if err != nil {
				log.Printf("Failed to open parquet batch, dropping game %s: %v", req.result.ID, err)
				continue
			}
		}

		if err := batch.WriteRows(req.rows); err != nil {
			log.Printf("Failed to write rows for game %s: %v", req.result.ID, err)
			finalize()
			continue
		}
		batch.NoteGameWritten()

		if err := results.RecordGame(req.result); err != nil {
			log.Printf("Failed to record result for game %s: %v", req.result.ID, err)
		}

		if batch.BufferedGames() >= gamesPerFlush {
			finalize()
		}
	}

	finalize()
}
