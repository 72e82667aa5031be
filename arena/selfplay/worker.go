// Package selfplay plays full games in which every snake is driven by the
// heuristic engine, producing archive rows and results for analysis.
package selfplay

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/finhall/snakemind/brain"
	"github.com/finhall/snakemind/game"
	"github.com/finhall/snakemind/rules"
	"github.com/finhall/snakemind/store"
)

// Outcome values recorded per snake once the game is decided. Draws are
// scored negatively so archived data never makes mutual destruction look
// neutral.
const (
	outcomeWin  = 1.0
	outcomeLoss = -1.0
	outcomeDraw = -0.5
)

// maxTurns aborts degenerate games where two snakes chase their own
// tails forever; such a game is archived as a draw.
const maxTurns = 2000

type GameResult struct {
	WinnerId string
	Steps    int
}

type Options struct {
	// BoardSize of the square arena board; 0 means the standard 11.
	BoardSize int32
	// Seed for the game's RNG; 0 derives one from the clock and worker id.
	Seed int64
	// Verbose traces every turn's board to the log.
	Verbose bool
	// OnStep is invoked once per completed turn, for throughput counters.
	OnStep func()
}

// PlayGame plays one two-snake game to completion and returns its archive
// rows and result. Rows are nil if the context was cancelled mid-game.
func PlayGame(ctx context.Context, workerID int, opts Options) ([]store.TurnRow, GameResult) {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano() + int64(workerID)*1000003
	}
	rng := rand.New(rand.NewSource(seed))

	size := opts.BoardSize
	if size <= 0 {
		size = 11
	}

	state := initialState(size, rng)
	gameID := fmt.Sprintf("arena_%d_%d", time.Now().UnixNano(), workerID)
	rows := make([]store.TurnRow, 0, 256)

	for !rules.IsGameOver(state) && state.Turn < maxTurns {
		select {
		case <-ctx.Done():
			return nil, GameResult{Steps: int(state.Turn)}
		default:
		}

		if opts.Verbose {
			PrintBoard(state)
		}

		moves := decideAll(state)
		rows = append(rows, store.NewTurnRow(gameID, "arena", state, moves))

		if opts.OnStep != nil {
			opts.OnStep()
		}

		state = rules.NextStateSimultaneous(state, moves, rng, rules.DefaultFoodSettings)
	}

	winner := rules.Winner(state)

	// The loop records snapshots before applying moves; the terminal row
	// keeps completed games from appearing to stop mid-position.
	rows = append(rows, store.NewTurnRow(gameID, "arena", state, nil))

	for i := range rows {
		for j := range rows[i].Snakes {
			switch {
			case winner == "":
				rows[i].Snakes[j].Outcome = outcomeDraw
			case rows[i].Snakes[j].ID == winner:
				rows[i].Snakes[j].Outcome = outcomeWin
			default:
				rows[i].Snakes[j].Outcome = outcomeLoss
			}
		}
	}

	return rows, GameResult{WinnerId: winner, Steps: int(state.Turn)}
}

// decideAll asks the engine for every living snake's move, each from its
// own perspective on a cloned snapshot. Decisions are independent, so
// they run concurrently.
func decideAll(state *game.GameState) map[string]int {
	moves := make(map[string]int, len(state.Snakes))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := range state.Snakes {
		s := &state.Snakes[i]
		if s.Health <= 0 {
			continue
		}

		wg.Add(1)
		go func(id string) {
			defer wg.Done()

			local := state.Clone()
			local.YouId = id
			move := brain.Decide(local)

			mu.Lock()
			moves[id] = move
			mu.Unlock()
		}(s.Id)
	}
	wg.Wait()

	return moves
}

func initialState(size int32, rng *rand.Rand) *game.GameState {
	spawn := func(id string, p game.Point) game.Snake {
		// Stacked spawn, as the engine does it: the body unfolds over the
		// first moves.
		return game.Snake{
			Id:     id,
			Health: 100,
			Body:   []game.Point{p, p, p},
		}
	}

	state := &game.GameState{
		Width:  size,
		Height: size,
		YouId:  "snake1",
		Snakes: []game.Snake{
			spawn("snake1", game.Point{X: 1, Y: 1}),
			spawn("snake2", game.Point{X: size - 2, Y: size - 2}),
		},
	}

	rules.ApplyFoodSettings(state, rng, rules.FoodSettings{MinimumFood: 1, FoodSpawnChance: 0})
	return state
}
