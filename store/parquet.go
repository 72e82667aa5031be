// Package store persists decision logs and game archives: parquet for
// bulk per-turn data, SQLite for small result/bookkeeping tables.
package store

import (
	"encoding/json"

	"github.com/finhall/snakemind/game"
)

// DecisionRow is one scored move request, as archived by the server.
// State carries the raw snapshot JSON so a decision can be replayed
// against a later version of the engine.
type DecisionRow struct {
	GameID    string  `parquet:"game_id,dict"`
	Turn      int32   `parquet:"turn"`
	Width     int32   `parquet:"width"`
	Height    int32   `parquet:"height"`
	State     []byte  `parquet:"state"`
	Move      int32   `parquet:"move"`
	MoveName  string  `parquet:"move_name,dict"`
	ScoreUp   float64 `parquet:"score_up"`
	ScoreDown float64 `parquet:"score_down"`
	ScoreLeft float64 `parquet:"score_left"`
	ScoreRght float64 `parquet:"score_right"`
	ElapsedUs int64   `parquet:"elapsed_us"`
	Source    string  `parquet:"source,dict"`
}

// TurnRow is a single (game, turn) snapshot from the arena, one row per
// turn with all snakes inlined. Bodies are stored column-per-axis, which
// compresses far better than nested point structs.
type TurnRow struct {
	GameID string      `parquet:"game_id,dict"`
	Turn   int32       `parquet:"turn"`
	Width  int32       `parquet:"width"`
	Height int32       `parquet:"height"`
	FoodX  []int32     `parquet:"food_x"`
	FoodY  []int32     `parquet:"food_y"`
	Snakes []TurnSnake `parquet:"snakes"`
	Source string      `parquet:"source,dict"`
}

// TurnSnake is one snake within a TurnRow. Move is the direction chosen
// this turn (-1 on the terminal row), Outcome the end-of-game value from
// this snake's perspective: +1 win, -1 loss, -0.5 draw.
type TurnSnake struct {
	ID      string  `parquet:"id,dict"`
	Alive   bool    `parquet:"alive"`
	Health  int32   `parquet:"health"`
	Move    int32   `parquet:"move"`
	BodyX   []int32 `parquet:"body_x"`
	BodyY   []int32 `parquet:"body_y"`
	Outcome float32 `parquet:"outcome"`
}

// NewTurnRow captures a game state into an archive row. Moves maps snake
// id to the move chosen this turn; pass nil for the terminal row.
func NewTurnRow(gameID, source string, state *game.GameState, moves map[string]int) TurnRow {
	row := TurnRow{
		GameID: gameID,
		Turn:   state.Turn,
		Width:  state.Width,
		Height: state.Height,
		Source: source,
	}

	if len(state.Food) > 0 {
		row.FoodX = make([]int32, 0, len(state.Food))
		row.FoodY = make([]int32, 0, len(state.Food))
		for _, f := range state.Food {
			row.FoodX = append(row.FoodX, f.X)
			row.FoodY = append(row.FoodY, f.Y)
		}
	}

	row.Snakes = make([]TurnSnake, 0, len(state.Snakes))
	for i := range state.Snakes {
		s := &state.Snakes[i]
		snake := TurnSnake{
			ID:     s.Id,
			Alive:  s.Health > 0 && len(s.Body) > 0,
			Health: s.Health,
			Move:   -1,
		}
		if move, ok := moves[s.Id]; ok && snake.Alive {
			snake.Move = int32(move)
		}
		if len(s.Body) > 0 {
			snake.BodyX = make([]int32, 0, len(s.Body))
			snake.BodyY = make([]int32, 0, len(s.Body))
			for _, p := range s.Body {
				snake.BodyX = append(snake.BodyX, p.X)
				snake.BodyY = append(snake.BodyY, p.Y)
			}
		}
		row.Snakes = append(row.Snakes, snake)
	}

	return row
}

// EncodeState serializes a snapshot for DecisionRow.State.
func EncodeState(state *game.GameState) []byte {
	b, err := json.Marshal(state)
	if err != nil {
		return nil
	}
	return b
}
