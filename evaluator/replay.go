package main

import (
	"github.com/finhall/snakemind/brain"
	"github.com/finhall/snakemind/evaluator/download"
	"github.com/finhall/snakemind/game"
	"github.com/finhall/snakemind/rules"
	"github.com/finhall/snakemind/store"
)

// frameState converts one downloaded frame into an engine snapshot. Dead
// snakes are dropped; YouId is left empty for the caller to set.
func frameState(frame download.Frame, width, height int32) *game.GameState {
	state := &game.GameState{
		Width:  width,
		Height: height,
		Turn:   int32(frame.Turn),
	}

	for _, s := range frame.Snakes {
		if s.Death != nil || s.Health <= 0 || len(s.Body) == 0 {
			continue
		}
		body := make([]game.Point, 0, len(s.Body))
		for _, c := range s.Body {
			body = append(body, game.Point{X: int32(c.X), Y: int32(c.Y)})
		}
		state.Snakes = append(state.Snakes, game.Snake{
			Id:     s.ID,
			Health: int32(s.Health),
			Body:   body,
		})
	}

	for _, f := range frame.Food {
		state.Food = append(state.Food, game.Point{X: int32(f.X), Y: int32(f.Y)})
	}

	return state
}

// scoreAgreement replays a downloaded game and measures, per snake, how
// often the engine's decision matches the move the snake actually played.
// Turns where a snake's head did not move to an adjacent cell (stacked
// spawn turns, feed glitches) are not scored.
func scoreAgreement(gameID string, frames []download.Frame, width, height int32) []store.Evaluation {
	if width <= 0 {
		width = 11
	}
	if height <= 0 {
		height = 11
	}

	counts := make(map[string]*store.Evaluation)

	for i := 0; i+1 < len(frames); i++ {
		state := frameState(frames[i], width, height)
		next := frameState(frames[i+1], width, height)

		nextHeads := make(map[string]game.Point, len(next.Snakes))
		for _, s := range next.Snakes {
			nextHeads[s.Id] = s.Head()
		}

		for _, s := range state.Snakes {
			head, alive := nextHeads[s.Id]
			if !alive {
				continue
			}
			played := rules.MoveFromPoints(s.Head(), head)
			if played < 0 {
				continue
			}

			perspective := state.Clone()
			perspective.YouId = s.Id
			decided := brain.Decide(perspective)

			ev := counts[s.Id]
			if ev == nil {
				ev = &store.Evaluation{GameID: gameID, Snake: s.Id}
				counts[s.Id] = ev
			}
			ev.TurnsScored++
			if decided == played {
				ev.Agreed++
			}
		}
	}

	evals := make([]store.Evaluation, 0, len(counts))
	for _, ev := range counts {
		evals = append(evals, *ev)
	}
	return evals
}
