package rules

import (
	"math/rand"

	"github.com/finhall/snakemind/game"
)

// NextStateSimultaneous advances the game one turn with a move for every
// living snake, following standard Battlesnake resolution: all heads move
// at once, food is consumed, health decays, then eliminations are applied
// (walls, body collisions, head-to-head resolved by length). A snake with
// no move in the map is eliminated. Food spawning uses rng and settings;
// pass a zeroed FoodSettings to disable spawning in tests.
func NextStateSimultaneous(state *game.GameState, moves map[string]int, rng *rand.Rand, settings FoodSettings) *game.GameState {
	next := state.Clone()
	next.Turn++

	// Compute every living snake's new head.
	newHeads := make(map[string]game.Point, len(next.Snakes))
	for i := range next.Snakes {
		s := &next.Snakes[i]
		if s.Health <= 0 {
			continue
		}
		move, ok := moves[s.Id]
		if !ok {
			continue
		}
		newHeads[s.Id] = NextPoint(s.Body[0], move)
	}

	// Food consumption is resolved against the pre-move food set so two
	// snakes arriving on the same pellet both grow.
	eaten := make(map[int]bool, len(next.Food))
	ate := make(map[string]bool, len(newHeads))
	for id, head := range newHeads {
		for i, f := range next.Food {
			if f == head {
				eaten[i] = true
				ate[id] = true
			}
		}
	}
	remaining := next.Food[:0]
	for i, f := range next.Food {
		if !eaten[i] {
			remaining = append(remaining, f)
		}
	}
	next.Food = remaining

	// Advance bodies: prepend the new head, drop the tail unless the snake
	// ate this turn.
	for i := range next.Snakes {
		s := &next.Snakes[i]
		head, ok := newHeads[s.Id]
		if !ok {
			s.Health = 0
			continue
		}

		body := make([]game.Point, 0, len(s.Body)+1)
		body = append(body, head)
		body = append(body, s.Body...)
		if ate[s.Id] {
			s.Health = 100
		} else {
			s.Health--
			body = body[:len(body)-1]
		}
		s.Body = body
	}

	dead := make(map[string]bool, len(next.Snakes))

	// Walls and body collisions. Heads are excluded here; head-to-head is
	// resolved separately by length.
	for i := range next.Snakes {
		s := &next.Snakes[i]
		if s.Health <= 0 {
			dead[s.Id] = true
			continue
		}
		head := s.Body[0]
		if !next.OnBoard(head) {
			dead[s.Id] = true
			continue
		}
		for j := range next.Snakes {
			other := &next.Snakes[j]
			if other.Health <= 0 {
				continue
			}
			for k, p := range other.Body {
				if k == 0 {
					continue
				}
				if p == head {
					dead[s.Id] = true
				}
			}
		}
	}

	for i := 0; i < len(next.Snakes); i++ {
		s1 := &next.Snakes[i]
		if dead[s1.Id] || s1.Health <= 0 {
			continue
		}
		for j := i + 1; j < len(next.Snakes); j++ {
			s2 := &next.Snakes[j]
			if dead[s2.Id] || s2.Health <= 0 {
				continue
			}
			if s1.Body[0] != s2.Body[0] {
				continue
			}
			switch {
			case len(s1.Body) > len(s2.Body):
				dead[s2.Id] = true
			case len(s2.Body) > len(s1.Body):
				dead[s1.Id] = true
			default:
				dead[s1.Id] = true
				dead[s2.Id] = true
			}
		}
	}

	survivors := make([]game.Snake, 0, len(next.Snakes))
	for _, s := range next.Snakes {
		if dead[s.Id] {
			continue
		}
		survivors = append(survivors, s)
	}
	next.Snakes = survivors

	applyFoodRules(next, rng, settings)
	return next
}

// IsGameOver reports whether at most one snake remains alive.
func IsGameOver(state *game.GameState) bool {
	living := 0
	for i := range state.Snakes {
		if state.Snakes[i].Health > 0 {
			living++
		}
	}
	return living <= 1
}

// Winner returns the id of the sole surviving snake, or "" on a draw or
// an unfinished game with more than one survivor.
func Winner(state *game.GameState) string {
	winner := ""
	living := 0
	for i := range state.Snakes {
		if state.Snakes[i].Health > 0 {
			living++
			winner = state.Snakes[i].Id
		}
	}
	if living != 1 {
		return ""
	}
	return winner
}
