package brain

import (
	"math"

	"github.com/finhall/snakemind/game"
	"github.com/finhall/snakemind/rules"
)

// foodWeight scales food seeking by hunger: a starving snake chases food
// twice as hard, a full one barely deviates for it.
func foodWeight(health int32) float64 {
	switch {
	case health < 50:
		return 2.0
	case health < 75:
		return 1.0
	default:
		return 0.5
	}
}

// applyFoodScores adds a food incentive to every move that was not
// rejected. The incentive targets the pellet nearest the candidate
// position, but only when no opponent's head is strictly closer to it
// than our current head: contested food contributes nothing.
func applyFoodScores(state *game.GameState, you *game.Snake, scores *[rules.MoveCount]float64) {
	if len(state.Food) == 0 {
		return
	}

	weight := foodWeight(you.Health)
	head := you.Head()

	for m := 0; m < rules.MoveCount; m++ {
		if math.IsInf(scores[m], -1) {
			continue
		}
		candidate := rules.NextPoint(head, m)
		food := closestFood(state.Food, candidate)
		if contested(state, you, food) {
			continue
		}
		foodScore := maxFoodScore - foodDistanceDecay*float64(manhattan(candidate, food))
		if foodScore < 0 {
			foodScore = 0
		}
		scores[m] += foodScore * weight
	}
}

// closestFood returns the pellet nearest to pos by Manhattan distance.
// Ties resolve to the first minimal pellet in encounter order, which
// keeps the whole scoring pass deterministic. Callers guarantee the food
// list is non-empty.
func closestFood(food []game.Point, pos game.Point) game.Point {
	best := food[0]
	bestDist := manhattan(pos, best)
	for _, f := range food[1:] {
		if d := manhattan(pos, f); d < bestDist {
			bestDist = d
			best = f
		}
	}
	return best
}

// contested reports whether any opponent's head is strictly closer to the
// pellet than the acting snake's current head.
func contested(state *game.GameState, you *game.Snake, food game.Point) bool {
	myDist := manhattan(you.Head(), food)
	for i := range state.Snakes {
		opp := &state.Snakes[i]
		if opp.Id == you.Id {
			continue
		}
		if manhattan(opp.Head(), food) < myDist {
			return true
		}
	}
	return false
}
