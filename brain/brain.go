// Package brain is the move decision engine: given one immutable board
// snapshot it scores all four compass moves and picks the best one.
//
// Scoring combines immediate-collision rejection, reachable space from a
// flood fill, head-to-head risk against opponent heads, wall proximity,
// and a health-weighted food incentive. The whole computation is a pure
// function of the snapshot, so it is safe to run concurrently for
// distinct requests.
package brain

import (
	"math"

	"github.com/finhall/snakemind/game"
	"github.com/finhall/snakemind/rules"
)

// Rejected marks a move that must never be taken: off-board, or straight
// into a snake body. Rejected moves still participate in the final
// max-selection so a direction is always returned.
var Rejected = math.Inf(-1)

const (
	baseScore = 100.0

	// Reachable-space shaping: heavy penalty per missing cell when the
	// pocket is smaller than our own body, capped bonus for open space.
	crampedPenaltyPerCell = 30.0
	openSpaceBonusCap     = 50.0

	// Moving adjacent to an opponent head loses or ties when we are not
	// strictly longer, so the penalty dwarfs the favorable-trade bonus.
	headToHeadPenalty = 150.0
	headToHeadBonus   = 25.0

	wallPenalty = 10.0

	maxFoodScore      = 50.0
	foodDistanceDecay = 5.0
)

// Decide returns the move with the maximum score for the acting snake.
// Ties resolve to the first maximal move in the fixed order up, down,
// left, right. Even a snapshot where every move is Rejected yields a
// move: the engine never refuses to answer.
func Decide(state *game.GameState) int {
	scores := Scores(state)
	return Best(scores)
}

// Best returns the first maximal move of a score vector in the fixed
// enumeration order.
func Best(scores [rules.MoveCount]float64) int {
	best := rules.MoveUp
	for m := 1; m < rules.MoveCount; m++ {
		if scores[m] > scores[best] {
			best = m
		}
	}
	return best
}

// Scores computes the full per-move score vector. Callers that only need
// the decision should use Decide; the vector is exposed for logging and
// archiving.
func Scores(state *game.GameState) [rules.MoveCount]float64 {
	var scores [rules.MoveCount]float64

	you := state.You()
	if you == nil {
		// Validation upstream rejects this; scoring still terminates with
		// every move rejected rather than panicking.
		for m := range scores {
			scores[m] = Rejected
		}
		return scores
	}

	obstacles := obstacleGrid(state, you)
	head := you.Head()

	for m := 0; m < rules.MoveCount; m++ {
		candidate := rules.NextPoint(head, m)
		if !state.OnBoard(candidate) {
			scores[m] = Rejected
			continue
		}
		scores[m] = safetyScore(state, you, candidate, obstacles)
	}

	applyFoodScores(state, you, &scores)
	return scores
}

// safetyScore rates one on-board candidate position. A collision with any
// snake's non-tail segment rejects the move outright; otherwise the score
// starts at baseScore and is shaped by reachable space, head-to-head risk
// and wall proximity.
func safetyScore(state *game.GameState, you *game.Snake, candidate game.Point, obstacles []bool) float64 {
	for i := range state.Snakes {
		body := state.Snakes[i].Body
		// The tail segment vacates on the next turn, so it is not an
		// immediate collision.
		for _, seg := range body[:len(body)-1] {
			if seg == candidate {
				return Rejected
			}
		}
	}

	score := baseScore

	space := floodFill(state, candidate, obstacles)
	length := you.Length()
	if space <= length {
		score -= crampedPenaltyPerCell * float64(length-space)
	} else {
		bonus := float64(space) / 2
		if bonus > openSpaceBonusCap {
			bonus = openSpaceBonusCap
		}
		score += bonus
	}

	for i := range state.Snakes {
		opp := &state.Snakes[i]
		if opp.Id == you.Id {
			continue
		}
		if manhattan(candidate, opp.Head()) == 1 {
			if you.Length() <= opp.Length() {
				score -= headToHeadPenalty
			} else {
				score += headToHeadBonus
			}
		}
	}

	if candidate.X == 0 || candidate.X == state.Width-1 {
		score -= wallPenalty
	}
	if candidate.Y == 0 || candidate.Y == state.Height-1 {
		score -= wallPenalty
	}

	return score
}

func manhattan(a, b game.Point) int32 {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}
