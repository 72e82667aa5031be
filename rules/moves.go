// Package rules implements board mechanics: the four compass moves and
// the simultaneous state transition used to play games forward.
package rules

import "github.com/finhall/snakemind/game"

// Move indices. The key set is exactly the four compass directions, so
// everything keyed by a move uses a fixed [MoveCount] array in this order.
// That order is also the deterministic tie-break order for move selection.
const (
	MoveUp    = 0
	MoveDown  = 1
	MoveLeft  = 2
	MoveRight = 3

	MoveCount = 4
)

// moveDeltas maps a move index to its unit displacement.
var moveDeltas = [MoveCount]game.Point{
	{X: 0, Y: 1},  // up
	{X: 0, Y: -1}, // down
	{X: -1, Y: 0}, // left
	{X: 1, Y: 0},  // right
}

var moveNames = [MoveCount]string{"up", "down", "left", "right"}

// NextPoint returns the position reached by applying move to p.
func NextPoint(p game.Point, move int) game.Point {
	d := moveDeltas[move]
	return game.Point{X: p.X + d.X, Y: p.Y + d.Y}
}

// MoveName returns the lowercase wire name of a move. Out-of-range values
// fall back to "up" so a response is always representable.
func MoveName(move int) string {
	if move < 0 || move >= MoveCount {
		return moveNames[MoveUp]
	}
	return moveNames[move]
}

// MoveFromPoints infers which move carries a head from one position to an
// adjacent one. Returns -1 when the positions are not 4-connected.
func MoveFromPoints(from, to game.Point) int {
	for m := 0; m < MoveCount; m++ {
		if NextPoint(from, m) == to {
			return m
		}
	}
	return -1
}
