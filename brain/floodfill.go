package brain

import (
	"github.com/finhall/snakemind/game"
	"github.com/finhall/snakemind/rules"
)

// obstacleGrid marks every snake-occupied cell, except the acting snake's
// own tail when its health is below 100: a snake that did not just eat
// moves its tail off that cell next turn. That is an advisory liveness
// approximation, not a guarantee about the real next board.
func obstacleGrid(state *game.GameState, you *game.Snake) []bool {
	grid := make([]bool, int(state.Width)*int(state.Height))
	for i := range state.Snakes {
		s := &state.Snakes[i]
		body := s.Body
		if s.Id == you.Id && you.Health < 100 {
			body = body[:len(body)-1]
		}
		for _, p := range body {
			if state.OnBoard(p) {
				grid[p.Y*state.Width+p.X] = true
			}
		}
	}
	return grid
}

// floodFill counts the board cells reachable from start via 4-directional
// moves that stay on the board and avoid obstacle cells. The traversal
// uses an explicit stack sized to the board, so it handles any board the
// game engine can configure without recursion depth concerns. Runs in
// O(width*height).
func floodFill(state *game.GameState, start game.Point, obstacles []bool) int {
	if !state.OnBoard(start) {
		return 0
	}
	w := state.Width
	if obstacles[start.Y*w+start.X] {
		return 0
	}

	visited := make([]bool, len(obstacles))
	stack := make([]game.Point, 0, len(obstacles))
	stack = append(stack, start)
	visited[start.Y*w+start.X] = true

	count := 0
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		count++

		for m := 0; m < rules.MoveCount; m++ {
			n := rules.NextPoint(p, m)
			if !state.OnBoard(n) {
				continue
			}
			i := n.Y*w + n.X
			if visited[i] || obstacles[i] {
				continue
			}
			visited[i] = true
			stack = append(stack, n)
		}
	}
	return count
}
