package selfplay

import (
	"fmt"
	"strings"

	"github.com/finhall/snakemind/game"
)

// PrintBoard renders a state as ASCII for verbose tracing. Heads are
// uppercase letters, bodies lowercase, food is *.
func PrintBoard(state *game.GameState) {
	grid := make([][]byte, state.Height)
	for y := range grid {
		grid[y] = make([]byte, state.Width)
		for x := range grid[y] {
			grid[y][x] = '.'
		}
	}

	for _, f := range state.Food {
		grid[f.Y][f.X] = '*'
	}

	for i, s := range state.Snakes {
		if s.Health <= 0 {
			continue
		}
		lower := byte('a' + i%26)
		for _, p := range s.Body {
			grid[p.Y][p.X] = lower
		}
		head := s.Head()
		grid[head.Y][head.X] = lower - 'a' + 'A'
	}

	var b strings.Builder
	fmt.Fprintf(&b, "turn %d\n", state.Turn)
	for y := state.Height - 1; y >= 0; y-- {
		b.Write(grid[y])
		b.WriteByte('\n')
	}
	for _, s := range state.Snakes {
		fmt.Fprintf(&b, "%s health=%d len=%d\n", s.Id, s.Health, len(s.Body))
	}
	fmt.Print(b.String())
}
