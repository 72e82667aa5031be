// Package game defines the board snapshot types the decision engine
// operates on.
//
// A GameState is built fresh from each inbound request (or arena turn),
// treated as read-only for the whole decision computation, and discarded
// afterwards. Nothing in this package caches across snapshots.
package game

// Point is a board coordinate. (0,0) is the bottom-left corner and cells
// span [0,width) x [0,height). Points compare by value, which makes them
// usable directly as map keys for visited sets and collision checks.
type Point struct {
	X int32
	Y int32
}

// Snake is one snake on the board. Body is ordered head first: Body[0] is
// always the current head, Body[len-1] the tail.
type Snake struct {
	Id     string
	Health int32
	Body   []Point
}

// Head returns the snake's current head position.
func (s *Snake) Head() Point {
	return s.Body[0]
}

// Length returns the number of body segments.
func (s *Snake) Length() int {
	return len(s.Body)
}

// GameState is one immutable snapshot of the full game: the grid, every
// living snake, the food set, and the id of the acting snake. YouId selects
// which snake's perspective the engine scores from.
type GameState struct {
	Width  int32
	Height int32
	Snakes []Snake
	Food   []Point
	YouId  string
	Turn   int32
}

// You returns the acting snake, or nil if YouId is not on the board.
func (s *GameState) You() *Snake {
	for i := range s.Snakes {
		if s.Snakes[i].Id == s.YouId {
			return &s.Snakes[i]
		}
	}
	return nil
}

// Opponents returns every snake whose id differs from YouId.
func (s *GameState) Opponents() []Snake {
	out := make([]Snake, 0, len(s.Snakes))
	for _, snake := range s.Snakes {
		if snake.Id != s.YouId {
			out = append(out, snake)
		}
	}
	return out
}

// OnBoard reports whether p lies within the grid.
func (s *GameState) OnBoard(p Point) bool {
	return p.X >= 0 && p.X < s.Width && p.Y >= 0 && p.Y < s.Height
}

// Clone performs a deep copy of the game state.
func (s *GameState) Clone() *GameState {
	if s == nil {
		return nil
	}

	out := &GameState{
		Width:  s.Width,
		Height: s.Height,
		YouId:  s.YouId,
		Turn:   s.Turn,
	}

	if len(s.Food) > 0 {
		out.Food = make([]Point, len(s.Food))
		copy(out.Food, s.Food)
	}

	if len(s.Snakes) > 0 {
		out.Snakes = make([]Snake, len(s.Snakes))
		for i := range s.Snakes {
			out.Snakes[i] = Snake{Id: s.Snakes[i].Id, Health: s.Snakes[i].Health}
			if len(s.Snakes[i].Body) > 0 {
				out.Snakes[i].Body = make([]Point, len(s.Snakes[i].Body))
				copy(out.Snakes[i].Body, s.Snakes[i].Body)
			}
		}
	}

	return out
}
