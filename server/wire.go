package main

import (
	"github.com/finhall/snakemind/game"
)

// Battlesnake API request/response types.

type InfoResponse struct {
	APIVersion string `json:"apiversion"`
	Author     string `json:"author"`
	Color      string `json:"color"`
	Head       string `json:"head"`
	Tail       string `json:"tail"`
	Version    string `json:"version"`
}

type GameRequest struct {
	Game  Game        `json:"game"`
	Turn  int         `json:"turn"`
	Board Board       `json:"board"`
	You   Battlesnake `json:"you"`
}

type Game struct {
	ID      string  `json:"id"`
	Ruleset Ruleset `json:"ruleset"`
	Map     string  `json:"map"`
	Timeout int     `json:"timeout"`
	Source  string  `json:"source"`
}

type Ruleset struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type Board struct {
	Height int           `json:"height"`
	Width  int           `json:"width"`
	Food   []Coord       `json:"food"`
	Snakes []Battlesnake `json:"snakes"`
}

type Battlesnake struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Health  int     `json:"health"`
	Body    []Coord `json:"body"`
	Head    Coord   `json:"head"`
	Length  int     `json:"length"`
	Latency string  `json:"latency"`
	Shout   string  `json:"shout"`
}

type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type MoveResponse struct {
	Move  string `json:"move"`
	Shout string `json:"shout,omitempty"`
}

// toGameState converts an API request into the engine's snapshot type.
func toGameState(req *GameRequest) *game.GameState {
	state := &game.GameState{
		Width:  int32(req.Board.Width),
		Height: int32(req.Board.Height),
		YouId:  req.You.ID,
		Turn:   int32(req.Turn),
	}

	state.Food = make([]game.Point, len(req.Board.Food))
	for i, f := range req.Board.Food {
		state.Food[i] = game.Point{X: int32(f.X), Y: int32(f.Y)}
	}

	state.Snakes = make([]game.Snake, len(req.Board.Snakes))
	for i, s := range req.Board.Snakes {
		snake := game.Snake{
			Id:     s.ID,
			Health: int32(s.Health),
			Body:   make([]game.Point, len(s.Body)),
		}
		for j, b := range s.Body {
			snake.Body[j] = game.Point{X: int32(b.X), Y: int32(b.Y)}
		}
		state.Snakes[i] = snake
	}

	return state
}
