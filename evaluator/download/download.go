// Package download fetches completed games from the public engine's
// websocket event stream.
package download

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

type Config struct {
	// EngineURL is a format string taking the game id.
	EngineURL      string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

func DefaultConfig() Config {
	return Config{
		EngineURL:      "wss://engine.battlesnake.com/games/%s/events",
		ConnectTimeout: 10 * time.Second,
		ReadTimeout:    30 * time.Second,
	}
}

// GameEvent is one message from the event stream.
type GameEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// GameInfo from the "game_info" event.
type GameInfo struct {
	Game    GameDetails `json:"game"`
	Ruleset RulesetInfo `json:"ruleset"`
	Width   int         `json:"width"`
	Height  int         `json:"height"`
}

type GameDetails struct {
	ID      string `json:"id"`
	Timeout int    `json:"timeout"`
}

type RulesetInfo struct {
	Name     string          `json:"name"`
	Version  string          `json:"version"`
	Settings json.RawMessage `json:"settings"`
}

// Frame is one turn of a downloaded game.
type Frame struct {
	Turn   int         `json:"turn"`
	Snakes []SnakeData `json:"snakes"`
	Food   []Coord     `json:"food"`
}

type SnakeData struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Health int     `json:"health"`
	Body   []Coord `json:"body"`
	Author string  `json:"author,omitempty"`
	Death  *Death  `json:"death,omitempty"`
}

type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Death struct {
	Cause string `json:"cause"`
	Turn  int    `json:"turn"`
}

// DownloadGame connects to the game's event stream and collects every
// frame in memory. Frames come back ordered by turn.
func DownloadGame(gameID string, config Config) (GameInfo, []Frame, error) {
	url := fmt.Sprintf(config.EngineURL, gameID)

	dialer := websocket.Dialer{
		HandshakeTimeout: config.ConnectTimeout,
	}

	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		return GameInfo{}, nil, fmt.Errorf("failed to connect: %w", err)
	}
	defer conn.Close()

	var info GameInfo
	var frames []Frame

	for {
		conn.SetReadDeadline(time.Now().Add(config.ReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				break
			}
			// Timed out or dropped; keep whatever arrived.
			if len(frames) > 0 {
				break
			}
			return GameInfo{}, nil, fmt.Errorf("read error: %w", err)
		}

		var event GameEvent
		if err := json.Unmarshal(message, &event); err != nil {
			log.Printf("Failed to parse event: %v", err)
			continue
		}

		switch event.Type {
		case "game_info":
			if err := json.Unmarshal(event.Data, &info); err != nil {
				log.Printf("Failed to parse game_info: %v", err)
			}

		case "frame":
			var frame Frame
			if err := json.Unmarshal(event.Data, &frame); err != nil {
				log.Printf("Failed to parse frame: %v", err)
				continue
			}
			frames = append(frames, frame)

		case "game_end":
			return info, frames, nil
		}
	}

	return info, frames, nil
}

// Winner names the snake left alive in the final frame, or "" for a draw.
func Winner(frames []Frame) string {
	if len(frames) == 0 {
		return ""
	}
	last := frames[len(frames)-1]

	var alive []SnakeData
	for _, snake := range last.Snakes {
		if snake.Death == nil && snake.Health > 0 {
			alive = append(alive, snake)
		}
	}
	if len(alive) == 1 {
		return alive[0].Name
	}
	return ""
}
