package main

// GameSummary is one game in the /api/games index.
type GameSummary struct {
	GameID    string `json:"game_id"`
	StartedNs *int64 `json:"started_ns"`
	TurnCount int32  `json:"turn_count"`
	Width     int32  `json:"width"`
	Height    int32  `json:"height"`
	Source    string `json:"source"`
	Winner    string `json:"winner"`
}

// StatsResponse is the /api/stats payload.
type StatsResponse struct {
	Games     int64            `json:"games"`
	Turns     int64            `json:"turns"`
	Wins      map[string]int64 `json:"wins"`
	Draws     int64            `json:"draws"`
	AvgLength float64          `json:"avg_game_length"`
}

// GamesResponse wraps a page of the games index.
type GamesResponse struct {
	Total int           `json:"total"`
	Games []GameSummary `json:"games"`
}
