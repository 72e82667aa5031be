package rules

import (
	"encoding/binary"
	"hash/fnv"
	"math/rand"

	"github.com/finhall/snakemind/game"
)

// FoodSettings holds the standard Battlesnake food knobs: keep at least
// MinimumFood pellets on the board, and spawn one extra pellet with
// FoodSpawnChance percent probability each turn.
type FoodSettings struct {
	MinimumFood     int
	FoodSpawnChance int
}

// DefaultFoodSettings matches the official engine defaults.
var DefaultFoodSettings = FoodSettings{MinimumFood: 1, FoodSpawnChance: 15}

// ApplyFoodSettings spawns food on an existing state, e.g. to enforce the
// minimum at game start. A nil rng falls back to a deterministic source
// derived from the state, which keeps replays and tests reproducible.
func ApplyFoodSettings(state *game.GameState, rng *rand.Rand, settings FoodSettings) {
	applyFoodRules(state, rng, settings)
}

func applyFoodRules(state *game.GameState, rng *rand.Rand, settings FoodSettings) {
	if state == nil || state.Width <= 0 || state.Height <= 0 {
		return
	}
	if settings.MinimumFood < 0 {
		settings.MinimumFood = 0
	}
	if settings.FoodSpawnChance < 0 {
		settings.FoodSpawnChance = 0
	}
	if settings.FoodSpawnChance > 100 {
		settings.FoodSpawnChance = 100
	}

	deficit := settings.MinimumFood - len(state.Food)
	if deficit < 0 {
		deficit = 0
	}

	if rng == nil {
		rng = rand.New(rand.NewSource(stateSeed(state)))
	}

	toSpawn := deficit
	if settings.FoodSpawnChance > 0 && rng.Intn(100) < settings.FoodSpawnChance {
		toSpawn++
	}
	if toSpawn == 0 {
		return
	}

	// Collect free cells once, then pick without replacement.
	occupied := make(map[game.Point]struct{}, int(state.Width*state.Height))
	for i := range state.Snakes {
		if state.Snakes[i].Health <= 0 {
			continue
		}
		for _, p := range state.Snakes[i].Body {
			occupied[p] = struct{}{}
		}
	}
	for _, f := range state.Food {
		occupied[f] = struct{}{}
	}

	free := make([]game.Point, 0, int(state.Width*state.Height)-len(occupied))
	for y := int32(0); y < state.Height; y++ {
		for x := int32(0); x < state.Width; x++ {
			p := game.Point{X: x, Y: y}
			if _, ok := occupied[p]; !ok {
				free = append(free, p)
			}
		}
	}

	for ; toSpawn > 0 && len(free) > 0; toSpawn-- {
		i := rng.Intn(len(free))
		state.Food = append(state.Food, free[i])
		free[i] = free[len(free)-1]
		free = free[:len(free)-1]
	}
}

// stateSeed derives a cheap deterministic seed from the snapshot: turn,
// dimensions, food count and head positions.
func stateSeed(state *game.GameState) int64 {
	h := fnv.New64a()
	var buf [8]byte

	binary.LittleEndian.PutUint64(buf[:], uint64(uint32(state.Width))|uint64(uint32(state.Height))<<32)
	_, _ = h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(uint32(state.Turn))|uint64(len(state.Food))<<32)
	_, _ = h.Write(buf[:])
	for i := range state.Snakes {
		s := &state.Snakes[i]
		if s.Health <= 0 || len(s.Body) == 0 {
			continue
		}
		_, _ = h.Write([]byte(s.Id))
		binary.LittleEndian.PutUint64(buf[:], uint64(uint32(s.Body[0].X))<<32|uint64(uint32(s.Body[0].Y)))
		_, _ = h.Write(buf[:])
	}

	seed := int64(h.Sum64())
	if seed == 0 {
		seed = 1
	}
	return seed
}
