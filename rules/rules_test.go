package rules

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/finhall/snakemind/game"
)

var noFood = FoodSettings{MinimumFood: 0, FoodSpawnChance: 0}

func dumpState(state *game.GameState) string {
	if state == nil {
		return "<nil state>"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Turn=%d Size=%dx%d You=%s\n", state.Turn, state.Width, state.Height, state.YouId)

	fmt.Fprintf(&b, "Food(%d):", len(state.Food))
	for _, f := range state.Food {
		fmt.Fprintf(&b, " (%d,%d)", f.X, f.Y)
	}
	b.WriteString("\n")

	snakes := make([]game.Snake, len(state.Snakes))
	copy(snakes, state.Snakes)
	sort.Slice(snakes, func(i, j int) bool { return snakes[i].Id < snakes[j].Id })
	for _, s := range snakes {
		fmt.Fprintf(&b, "Snake %s Health=%d Len=%d Body:", s.Id, s.Health, len(s.Body))
		for _, p := range s.Body {
			fmt.Fprintf(&b, " (%d,%d)", p.X, p.Y)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func logTransition(t *testing.T, name string, before *game.GameState, moves map[string]int, after *game.GameState) {
	t.Helper()
	ids := make([]string, 0, len(moves))
	for id := range moves {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var mv strings.Builder
	mv.WriteString("Moves:")
	for _, id := range ids {
		fmt.Fprintf(&mv, " %s=%s", id, MoveName(moves[id]))
	}
	mv.WriteByte('\n')
	t.Logf("=== %s ===\nBefore:\n%s%sAfter:\n%s", name, dumpState(before), mv.String(), dumpState(after))
}

func singleSnakeState(body []game.Point, health int32, food []game.Point) *game.GameState {
	return &game.GameState{
		Width:  7,
		Height: 7,
		YouId:  "me",
		Snakes: []game.Snake{{Id: "me", Health: health, Body: body}},
		Food:   food,
	}
}

func TestNextPointAndName(t *testing.T) {
	head := game.Point{X: 3, Y: 3}
	cases := []struct {
		move int
		want game.Point
		name string
	}{
		{MoveUp, game.Point{X: 3, Y: 4}, "up"},
		{MoveDown, game.Point{X: 3, Y: 2}, "down"},
		{MoveLeft, game.Point{X: 2, Y: 3}, "left"},
		{MoveRight, game.Point{X: 4, Y: 3}, "right"},
	}
	for _, tc := range cases {
		if got := NextPoint(head, tc.move); got != tc.want {
			t.Fatalf("NextPoint(%s)=%v want=%v", tc.name, got, tc.want)
		}
		if got := MoveName(tc.move); got != tc.name {
			t.Fatalf("MoveName(%d)=%q want=%q", tc.move, got, tc.name)
		}
		if got := MoveFromPoints(head, tc.want); got != tc.move {
			t.Fatalf("MoveFromPoints(%v,%v)=%d want=%d", head, tc.want, got, tc.move)
		}
	}
	if got := MoveFromPoints(head, game.Point{X: 5, Y: 5}); got != -1 {
		t.Fatalf("MoveFromPoints non-adjacent=%d want=-1", got)
	}
}

func TestNextStateSimultaneous_NormalMove(t *testing.T) {
	before := singleSnakeState([]game.Point{{X: 3, Y: 3}, {X: 3, Y: 2}, {X: 3, Y: 1}}, 10, nil)
	after := NextStateSimultaneous(before, map[string]int{"me": MoveUp}, nil, noFood)
	logTransition(t, "normal move", before, map[string]int{"me": MoveUp}, after)

	got := after.Snakes[0].Body
	want := []game.Point{{X: 3, Y: 4}, {X: 3, Y: 3}, {X: 3, Y: 2}}
	if len(got) != len(want) {
		t.Fatalf("body len=%d want=%d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("body[%d]=%v want=%v", i, got[i], want[i])
		}
	}
	if after.Snakes[0].Health != 9 {
		t.Fatalf("health=%d want=9", after.Snakes[0].Health)
	}
	if after.Turn != before.Turn+1 {
		t.Fatalf("turn=%d want=%d", after.Turn, before.Turn+1)
	}
}

func TestNextStateSimultaneous_EatFoodGrows(t *testing.T) {
	before := singleSnakeState(
		[]game.Point{{X: 3, Y: 3}, {X: 3, Y: 2}, {X: 3, Y: 1}}, 10,
		[]game.Point{{X: 3, Y: 4}},
	)
	after := NextStateSimultaneous(before, map[string]int{"me": MoveUp}, nil, noFood)
	logTransition(t, "eat food", before, map[string]int{"me": MoveUp}, after)

	got := after.Snakes[0].Body
	want := []game.Point{{X: 3, Y: 4}, {X: 3, Y: 3}, {X: 3, Y: 2}, {X: 3, Y: 1}}
	if len(got) != len(want) {
		t.Fatalf("body len=%d want=%d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("body[%d]=%v want=%v", i, got[i], want[i])
		}
	}
	if after.Snakes[0].Health != 100 {
		t.Fatalf("health=%d want=100", after.Snakes[0].Health)
	}
	if len(after.Food) != 0 {
		t.Fatalf("food len=%d want=0", len(after.Food))
	}
}

func TestNextStateSimultaneous_WallEliminates(t *testing.T) {
	before := singleSnakeState([]game.Point{{X: 0, Y: 6}, {X: 0, Y: 5}}, 50, nil)
	after := NextStateSimultaneous(before, map[string]int{"me": MoveUp}, nil, noFood)
	logTransition(t, "wall elimination", before, map[string]int{"me": MoveUp}, after)

	if len(after.Snakes) != 0 {
		t.Fatalf("snakes remaining=%d want=0", len(after.Snakes))
	}
	if !IsGameOver(after) {
		t.Fatal("expected game over after sole snake died")
	}
}

func TestNextStateSimultaneous_BodyCollisionEliminates(t *testing.T) {
	before := &game.GameState{
		Width: 7, Height: 7, YouId: "a",
		Snakes: []game.Snake{
			{Id: "a", Health: 50, Body: []game.Point{{X: 2, Y: 2}, {X: 1, Y: 2}}},
			{Id: "b", Health: 50, Body: []game.Point{{X: 3, Y: 4}, {X: 3, Y: 3}, {X: 3, Y: 2}, {X: 3, Y: 1}}},
		},
	}
	moves := map[string]int{"a": MoveRight, "b": MoveUp}
	after := NextStateSimultaneous(before, moves, nil, noFood)
	logTransition(t, "body collision", before, moves, after)

	if len(after.Snakes) != 1 || after.Snakes[0].Id != "b" {
		t.Fatalf("survivors=%v want only b", after.Snakes)
	}
	if Winner(after) != "b" {
		t.Fatalf("winner=%q want=b", Winner(after))
	}
}

func TestNextStateSimultaneous_HeadToHead(t *testing.T) {
	// Equal lengths collide head-on: both die.
	equal := &game.GameState{
		Width: 7, Height: 7, YouId: "a",
		Snakes: []game.Snake{
			{Id: "a", Health: 50, Body: []game.Point{{X: 2, Y: 3}, {X: 1, Y: 3}}},
			{Id: "b", Health: 50, Body: []game.Point{{X: 4, Y: 3}, {X: 5, Y: 3}}},
		},
	}
	moves := map[string]int{"a": MoveRight, "b": MoveLeft}
	after := NextStateSimultaneous(equal, moves, nil, noFood)
	logTransition(t, "head-to-head equal", equal, moves, after)
	if len(after.Snakes) != 0 {
		t.Fatalf("equal-length head-to-head: survivors=%d want=0", len(after.Snakes))
	}
	if Winner(after) != "" {
		t.Fatalf("winner=%q want draw", Winner(after))
	}

	// The longer snake survives.
	longer := &game.GameState{
		Width: 7, Height: 7, YouId: "a",
		Snakes: []game.Snake{
			{Id: "a", Health: 50, Body: []game.Point{{X: 2, Y: 3}, {X: 1, Y: 3}, {X: 0, Y: 3}}},
			{Id: "b", Health: 50, Body: []game.Point{{X: 4, Y: 3}, {X: 5, Y: 3}}},
		},
	}
	after = NextStateSimultaneous(longer, moves, nil, noFood)
	logTransition(t, "head-to-head longer wins", longer, moves, after)
	if len(after.Snakes) != 1 || after.Snakes[0].Id != "a" {
		t.Fatalf("longer head-to-head: survivors=%v want only a", after.Snakes)
	}
}

func TestNextStateSimultaneous_MissingMoveEliminates(t *testing.T) {
	before := &game.GameState{
		Width: 7, Height: 7, YouId: "a",
		Snakes: []game.Snake{
			{Id: "a", Health: 50, Body: []game.Point{{X: 2, Y: 3}, {X: 1, Y: 3}}},
			{Id: "b", Health: 50, Body: []game.Point{{X: 4, Y: 5}, {X: 5, Y: 5}}},
		},
	}
	after := NextStateSimultaneous(before, map[string]int{"a": MoveUp}, nil, noFood)
	if len(after.Snakes) != 1 || after.Snakes[0].Id != "a" {
		t.Fatalf("survivors=%v want only a", after.Snakes)
	}
}

func TestApplyFoodSettings_EnforcesMinimum(t *testing.T) {
	state := singleSnakeState([]game.Point{{X: 3, Y: 3}}, 100, nil)
	rng := rand.New(rand.NewSource(1))
	ApplyFoodSettings(state, rng, FoodSettings{MinimumFood: 3, FoodSpawnChance: 0})

	if len(state.Food) != 3 {
		t.Fatalf("food len=%d want=3", len(state.Food))
	}
	seen := make(map[game.Point]bool)
	for _, f := range state.Food {
		if !state.OnBoard(f) {
			t.Fatalf("food %v off board", f)
		}
		if f == (game.Point{X: 3, Y: 3}) {
			t.Fatalf("food spawned on snake body at %v", f)
		}
		if seen[f] {
			t.Fatalf("duplicate food at %v", f)
		}
		seen[f] = true
	}
}

func TestApplyFoodSettings_DeterministicWithoutRNG(t *testing.T) {
	a := singleSnakeState([]game.Point{{X: 3, Y: 3}}, 100, nil)
	b := a.Clone()
	ApplyFoodSettings(a, nil, FoodSettings{MinimumFood: 2, FoodSpawnChance: 0})
	ApplyFoodSettings(b, nil, FoodSettings{MinimumFood: 2, FoodSpawnChance: 0})

	if len(a.Food) != len(b.Food) {
		t.Fatalf("food lens differ: %d vs %d", len(a.Food), len(b.Food))
	}
	for i := range a.Food {
		if a.Food[i] != b.Food[i] {
			t.Fatalf("food[%d] differ: %v vs %v", i, a.Food[i], b.Food[i])
		}
	}
}
