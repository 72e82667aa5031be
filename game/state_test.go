package game

import (
	"errors"
	"testing"
)

func TestClone_DeepCopiesBodiesAndFood(t *testing.T) {
	orig := &GameState{
		Width:  7,
		Height: 7,
		YouId:  "me",
		Snakes: []Snake{{
			Id:     "me",
			Health: 80,
			Body:   []Point{{X: 3, Y: 3}, {X: 3, Y: 2}},
		}},
		Food: []Point{{X: 5, Y: 5}},
		Turn: 12,
	}

	c := orig.Clone()
	c.Snakes[0].Body[0] = Point{X: 0, Y: 0}
	c.Food[0] = Point{X: 1, Y: 1}

	if orig.Snakes[0].Body[0] != (Point{X: 3, Y: 3}) {
		t.Fatalf("clone mutated original body: %v", orig.Snakes[0].Body[0])
	}
	if orig.Food[0] != (Point{X: 5, Y: 5}) {
		t.Fatalf("clone mutated original food: %v", orig.Food[0])
	}
}

func TestYouAndOpponents(t *testing.T) {
	state := &GameState{
		Width:  11,
		Height: 11,
		YouId:  "me",
		Snakes: []Snake{
			{Id: "other", Health: 90, Body: []Point{{X: 0, Y: 0}}},
			{Id: "me", Health: 50, Body: []Point{{X: 5, Y: 5}}},
		},
	}

	you := state.You()
	if you == nil || you.Id != "me" {
		t.Fatalf("You()=%v want snake me", you)
	}
	opps := state.Opponents()
	if len(opps) != 1 || opps[0].Id != "other" {
		t.Fatalf("Opponents()=%v want [other]", opps)
	}
}

func TestValidate(t *testing.T) {
	ok := &GameState{
		Width:  11,
		Height: 11,
		YouId:  "me",
		Snakes: []Snake{{Id: "me", Health: 100, Body: []Point{{X: 1, Y: 1}}}},
	}
	if err := Validate(ok); err != nil {
		t.Fatalf("valid state rejected: %v", err)
	}

	cases := []struct {
		name  string
		state *GameState
	}{
		{"nil state", nil},
		{"zero width", &GameState{Height: 11, YouId: "me",
			Snakes: []Snake{{Id: "me", Body: []Point{{}}}}}},
		{"missing you id", &GameState{Width: 11, Height: 11,
			Snakes: []Snake{{Id: "me", Body: []Point{{}}}}}},
		{"empty body", &GameState{Width: 11, Height: 11, YouId: "me",
			Snakes: []Snake{{Id: "me"}}}},
		{"you not on board", &GameState{Width: 11, Height: 11, YouId: "ghost",
			Snakes: []Snake{{Id: "me", Body: []Point{{}}}}}},
	}

	for _, tc := range cases {
		err := Validate(tc.state)
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		var mse *MalformedStateError
		if !errors.As(err, &mse) {
			t.Fatalf("%s: error %v is not a MalformedStateError", tc.name, err)
		}
	}
}
