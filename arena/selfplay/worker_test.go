package selfplay

import (
	"context"
	"testing"
)

func TestPlayGameTerminates(t *testing.T) {
	rows, result := PlayGame(context.Background(), 0, Options{Seed: 42})
	if rows == nil {
		t.Fatal("expected rows for a completed game")
	}
	if result.Steps <= 0 {
		t.Fatalf("game ended after %d steps", result.Steps)
	}
	if len(rows) != result.Steps+1 {
		t.Fatalf("got %d rows for %d steps, want one per turn plus terminal", len(rows), result.Steps)
	}

	// The terminal row carries no moves.
	last := rows[len(rows)-1]
	for _, s := range last.Snakes {
		if s.Move != -1 {
			t.Fatalf("terminal row snake %s has move %d, want -1", s.ID, s.Move)
		}
	}
}

func TestPlayGameOutcomesConsistent(t *testing.T) {
	rows, result := PlayGame(context.Background(), 1, Options{Seed: 7})
	if len(rows) == 0 {
		t.Fatal("no rows")
	}

	for _, row := range rows {
		for _, s := range row.Snakes {
			switch {
			case result.WinnerId == "":
				if s.Outcome != outcomeDraw {
					t.Fatalf("draw game: snake %s outcome %v", s.ID, s.Outcome)
				}
			case s.ID == result.WinnerId:
				if s.Outcome != outcomeWin {
					t.Fatalf("winner %s outcome %v", s.ID, s.Outcome)
				}
			default:
				if s.Outcome != outcomeLoss {
					t.Fatalf("loser %s outcome %v", s.ID, s.Outcome)
				}
			}
		}
	}
}

func TestPlayGameHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rows, _ := PlayGame(ctx, 2, Options{Seed: 3})
	if rows != nil {
		t.Fatalf("cancelled game returned %d rows, want nil", len(rows))
	}
}
