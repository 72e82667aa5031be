package game

import "fmt"

// MalformedStateError reports a snapshot that is missing a required field
// or carries an invalid value. It is not recoverable locally: the transport
// layer reports it as a request failure rather than defaulting anything.
type MalformedStateError struct {
	Field  string
	Reason string
}

func (e *MalformedStateError) Error() string {
	return fmt.Sprintf("malformed game state: %s: %s", e.Field, e.Reason)
}

// Validate checks the structural invariants the decision engine relies on:
// positive board dimensions, every snake with at least a head segment, and
// the acting snake present in the board's snake list.
func Validate(s *GameState) error {
	if s == nil {
		return &MalformedStateError{Field: "state", Reason: "missing"}
	}
	if s.Width <= 0 || s.Height <= 0 {
		return &MalformedStateError{
			Field:  "board",
			Reason: fmt.Sprintf("non-positive dimensions %dx%d", s.Width, s.Height),
		}
	}
	if s.YouId == "" {
		return &MalformedStateError{Field: "you.id", Reason: "missing"}
	}
	for i := range s.Snakes {
		if s.Snakes[i].Id == "" {
			return &MalformedStateError{
				Field:  fmt.Sprintf("snakes[%d].id", i),
				Reason: "missing",
			}
		}
		if len(s.Snakes[i].Body) == 0 {
			return &MalformedStateError{
				Field:  fmt.Sprintf("snakes[%d].body", i),
				Reason: "empty",
			}
		}
	}
	if s.You() == nil {
		return &MalformedStateError{
			Field:  "you.id",
			Reason: fmt.Sprintf("%q not present in board snakes", s.YouId),
		}
	}
	return nil
}
