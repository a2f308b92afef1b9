package aggregate

import (
	"errors"
	"fmt"
)

var ErrNilScorer = errors.New("aggregate: nil sentiment scorer")

// NoDataError is returned when a character reaches the metrics step without a
// single matching line. With a consistent threshold filter this cannot happen.
type NoDataError struct {
	Character string
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("no dialogue lines for character %q", e.Character)
}
