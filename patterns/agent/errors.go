package agent

import "errors"

// ErrMaxToolRounds is returned when the model keeps requesting tools after
// the configured number of round trips.
var ErrMaxToolRounds = errors.New("maximum tool rounds exceeded")
