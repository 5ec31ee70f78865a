package ai

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport marks connection, IO and non-2xx HTTP failures.
	ErrTransport = errors.New("llm transport failure")

	// ErrDecode marks responses or stream chunks that are not valid JSON of
	// the expected shape, including unparseable tool arguments.
	ErrDecode = errors.New("llm response decode failure")

	// ErrProtocol marks well-formed responses that miss a required part,
	// such as a response with no choices.
	ErrProtocol = errors.New("llm protocol violation")
)

// StatusError is returned when the provider answers with a non-2xx status.
// It matches ErrTransport under errors.Is.
type StatusError struct {
	StatusCode int
	Body       string
}

func (statusError *StatusError) Error() string {
	return fmt.Sprintf("non-2xx status %d: %s", statusError.StatusCode, statusError.Body)
}

// Is reports whether target is ErrTransport.
func (statusError *StatusError) Is(target error) bool {
	return target == ErrTransport
}
