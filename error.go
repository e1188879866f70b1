package patch

import (
	"errors"
	"fmt"
)

// ErrNotReady is returned when a schedule is processed before Prepare has
// been called for the current stream configuration.
var ErrNotReady = errors.New("schedule not prepared")

// ErrTypeMismatch is returned when a connection joins sockets of different
// types.
var ErrTypeMismatch = errors.New("socket type mismatch")

// MissingInputError reports a module input socket with no connection in the
// compiled graph.
type MissingInputError struct {
	Module string
	Type   SocketType
	Socket int
}

func (e MissingInputError) Error() string {
	return fmt.Sprintf("module %s: %s input %d is not connected", e.Module, e.Type, e.Socket)
}

// MissingOutputError reports that the output requested for compilation has
// no connection feeding it.
type MissingOutputError struct {
	Type SocketType
}

func (e MissingOutputError) Error() string {
	return fmt.Sprintf("requested %s output is not connected", e.Type)
}
