package session

import (
	"errors"
	"fmt"

	"github.com/nikfortgames/beamroom/shared/protocol"
)

// ErrCapacityExceeded matches a JoinFailedError whose code says the room was full.
var ErrCapacityExceeded = errors.New("room capacity exceeded")

// ConnectionLostError reports why the coordinator connection ended.
type ConnectionLostError struct {
	Cause error
}

func (e *ConnectionLostError) Error() string {
	if e.Cause == nil {
		return "connection lost"
	}
	return fmt.Sprintf("connection lost: %v", e.Cause)
}

func (e *ConnectionLostError) Unwrap() error {
	return e.Cause
}

// JoinFailedError is a room operation the coordinator turned down. Most of
// the time it is expected: a failed random join is how a client learns it
// has to create a room.
type JoinFailedError struct {
	Code    protocol.ReturnCode
	Message string
}

func (e *JoinFailedError) Error() string {
	return fmt.Sprintf("join failed (%d %s): %s", int16(e.Code), e.Code, e.Message)
}

// Is lets errors.Is(err, ErrCapacityExceeded) match full-room failures.
func (e *JoinFailedError) Is(target error) bool {
	return target == ErrCapacityExceeded && e.Code == protocol.GameFull
}
