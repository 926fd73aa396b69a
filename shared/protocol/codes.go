// Package protocol holds constants shared by the coordination server and its
// clients. It has no dependencies so the server binary stays headless.
package protocol

import "fmt"

// ReturnCode is the coordinator's answer to a failed room operation.
type ReturnCode int16

const (
	// GameDoesNotExist is returned when a join targets a room that is gone.
	GameDoesNotExist ReturnCode = 32758
	// NoRandomMatchFound is returned when no open room matches the version tag.
	NoRandomMatchFound ReturnCode = 32760
	// GameFull is returned when a join targets a room at capacity.
	GameFull ReturnCode = 32765
	// AlreadyInRoom is returned when a participant asks to join or create while in a room.
	AlreadyInRoom ReturnCode = 32766
	// NotConnected is returned when a room operation arrives before the connect handshake.
	NotConnected ReturnCode = 32767
)

var codeNames = map[ReturnCode]string{
	GameDoesNotExist:   "game does not exist",
	NoRandomMatchFound: "no random match found",
	GameFull:           "game full",
	AlreadyInRoom:      "already in room",
	NotConnected:       "not connected",
}

func (c ReturnCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("code %d", int16(c))
}
