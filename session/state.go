package session

// State is the matchmaking controller's connection state.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnectedToCoordinator
	StateJoiningRoom
	StateInRoom
	StateLeavingRoom
)

var stateNames = map[State]string{
	StateDisconnected:           "disconnected",
	StateConnecting:             "connecting",
	StateConnectedToCoordinator: "connected",
	StateJoiningRoom:            "joining",
	StateInRoom:                 "in-room",
	StateLeavingRoom:            "leaving",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}
