package messages

// ConnectRequest is sent by a client right after the websocket opens.
type ConnectRequest struct {
	Version    string // Client version tag; rooms never mix versions
	PlayerName string
}

// ConnectedToMaster is the coordinator's answer to ConnectRequest.
type ConnectedToMaster struct {
	ParticipantID string // Assigned by the transport
	ServerName    string
}

// JoinRandomRequest asks the coordinator for any open room of the client's version.
type JoinRandomRequest struct{}

// JoinRandomFailed means no joinable room exists. Clients create one in response.
type JoinRandomFailed struct {
	Code    int16
	Message string
}

// JoinRoomRequest asks to join a specific room.
type JoinRoomRequest struct {
	RoomID string
}

// JoinRoomFailed is the answer to a JoinRoomRequest that could not be satisfied.
type JoinRoomFailed struct {
	Code    int16
	Message string
}

// CreateRoomRequest asks the coordinator to open a new room and join it.
type CreateRoomRequest struct {
	Capacity int
}

// CreateRoomFailed is the answer to a CreateRoomRequest that could not be satisfied.
type CreateRoomFailed struct {
	Code    int16
	Message string
}

// ParticipantInfo describes one member of a room.
type ParticipantInfo struct {
	ID   string
	Name string
}

// JoinedRoom is sent to a client once it is a member of a room.
type JoinedRoom struct {
	RoomID       string
	Capacity     int
	Participants []ParticipantInfo // Every member in join order, the receiver included
}

// ParticipantJoined is broadcast to existing members when someone joins.
type ParticipantJoined struct {
	Participant ParticipantInfo
}

// ParticipantLeft is broadcast to remaining members when someone leaves or drops.
type ParticipantLeft struct {
	ParticipantID string
}

// LeaveRoomRequest asks the coordinator to remove the sender from its room.
type LeaveRoomRequest struct{}

// LeftRoom acknowledges a LeaveRoomRequest.
type LeftRoom struct{}
