// Package session establishes a room: it connects to the coordinator, tries
// to join an existing room and falls back to creating one.
package session

import (
	"log"

	"github.com/nikfortgames/beamroom/config"
	"github.com/nikfortgames/beamroom/shared/protocol"
)

// Coordinator is the rendezvous service. Calls only send a request; results
// come back through the controller's On* methods.
type Coordinator interface {
	Connect(version string) error
	JoinRandomRoom() error
	JoinRoom(roomID string) error
	CreateRoom(capacity int) error
	LeaveRoom() error
	Disconnect() error
}

// Presenter owns the user-facing "connecting" indicator and the control
// surface that starts a connection.
type Presenter interface {
	SetConnecting(visible bool)
	SetControlsVisible(visible bool)
}

// Controller is the matchmaking state machine. It is not safe for concurrent
// use: every method, including the On* events, must be called from the game
// loop.
type Controller struct {
	coord Coordinator
	ui    Presenter
	cfg   config.SessionConfig

	state       State
	joinPending bool // a JoinRandomRoom request is outstanding
	attempts    int  // join-or-create cycles that ended in a failure
	roomID      string
	lastErr     error

	observers []func(from, to State)
}

func NewController(coord Coordinator, ui Presenter, cfg config.SessionConfig) *Controller {
	if cfg.MaxJoinAttempts <= 0 {
		cfg.MaxJoinAttempts = 1
	}
	return &Controller{
		coord: coord,
		ui:    ui,
		cfg:   cfg,
		state: StateDisconnected,
	}
}

func (c *Controller) State() State {
	return c.state
}

// RoomID is the current room, empty outside StateInRoom.
func (c *Controller) RoomID() string {
	return c.roomID
}

// LastError is the most recent failure reported to the controller.
func (c *Controller) LastError() error {
	return c.lastErr
}

// OnStateChange registers fn to be called after every transition.
func (c *Controller) OnStateChange(fn func(from, to State)) {
	c.observers = append(c.observers, fn)
}

func (c *Controller) setState(to State) {
	from := c.state
	if from == to {
		return
	}
	c.state = to
	log.Printf("[session] %s -> %s", from, to)
	for _, fn := range c.observers {
		fn(from, to)
	}
}

// Connect starts the connection process. If the coordinator is already
// connected it goes straight to joining a random room.
func (c *Controller) Connect() {
	switch c.state {
	case StateConnectedToCoordinator:
		c.showProgress()
		c.attempts = 0
		c.joinRandom()
	case StateDisconnected:
		c.showProgress()
		c.attempts = 0
		c.lastErr = nil
		c.setState(StateConnecting)
		if err := c.coord.Connect(c.cfg.VersionTag); err != nil {
			c.OnDisconnected(err)
		}
	default:
		log.Printf("[session] connect ignored while %s", c.state)
	}
}

// OnConnectedToMaster is called once the coordinator handshake completes.
// A handshake that lands after the attempt was abandoned is ignored.
func (c *Controller) OnConnectedToMaster() {
	if c.state != StateConnecting {
		log.Printf("[session] handshake ignored while %s", c.state)
		return
	}
	c.setState(StateConnectedToCoordinator)
	c.joinRandom()
}

// OnJoinRandomFailed means no open room exists for this version. It is the
// expected path for the first client, which then creates the room.
func (c *Controller) OnJoinRandomFailed(code int16, message string) {
	if !c.joinPending {
		log.Printf("[session] unexpected join-random failure %d: %s", code, message)
		return
	}
	c.joinPending = false
	log.Printf("[session] no random room available (%d %s), creating one with capacity %d",
		code, message, c.cfg.MaxPlayersPerRoom)
	if err := c.coord.CreateRoom(c.cfg.MaxPlayersPerRoom); err != nil {
		c.OnDisconnected(err)
	}
}

// OnJoinRoomFailed handles a join the coordinator turned down, typically
// because the room filled up first. The controller retries join-or-create.
func (c *Controller) OnJoinRoomFailed(code int16, message string) {
	c.joinPending = false
	c.retry(&JoinFailedError{Code: protocol.ReturnCode(code), Message: message})
}

// OnCreateRoomFailed handles a create the coordinator turned down.
func (c *Controller) OnCreateRoomFailed(code int16, message string) {
	c.retry(&JoinFailedError{Code: protocol.ReturnCode(code), Message: message})
}

// OnJoinedRoom is called when this client is a member of roomID. Spawning
// the player entity is up to the caller.
func (c *Controller) OnJoinedRoom(roomID string) {
	if c.state == StateLeavingRoom {
		// The leave request is queued behind this join on the coordinator.
		return
	}
	c.joinPending = false
	c.attempts = 0
	c.roomID = roomID
	c.setState(StateInRoom)
	c.ui.SetConnecting(false)
	log.Printf("[session] joined room %s", roomID)
}

// LeaveRoom asks the coordinator to take this client out of its room. It
// returns immediately; OnLeftRoom completes the flow.
func (c *Controller) LeaveRoom() {
	if c.state != StateInRoom && c.state != StateJoiningRoom {
		log.Printf("[session] leave ignored while %s", c.state)
		return
	}
	c.joinPending = false
	c.setState(StateLeavingRoom)
	if err := c.coord.LeaveRoom(); err != nil {
		log.Printf("[session] leave request failed: %v", err)
		c.disconnect()
	}
}

// OnLeftRoom is the coordinator's acknowledgement of LeaveRoom. The leave
// flow ends with the coordinator connection closed.
func (c *Controller) OnLeftRoom() {
	c.roomID = ""
	if c.state != StateLeavingRoom {
		return
	}
	c.disconnect()
}

// OnDisconnected returns the controller to StateDisconnected and gives the
// user back the control surface. It never reconnects on its own.
func (c *Controller) OnDisconnected(cause error) {
	if cause != nil {
		c.lastErr = &ConnectionLostError{Cause: cause}
		log.Printf("[session] disconnected: %v", cause)
	} else {
		log.Printf("[session] disconnected")
	}
	c.joinPending = false
	c.roomID = ""
	c.setState(StateDisconnected)
	c.restoreControls()
}

func (c *Controller) joinRandom() {
	c.setState(StateJoiningRoom)
	c.joinPending = true
	if err := c.coord.JoinRandomRoom(); err != nil {
		c.OnDisconnected(err)
	}
}

func (c *Controller) retry(err *JoinFailedError) {
	c.lastErr = err
	c.attempts++
	if c.attempts >= c.cfg.MaxJoinAttempts {
		log.Printf("[session] giving up after %d attempts: %v", c.attempts, err)
		c.setState(StateConnectedToCoordinator)
		c.restoreControls()
		return
	}
	log.Printf("[session] %v, retrying (%d/%d)", err, c.attempts, c.cfg.MaxJoinAttempts)
	c.joinRandom()
}

func (c *Controller) disconnect() {
	if err := c.coord.Disconnect(); err != nil {
		c.OnDisconnected(err)
	}
}

func (c *Controller) showProgress() {
	c.ui.SetConnecting(true)
	c.ui.SetControlsVisible(false)
}

func (c *Controller) restoreControls() {
	c.ui.SetConnecting(false)
	c.ui.SetControlsVisible(true)
}
