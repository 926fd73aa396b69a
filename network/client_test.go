package network

import (
	"errors"
	"testing"

	"github.com/coder/websocket"
	"github.com/nikfortgames/beamroom/shared/messages"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedEvents struct {
	disconnects []error
}

func (r *recordedEvents) OnConnectedToMaster(string)                   {}
func (r *recordedEvents) OnJoinRandomFailed(int16, string)             {}
func (r *recordedEvents) OnJoinRoomFailed(int16, string)               {}
func (r *recordedEvents) OnCreateRoomFailed(int16, string)             {}
func (r *recordedEvents) OnJoinedRoom(messages.JoinedRoom)             {}
func (r *recordedEvents) OnParticipantJoined(messages.ParticipantInfo) {}
func (r *recordedEvents) OnParticipantLeft(string)                     {}
func (r *recordedEvents) OnSnapshot(messages.EntitySnapshot)           {}
func (r *recordedEvents) OnLeftRoom()                                  {}
func (r *recordedEvents) OnDisconnected(cause error) {
	r.disconnects = append(r.disconnects, cause)
}

func TestSendWithoutConnection(t *testing.T) {
	c := NewClient("localhost:0", "alice", &recordedEvents{})

	assert.ErrorIs(t, c.JoinRandomRoom(), ErrNotConnected)
	assert.ErrorIs(t, c.CreateRoom(4), ErrNotConnected)
	assert.ErrorIs(t, c.Send("p1", []byte{0x92}), ErrNotConnected)
}

func TestDropReportsOnce(t *testing.T) {
	ev := &recordedEvents{}
	c := NewClient("localhost:0", "alice", ev)
	c.active = true

	cause := errors.New("reset by peer")
	c.drop(cause)
	c.drop(errors.New("second"))

	assert.Equal(t, []error{cause}, ev.disconnects)
}

func TestRequestedDisconnectHasNoCause(t *testing.T) {
	ev := &recordedEvents{}
	c := NewClient("localhost:0", "alice", ev)
	c.active = true

	assert.NoError(t, c.Disconnect())
	c.drop(errors.New("closed"))

	assert.Equal(t, []error{nil}, ev.disconnects)
}

func TestDialAfterDisconnectIsDiscarded(t *testing.T) {
	ev := &recordedEvents{}
	c := NewClient("localhost:0", "alice", ev)
	c.gen, c.active = 1, true

	require.NoError(t, c.Disconnect())
	assert.False(t, c.adopt(1, new(websocket.Conn)))
	assert.Nil(t, c.conn)
	assert.Equal(t, []error{nil}, ev.disconnects)

	// A newer attempt ignores sockets dialed for the old one.
	c.gen, c.active, c.closing = 2, true, false
	assert.False(t, c.current(1))
	assert.False(t, c.adopt(1, new(websocket.Conn)))

	conn := new(websocket.Conn)
	assert.True(t, c.adopt(2, conn))
	assert.Same(t, conn, c.conn)
}
