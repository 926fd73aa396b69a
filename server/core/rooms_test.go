package core

import (
	"errors"
	"sync"
	"testing"

	"github.com/nikfortgames/beamroom/shared/messages"
	"github.com/nikfortgames/beamroom/shared/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePeer struct {
	id string

	mu   sync.Mutex
	sent []any
	err  error
}

func (p *fakePeer) Id() string { return p.id }

func (p *fakePeer) SendMessage(msg any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, msg)
	return nil
}

func (p *fakePeer) messages() []any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]any(nil), p.sent...)
}

func (p *fakePeer) last() any {
	msgs := p.messages()
	if len(msgs) == 0 {
		return nil
	}
	return msgs[len(msgs)-1]
}

func requireCode(t *testing.T, err error, code protocol.ReturnCode) {
	t.Helper()
	var re *RoomError
	require.True(t, errors.As(err, &re), "expected RoomError, got %v", err)
	assert.Equal(t, code, re.Code)
}

func TestJoinRandomWithoutRooms(t *testing.T) {
	m := NewRoomManager(16)
	_, err := m.JoinRandom(&fakePeer{id: "a"}, "alice", "1")
	requireCode(t, err, protocol.NoRandomMatchFound)
}

func TestCreateThenJoinRandom(t *testing.T) {
	m := NewRoomManager(16)
	a, b := &fakePeer{id: "a"}, &fakePeer{id: "b"}

	created, err := m.Create(a, "alice", "1", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, created.Capacity)
	assert.Empty(t, created.Others)

	joined, err := m.JoinRandom(b, "bob", "1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, joined.ID)
	assert.Equal(t, []messages.ParticipantInfo{{ID: "a", Name: "alice"}, {ID: "b", Name: "bob"}}, joined.Participants)
	require.Len(t, joined.Others, 1)
	assert.Equal(t, "a", joined.Others[0].Id())
}

func TestJoinRandomRespectsVersion(t *testing.T) {
	m := NewRoomManager(16)
	_, err := m.Create(&fakePeer{id: "a"}, "alice", "1", 4)
	require.NoError(t, err)

	_, err = m.JoinRandom(&fakePeer{id: "b"}, "bob", "2")
	requireCode(t, err, protocol.NoRandomMatchFound)
}

func TestJoinRandomPrefersFullestRoom(t *testing.T) {
	m := NewRoomManager(16)
	small, err := m.Create(&fakePeer{id: "a"}, "a", "1", 4)
	require.NoError(t, err)
	big, err := m.Create(&fakePeer{id: "b"}, "b", "1", 4)
	require.NoError(t, err)
	_, err = m.Join(&fakePeer{id: "c"}, "c", "1", big.ID)
	require.NoError(t, err)

	got, err := m.JoinRandom(&fakePeer{id: "d"}, "d", "1")
	require.NoError(t, err)
	assert.Equal(t, big.ID, got.ID)
	assert.NotEqual(t, small.ID, got.ID)
}

func TestCapacityIsNeverExceeded(t *testing.T) {
	m := NewRoomManager(16)
	r, err := m.Create(&fakePeer{id: "p0"}, "p0", "1", 2)
	require.NoError(t, err)
	_, err = m.JoinRandom(&fakePeer{id: "p1"}, "p1", "1")
	require.NoError(t, err)

	_, err = m.JoinRandom(&fakePeer{id: "p2"}, "p2", "1")
	requireCode(t, err, protocol.NoRandomMatchFound)

	_, err = m.Join(&fakePeer{id: "p3"}, "p3", "1", r.ID)
	requireCode(t, err, protocol.GameFull)
}

func TestCreateClampsCapacity(t *testing.T) {
	m := NewRoomManager(8)
	r, err := m.Create(&fakePeer{id: "a"}, "a", "1", 100)
	require.NoError(t, err)
	assert.Equal(t, 8, r.Capacity)

	r, err = m.Create(&fakePeer{id: "b"}, "b", "1", 0)
	require.NoError(t, err)
	assert.Equal(t, 8, r.Capacity)
}

func TestJoinUnknownRoom(t *testing.T) {
	m := NewRoomManager(8)
	_, err := m.Join(&fakePeer{id: "a"}, "a", "1", "room-42")
	requireCode(t, err, protocol.GameDoesNotExist)
}

func TestAlreadyInRoom(t *testing.T) {
	m := NewRoomManager(8)
	a := &fakePeer{id: "a"}
	_, err := m.Create(a, "a", "1", 4)
	require.NoError(t, err)

	_, err = m.Create(a, "a", "1", 4)
	requireCode(t, err, protocol.AlreadyInRoom)
	_, err = m.JoinRandom(a, "a", "1")
	requireCode(t, err, protocol.AlreadyInRoom)
}

func TestLeaveClosesEmptyRoom(t *testing.T) {
	m := NewRoomManager(8)
	a, b := &fakePeer{id: "a"}, &fakePeer{id: "b"}
	r, err := m.Create(a, "a", "1", 4)
	require.NoError(t, err)
	_, err = m.Join(b, "b", "1", r.ID)
	require.NoError(t, err)

	roomID, ok := m.RoomOf("a")
	require.True(t, ok)
	assert.Equal(t, r.ID, roomID)

	view, ok := m.Leave(a)
	require.True(t, ok)
	require.Len(t, view.Others, 1)
	assert.Equal(t, "b", view.Others[0].Id())
	assert.Equal(t, 1, m.RoomCount())

	_, ok = m.Leave(a)
	assert.False(t, ok)
	_, ok = m.RoomOf("a")
	assert.False(t, ok)

	_, ok = m.Leave(b)
	assert.True(t, ok)
	assert.Equal(t, 0, m.RoomCount())
	assert.Empty(t, m.Rooms())
}

func TestRelayOnlyOwnEntity(t *testing.T) {
	m := NewRoomManager(8)
	a, b, c := &fakePeer{id: "a"}, &fakePeer{id: "b"}, &fakePeer{id: "c"}
	r, err := m.Create(a, "a", "1", 4)
	require.NoError(t, err)
	_, err = m.Join(b, "b", "1", r.ID)
	require.NoError(t, err)
	_, err = m.Join(c, "c", "1", r.ID)
	require.NoError(t, err)

	to, snap, err := m.Relay(a, messages.EntitySnapshot{EntityID: "a", OwnerID: "spoofed", Record: []byte{1}})
	require.NoError(t, err)
	assert.Equal(t, "a", snap.OwnerID)
	require.Len(t, to, 2)
	assert.ElementsMatch(t, []string{"b", "c"}, []string{to[0].Id(), to[1].Id()})

	_, _, err = m.Relay(a, messages.EntitySnapshot{EntityID: "b", Record: []byte{1}})
	assert.Error(t, err)

	_, _, err = m.Relay(&fakePeer{id: "z"}, messages.EntitySnapshot{EntityID: "z"})
	assert.Error(t, err)
}

func TestConcurrentJoinRandomStaysWithinCapacity(t *testing.T) {
	m := NewRoomManager(16)
	r, err := m.Create(&fakePeer{id: "host"}, "host", "1", 4)
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	joined := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := m.JoinRandom(&fakePeer{id: string(rune('a' + i))}, "p", "1"); err == nil {
				mu.Lock()
				joined++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 3, joined)
	_, err = m.Join(&fakePeer{id: "late"}, "late", "1", r.ID)
	requireCode(t, err, protocol.GameFull)
}
