package core

import (
	"fmt"
	"sort"
	"sync"

	"github.com/nikfortgames/beamroom/components"
	"github.com/nikfortgames/beamroom/shared/messages"
	"github.com/nikfortgames/beamroom/shared/protocol"
)

// Peer is one connected client. *router.NetworkClient satisfies it.
type Peer interface {
	Id() string
	SendMessage(msg any) error
}

// RoomError is a room operation the manager turned down.
type RoomError struct {
	Code    protocol.ReturnCode
	Message string
}

func (e *RoomError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Code, int16(e.Code), e.Message)
}

func roomError(code protocol.ReturnCode, format string, args ...any) *RoomError {
	return &RoomError{Code: code, Message: fmt.Sprintf(format, args...)}
}

type member struct {
	peer Peer
	name string
}

// Room is a set of participants sharing one version tag.
type Room struct {
	ID       string
	Version  string
	Capacity int
	seq      int
	members  []member
}

func (r *Room) Full() bool {
	return len(r.members) >= r.Capacity
}

func (r *Room) indexOf(peerID string) int {
	for i, m := range r.members {
		if m.peer.Id() == peerID {
			return i
		}
	}
	return -1
}

// RoomView is a copy of a room's membership taken under the manager lock, so
// the caller can send messages without holding it.
type RoomView struct {
	ID           string
	Capacity     int
	Participants []messages.ParticipantInfo
	Others       []Peer
}

// RoomManager tracks rooms and which room each peer is in. It is safe for
// concurrent use; necs runs handlers for different clients in parallel.
type RoomManager struct {
	mu          sync.RWMutex
	rooms       map[string]*Room
	byPeer      map[string]*Room
	maxCapacity int
	nextID      int
}

func NewRoomManager(maxCapacity int) *RoomManager {
	return &RoomManager{
		rooms:       make(map[string]*Room),
		byPeer:      make(map[string]*Room),
		maxCapacity: maxCapacity,
	}
}

// JoinRandom puts peer in an open room with the same version. The fullest
// room is preferred so players are not spread across half-empty rooms.
func (m *RoomManager) JoinRandom(peer Peer, name, version string) (RoomView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byPeer[peer.Id()]; ok {
		return RoomView{}, roomError(protocol.AlreadyInRoom, "participant %s is already in a room", peer.Id())
	}

	var best *Room
	for _, r := range m.rooms {
		if r.Version != version || r.Full() {
			continue
		}
		if best == nil || len(r.members) > len(best.members) ||
			(len(r.members) == len(best.members) && r.seq < best.seq) {
			best = r
		}
	}
	if best == nil {
		return RoomView{}, roomError(protocol.NoRandomMatchFound, "no open room for version %q", version)
	}
	return m.add(best, peer, name), nil
}

// Create opens a new room with peer as its first member. Capacity is clamped
// to the server maximum.
func (m *RoomManager) Create(peer Peer, name, version string, capacity int) (RoomView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byPeer[peer.Id()]; ok {
		return RoomView{}, roomError(protocol.AlreadyInRoom, "participant %s is already in a room", peer.Id())
	}
	if capacity <= 0 || capacity > m.maxCapacity {
		capacity = m.maxCapacity
	}

	m.nextID++
	r := &Room{
		ID:       fmt.Sprintf("room-%d", m.nextID),
		Version:  version,
		Capacity: capacity,
		seq:      m.nextID,
	}
	m.rooms[r.ID] = r
	return m.add(r, peer, name), nil
}

// Join puts peer in the named room.
func (m *RoomManager) Join(peer Peer, name, version, roomID string) (RoomView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byPeer[peer.Id()]; ok {
		return RoomView{}, roomError(protocol.AlreadyInRoom, "participant %s is already in a room", peer.Id())
	}
	r, ok := m.rooms[roomID]
	if !ok || r.Version != version {
		return RoomView{}, roomError(protocol.GameDoesNotExist, "room %s does not exist", roomID)
	}
	if r.Full() {
		return RoomView{}, roomError(protocol.GameFull, "room %s is full (%d/%d)", roomID, len(r.members), r.Capacity)
	}
	return m.add(r, peer, name), nil
}

// Leave takes peer out of its room and returns who is left. Empty rooms are
// closed. ok is false if peer was not in a room.
func (m *RoomManager) Leave(peer Peer) (view RoomView, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.byPeer[peer.Id()]
	if !ok {
		return RoomView{}, false
	}
	delete(m.byPeer, peer.Id())
	if i := r.indexOf(peer.Id()); i >= 0 {
		r.members = append(r.members[:i], r.members[i+1:]...)
	}
	if len(r.members) == 0 {
		delete(m.rooms, r.ID)
	}
	return m.view(r, peer.Id()), true
}

// Relay returns the peers that should receive snapshot. A participant may
// only publish the entity it owns; the owner id is stamped from the sender.
func (m *RoomManager) Relay(peer Peer, snapshot messages.EntitySnapshot) ([]Peer, messages.EntitySnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.byPeer[peer.Id()]
	if !ok {
		return nil, snapshot, fmt.Errorf("relay from %s: not in a room", peer.Id())
	}
	owned := components.PlayerEntityID(components.ParticipantID(peer.Id()))
	if components.EntityID(snapshot.EntityID) != owned {
		return nil, snapshot, fmt.Errorf("relay from %s: entity %s is not owned by sender", peer.Id(), snapshot.EntityID)
	}
	snapshot.OwnerID = peer.Id()
	return m.view(r, peer.Id()).Others, snapshot, nil
}

// RoomOf returns the id of the room peer is in.
func (m *RoomManager) RoomOf(peerID string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.byPeer[peerID]
	if !ok {
		return "", false
	}
	return r.ID, true
}

func (m *RoomManager) RoomCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// Rooms lists room ids, oldest first.
func (m *RoomManager) Rooms() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].seq < rooms[j].seq })
	ids := make([]string, len(rooms))
	for i, r := range rooms {
		ids[i] = r.ID
	}
	return ids
}

func (m *RoomManager) add(r *Room, peer Peer, name string) RoomView {
	r.members = append(r.members, member{peer: peer, name: name})
	m.byPeer[peer.Id()] = r
	return m.view(r, peer.Id())
}

func (m *RoomManager) view(r *Room, self string) RoomView {
	v := RoomView{
		ID:           r.ID,
		Capacity:     r.Capacity,
		Participants: make([]messages.ParticipantInfo, 0, len(r.members)),
	}
	for _, mem := range r.members {
		v.Participants = append(v.Participants, messages.ParticipantInfo{ID: mem.peer.Id(), Name: mem.name})
		if mem.peer.Id() != self {
			v.Others = append(v.Others, mem.peer)
		}
	}
	return v
}
