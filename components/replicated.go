package components

import "github.com/yohamta/donburi"

// ParticipantID identifies a room member. It is assigned by the transport.
type ParticipantID string

// EntityID identifies a replicated entity across every process in a room.
type EntityID string

// PlayerEntityID returns the id of the player entity owned by p. Each
// participant owns exactly one player entity.
func PlayerEntityID(p ParticipantID) EntityID {
	return EntityID(p)
}

// Role is fixed when an entity is spawned and never changes.
type Role int

const (
	RoleReplica Role = iota // Shadow copy, written only by snapshots
	RoleOwner               // Authoritative copy, written by local rules
)

func (r Role) String() string {
	if r == RoleOwner {
		return "owner"
	}
	return "replica"
}

type OwnershipData struct {
	EntityID EntityID
	OwnerID  ParticipantID
	Role     Role
}

// EntityStateData is the replicated record. Field order matches the wire
// record: IsActive first, then Health.
type EntityStateData struct {
	IsActive bool    // Damaging output engaged
	Health   float32 // Normalized, starts at 1.0
}

type PositionData struct {
	X, Y float64
}

var Ownership = donburi.NewComponentType[OwnershipData]()
var EntityState = donburi.NewComponentType[EntityStateData]()
var Position = donburi.NewComponentType[PositionData]()
