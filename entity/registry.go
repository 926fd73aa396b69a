// Package entity tracks the replicated entities a process knows about and
// which one of them it owns.
package entity

import (
	"errors"
	"fmt"
	"log"

	"github.com/nikfortgames/beamroom/archetypes"
	"github.com/nikfortgames/beamroom/components"
	"github.com/nikfortgames/beamroom/tags"
	"github.com/yohamta/donburi"
)

var (
	ErrLocalEntityExists = errors.New("local entity already registered")
	ErrEntityExists      = errors.New("entity already exists")
	ErrUnknownEntity     = errors.New("unknown entity")
)

// Environment is the world the entities live in after a transition.
type Environment interface {
	// ProbeGroundBelow reports whether there is solid ground within reach
	// below pos.
	ProbeGroundBelow(pos components.PositionData) bool
	// SafeSpawn is the canonical coordinate used when pos is out of bounds.
	SafeSpawn() components.PositionData
}

// Registry creates and destroys replicated entities in a donburi world and
// keeps the LocalContext slot in step with them.
type Registry struct {
	world     donburi.World
	local     *LocalContext
	byID      map[components.EntityID]donburi.Entity
	env       Environment
	maxHealth float32
}

func NewRegistry(world donburi.World, local *LocalContext, maxHealth float32) *Registry {
	return &Registry{
		world:     world,
		local:     local,
		byID:      make(map[components.EntityID]donburi.Entity),
		maxHealth: maxHealth,
	}
}

func (r *Registry) Context() *LocalContext {
	return r.local
}

func (r *Registry) Environment() Environment {
	return r.env
}

// SetEnvironment binds env without running a transition.
func (r *Registry) SetEnvironment(env Environment) {
	r.env = env
}

// Spawn creates the player entity owned by owner at pos. The role is decided
// here, once: owner if owner is the local participant, replica otherwise.
func (r *Registry) Spawn(owner components.ParticipantID, pos components.PositionData) (*donburi.Entry, error) {
	id := components.PlayerEntityID(owner)
	if _, exists := r.byID[id]; exists {
		return nil, fmt.Errorf("spawn %s: %w", id, ErrEntityExists)
	}

	role := components.RoleReplica
	if r.local.IsLocal(owner) {
		role = components.RoleOwner
		if err := r.local.register(id); err != nil {
			return nil, fmt.Errorf("spawn %s: %w", id, err)
		}
	}

	var extra []donburi.IComponentType
	if role == components.RoleOwner {
		extra = append(extra, tags.Persistent)
	}

	entry := archetypes.Player.Spawn(r.world, extra...)
	components.Ownership.SetValue(entry, components.OwnershipData{
		EntityID: id,
		OwnerID:  owner,
		Role:     role,
	})
	components.EntityState.SetValue(entry, components.EntityStateData{
		Health: r.maxHealth,
	})
	components.Position.SetValue(entry, pos)

	r.byID[id] = entry.Entity()
	log.Printf("[entity] spawned %s (%s)", id, role)
	return entry, nil
}

// Despawn removes the entity and, if it was the local one, clears the slot.
func (r *Registry) Despawn(id components.EntityID) error {
	e, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("despawn %s: %w", id, ErrUnknownEntity)
	}
	delete(r.byID, id)
	r.local.release(id)
	if r.world.Valid(e) {
		r.world.Remove(e)
	}
	log.Printf("[entity] despawned %s", id)
	return nil
}

// Entry returns the entry for id.
func (r *Registry) Entry(id components.EntityID) (*donburi.Entry, bool) {
	e, ok := r.byID[id]
	if !ok || !r.world.Valid(e) {
		return nil, false
	}
	return r.world.Entry(e), true
}

// Local returns the entry of the entity this process owns.
func (r *Registry) Local() (*donburi.Entry, bool) {
	id, ok := r.local.LocalEntity()
	if !ok {
		return nil, false
	}
	return r.Entry(id)
}

// IsOwned reports whether id is owned by this process. Every mutation and
// input path checks this first.
func (r *Registry) IsOwned(id components.EntityID) bool {
	entry, ok := r.Entry(id)
	if !ok {
		return false
	}
	return components.Ownership.Get(entry).Role == components.RoleOwner
}

// Each calls fn for every known entity.
func (r *Registry) Each(fn func(entry *donburi.Entry)) {
	for _, e := range r.byID {
		if r.world.Valid(e) {
			fn(r.world.Entry(e))
		}
	}
}

func (r *Registry) Count() int {
	return len(r.byID)
}

// Teardown removes every entity and clears the local slot. Called when the
// room ends. The participant id stays until the connection itself closes.
func (r *Registry) Teardown() {
	for id, e := range r.byID {
		if r.world.Valid(e) {
			r.world.Remove(e)
		}
		delete(r.byID, id)
		r.local.release(id)
	}
}

// Transition swaps in env. Entities not marked Persistent belong to the old
// environment and are dropped; the caller respawns remote shadows. The local
// entity is then checked against the new ground.
func (r *Registry) Transition(env Environment) bool {
	for id, e := range r.byID {
		if !r.world.Valid(e) {
			delete(r.byID, id)
			continue
		}
		if r.world.Entry(e).HasComponent(tags.Persistent) {
			continue
		}
		r.world.Remove(e)
		delete(r.byID, id)
	}
	r.env = env
	return r.EnsureSafePosition()
}

// EnsureSafePosition moves the local entity to the environment's safe spawn
// if there is no ground below it. It reports whether a relocation happened.
func (r *Registry) EnsureSafePosition() bool {
	if r.env == nil {
		return false
	}
	entry, ok := r.Local()
	if !ok {
		return false
	}

	pos := components.Position.Get(entry)
	if r.env.ProbeGroundBelow(*pos) {
		return false
	}

	safe := r.env.SafeSpawn()
	log.Printf("[entity] no ground below (%.1f, %.1f), relocating to (%.1f, %.1f)", pos.X, pos.Y, safe.X, safe.Y)
	*pos = safe
	return true
}
