package archetypes

import (
	"github.com/nikfortgames/beamroom/components"
	"github.com/nikfortgames/beamroom/tags"
	"github.com/yohamta/donburi"
)

var (
	// Player is every replicated player entity, owned or shadow.
	Player = newArchetype(
		tags.Player,
		components.Ownership,
		components.EntityState,
		components.Position,
	)
)

type archetype struct {
	components []donburi.IComponentType
}

func newArchetype(cs ...donburi.IComponentType) *archetype {
	return &archetype{
		components: cs,
	}
}

// Spawn creates an entity with the archetype's components plus cs.
func (a *archetype) Spawn(world donburi.World, cs ...donburi.IComponentType) *donburi.Entry {
	all := make([]donburi.IComponentType, 0, len(a.components)+len(cs))
	all = append(all, a.components...)
	all = append(all, cs...)
	return world.Entry(world.Create(all...))
}
