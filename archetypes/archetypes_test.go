package archetypes

import (
	"testing"

	"github.com/nikfortgames/beamroom/components"
	"github.com/nikfortgames/beamroom/tags"
	"github.com/stretchr/testify/assert"
	"github.com/yohamta/donburi"
)

func TestPlayerSpawn(t *testing.T) {
	world := donburi.NewWorld()

	shadow := Player.Spawn(world)
	assert.True(t, shadow.HasComponent(tags.Player))
	assert.True(t, shadow.HasComponent(components.Ownership))
	assert.True(t, shadow.HasComponent(components.EntityState))
	assert.True(t, shadow.HasComponent(components.Position))
	assert.False(t, shadow.HasComponent(tags.Persistent))

	owned := Player.Spawn(world, tags.Persistent)
	assert.True(t, owned.HasComponent(tags.Persistent))

	again := Player.Spawn(world)
	assert.False(t, again.HasComponent(tags.Persistent))
	assert.NotEqual(t, shadow.Entity(), again.Entity())
	assert.True(t, world.Valid(again.Entity()))
}
