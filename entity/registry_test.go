package entity

import (
	"testing"

	"github.com/nikfortgames/beamroom/components"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yohamta/donburi"
)

type fakeEnv struct {
	groundBelowY float64 // ground exists for probes at or above this Y
	safe         components.PositionData
	probes       int
}

func (f *fakeEnv) ProbeGroundBelow(pos components.PositionData) bool {
	f.probes++
	return pos.Y <= f.groundBelowY
}

func (f *fakeEnv) SafeSpawn() components.PositionData {
	return f.safe
}

func newTestRegistry(local components.ParticipantID) *Registry {
	ctx := NewLocalContext()
	ctx.SetParticipant(local)
	return NewRegistry(donburi.NewWorld(), ctx, 1.0)
}

func TestSpawnAssignsRoleOnce(t *testing.T) {
	r := newTestRegistry("alice")

	mine, err := r.Spawn("alice", components.PositionData{X: 1, Y: 2})
	require.NoError(t, err)
	theirs, err := r.Spawn("bob", components.PositionData{})
	require.NoError(t, err)

	assert.Equal(t, components.RoleOwner, components.Ownership.Get(mine).Role)
	assert.Equal(t, components.RoleReplica, components.Ownership.Get(theirs).Role)
	assert.Equal(t, float32(1.0), components.EntityState.Get(mine).Health)
	assert.False(t, components.EntityState.Get(mine).IsActive)

	assert.True(t, r.IsOwned("alice"))
	assert.False(t, r.IsOwned("bob"))
	assert.False(t, r.IsOwned("carol"))

	id, ok := r.Context().LocalEntity()
	require.True(t, ok)
	assert.Equal(t, components.EntityID("alice"), id)
	assert.Equal(t, 2, r.Count())
}

func TestSpawnRejectsSecondLocalEntity(t *testing.T) {
	r := newTestRegistry("alice")

	_, err := r.Spawn("alice", components.PositionData{})
	require.NoError(t, err)

	_, err = r.Spawn("alice", components.PositionData{})
	assert.ErrorIs(t, err, ErrEntityExists)
	assert.Equal(t, 1, r.Count())
}

func TestLocalSlotRejectsDoubleRegistration(t *testing.T) {
	ctx := NewLocalContext()
	require.NoError(t, ctx.register("a"))
	assert.ErrorIs(t, ctx.register("b"), ErrLocalEntityExists)

	ctx.release("b")
	id, ok := ctx.LocalEntity()
	assert.True(t, ok)
	assert.Equal(t, components.EntityID("a"), id)
}

func TestSpawnBeforeParticipantKnownIsReplica(t *testing.T) {
	r := NewRegistry(donburi.NewWorld(), NewLocalContext(), 1.0)

	entry, err := r.Spawn("", components.PositionData{})
	require.NoError(t, err)
	assert.Equal(t, components.RoleReplica, components.Ownership.Get(entry).Role)
	_, ok := r.Local()
	assert.False(t, ok)
}

func TestDespawnClearsLocalSlot(t *testing.T) {
	r := newTestRegistry("alice")
	_, err := r.Spawn("alice", components.PositionData{})
	require.NoError(t, err)

	require.NoError(t, r.Despawn("alice"))
	_, ok := r.Local()
	assert.False(t, ok)
	assert.ErrorIs(t, r.Despawn("alice"), ErrUnknownEntity)

	// The slot is free again.
	_, err = r.Spawn("alice", components.PositionData{})
	assert.NoError(t, err)
}

func TestTeardown(t *testing.T) {
	r := newTestRegistry("alice")
	_, _ = r.Spawn("alice", components.PositionData{})
	_, _ = r.Spawn("bob", components.PositionData{})

	r.Teardown()

	assert.Equal(t, 0, r.Count())
	_, ok := r.Local()
	assert.False(t, ok)
	assert.Equal(t, components.ParticipantID("alice"), r.Context().ParticipantID())

	_, err := r.Spawn("alice", components.PositionData{})
	require.NoError(t, err)
	assert.True(t, r.IsOwned("alice"))
}

func TestTransitionKeepsOnlyPersistentEntities(t *testing.T) {
	r := newTestRegistry("alice")
	_, _ = r.Spawn("alice", components.PositionData{X: 10, Y: 10})
	_, _ = r.Spawn("bob", components.PositionData{})

	env := &fakeEnv{groundBelowY: 100}
	relocated := r.Transition(env)

	assert.False(t, relocated)
	assert.Equal(t, 1, r.Count())
	_, ok := r.Entry("bob")
	assert.False(t, ok)
	local, ok := r.Local()
	require.True(t, ok)
	assert.Equal(t, components.PositionData{X: 10, Y: 10}, *components.Position.Get(local))
	assert.Equal(t, 1, env.probes)
	assert.Same(t, env, r.Environment())
}

func TestTransitionRelocatesWhenNoGround(t *testing.T) {
	r := newTestRegistry("alice")
	_, _ = r.Spawn("alice", components.PositionData{X: 10, Y: 500})

	env := &fakeEnv{groundBelowY: 100, safe: components.PositionData{X: 0, Y: 80}}
	assert.True(t, r.Transition(env))

	local, ok := r.Local()
	require.True(t, ok)
	assert.Equal(t, components.PositionData{X: 0, Y: 80}, *components.Position.Get(local))
}

func TestEnsureSafePositionWithoutEnvironment(t *testing.T) {
	r := newTestRegistry("alice")
	_, _ = r.Spawn("alice", components.PositionData{Y: 500})
	assert.False(t, r.EnsureSafePosition())
}
