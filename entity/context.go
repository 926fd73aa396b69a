package entity

import "github.com/nikfortgames/beamroom/components"

// LocalContext answers "is this mine?" for the process. It holds the local
// participant id handed out by the coordinator and the one entity this
// process owns. It is owned by the session, not by any environment, so it
// survives transitions.
type LocalContext struct {
	participant components.ParticipantID
	local       components.EntityID
	hasLocal    bool
}

func NewLocalContext() *LocalContext {
	return &LocalContext{}
}

// SetParticipant records the id the coordinator assigned to this process.
func (c *LocalContext) SetParticipant(id components.ParticipantID) {
	c.participant = id
}

func (c *LocalContext) ParticipantID() components.ParticipantID {
	return c.participant
}

// IsLocal reports whether owner is this process.
func (c *LocalContext) IsLocal(owner components.ParticipantID) bool {
	return c.participant != "" && owner == c.participant
}

// LocalEntity returns the entity this process owns, if one is registered.
func (c *LocalContext) LocalEntity() (components.EntityID, bool) {
	return c.local, c.hasLocal
}

func (c *LocalContext) register(id components.EntityID) error {
	if c.hasLocal {
		return ErrLocalEntityExists
	}
	c.local = id
	c.hasLocal = true
	return nil
}

func (c *LocalContext) release(id components.EntityID) {
	if c.hasLocal && c.local == id {
		c.local = ""
		c.hasLocal = false
	}
}

// Reset forgets the local entity and the participant id.
func (c *LocalContext) Reset() {
	c.participant = ""
	c.local = ""
	c.hasLocal = false
}
