// Package replication sends the state of locally owned entities to the room
// and applies received state to shadow copies.
package replication

import (
	"errors"
	"fmt"
	"log"

	"github.com/nikfortgames/beamroom/components"
	"github.com/nikfortgames/beamroom/entity"
	"github.com/yohamta/donburi"
)

// ErrNotReplica is returned when a record targets an entity this process
// owns. The owner is the only writer.
var ErrNotReplica = errors.New("entity is locally owned")

// Broadcaster hands a record to the transport for every other room member.
// Delivery is best effort.
type Broadcaster interface {
	Send(id components.EntityID, record []byte) error
}

// Stats counts what the channel did since it was created.
type Stats struct {
	Sent             int
	SendErrors       int
	Applied          int
	DroppedMalformed int
	DroppedUnknown   int
	DroppedOwned     int
}

// Channel runs once per simulation tick. It is not safe for concurrent use;
// the game loop is its only caller.
type Channel struct {
	registry *entity.Registry
	out      Broadcaster
	stats    Stats
}

func NewChannel(registry *entity.Registry, out Broadcaster) *Channel {
	return &Channel{
		registry: registry,
		out:      out,
	}
}

// Tick broadcasts a snapshot of every entity this process owns. There is no
// delta and no acknowledgement: the next tick sends the full record again.
func (c *Channel) Tick() {
	c.registry.Each(func(entry *donburi.Entry) {
		own := components.Ownership.Get(entry)
		if own.Role != components.RoleOwner {
			return
		}

		record, err := EncodeState(*components.EntityState.Get(entry))
		if err != nil {
			log.Printf("[replication] %s: %v", own.EntityID, err)
			return
		}
		if err := c.out.Send(own.EntityID, record); err != nil {
			c.stats.SendErrors++
			log.Printf("[replication] send %s: %v", own.EntityID, err)
			return
		}
		c.stats.Sent++
	})
}

// Receive overwrites the shadow copy of id with record. Records for unknown or
// locally owned entities and malformed records are dropped and reported; the
// local copy is left untouched.
func (c *Channel) Receive(id components.EntityID, record []byte) error {
	entry, ok := c.registry.Entry(id)
	if !ok {
		c.stats.DroppedUnknown++
		return fmt.Errorf("receive %s: %w", id, entity.ErrUnknownEntity)
	}
	if components.Ownership.Get(entry).Role == components.RoleOwner {
		c.stats.DroppedOwned++
		return fmt.Errorf("receive %s: %w", id, ErrNotReplica)
	}

	s, err := DecodeState(record)
	if err != nil {
		c.stats.DroppedMalformed++
		return fmt.Errorf("receive %s: %w", id, err)
	}

	state := components.EntityState.Get(entry)
	state.IsActive = s.IsActive
	state.Health = s.Health
	c.stats.Applied++
	return nil
}

func (c *Channel) Stats() Stats {
	return c.stats
}
