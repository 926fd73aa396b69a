// Package vitality applies health rules to the locally owned player and asks
// to leave the room when it dies.
package vitality

import (
	"log"
	"strings"
	"time"

	"github.com/nikfortgames/beamroom/components"
	"github.com/nikfortgames/beamroom/config"
	"github.com/nikfortgames/beamroom/entity"
	"github.com/yohamta/donburi"
)

// Leaver ends the session. It must not block.
type Leaver interface {
	LeaveRoom()
}

// Model owns the health and activate rules. Only the owner runs them; every
// method first checks that the target entity is locally owned, so shadow
// copies are never touched outside snapshot application.
type Model struct {
	registry *entity.Registry
	leaver   Leaver
	cfg      config.VitalityConfig
	dead     bool
}

func NewModel(registry *entity.Registry, leaver Leaver, cfg config.VitalityConfig) *Model {
	return &Model{
		registry: registry,
		leaver:   leaver,
		cfg:      cfg,
	}
}

// Reset rearms the death trigger for a freshly spawned local entity.
func (m *Model) Reset() {
	m.dead = false
}

// Dead reports whether the death trigger already fired.
func (m *Model) Dead() bool {
	return m.dead
}

// ActivatePressed engages the local player's damaging output.
func (m *Model) ActivatePressed() {
	m.setActive(true)
}

// ActivateReleased disengages it.
func (m *Model) ActivateReleased() {
	m.setActive(false)
}

// ContactBegan applies the fixed contact damage when a damaging source starts
// touching target.
func (m *Model) ContactBegan(target components.EntityID, sourceTag string) {
	m.damage(target, sourceTag, m.cfg.ContactDamage)
}

// ContactSustained applies rate-based damage for dt of continued contact.
func (m *Model) ContactSustained(target components.EntityID, sourceTag string, dt time.Duration) {
	if dt <= 0 {
		return
	}
	m.damage(target, sourceTag, m.cfg.SustainedRate*float32(dt.Seconds()))
}

// Tick checks the terminal condition once per simulation step.
func (m *Model) Tick() {
	if entry, ok := m.owned(); ok {
		m.checkDeath(entry)
	}
}

func (m *Model) setActive(active bool) {
	entry, ok := m.owned()
	if !ok || m.dead {
		return
	}
	components.EntityState.Get(entry).IsActive = active
}

func (m *Model) damage(target components.EntityID, sourceTag string, amount float32) {
	if m.dead || !m.registry.IsOwned(target) || !m.isDamaging(sourceTag) {
		return
	}
	entry, ok := m.registry.Entry(target)
	if !ok {
		return
	}
	state := components.EntityState.Get(entry)
	state.Health -= amount
	m.checkDeath(entry)
}

func (m *Model) checkDeath(entry *donburi.Entry) {
	if m.dead {
		return
	}
	state := components.EntityState.Get(entry)
	if state.Health > 0 {
		return
	}
	m.dead = true
	log.Printf("[vitality] %s died (health %.3f), leaving room",
		components.Ownership.Get(entry).EntityID, state.Health)
	m.leaver.LeaveRoom()
}

func (m *Model) owned() (*donburi.Entry, bool) {
	entry, ok := m.registry.Local()
	if !ok || components.Ownership.Get(entry).Role != components.RoleOwner {
		return nil, false
	}
	return entry, true
}

func (m *Model) isDamaging(sourceTag string) bool {
	tag := strings.ToLower(sourceTag)
	for _, t := range m.cfg.DamageTags {
		if strings.Contains(tag, strings.ToLower(t)) {
			return true
		}
	}
	return false
}
