// Package game wires matchmaking, entity lifecycle, replication and vitality
// into one client session driven by an owned loop.
package game

import (
	"errors"
	"log"
	"sort"
	"time"

	"github.com/nikfortgames/beamroom/components"
	"github.com/nikfortgames/beamroom/config"
	"github.com/nikfortgames/beamroom/entity"
	"github.com/nikfortgames/beamroom/replication"
	"github.com/nikfortgames/beamroom/session"
	"github.com/nikfortgames/beamroom/shared/messages"
	"github.com/nikfortgames/beamroom/vitality"
	"github.com/yohamta/donburi"
)

// Transport is everything the session needs from the network: the room
// coordinator and the snapshot broadcast.
type Transport interface {
	session.Coordinator
	replication.Broadcaster
}

// Spawner places entities in the current environment.
type Spawner interface {
	entity.Environment
	SpawnFor(n int) components.PositionData
}

// Session is a client's view of one room. All methods run on the loop.
type Session struct {
	local      *entity.LocalContext
	registry   *entity.Registry
	channel    *replication.Channel
	vitality   *vitality.Model
	controller *session.Controller
	env        Spawner

	members  []messages.ParticipantInfo // room members in join order, this client included
	contacts map[string]struct{}        // sources currently touching the local entity
}

func NewSession(transport Transport, ui session.Presenter, env Spawner, cfg config.SessionConfig, vcfg config.VitalityConfig) *Session {
	local := entity.NewLocalContext()
	registry := entity.NewRegistry(donburi.NewWorld(), local, vcfg.MaxHealth)
	registry.SetEnvironment(env)
	controller := session.NewController(transport, ui, cfg)

	return &Session{
		local:      local,
		registry:   registry,
		channel:    replication.NewChannel(registry, transport),
		vitality:   vitality.NewModel(registry, controller, vcfg),
		controller: controller,
		env:        env,
		contacts:   make(map[string]struct{}),
	}
}

func (s *Session) Controller() *session.Controller {
	return s.controller
}

func (s *Session) Registry() *entity.Registry {
	return s.registry
}

func (s *Session) Channel() *replication.Channel {
	return s.channel
}

// Connect is the user-invoked trigger.
func (s *Session) Connect() {
	s.controller.Connect()
}

// Leave is the user-invoked counterpart of death.
func (s *Session) Leave() {
	s.controller.LeaveRoom()
}

// Tick advances one fixed simulation step.
func (s *Session) Tick(dt time.Duration) {
	if s.controller.State() != session.StateInRoom {
		return
	}
	if id, ok := s.local.LocalEntity(); ok {
		for _, tag := range s.contactTags() {
			s.ContactSustained(id, tag, dt)
		}
	}
	s.vitality.Tick()
	s.channel.Tick()
}

// Transition moves the session to a new environment. Remote shadows are
// rebuilt and the local entity is checked against the new ground.
func (s *Session) Transition(env Spawner) {
	s.env = env
	if s.registry.Transition(env) {
		log.Printf("[game] local entity relocated after transition")
	}
	s.spawnShadows()
}

// Input events

func (s *Session) ActivatePressed() {
	s.vitality.ActivatePressed()
}

func (s *Session) ActivateReleased() {
	s.vitality.ActivateReleased()
}

// ContactBegan starts a contact between a source and target. Contacts on the
// local entity keep applying sustained damage every tick until ContactEnded.
func (s *Session) ContactBegan(target components.EntityID, sourceTag string) {
	s.vitality.ContactBegan(target, sourceTag)
	if s.registry.IsOwned(target) {
		s.contacts[sourceTag] = struct{}{}
	}
}

// ContactSustained applies damage for dt of continued contact. Callers that
// track contact duration themselves use it instead of ContactBegan/ContactEnded.
// The death check runs on the next Tick.
func (s *Session) ContactSustained(target components.EntityID, sourceTag string, dt time.Duration) {
	if s.controller.State() != session.StateInRoom {
		return
	}
	s.vitality.ContactSustained(target, sourceTag, dt)
}

func (s *Session) ContactEnded(target components.EntityID, sourceTag string) {
	if s.registry.IsOwned(target) {
		delete(s.contacts, sourceTag)
	}
}

// LocalEntityID returns the id of the entity this process owns.
func (s *Session) LocalEntityID() (components.EntityID, bool) {
	return s.local.LocalEntity()
}

// Transport events

func (s *Session) OnConnectedToMaster(participantID string) {
	if s.controller.State() == session.StateConnecting {
		s.local.SetParticipant(components.ParticipantID(participantID))
	}
	s.controller.OnConnectedToMaster()
}

func (s *Session) OnJoinRandomFailed(code int16, message string) {
	s.controller.OnJoinRandomFailed(code, message)
}

func (s *Session) OnJoinRoomFailed(code int16, message string) {
	s.controller.OnJoinRoomFailed(code, message)
}

func (s *Session) OnCreateRoomFailed(code int16, message string) {
	s.controller.OnCreateRoomFailed(code, message)
}

func (s *Session) OnJoinedRoom(msg messages.JoinedRoom) {
	s.controller.OnJoinedRoom(msg.RoomID)
	if s.controller.State() != session.StateInRoom {
		return
	}

	self := s.local.ParticipantID()
	s.members = append(s.members[:0], msg.Participants...)
	if s.slotOf(string(self)) < 0 {
		s.members = append(s.members, messages.ParticipantInfo{ID: string(self)})
	}

	if _, err := s.registry.Spawn(self, s.env.SpawnFor(s.slotOf(string(self)))); err != nil {
		log.Printf("[game] spawn local entity: %v", err)
	}
	s.vitality.Reset()
	s.spawnShadows()
}

func (s *Session) OnParticipantJoined(p messages.ParticipantInfo) {
	if s.slotOf(p.ID) >= 0 {
		return
	}
	s.members = append(s.members, p)
	s.spawnShadow(p, len(s.members)-1)
}

func (s *Session) OnParticipantLeft(participantID string) {
	if i := s.slotOf(participantID); i >= 0 {
		s.members = append(s.members[:i], s.members[i+1:]...)
	}
	id := components.PlayerEntityID(components.ParticipantID(participantID))
	if err := s.registry.Despawn(id); err != nil && !errors.Is(err, entity.ErrUnknownEntity) {
		log.Printf("[game] %v", err)
	}
}

func (s *Session) OnSnapshot(msg messages.EntitySnapshot) {
	if err := s.channel.Receive(components.EntityID(msg.EntityID), msg.Record); err != nil {
		log.Printf("[game] dropped snapshot: %v", err)
	}
}

func (s *Session) OnLeftRoom() {
	s.endRoom()
	s.controller.OnLeftRoom()
}

func (s *Session) OnDisconnected(cause error) {
	s.endRoom()
	s.local.Reset()
	s.controller.OnDisconnected(cause)
}

func (s *Session) endRoom() {
	s.members = s.members[:0]
	clear(s.contacts)
	s.registry.Teardown()
}

// slotOf returns a member's index in join order, or -1. The index picks the
// spawn point on every path that places an entity.
func (s *Session) slotOf(participantID string) int {
	for i, p := range s.members {
		if p.ID == participantID {
			return i
		}
	}
	return -1
}

func (s *Session) spawnShadows() {
	self := s.local.ParticipantID()
	for i, p := range s.members {
		if components.ParticipantID(p.ID) != self {
			s.spawnShadow(p, i)
		}
	}
}

func (s *Session) spawnShadow(p messages.ParticipantInfo, slot int) {
	owner := components.ParticipantID(p.ID)
	if _, err := s.registry.Spawn(owner, s.env.SpawnFor(slot)); err != nil && !errors.Is(err, entity.ErrEntityExists) {
		log.Printf("[game] spawn shadow for %s: %v", p.ID, err)
	}
}

func (s *Session) contactTags() []string {
	out := make([]string, 0, len(s.contacts))
	for tag := range s.contacts {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}
