package core

import (
	"errors"
	"log"
	"sync"

	"github.com/leap-fish/necs/router"
	"github.com/leap-fish/necs/transports"
	"github.com/nikfortgames/beamroom/config"
	"github.com/nikfortgames/beamroom/shared/messages"
	"github.com/nikfortgames/beamroom/shared/protocol"
)

type participant struct {
	name    string
	version string
}

// Server is the coordination service: it hands out participant ids, places
// clients in rooms and relays snapshots between room members.
type Server struct {
	cfg       config.ServerConfig
	rooms     *RoomManager
	transport *transports.WsServerTransport

	// Clients that completed the connect handshake, by peer id
	participants map[string]participant
	mu           sync.RWMutex
}

// NewServer creates a new coordination server
func NewServer(cfg config.ServerConfig) *Server {
	s := &Server{
		cfg:          cfg,
		rooms:        NewRoomManager(cfg.MaxPlayers),
		participants: make(map[string]participant),
	}

	// Register router callbacks
	s.setupRouterCallbacks()

	return s
}

// Start begins the server on the configured port
func (s *Server) Start() error {
	s.transport = transports.NewWsServerTransport(s.cfg.Port, "", nil)
	return s.transport.Start()
}

func (s *Server) Stop() {
	router.ResetRouter()
}

func (s *Server) setupRouterCallbacks() {
	router.OnConnect(func(client *router.NetworkClient) {
		log.Printf("[server] client connected: %s", client.Id())
	})

	router.OnDisconnect(func(client *router.NetworkClient, err error) {
		s.handleDisconnect(client, err)
	})

	router.On(func(client *router.NetworkClient, msg messages.ConnectRequest) {
		s.handleConnect(client, msg)
	})

	router.On(func(client *router.NetworkClient, _ messages.JoinRandomRequest) {
		s.handleJoinRandom(client)
	})

	router.On(func(client *router.NetworkClient, msg messages.CreateRoomRequest) {
		s.handleCreateRoom(client, msg)
	})

	router.On(func(client *router.NetworkClient, msg messages.JoinRoomRequest) {
		s.handleJoinRoom(client, msg)
	})

	router.On(func(client *router.NetworkClient, _ messages.LeaveRoomRequest) {
		s.handleLeaveRoom(client)
	})

	router.On(func(client *router.NetworkClient, msg messages.EntitySnapshot) {
		s.handleSnapshot(client, msg)
	})

	router.OnError(func(client *router.NetworkClient, err error) {
		log.Printf("[server] client error: %v", err)
	})
}

func (s *Server) handleConnect(peer Peer, msg messages.ConnectRequest) {
	s.mu.Lock()
	_, again := s.participants[peer.Id()]
	s.participants[peer.Id()] = participant{name: msg.PlayerName, version: msg.Version}
	s.mu.Unlock()

	if again {
		log.Printf("[server] repeated connect from %s", peer.Id())
	}
	log.Printf("[server] %s connected as %q (version %q)", peer.Id(), msg.PlayerName, msg.Version)
	s.send(peer, messages.ConnectedToMaster{ParticipantID: peer.Id(), ServerName: s.cfg.Name})
}

func (s *Server) handleJoinRandom(peer Peer) {
	p, ok := s.participant(peer)
	if !ok {
		s.send(peer, messages.JoinRandomFailed{Code: int16(protocol.NotConnected), Message: "connect first"})
		return
	}
	view, err := s.rooms.JoinRandom(peer, p.name, p.version)
	if err != nil {
		code, text := failure(err)
		s.send(peer, messages.JoinRandomFailed{Code: code, Message: text})
		return
	}
	s.announceJoin(peer, p, view)
}

func (s *Server) handleCreateRoom(peer Peer, msg messages.CreateRoomRequest) {
	p, ok := s.participant(peer)
	if !ok {
		s.send(peer, messages.CreateRoomFailed{Code: int16(protocol.NotConnected), Message: "connect first"})
		return
	}
	view, err := s.rooms.Create(peer, p.name, p.version, msg.Capacity)
	if err != nil {
		code, text := failure(err)
		s.send(peer, messages.CreateRoomFailed{Code: code, Message: text})
		return
	}
	log.Printf("[server] %s created %s (capacity %d, version %q)", peer.Id(), view.ID, view.Capacity, p.version)
	s.announceJoin(peer, p, view)
}

func (s *Server) handleJoinRoom(peer Peer, msg messages.JoinRoomRequest) {
	p, ok := s.participant(peer)
	if !ok {
		s.send(peer, messages.JoinRoomFailed{Code: int16(protocol.NotConnected), Message: "connect first"})
		return
	}
	view, err := s.rooms.Join(peer, p.name, p.version, msg.RoomID)
	if err != nil {
		code, text := failure(err)
		s.send(peer, messages.JoinRoomFailed{Code: code, Message: text})
		return
	}
	s.announceJoin(peer, p, view)
}

func (s *Server) handleLeaveRoom(peer Peer) {
	if view, ok := s.rooms.Leave(peer); ok {
		log.Printf("[server] %s left %s", peer.Id(), view.ID)
		s.announceLeave(peer, view)
	}
	s.send(peer, messages.LeftRoom{})
}

func (s *Server) handleSnapshot(peer Peer, msg messages.EntitySnapshot) {
	recipients, snapshot, err := s.rooms.Relay(peer, msg)
	if err != nil {
		if roomID, ok := s.rooms.RoomOf(peer.Id()); ok {
			log.Printf("[server] dropped snapshot in %s: %v", roomID, err)
		} else {
			log.Printf("[server] dropped snapshot outside any room: %v", err)
		}
		return
	}
	for _, r := range recipients {
		s.send(r, snapshot)
	}
}

func (s *Server) handleDisconnect(peer Peer, err error) {
	if err != nil {
		log.Printf("[server] client %s disconnected with error: %v", peer.Id(), err)
	} else {
		log.Printf("[server] client %s disconnected", peer.Id())
	}

	s.mu.Lock()
	delete(s.participants, peer.Id())
	s.mu.Unlock()

	if view, ok := s.rooms.Leave(peer); ok {
		s.announceLeave(peer, view)
	}
}

func (s *Server) announceJoin(peer Peer, p participant, view RoomView) {
	log.Printf("[server] %s joined %s (%d/%d)", peer.Id(), view.ID, len(view.Participants), view.Capacity)
	s.send(peer, messages.JoinedRoom{
		RoomID:       view.ID,
		Capacity:     view.Capacity,
		Participants: view.Participants,
	})
	joined := messages.ParticipantJoined{Participant: messages.ParticipantInfo{ID: peer.Id(), Name: p.name}}
	for _, other := range view.Others {
		s.send(other, joined)
	}
}

func (s *Server) announceLeave(peer Peer, view RoomView) {
	left := messages.ParticipantLeft{ParticipantID: peer.Id()}
	for _, other := range view.Others {
		s.send(other, left)
	}
}

func (s *Server) participant(peer Peer) (participant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.participants[peer.Id()]
	return p, ok
}

func (s *Server) send(peer Peer, msg any) {
	if err := peer.SendMessage(msg); err != nil {
		log.Printf("[server] send %T to %s: %v", msg, peer.Id(), err)
	}
}

func failure(err error) (int16, string) {
	var re *RoomError
	if errors.As(err, &re) {
		return int16(re.Code), re.Message
	}
	return 0, err.Error()
}

// PlayerCount returns the number of connected participants
func (s *Server) PlayerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.participants)
}

// RoomCount returns the number of open rooms
func (s *Server) RoomCount() int {
	return s.rooms.RoomCount()
}
