package network

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/coder/websocket"
	"github.com/leap-fish/necs/router"
	"github.com/leap-fish/necs/transports"
	"github.com/nikfortgames/beamroom/components"
	"github.com/nikfortgames/beamroom/shared/messages"
)

var ErrNotConnected = errors.New("not connected")

// Events receives everything the coordinator tells this client. Callbacks run
// on necs goroutines; implementations hand them to the game loop.
type Events interface {
	OnConnectedToMaster(participantID string)
	OnJoinRandomFailed(code int16, message string)
	OnJoinRoomFailed(code int16, message string)
	OnCreateRoomFailed(code int16, message string)
	OnJoinedRoom(msg messages.JoinedRoom)
	OnParticipantJoined(p messages.ParticipantInfo)
	OnParticipantLeft(participantID string)
	OnSnapshot(msg messages.EntitySnapshot)
	OnLeftRoom()
	OnDisconnected(cause error)
}

// Client manages the WebSocket connection to the coordination server.
// All shared fields are protected by mu (router callbacks run on necs goroutines).
type Client struct {
	mu sync.RWMutex

	address    string
	playerName string
	events     Events

	conn       *websocket.Conn
	gen        uint64 // bumped by every Connect; dials from older calls are discarded
	active     bool   // a connection attempt is live and its end not yet reported
	closing    bool   // the end was requested by Disconnect
	serverName string
}

func NewClient(address, playerName string, events Events) *Client {
	return &Client{
		address:    address,
		playerName: playerName,
		events:     events,
	}
}

// Connect dials the server in a background goroutine. The connect handshake
// is sent as soon as the socket opens; OnConnectedToMaster or OnDisconnected
// reports the outcome.
func (c *Client) Connect(version string) error {
	c.mu.Lock()
	if c.active {
		c.mu.Unlock()
		return fmt.Errorf("connect: already connected to %s", c.address)
	}
	c.gen++
	gen := c.gen
	c.active = true
	c.closing = false
	c.mu.Unlock()

	router.ResetRouter()

	router.OnConnect(func(sender *router.NetworkClient) {
		if !c.owns(sender) {
			return
		}
		log.Printf("[client] connected to %s", c.address)
		if err := c.send(messages.ConnectRequest{Version: version, PlayerName: c.playerName}); err != nil {
			log.Printf("[client] failed to send connect request: %v", err)
			c.drop(err)
		}
	})

	router.On(func(_ *router.NetworkClient, msg messages.ConnectedToMaster) {
		log.Printf("[client] connected as %s on %s", msg.ParticipantID, msg.ServerName)
		c.mu.Lock()
		c.serverName = msg.ServerName
		c.mu.Unlock()
		c.events.OnConnectedToMaster(msg.ParticipantID)
	})

	router.On(func(_ *router.NetworkClient, msg messages.JoinRandomFailed) {
		c.events.OnJoinRandomFailed(msg.Code, msg.Message)
	})

	router.On(func(_ *router.NetworkClient, msg messages.JoinRoomFailed) {
		c.events.OnJoinRoomFailed(msg.Code, msg.Message)
	})

	router.On(func(_ *router.NetworkClient, msg messages.CreateRoomFailed) {
		c.events.OnCreateRoomFailed(msg.Code, msg.Message)
	})

	router.On(func(_ *router.NetworkClient, msg messages.JoinedRoom) {
		log.Printf("[client] joined room %s (%d/%d)", msg.RoomID, len(msg.Participants), msg.Capacity)
		c.events.OnJoinedRoom(msg)
	})

	router.On(func(_ *router.NetworkClient, msg messages.ParticipantJoined) {
		c.events.OnParticipantJoined(msg.Participant)
	})

	router.On(func(_ *router.NetworkClient, msg messages.ParticipantLeft) {
		c.events.OnParticipantLeft(msg.ParticipantID)
	})

	router.On(func(_ *router.NetworkClient, msg messages.EntitySnapshot) {
		c.events.OnSnapshot(msg)
	})

	router.On(func(_ *router.NetworkClient, _ messages.LeftRoom) {
		c.events.OnLeftRoom()
	})

	router.OnDisconnect(func(sender *router.NetworkClient, err error) {
		if c.owns(sender) {
			c.drop(err)
		}
	})

	router.OnError(func(_ *router.NetworkClient, err error) {
		log.Printf("[client] error: %v", err)
	})

	go func() {
		transport := transports.NewWsClientTransport("ws://" + c.address)
		err := transport.Start(func(conn *websocket.Conn) {
			if !c.adopt(gen, conn) {
				log.Printf("[client] closing connection to %s opened after disconnect", c.address)
				_ = conn.CloseNow()
			}
		})
		if err != nil && c.current(gen) {
			c.drop(fmt.Errorf("connection failed: %w", err))
		}
	}()
	return nil
}

func (c *Client) JoinRandomRoom() error {
	return c.send(messages.JoinRandomRequest{})
}

func (c *Client) JoinRoom(roomID string) error {
	return c.send(messages.JoinRoomRequest{RoomID: roomID})
}

func (c *Client) CreateRoom(capacity int) error {
	return c.send(messages.CreateRoomRequest{Capacity: capacity})
}

func (c *Client) LeaveRoom() error {
	return c.send(messages.LeaveRoomRequest{})
}

// Disconnect closes the connection. OnDisconnected follows with a nil cause.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	conn := c.conn
	c.closing = true
	c.mu.Unlock()

	if conn != nil {
		_ = conn.CloseNow()
	}
	c.drop(nil)
	return nil
}

// Send broadcasts the state record of an owned entity to the room.
func (c *Client) Send(id components.EntityID, record []byte) error {
	return c.send(messages.EntitySnapshot{EntityID: string(id), Record: record})
}

func (c *Client) ServerName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.serverName
}

// adopt stores conn if the attempt that dialed it is still the live one.
func (c *Client) adopt(gen uint64, conn *websocket.Conn) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen || !c.active || c.closing {
		return false
	}
	c.conn = conn
	return true
}

func (c *Client) current(gen uint64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return gen == c.gen
}

// owns reports whether a router event belongs to the adopted connection.
func (c *Client) owns(sender *router.NetworkClient) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if sender == nil || sender.Conn == nil {
		return c.conn != nil
	}
	return sender.Conn == c.conn
}

func (c *Client) send(msg any) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return ErrNotConnected
	}

	payload, err := router.Serialize(msg)
	if err != nil {
		return fmt.Errorf("serialize: %w", err)
	}

	return conn.Write(context.Background(), websocket.MessageBinary, payload)
}

// drop reports the end of the current connection exactly once, however many
// of the close paths fire.
func (c *Client) drop(cause error) {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	c.active = false
	c.conn = nil
	if c.closing {
		cause = nil
	}
	c.mu.Unlock()

	if cause != nil {
		log.Printf("[client] disconnected: %v", cause)
	} else {
		log.Println("[client] disconnected")
	}
	c.events.OnDisconnected(cause)
}
