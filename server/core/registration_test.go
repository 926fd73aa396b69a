package core

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/nikfortgames/beamroom/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticLoad struct{ players, rooms int }

func (l staticLoad) PlayerCount() int { return l.players }
func (l staticLoad) RoomCount() int   { return l.rooms }

type masterStub struct {
	mu         sync.Mutex
	registered []regRequest
	beats      []heartbeatRequest
	known      bool
}

func (m *masterStub) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /servers/register", func(w http.ResponseWriter, r *http.Request) {
		var req regRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		m.mu.Lock()
		m.registered = append(m.registered, req)
		m.known = true
		m.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(regResponse{ID: "srv-1"})
	})
	mux.HandleFunc("POST /servers/heartbeat", func(w http.ResponseWriter, r *http.Request) {
		var req heartbeatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		m.mu.Lock()
		defer m.mu.Unlock()
		if !m.known {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		m.beats = append(m.beats, req)
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func TestRegisterAndHeartbeat(t *testing.T) {
	stub := &masterStub{}
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	cfg := config.ServerConfig{Name: "eu-1", Address: "eu-1:7373", Region: "eu", MaxPlayers: 16, MasterURL: srv.URL}
	reg := NewRegistration(cfg, "1", staticLoad{players: 3, rooms: 1})

	require.NoError(t, reg.register())
	require.Len(t, stub.registered, 1)
	assert.Equal(t, regRequest{Name: "eu-1", Address: "eu-1:7373", Players: 3, MaxPlayers: 16, Rooms: 1, Version: "1", Region: "eu"}, stub.registered[0])

	require.NoError(t, reg.sendHeartbeat())
	require.Len(t, stub.beats, 1)
	assert.Equal(t, heartbeatRequest{ID: "srv-1", Players: 3, Rooms: 1}, stub.beats[0])
}

func TestHeartbeatReRegistersWhenForgotten(t *testing.T) {
	stub := &masterStub{}
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	reg := NewRegistration(config.ServerConfig{Name: "eu-1", Address: "a", MasterURL: srv.URL}, "1", staticLoad{})
	reg.serverID = "stale"

	require.NoError(t, reg.sendHeartbeat())
	assert.Len(t, stub.registered, 1)
	assert.Equal(t, "srv-1", reg.serverID)
}
