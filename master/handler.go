package main

import (
	"encoding/json"
	"log"
	"net/http"
)

const maxRequestBody = 1 << 16

// registerRequest is what a coordination server posts on startup. Rooms only
// ever hold one client version, so the version tag is required.
type registerRequest struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"maxPlayers"`
	Rooms      int    `json:"rooms"`
	Version    string `json:"version"`
	Region     string `json:"region"`
}

func (r registerRequest) problem() string {
	switch {
	case r.Name == "" || r.Address == "":
		return "name and address required"
	case r.Version == "":
		return "version required"
	case r.Players < 0 || r.Rooms < 0 || r.MaxPlayers < 0:
		return "counts must not be negative"
	}
	return ""
}

type registerResponse struct {
	ID string `json:"id"`
}

type heartbeatRequest struct {
	ID      string `json:"id"`
	Players int    `json:"players"`
	Rooms   int    `json:"rooms"`
}

type statusResponse struct {
	Status  string `json:"status,omitempty"`
	Error   string `json:"error,omitempty"`
	Servers *int   `json:"servers,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[master] encode %T: %v", v, err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, statusResponse{Error: msg})
}

// decode reads a bounded JSON body into v, answering 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}

// listServers answers GET /servers, optionally filtered by ?version=.
func listServers(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, reg.List(r.URL.Query().Get("version")))
	}
}

func registerServer(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if !decode(w, r, &req) {
			return
		}
		if msg := req.problem(); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		id := reg.Register(ServerInfo{
			Name:       req.Name,
			Address:    req.Address,
			Players:    req.Players,
			MaxPlayers: req.MaxPlayers,
			Rooms:      req.Rooms,
			Version:    req.Version,
			Region:     req.Region,
		})
		log.Printf("[master] registered %q at %s for version %s (id=%s)", req.Name, req.Address, req.Version, id)
		writeJSON(w, http.StatusCreated, registerResponse{ID: id})
	}
}

// heartbeat refreshes a server's load. 404 tells the server to register again.
func heartbeat(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req heartbeatRequest
		if !decode(w, r, &req) {
			return
		}
		if req.ID == "" {
			writeError(w, http.StatusBadRequest, "id required")
			return
		}
		if !reg.Heartbeat(req.ID, req.Players, req.Rooms) {
			writeError(w, http.StatusNotFound, "unknown server")
			return
		}
		writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
	}
}

func health(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		n := len(reg.List(""))
		writeJSON(w, http.StatusOK, statusResponse{Status: "ok", Servers: &n})
	}
}
