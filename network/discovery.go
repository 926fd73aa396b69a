package network

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"sort"
)

var ErrNoServers = errors.New("no coordination server available")

// ServerEntry is one coordination server as listed by the master.
type ServerEntry struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Address    string `json:"address"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"maxPlayers"`
	Rooms      int    `json:"rooms"`
	Version    string `json:"version"`
	Region     string `json:"region"`
}

func (e ServerEntry) full() bool {
	return e.MaxPlayers > 0 && e.Players >= e.MaxPlayers
}

// FetchServers asks the master for servers running version. An empty version
// lists everything.
func FetchServers(ctx context.Context, client *http.Client, masterURL, version string) ([]ServerEntry, error) {
	endpoint := masterURL + "/servers"
	if version != "" {
		endpoint += "?version=" + url.QueryEscape(version)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch servers: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch servers: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch servers: master returned status %d", resp.StatusCode)
	}

	var servers []ServerEntry
	if err := json.NewDecoder(resp.Body).Decode(&servers); err != nil {
		return nil, fmt.Errorf("fetch servers: decode: %w", err)
	}
	return servers, nil
}

// PickServer chooses where to connect: the busiest server that still has room,
// so players end up together rather than spread thin.
func PickServer(servers []ServerEntry, version string) (ServerEntry, error) {
	candidates := make([]ServerEntry, 0, len(servers))
	for _, s := range servers {
		if version != "" && s.Version != version {
			continue
		}
		if s.full() || s.Address == "" {
			continue
		}
		candidates = append(candidates, s)
	}
	if len(candidates) == 0 {
		return ServerEntry{}, ErrNoServers
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Players != candidates[j].Players {
			return candidates[i].Players > candidates[j].Players
		}
		return candidates[i].Name < candidates[j].Name
	})
	return candidates[0], nil
}

// Resolve returns the address to dial: the best server known to the master,
// or fallback when the master is unreachable or lists nothing usable.
func Resolve(ctx context.Context, client *http.Client, masterURL, version, fallback string) string {
	if masterURL == "" {
		return fallback
	}
	servers, err := FetchServers(ctx, client, masterURL, version)
	if err != nil {
		log.Printf("[discovery] %v, using %s", err, fallback)
		return fallback
	}
	best, err := PickServer(servers, version)
	if err != nil {
		log.Printf("[discovery] %v, using %s", err, fallback)
		return fallback
	}
	log.Printf("[discovery] picked %q at %s (%d/%d players)", best.Name, best.Address, best.Players, best.MaxPlayers)
	return best.Address
}
