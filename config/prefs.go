package config

import (
	"encoding/json"
	"log"

	"github.com/quasilyte/gdata"
)

// Prefs is what the client remembers between runs.
type Prefs struct {
	PlayerName    string `json:"playerName"`
	ServerAddress string `json:"serverAddress"`
	VersionTag    string `json:"versionTag"`
}

const prefsKey = "prefs"

// PrefsStore persists Prefs under the user's data directory.
type PrefsStore struct {
	manager *gdata.Manager
}

// OpenPrefs opens the preference store for appName. A store that failed to
// open is still usable; it just loads nothing and saves nowhere.
func OpenPrefs(appName string) *PrefsStore {
	m, err := gdata.Open(gdata.Config{
		AppName: appName,
	})
	if err != nil {
		log.Printf("[config] could not initialize persistence: %v", err)
		return &PrefsStore{}
	}
	return &PrefsStore{manager: m}
}

// Load returns the saved preferences, or nil when nothing was saved yet.
func (s *PrefsStore) Load() (*Prefs, error) {
	if s == nil || s.manager == nil {
		return nil, nil
	}

	data, err := s.manager.LoadItem(prefsKey)
	if err != nil {
		log.Printf("[config] could not load prefs: %v", err)
		return nil, nil
	}
	if data == nil {
		return nil, nil
	}

	var p Prefs
	if err := json.Unmarshal(data, &p); err != nil {
		log.Printf("[config] could not parse saved prefs: %v", err)
		return nil, err
	}
	return &p, nil
}

// Save writes p to disk.
func (s *PrefsStore) Save(p *Prefs) error {
	if s == nil || s.manager == nil {
		return nil
	}

	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	if err := s.manager.SaveItem(prefsKey, data); err != nil {
		log.Printf("[config] could not save prefs: %v", err)
		return err
	}
	return nil
}
