package config

import "time"

// SessionConfig contains matchmaking configuration shared by client and server.
type SessionConfig struct {
	// VersionTag partitions incompatible client populations. Rooms with
	// different tags never merge.
	VersionTag string `env:"BEAMROOM_VERSION_TAG"`
	// MaxPlayersPerRoom is the capacity requested when a client creates a room.
	MaxPlayersPerRoom int `env:"BEAMROOM_MAX_PLAYERS_PER_ROOM"`
	// MaxJoinAttempts bounds join-or-create retries after a create/join failure.
	MaxJoinAttempts int `env:"BEAMROOM_MAX_JOIN_ATTEMPTS"`
}

// VitalityConfig contains health rules for the locally owned player.
type VitalityConfig struct {
	MaxHealth     float32  // Starting health (normalized)
	ContactDamage float32  // Fixed decrement on a contact-begin event
	SustainedRate float32  // Decrement per second while contact persists
	DamageTags    []string // Contact sources that cause damage (substring match)
}

// SimulationConfig contains the client scheduler settings.
type SimulationConfig struct {
	TickRate int // Ticks per second; also the snapshot send rate
}

// Step returns the fixed simulation step.
func (s SimulationConfig) Step() time.Duration {
	if s.TickRate <= 0 {
		return time.Second / 20
	}
	return time.Second / time.Duration(s.TickRate)
}

// EnvironmentConfig contains the post-transition safety probe settings.
type EnvironmentConfig struct {
	Level      string  // Embedded level stem name loaded by the client
	ProbeDepth float64 // How far below the entity the ground probe reaches
	SafeX      float64 // Canonical safe coordinate when the level has no spawn point
	SafeY      float64
}

// NetworkConfig contains transport endpoints.
type NetworkConfig struct {
	ServerAddress   string `env:"BEAMROOM_SERVER_ADDRESS"`
	MasterServerURL string `env:"BEAMROOM_MASTER_URL"`
	DialTimeout     time.Duration
}

// ServerConfig contains coordination server settings.
type ServerConfig struct {
	Port       uint   `env:"BEAMROOM_PORT"`
	Name       string `env:"BEAMROOM_SERVER_NAME"`
	Address    string `env:"BEAMROOM_PUBLIC_ADDRESS"`
	Region     string `env:"BEAMROOM_REGION"`
	MaxPlayers int    `env:"BEAMROOM_SERVER_MAX_PLAYERS"` // Upper bound for any room's capacity
	MasterURL  string `env:"BEAMROOM_MASTER_URL"`
}

// MasterConfig contains master registry settings.
type MasterConfig struct {
	Port int           `env:"BEAMROOM_MASTER_PORT"`
	TTL  time.Duration `env:"BEAMROOM_MASTER_TTL"`
}

// Global configuration instances
var Session SessionConfig
var Vitality VitalityConfig
var Simulation SimulationConfig
var Environment EnvironmentConfig
var Network NetworkConfig
var Server ServerConfig
var Master MasterConfig

func init() {
	Session = SessionConfig{
		VersionTag:        "1",
		MaxPlayersPerRoom: 4,
		MaxJoinAttempts:   3,
	}

	Vitality = VitalityConfig{
		MaxHealth:     1.0,
		ContactDamage: 0.1,
		SustainedRate: 0.1,
		DamageTags:    []string{"beam"},
	}

	Simulation = SimulationConfig{
		TickRate: 20,
	}

	Environment = EnvironmentConfig{
		Level:      "arena",
		ProbeDepth: 5 * 16, // five tiles
		SafeX:      16,
		SafeY:      10 * 16,
	}

	Network = NetworkConfig{
		ServerAddress:   "localhost:7373",
		MasterServerURL: "http://localhost:8080",
		DialTimeout:     5 * time.Second,
	}

	Server = ServerConfig{
		Port:       7373,
		Name:       "Beamroom Server",
		Region:     "local",
		MaxPlayers: 16,
	}

	Master = MasterConfig{
		Port: 8080,
		TTL:  90 * time.Second,
	}
}
