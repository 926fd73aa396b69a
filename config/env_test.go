package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnvKeepsDefaults(t *testing.T) {
	cfg := Session

	require.NoError(t, ParseEnv(&cfg))
	assert.Equal(t, "1", cfg.VersionTag)
	assert.Equal(t, 4, cfg.MaxPlayersPerRoom)
}

func TestParseEnvOverrides(t *testing.T) {
	t.Setenv("BEAMROOM_VERSION_TAG", "2b")
	t.Setenv("BEAMROOM_MAX_PLAYERS_PER_ROOM", "8")
	cfg := Session

	require.NoError(t, ParseEnv(&cfg))
	assert.Equal(t, "2b", cfg.VersionTag)
	assert.Equal(t, 8, cfg.MaxPlayersPerRoom)
	assert.Equal(t, 3, cfg.MaxJoinAttempts)
}

func TestParseEnvError(t *testing.T) {
	t.Setenv("BEAMROOM_MAX_PLAYERS_PER_ROOM", "lots")
	cfg := Session

	err := ParseEnv(&cfg)
	assert.ErrorContains(t, err, "parse env:")
}

func TestSimulationStep(t *testing.T) {
	assert.Equal(t, 50*time.Millisecond, SimulationConfig{TickRate: 20}.Step())
	assert.Equal(t, 50*time.Millisecond, SimulationConfig{}.Step())
	assert.Equal(t, time.Second/60, SimulationConfig{TickRate: 60}.Step())
}
