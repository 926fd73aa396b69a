package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestRegistryExpiry(t *testing.T) {
	c := &clock{t: time.Unix(1000, 0)}
	reg := newRegistry(90*time.Second, c.now)

	stale := reg.Register(ServerInfo{Name: "stale", Address: "a", Version: "1"})
	fresh := reg.Register(ServerInfo{Name: "fresh", Address: "b", Version: "1"})

	c.t = c.t.Add(60 * time.Second)
	require.True(t, reg.Heartbeat(fresh, 2, 1))

	c.t = c.t.Add(30 * time.Second)
	assert.Equal(t, 1, reg.expire(c.t))

	list := reg.List("")
	require.Len(t, list, 1)
	assert.Equal(t, "fresh", list[0].Name)
	assert.Equal(t, 2, list[0].Players)
	assert.Equal(t, 1, list[0].Rooms)
	assert.False(t, reg.Heartbeat(stale, 0, 0))
}

func TestRegistryListFiltersAndOrders(t *testing.T) {
	reg := newRegistry(time.Minute, time.Now)
	reg.Register(ServerInfo{Name: "quiet", Address: "q", Players: 1, Version: "1"})
	reg.Register(ServerInfo{Name: "busy", Address: "b", Players: 7, Version: "1"})
	reg.Register(ServerInfo{Name: "old", Address: "o", Players: 9, Version: "0"})

	list := reg.List("1")
	require.Len(t, list, 2)
	assert.Equal(t, "busy", list[0].Name)
	assert.Equal(t, "quiet", list[1].Name)

	assert.Len(t, reg.List(""), 3)
	assert.Empty(t, reg.List("2"))
}

func TestRegisterAssignsUniqueIDs(t *testing.T) {
	reg := newRegistry(time.Minute, time.Now)
	a := reg.Register(ServerInfo{Name: "a", Address: "a"})
	b := reg.Register(ServerInfo{Name: "b", Address: "b"})
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
