// Package environment answers ground queries against a level's collision
// space. It is the probe the entity registry uses after a transition.
package environment

import (
	"fmt"
	"io/fs"
	"log"
	"strings"

	"github.com/nikfortgames/beamroom/components"
	"github.com/nikfortgames/beamroom/config"
	"github.com/nikfortgames/beamroom/shared/leveldata"
	"github.com/nikfortgames/beamroom/tags"
	"github.com/solarlune/resolv"
)

const cellSize = 16

// Level holds a resolv space built from a level's solid tiles.
type Level struct {
	Name        string
	Space       *resolv.Space
	SpawnPoints []leveldata.SpawnPoint
	MapWidth    int
	MapHeight   int

	probeDepth float64
	fallback   components.PositionData
}

// NewLevel builds a resolv.Space from parsed collision data.
func NewLevel(data *leveldata.CollisionData, cfg config.EnvironmentConfig) *Level {
	space := resolv.NewSpace(data.MapWidth, data.MapHeight, cellSize, cellSize)

	for _, r := range data.SolidRects {
		space.Add(resolv.NewObject(r.X, r.Y, r.W, r.H, tags.ResolvSolid))
	}

	log.Printf("[environment] loaded level %q: %d solid tiles, %d spawn points, %dx%d map",
		data.Name, len(data.SolidRects), len(data.SpawnPoints), data.MapWidth, data.MapHeight)

	return &Level{
		Name:        data.Name,
		Space:       space,
		SpawnPoints: data.SpawnPoints,
		MapWidth:    data.MapWidth,
		MapHeight:   data.MapHeight,
		probeDepth:  cfg.ProbeDepth,
		fallback:    components.PositionData{X: cfg.SafeX, Y: cfg.SafeY},
	}
}

// Catalog is every level found in a file system, keyed by stem name.
type Catalog struct {
	levels map[string]*Level
	names  []string
}

// LoadCatalog builds a Level for each levels/*.tmx in fsys.
func LoadCatalog(fsys fs.FS, cfg config.EnvironmentConfig) (*Catalog, error) {
	all, names, err := leveldata.LoadAllLevels(fsys, "levels")
	if err != nil {
		return nil, err
	}
	levels := make(map[string]*Level, len(all))
	for name, data := range all {
		levels[name] = NewLevel(data, cfg)
	}
	return &Catalog{levels: levels, names: names}, nil
}

// Level returns the named level. Unknown names list what is available.
func (c *Catalog) Level(name string) (*Level, error) {
	if lvl, ok := c.levels[name]; ok {
		return lvl, nil
	}
	return nil, fmt.Errorf("unknown level %q (have %s)", name, strings.Join(c.names, ", "))
}

// Names returns the level names in sorted order.
func (c *Catalog) Names() []string {
	return c.names
}

// ProbeGroundBelow reports whether a solid tile lies in the column directly
// below pos, within the probe depth. Positions outside the map have no ground.
func (l *Level) ProbeGroundBelow(pos components.PositionData) bool {
	if pos.X < 0 || pos.Y < 0 || pos.X >= float64(l.MapWidth) || pos.Y >= float64(l.MapHeight) {
		return false
	}

	depth := l.probeDepth
	if maxDepth := float64(l.MapHeight) - pos.Y; depth > maxDepth {
		depth = maxDepth
	}
	if depth <= 0 {
		return false
	}

	probe := resolv.NewObject(pos.X, pos.Y, 1, depth, tags.ResolvProbe)
	l.Space.Add(probe)
	defer l.Space.Remove(probe)

	check := probe.Check(0, 0, tags.ResolvSolid)
	if check == nil {
		return false
	}
	// Cells are coarser than the probe; confirm the actual overlap.
	for _, o := range check.ObjectsByTags(tags.ResolvSolid) {
		if pos.X >= o.X && pos.X < o.X+o.W && o.Y+o.H > pos.Y && o.Y <= pos.Y+depth {
			return true
		}
	}
	return false
}

// SafeSpawn returns the first spawn point, or the configured coordinate for
// levels without one.
func (l *Level) SafeSpawn() components.PositionData {
	if len(l.SpawnPoints) > 0 {
		sp := l.SpawnPoints[0]
		return components.PositionData{X: sp.X, Y: sp.Y}
	}
	return l.fallback
}

// SpawnFor picks a spawn point for the n-th participant in a room.
func (l *Level) SpawnFor(n int) components.PositionData {
	if len(l.SpawnPoints) == 0 {
		return l.fallback
	}
	sp := l.SpawnPoints[n%len(l.SpawnPoints)]
	return components.PositionData{X: sp.X, Y: sp.Y}
}
