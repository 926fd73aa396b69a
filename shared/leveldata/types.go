// Package leveldata provides TMX level parsing shared between client and server.
// It has no dependencies on donburi or resolv, pure data only.
package leveldata

// Layer and object group names the loader looks for in a TMX file.
const (
	SolidLayer  = "solid"
	SpawnGroup  = "spawns"
	spawnIndexP = "spawnIndex"
)

// CollisionData holds the ground geometry and spawn points of one level.
type CollisionData struct {
	Name        string
	SolidRects  []SolidRect
	SpawnPoints []SpawnPoint
	MapWidth    int
	MapHeight   int
}

// SolidRect represents a solid collision tile.
type SolidRect struct {
	X, Y, W, H float64
}

// SpawnPoint represents a player spawn location.
type SpawnPoint struct {
	X, Y  float64
	Index int
}
