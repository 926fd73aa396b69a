package tags

import "github.com/yohamta/donburi"

var (
	// Player marks every replicated player entity, owned or shadow.
	Player = donburi.NewTag().SetName("Player")
	// Persistent marks entities that survive an environment transition.
	Persistent = donburi.NewTag().SetName("Persistent")
)

// Resolv tags for the environment collision space
const (
	ResolvSolid = "solid"
	ResolvProbe = "probe"
)
