package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/nikfortgames/beamroom/components"
	"github.com/nikfortgames/beamroom/environment"
	"github.com/nikfortgames/beamroom/game"
)

// consolePresenter is the terminal stand-in for the connect button and the
// progress indicator.
type consolePresenter struct {
	out io.Writer
}

func (p *consolePresenter) SetConnecting(v bool) {
	if v {
		fmt.Fprintln(p.out, "connecting...")
	}
}

func (p *consolePresenter) SetControlsVisible(v bool) {
	if v {
		fmt.Fprintln(p.out, "type 'connect' to join a room")
	}
}

const helpText = `commands:
  connect          join or create a room
  fire / release   engage or disengage the beam
  hit <source>     one contact with source
  touch <source>   start touching source (damage every tick)
  untouch <source> stop touching source
  level <name>     move to another level
  leave            leave the room
  status           show session state
  quit             exit`

// dispatch runs one console command against the session. It reports whether
// the user asked to quit.
func dispatch(s *game.Session, levels *environment.Catalog, line string, out io.Writer) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	name := strings.ToLower(fields[0])

	switch name {
	case "connect":
		s.Connect()
	case "fire":
		s.ActivatePressed()
	case "release":
		s.ActivateReleased()
	case "hit", "touch", "untouch":
		if len(fields) < 2 {
			fmt.Fprintf(out, "usage: %s <source>\n", name)
			return false
		}
		id, ok := s.LocalEntityID()
		if !ok {
			fmt.Fprintln(out, "not in a room")
			return false
		}
		source := fields[1]
		switch name {
		case "hit":
			s.ContactBegan(id, source)
			s.ContactEnded(id, source)
		case "touch":
			s.ContactBegan(id, source)
		case "untouch":
			s.ContactEnded(id, source)
		}
	case "level":
		if len(fields) < 2 {
			fmt.Fprintf(out, "usage: level <name> (one of %s)\n", strings.Join(levels.Names(), ", "))
			return false
		}
		level, err := levels.Level(fields[1])
		if err != nil {
			fmt.Fprintln(out, err)
			return false
		}
		s.Transition(level)
		fmt.Fprintf(out, "now in level %s\n", level.Name)
	case "leave":
		s.Leave()
	case "status":
		printStatus(s, out)
	case "help", "?":
		fmt.Fprintln(out, helpText)
	case "quit", "exit":
		return true
	default:
		fmt.Fprintf(out, "unknown command %q, try 'help'\n", fields[0])
	}
	return false
}

func printStatus(s *game.Session, out io.Writer) {
	c := s.Controller()
	fmt.Fprintf(out, "state: %s\n", c.State())
	if id := c.RoomID(); id != "" {
		fmt.Fprintf(out, "room: %s (%d entities)\n", id, s.Registry().Count())
	}
	if entry, ok := s.Registry().Local(); ok {
		state := components.EntityState.Get(entry)
		fmt.Fprintf(out, "health: %.2f active: %t\n", state.Health, state.IsActive)
	}
	if err := c.LastError(); err != nil {
		fmt.Fprintf(out, "last error: %v\n", err)
	}
}
