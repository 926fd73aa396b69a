package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/nikfortgames/beamroom/assets"
	"github.com/nikfortgames/beamroom/config"
	"github.com/nikfortgames/beamroom/environment"
	"github.com/nikfortgames/beamroom/game"
	"github.com/nikfortgames/beamroom/network"
	"github.com/nikfortgames/beamroom/session"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const appName = "beamroom"

type playOptions struct {
	Server      string
	Master      string
	Name        string
	VersionTag  string
	Level       string
	MaxPlayers  int
	TickRate    int
	AutoConnect bool
}

type playFunc func(ctx context.Context, opts playOptions, in io.Reader, out io.Writer) error

func newPlayCmd() *cobra.Command {
	return newPlayCmdWith(runPlay)
}

// newPlayCmdWith builds the play command around run. Every flag can also be
// set through a BEAMROOM_ environment variable; flags win.
func newPlayCmdWith(run playFunc) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Connect to a coordination server and play from the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), loadPlayOptions(v), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.String("server", "", "Coordination server address (skips master discovery)")
	flags.String("master", config.Network.MasterServerURL, "Master server URL used to find a server")
	flags.String("name", "", "Player name shown to the room")
	flags.String("version-tag", config.Session.VersionTag, "Only rooms with this tag are joined")
	flags.String("level", config.Environment.Level, "Embedded level to play in")
	flags.Int("max-players", config.Session.MaxPlayersPerRoom, "Capacity requested when creating a room")
	flags.Int("tick-rate", config.Simulation.TickRate, "Simulation and snapshot rate per second")
	flags.Bool("auto-connect", false, "Connect immediately instead of waiting for 'connect'")

	v.SetEnvPrefix("BEAMROOM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindPFlags(flags)

	return cmd
}

func loadPlayOptions(v *viper.Viper) playOptions {
	return playOptions{
		Server:      v.GetString("server"),
		Master:      v.GetString("master"),
		Name:        v.GetString("name"),
		VersionTag:  v.GetString("version-tag"),
		Level:       v.GetString("level"),
		MaxPlayers:  v.GetInt("max-players"),
		TickRate:    v.GetInt("tick-rate"),
		AutoConnect: v.GetBool("auto-connect"),
	}
}

// withPrefs fills what the user left empty from the last run.
func withPrefs(opts playOptions, saved *config.Prefs) playOptions {
	if saved != nil {
		if opts.Name == "" {
			opts.Name = saved.PlayerName
		}
		if opts.Server == "" && saved.VersionTag == opts.VersionTag {
			opts.Server = saved.ServerAddress
		}
	}
	if opts.Name == "" {
		opts.Name = "Player"
	}
	return opts
}

func runPlay(ctx context.Context, opts playOptions, in io.Reader, out io.Writer) error {
	prefs := config.OpenPrefs(appName)
	saved, _ := prefs.Load()
	opts = withPrefs(opts, saved)

	sessionCfg := config.Session
	sessionCfg.VersionTag = opts.VersionTag
	sessionCfg.MaxPlayersPerRoom = opts.MaxPlayers
	sim := config.Simulation
	sim.TickRate = opts.TickRate

	levels, err := environment.LoadCatalog(assets.Levels(), config.Environment)
	if err != nil {
		return err
	}
	level, err := levels.Level(opts.Level)
	if err != nil {
		return err
	}

	address := opts.Server
	if address == "" {
		httpClient := &http.Client{Timeout: config.Network.DialTimeout}
		address = network.Resolve(ctx, httpClient, opts.Master, opts.VersionTag, config.Network.ServerAddress)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loop := game.NewLoop(sim.Step(), 256)
	events := game.NewQueued(ctx, loop)
	client := network.NewClient(address, opts.Name, events)
	s := game.NewSession(client, &consolePresenter{out: out}, level, sessionCfg, config.Vitality)
	events.Bind(s)

	s.Controller().OnStateChange(func(from, to session.State) {
		fmt.Fprintf(out, "%s -> %s\n", from, to)
	})

	if err := prefs.Save(&config.Prefs{PlayerName: opts.Name, ServerAddress: address, VersionTag: opts.VersionTag}); err != nil {
		fmt.Fprintf(out, "could not save preferences: %v\n", err)
	}

	fmt.Fprintf(out, "%s on %s, level %s (version %s)\n", opts.Name, address, level.Name, opts.VersionTag)
	go readCommands(ctx, loop, s, levels, in, out, cancel)
	if opts.AutoConnect {
		loop.Post(ctx, s.Connect)
	} else {
		fmt.Fprintln(out, helpText)
	}

	loop.Run(ctx, s.Tick)
	_ = client.Disconnect()
	return nil
}

// readCommands feeds console lines to the loop until input ends or the user
// quits.
func readCommands(ctx context.Context, loop *game.Loop, s *game.Session, levels *environment.Catalog, in io.Reader, out io.Writer, quit context.CancelFunc) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := scanner.Text()
		posted := loop.Post(ctx, func() {
			if dispatch(s, levels, line, out) {
				quit()
			}
		})
		if !posted {
			return
		}
	}
	loop.Post(ctx, quit)
}
