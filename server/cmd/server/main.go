package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/nikfortgames/beamroom/config"
	"github.com/nikfortgames/beamroom/server/core"
)

func main() {
	cfg := config.Server
	if err := config.ParseEnv(&cfg); err != nil {
		log.Fatalf("[server] %v", err)
	}
	session := config.Session
	if err := config.ParseEnv(&session); err != nil {
		log.Fatalf("[server] %v", err)
	}

	flag.UintVar(&cfg.Port, "port", cfg.Port, "Server port")
	flag.StringVar(&cfg.Name, "name", cfg.Name, "Server display name")
	flag.StringVar(&cfg.Address, "address", cfg.Address, "Address clients should dial (advertised to the master)")
	flag.StringVar(&cfg.Region, "region", cfg.Region, "Region advertised to the master")
	flag.IntVar(&cfg.MaxPlayers, "maxplayers", cfg.MaxPlayers, "Upper bound for any room's capacity")
	flag.StringVar(&cfg.MasterURL, "master", cfg.MasterURL, "Master server URL (empty = do not register)")
	version := flag.String("version", session.VersionTag, "Client version tag advertised to the master")
	flag.Parse()

	server := core.NewServer(cfg)

	var reg *core.Registration
	if cfg.MasterURL != "" && cfg.Address != "" {
		reg = core.NewRegistration(cfg, *version, server)
		reg.Start()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("[server] shutting down")
		if reg != nil {
			reg.Stop()
		}
		server.Stop()
		os.Exit(0)
	}()

	log.Printf("[server] starting %q on port %d (max room size %d)", cfg.Name, cfg.Port, cfg.MaxPlayers)
	if err := server.Start(); err != nil {
		log.Fatalf("[server] %v", err)
	}
}
