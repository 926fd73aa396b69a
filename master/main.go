package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"

	"github.com/nikfortgames/beamroom/config"
)

func main() {
	cfg := config.Master
	if err := config.ParseEnv(&cfg); err != nil {
		log.Fatalf("[master] %v", err)
	}
	flag.IntVar(&cfg.Port, "port", cfg.Port, "HTTP listen port")
	flag.DurationVar(&cfg.TTL, "ttl", cfg.TTL, "Server TTL before expiry")
	flag.Parse()

	reg := NewRegistry(cfg.TTL)
	defer reg.Stop()

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("[master] starting on %s (TTL=%s)", addr, cfg.TTL)
	if err := http.ListenAndServe(addr, newMux(reg)); err != nil {
		log.Fatalf("[master] fatal: %v", err)
	}
}

func newMux(reg *Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /servers", listServers(reg))
	mux.HandleFunc("POST /servers/register", registerServer(reg))
	mux.HandleFunc("POST /servers/heartbeat", heartbeat(reg))
	mux.HandleFunc("GET /health", health(reg))
	return mux
}
