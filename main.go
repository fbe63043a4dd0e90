package main

import (
	"flag"
	"log"

	"hagetaka/internal/server"
)

func main() {
	port := flag.String("port", "", "server port (overrides PORT)")
	dbPath := flag.String("db", "", "sqlite path for the room store (overrides DB_PATH; empty for in-memory)")
	flag.Parse()

	cfg := server.LoadConfig()
	if *port != "" {
		cfg.Port = *port
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	srv, err := server.New(cfg)
	if err != nil {
		log.Fatalf("server setup error: %v", err)
	}
	defer srv.Close()

	if err := srv.Start(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
