package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/df07/go-sphere-pathtracer/pkg/config"
	"github.com/df07/go-sphere-pathtracer/web/server"
)

func main() {
	port := flag.Int("port", 8080, "Port to serve on")
	flag.Parse()

	cfg := config.Load()
	webServer := server.NewServer(*port, filepath.Join(cfg.RootDir, "scenes"))

	log.Printf("Sphere Path Tracer Web Server")
	log.Printf("Visit http://localhost:%d to start rendering", *port)

	if err := webServer.Start(); err != nil {
		log.Printf("Error starting server: %v", err)
		os.Exit(1)
	}
}
