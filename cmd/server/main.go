package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	gqlgraph "github.com/ritamzico/gqlgraph"
	"github.com/ritamzico/gqlgraph/internal/httpserver"
)

func main() {
	port := flag.Int("port", 0, "port to listen on (overrides config file)")
	configPath := flag.String("config", "", "path to a YAML server config file")
	graphFile := flag.String("graph", "", "path to a JSON graph file to preload as the default graph")
	flag.Parse()

	cfg, err := httpserver.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Port = *port
	}

	eng := gqlgraph.New()
	if *graphFile != "" {
		if err := eng.LoadFile(*graphFile, "default"); err != nil {
			fmt.Fprintf(os.Stderr, "error loading graph: %v\n", err)
			os.Exit(1)
		}
	}

	if err := httpserver.Serve(cfg, eng, logrus.NewEntry(logrus.StandardLogger())); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}
