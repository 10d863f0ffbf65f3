package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	lib "github.com/theoremus-urban-solutions/fleet-tracking"
	"github.com/theoremus-urban-solutions/fleet-tracking/catalog"
	"github.com/theoremus-urban-solutions/fleet-tracking/config"
	"github.com/theoremus-urban-solutions/fleet-tracking/feed"
	"github.com/theoremus-urban-solutions/fleet-tracking/tracking"
)

func main() {
	configPath := flag.String("config", "", "path to config.yml (defaults to conventional locations)")
	catalogPath := flag.String("catalog", "", "asset roster path (overrides config)")
	feedURL := flag.String("vehiclePositions", "", "GTFS-RT VehiclePositions URL or file (overrides config)")
	flag.Parse()

	lib.InitLogging()

	// .env is optional; environment wins over flags only for the config path
	_ = godotenv.Load()
	if *configPath == "" {
		*configPath = os.Getenv("FLEET_TRACKING_CONFIG")
	}

	cfg, err := config.LoadAppConfig(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *catalogPath != "" {
		cfg.Catalog.Path = *catalogPath
	}
	if *feedURL != "" {
		cfg.Feed.VehiclePositionsURL = *feedURL
	}

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		log.Fatalf("load catalog: %v", err)
	}
	log.Printf("catalog loaded: %d assets", cat.Len())

	tracker := tracking.NewTracker(cat, cfg.Region.Bounds, cfg.Sync.EventBuffer,
		time.Duration(cfg.Sync.PollIntervalMS)*time.Millisecond)

	var stopIngest func()
	if cfg.Feed.VehiclePositionsURL != "" {
		src := feed.NewGTFSRTSource(cfg.Feed.VehiclePositionsURL,
			time.Duration(cfg.Feed.TimeoutMS)*time.Millisecond)
		ing := feed.NewIngestor(src, tracker,
			time.Duration(cfg.Feed.ReadIntervalMS)*time.Millisecond)
		ctx, cancel := context.WithCancel(context.Background())
		stopIngest = cancel
		go ing.Run(ctx)
		log.Printf("feed ingest started: %s", cfg.Feed.VehiclePositionsURL)
	}

	srv := lib.NewServer(cfg, tracker)
	srv.Start()
	if stopIngest != nil {
		srv.HandleGracefulShutdown(stopIngest)
	} else {
		srv.HandleGracefulShutdown()
	}
}
