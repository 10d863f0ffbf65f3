package config

import "github.com/theoremus-urban-solutions/fleet-tracking/geo"

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port int `yaml:"port" validate:"gt=0"`
}

// CatalogConfig points at the asset roster file
type CatalogConfig struct {
	Path string `yaml:"path" validate:"required"`
}

// RegionConfig contains the operating-region bounding box for write
// validation; when omitted the Sri Lanka default region applies
type RegionConfig struct {
	Bounds geo.Bounds `yaml:"bounds"`
}

// SyncConfig contains viewer-session reconciliation settings
type SyncConfig struct {
	PollIntervalMS int `yaml:"pollIntervalMS" validate:"gte=0"`
	EventBuffer    int `yaml:"eventBuffer" validate:"gte=0"`
}

// FeedConfig contains the optional GTFS-RT vehicle position ingest
type FeedConfig struct {
	VehiclePositionsURL string `yaml:"vehiclePositionsURL" validate:"omitempty"`
	ReadIntervalMS      int    `yaml:"readIntervalMS" validate:"gte=0"`
	TimeoutMS           int    `yaml:"timeoutMS" validate:"gte=0"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Server  ServerConfig  `yaml:"server" validate:"required"`
	Catalog CatalogConfig `yaml:"catalog" validate:"required"`
	Region  RegionConfig  `yaml:"region"`
	Sync    SyncConfig    `yaml:"sync"`
	Feed    FeedConfig    `yaml:"feed"`
}
