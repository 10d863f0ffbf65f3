package config

import (
	"testing"

	"github.com/theoremus-urban-solutions/fleet-tracking/geo"
)

func TestParseAppConfig(t *testing.T) {
	data := []byte(`
server:
  port: 9090
catalog:
  path: catalog.yml
region:
  bounds:
    minLat: 6.0
    maxLat: 9.0
    minLon: 79.0
    maxLon: 82.0
sync:
  pollIntervalMS: 5000
`)
	cfg, err := ParseAppConfig(data)
	if err != nil {
		t.Fatalf("ParseAppConfig failed: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Region.Bounds.MinLat != 6.0 || cfg.Region.Bounds.MaxLon != 82.0 {
		t.Errorf("bounds not loaded: %+v", cfg.Region.Bounds)
	}
	if cfg.Sync.PollIntervalMS != 5000 {
		t.Errorf("pollIntervalMS = %d, want 5000", cfg.Sync.PollIntervalMS)
	}
}

func TestParseAppConfigDefaults(t *testing.T) {
	cfg, err := ParseAppConfig([]byte("catalog:\n  path: catalog.yml\n"))
	if err != nil {
		t.Fatalf("ParseAppConfig failed: %v", err)
	}
	if cfg.Server.Port != defaultPort {
		t.Errorf("default port = %d, want %d", cfg.Server.Port, defaultPort)
	}
	if cfg.Region.Bounds != geo.SriLanka {
		t.Errorf("default region = %+v, want Sri Lanka box", cfg.Region.Bounds)
	}
	if cfg.Sync.PollIntervalMS != defaultPollIntervalMS {
		t.Errorf("default poll interval = %d", cfg.Sync.PollIntervalMS)
	}
	if cfg.Sync.EventBuffer != defaultEventBuffer {
		t.Errorf("default event buffer = %d", cfg.Sync.EventBuffer)
	}
	if cfg.Feed.ReadIntervalMS != defaultFeedIntervalMS || cfg.Feed.TimeoutMS != defaultFeedTimeoutMS {
		t.Errorf("feed defaults not applied: %+v", cfg.Feed)
	}
}

func TestParseAppConfigRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "missing catalog path",
			yaml: "server:\n  port: 8080\n",
		},
		{
			name: "negative poll interval",
			yaml: "catalog:\n  path: c.yml\nsync:\n  pollIntervalMS: -5\n",
		},
		{
			name: "not yaml",
			yaml: ":::",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseAppConfig([]byte(tt.yaml)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadAppConfigMissingFile(t *testing.T) {
	if _, err := LoadAppConfig("no-such-config.yml"); err == nil {
		t.Fatal("expected error for missing config")
	}
}
