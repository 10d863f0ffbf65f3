package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/theoremus-urban-solutions/fleet-tracking/geo"
)

const (
	defaultPort           = 16182
	defaultPollIntervalMS = 20000
	defaultEventBuffer    = 64
	defaultFeedIntervalMS = 15000
	defaultFeedTimeoutMS  = 10000
)

// LoadAppConfig loads and validates the application configuration. When path
// is empty a short list of conventional locations is tried.
func LoadAppConfig(path string) (AppConfig, error) {
	paths := []string{path}
	if path == "" {
		paths = []string{"config.yml", "./deploy/config.yml"}
	}
	var data []byte
	var err error
	for _, p := range paths {
		data, err = os.ReadFile(p)
		if err == nil {
			break
		}
	}
	if err != nil {
		return AppConfig{}, err
	}
	return ParseAppConfig(data)
}

// ParseAppConfig builds an AppConfig from raw YAML bytes, validates it and
// applies defaults.
func ParseAppConfig(data []byte) (AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return AppConfig{}, err
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaultPort
	}
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return AppConfig{}, err
	}
	applyDefaults(&cfg)
	return cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Region.Bounds.IsZero() {
		cfg.Region.Bounds = geo.SriLanka
	}
	if cfg.Sync.PollIntervalMS == 0 {
		cfg.Sync.PollIntervalMS = defaultPollIntervalMS
	}
	if cfg.Sync.EventBuffer == 0 {
		cfg.Sync.EventBuffer = defaultEventBuffer
	}
	if cfg.Feed.ReadIntervalMS == 0 {
		cfg.Feed.ReadIntervalMS = defaultFeedIntervalMS
	}
	if cfg.Feed.TimeoutMS == 0 {
		cfg.Feed.TimeoutMS = defaultFeedTimeoutMS
	}
}
