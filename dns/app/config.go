package app

import (
	coreconfig "github.com/m3rciful/royaldns/core/config"
	coredatabase "github.com/m3rciful/royaldns/core/database"
	"github.com/m3rciful/royaldns/dns/routing"
)

// Config extends the core configuration with the DNS bot sections.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database"`
	Routing  routing.Config      `yaml:"routing"`
}

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Config
}

// LoadConfig reads the YAML file at path, overlays the environment and validates the result.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return nil, err
	}
	cfg.Database.Normalize()
	if err := cfg.Routing.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
