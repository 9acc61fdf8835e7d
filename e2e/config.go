package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// SERVER_ADDR points at a running chat server, e.g. http://localhost:8080
	ServerAddr string `envconfig:"SERVER_ADDR"`
	// E2E_DEBUG_JSON allows dumping full request/response bodies as JSON
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
