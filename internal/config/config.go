// Package config loads the server's runtime configuration from the
// environment, with an optional YAML file that can hot-reload the two
// interval settings while the process is running.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds every option the store and server recognize. Struct tags
// give the environment variable name and default, mirroring the
// envconfig pattern used throughout the example pack.
type Config struct {
	Capacity           int           `envconfig:"STORE_CAPACITY" default:"100"`
	LogFile            string        `envconfig:"LOG_FILE" default:"data/wal.log"`
	CompactionInterval time.Duration `envconfig:"COMPACTION_INTERVAL" default:"300s"`
	CleanupInterval    time.Duration `envconfig:"CLEANUP_INTERVAL" default:"60s"`
	MaxLogSize         int           `envconfig:"MAX_LOG_SIZE" default:"1000"`
	ConfigFile         string        `envconfig:"KVSTORE_CONFIG_FILE"`
	Addr               string        `envconfig:"KVSTORE_ADDR" default:":8080"`
}

// Load reads Config from the environment, applying the defaults above to
// anything unset.
func Load() (*Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &c, nil
}
