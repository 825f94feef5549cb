package main

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// config is the shape of a cfgstat.toml file, decoded with BurntSushi/toml.
type config struct {
	Costs  costsConfig  `toml:"costs"`
	Output outputConfig `toml:"output"`
}

type costsConfig struct {
	Default uint8 `toml:"default"`
}

type outputConfig struct {
	Width int `toml:"width"`
}

func defaultConfig() config {
	return config{
		Costs:  costsConfig{Default: 1},
		Output: outputConfig{Width: 100},
	}
}

// loadConfig reads path and overlays it on top of defaultConfig. A path of
// "" returns the defaults unchanged.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return config{}, fmt.Errorf("decode config %q: %w", path, err)
	}
	return cfg, nil
}
