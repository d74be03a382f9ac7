package cmd

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the optional YAML file --config points at. It only controls
// output verbosity; tagdump has no other tunables.
type Config struct {
	Verbose bool `yaml:"verbose"`
}

func loadConfig(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
