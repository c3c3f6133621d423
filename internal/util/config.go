package util

import (
	"github.com/BurntSushi/toml"
)

// Configuration carries the embedder-facing settings: build identity, log
// routing and the database endpoints native modules may open.
type Configuration struct {
	Version   string
	BuildDate string
	Commit    string

	LogLevel  string           `toml:"log_level"`
	LogFile   string           `toml:"log_file"`
	Databases []DatabaseConfig `toml:"database"`
}

// DatabaseConfig names one relational endpoint.
type DatabaseConfig struct {
	Name   string `toml:"name"`
	Driver string `toml:"driver"`
	DSN    string `toml:"dsn"`
}

// LoadConfiguration reads a TOML configuration file over the given base.
// Fields absent from the file keep their base values.
func LoadConfiguration(path string, base Configuration) (Configuration, error) {
	config := base
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return base, err
	}
	return config, nil
}
