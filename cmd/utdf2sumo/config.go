package main

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Config is YAML configuration of the tool. Command line flags override it
type Config struct {
	Net          string `yaml:"net"`
	UTDF         string `yaml:"utdf"`
	Out          string `yaml:"out"`
	LinksCSV     string `yaml:"links_csv"`
	GeoJSON      string `yaml:"geojson"`
	NetOut       string `yaml:"net_out"`
	Workers      int    `yaml:"workers"`
	ProgramID    string `yaml:"program_id"`
	LinkDuration string `yaml:"link_duration"`
	LogLevel     string `yaml:"log_level"`
	Verbose      bool   `yaml:"verbose"`
}

func defaultConfig() Config {
	return Config{
		Out:          "tllogic.add.xml",
		Workers:      4,
		ProgramID:    "0",
		LinkDuration: "first_match",
		LogLevel:     "info",
	}
}

// loadConfig reads YAML file on top of defaults. Unknown keys are errors
func loadConfig(fname string) (Config, error) {
	cfg := defaultConfig()
	file, err := os.ReadFile(fname)
	if err != nil {
		return cfg, errors.Wrap(err, "Can't read config file")
	}
	if err := yaml.UnmarshalStrict(file, &cfg); err != nil {
		return cfg, errors.Wrap(err, "Can't parse config file")
	}
	return cfg, nil
}
