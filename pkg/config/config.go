package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultListenAddr     = ":5000"
	DefaultPoiLimit       = 5000
	DefaultMaxLocations   = 100
	DefaultMaxSnapMeters  = 1000.0
	DefaultGraphFile      = "./data/navigatorx-table.graph"
	DefaultPoiDBDir       = "./data/poi"
	DefaultBucketCacheDir = "./data/buckets"
)

var (
	ErrInvalidConfig = errors.New("invalid config")
)

// Config is the engine server configuration.
type Config struct {
	ListenAddr string `yaml:"listen_addr"`
	GraphFile  string `yaml:"graph_file"`
	PoiDBDir   string `yaml:"poi_db_dir"`
	// BucketCacheDir kosong = bucket table poi tidak di cache.
	BucketCacheDir string `yaml:"bucket_cache_dir"`

	// PoiLimit is the default distance limit of a poi query, in decimeters.
	PoiLimit      int32   `yaml:"poi_limit"`
	MaxLocations  int     `yaml:"max_locations"`
	MaxSnapMeters float64 `yaml:"max_snap_meters"`
	// Workers <= 0 means one worker per cpu.
	Workers int `yaml:"workers"`
}

func Default() *Config {
	return &Config{
		ListenAddr:     DefaultListenAddr,
		GraphFile:      DefaultGraphFile,
		PoiDBDir:       DefaultPoiDBDir,
		BucketCacheDir: DefaultBucketCacheDir,
		PoiLimit:       DefaultPoiLimit,
		MaxLocations:   DefaultMaxLocations,
		MaxSnapMeters:  DefaultMaxSnapMeters,
	}
}

// Load reads a yaml config file on top of the defaults. environment variables in the file are expanded.
// an empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read configuration file '%s': %w", path, err)
	}

	decoder := yaml.NewDecoder(strings.NewReader(os.ExpandEnv(string(data))))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("YAML syntax error in '%s': %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.GraphFile == "" {
		return fmt.Errorf("%w: graph_file is required", ErrInvalidConfig)
	}
	if c.PoiLimit <= 0 {
		return fmt.Errorf("%w: poi_limit must be positive, got %d", ErrInvalidConfig, c.PoiLimit)
	}
	if c.MaxLocations < 2 {
		return fmt.Errorf("%w: max_locations must be at least 2, got %d", ErrInvalidConfig, c.MaxLocations)
	}
	if c.MaxSnapMeters <= 0 {
		return fmt.Errorf("%w: max_snap_meters must be positive", ErrInvalidConfig)
	}
	return nil
}
