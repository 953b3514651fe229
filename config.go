package access

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the file-loadable configuration for the access core.
type Config struct {
	Collections Collections           `json:"collections" yaml:"collections"`
	Cache       CacheConfig           `json:"cache" yaml:"cache"`
	Seed        map[string][]Document `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// CacheConfig sizes the ristretto role cache. All zero means the default
// map cache is used instead.
type CacheConfig struct {
	NumCounters int64 `json:"num_counters" yaml:"num_counters"`
	MaxCost     int64 `json:"max_cost" yaml:"max_cost"`
	BufferItems int64 `json:"buffer_items" yaml:"buffer_items"`
}

func (c CacheConfig) enabled() bool {
	return c.NumCounters > 0 || c.MaxCost > 0 || c.BufferItems > 0
}

// ConfigLoader loads configuration from the supported formats.
type ConfigLoader struct{}

func NewConfigLoader() *ConfigLoader {
	return &ConfigLoader{}
}

func (l *ConfigLoader) LoadYAML(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (l *ConfigLoader) LoadJSON(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// LoadFile dispatches on the file extension.
func (l *ConfigLoader) LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return l.LoadYAML(data)
	case ".json":
		return l.LoadJSON(data)
	default:
		return nil, fmt.Errorf("unsupported config format: %s", path)
	}
}

// applyDefaults fills unset collection names.
func (c *Config) applyDefaults() {
	def := DefaultCollections()
	if c.Collections.Users == "" {
		c.Collections.Users = def.Users
	}
	if c.Collections.Admins == "" {
		c.Collections.Admins = def.Admins
	}
	if c.Collections.Drivers == "" {
		c.Collections.Drivers = def.Drivers
	}
	if c.Collections.Vehicles == "" {
		c.Collections.Vehicles = def.Vehicles
	}
	if c.Collections.Roles == "" {
		c.Collections.Roles = def.Roles
	}
}

// ToYAML exports config to YAML.
func (c *Config) ToYAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// ToJSON exports config to JSON.
func (c *Config) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// Options translates the config into Core options. The caller appends its
// own (logger, clock) after these.
func (c *Config) Options() ([]Option, error) {
	opts := []Option{WithCollections(c.Collections)}
	if c.Cache.enabled() {
		cache, err := NewRistrettoRoleCache(c.Cache.NumCounters, c.Cache.MaxCost, c.Cache.BufferItems)
		if err != nil {
			return nil, fmt.Errorf("configure role cache: %w", err)
		}
		opts = append(opts, WithRoleCache(cache))
	}
	return opts, nil
}
