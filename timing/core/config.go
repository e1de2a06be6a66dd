package core

import (
	"bytes"
	"os"
	"slices"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/waitstate/arch"
	"github.com/sarchlab/waitstate/timing/hazard"
)

// Config holds the settings shared by every compilation of a run.
type Config struct {
	// Target is the architecture kernels are compiled for unless the kernel
	// file names its own. Default: gfx942.
	Target string `yaml:"target"`

	// ClockMHz is the shader clock used to convert padding into time for
	// reporting. Default: 2100 MHz.
	ClockMHz float64 `yaml:"clock_mhz"`

	// Workers bounds the number of kernels compiled concurrently.
	// Default: 4.
	Workers int `yaml:"workers"`

	// DisabledRules names hazard rules to skip even where the target
	// requires them. Intended for experiments only: the output may be
	// under-padded.
	DisabledRules []string `yaml:"disabled_rules,omitempty"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Target:   "gfx942",
		ClockMHz: 2100,
		Workers:  4,
	}
}

// LoadConfig loads a Config from a YAML file. Fields missing from the file
// keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	config := DefaultConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(config); err != nil {
		return nil, errors.Wrap(err, "failed to parse config")
	}

	return config, nil
}

// SaveConfig writes a Config to a YAML file.
func (c *Config) SaveConfig(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to serialize config")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}

	return nil
}

// Validate checks that the target is known, that clock and worker count
// are positive and that every disabled rule exists.
func (c *Config) Validate() error {
	if _, err := arch.Parse(c.Target); err != nil {
		return err
	}
	if c.ClockMHz <= 0 {
		return errors.New("clock_mhz must be > 0")
	}
	if c.Workers <= 0 {
		return errors.New("workers must be > 0")
	}
	for _, name := range c.DisabledRules {
		if _, ok := hazard.Lookup(name); !ok {
			return errors.Errorf("disabled_rules: unknown hazard rule %q", name)
		}
	}
	return nil
}

// Clone returns a deep copy of the Config.
func (c *Config) Clone() *Config {
	clone := *c
	clone.DisabledRules = slices.Clone(c.DisabledRules)
	return &clone
}
