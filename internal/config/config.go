// Package config loads the YAML run configuration of the report command.
package config

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"os"
	"path"

	"sadf/internal/sadf"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Group selects one sadf category and its options.
type Group struct {
	Name      string   `yaml:"name"`
	AllFields bool     `yaml:"all-fields"`
	Cores     string   `yaml:"cores"`
	Network   []string `yaml:"network"` // network sub-categories, e.g., [dev, sock]; empty for all
}

// Derived defines a column computed from other columns of the same table.
type Derived struct {
	// Table is a table path pattern, e.g., "memory" or "cpu-load/*", matched with path.Match.
	Table string `yaml:"table"`
	Name  string `yaml:"name"`
	// Expression is a govaluate expression over the table's columns. Column names
	// with characters other than letters, digits and underscores go in brackets,
	// e.g., "[memused-percent] / 100".
	Expression string `yaml:"expression"`
}

// Config is the content of a run configuration file. Every field is optional.
type Config struct {
	Start    string    `yaml:"start"`
	End      string    `yaml:"end"`
	Interval int       `yaml:"interval"`
	DataFile string    `yaml:"datafile"`
	Timeout  int       `yaml:"timeout"` // seconds
	Groups   []Group   `yaml:"groups"`
	Derived  []Derived `yaml:"derived"`
}

// Load reads and validates a run configuration file.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath) // #nosec G304
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	return Parse(data)
}

// Parse decodes and validates a run configuration.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration without building any field group.
func (c *Config) Validate() error {
	if c.Interval < 0 {
		return fmt.Errorf("interval must be 0 or greater, got %d", c.Interval)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be 0 or greater, got %d", c.Timeout)
	}
	if _, err := c.FieldGroups(); err != nil {
		return err
	}
	for i, d := range c.Derived {
		if d.Table == "" || d.Name == "" || d.Expression == "" {
			return fmt.Errorf("derived[%d]: table, name and expression are required", i)
		}
		if _, err := path.Match(d.Table, ""); err != nil {
			return fmt.Errorf("derived[%d]: bad table pattern %q: %v", i, d.Table, err)
		}
	}
	return nil
}

// FieldGroups builds new field groups for the configured categories. It returns
// no groups if none are configured.
func (c *Config) FieldGroups() ([]sadf.FieldGroup, error) {
	groups := make([]sadf.FieldGroup, 0, len(c.Groups))
	for i, g := range c.Groups {
		netOpts, err := sadf.ParseNetworkOptions(g.Network)
		if err != nil {
			return nil, fmt.Errorf("groups[%d]: %w", i, err)
		}
		fg, err := sadf.Lookup(g.Name, sadf.Options{AllFields: g.AllFields, Cores: g.Cores, Network: netOpts})
		if err != nil {
			return nil, fmt.Errorf("groups[%d]: %w", i, err)
		}
		groups = append(groups, fg)
	}
	return groups, nil
}
