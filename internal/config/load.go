// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors Config with the string/primitive shapes YAML naturally
// carries (LockRetryTimeout as a duration string like "30s").
type fileConfig struct {
	Databases []struct {
		Name    string `yaml:"name"`
		Dialect string `yaml:"dialect"`
		DSN     string `yaml:"dsn"`
		Default bool   `yaml:"default"`
		Schema  string `yaml:"schema"`
	} `yaml:"databases"`
	BookkeepingTablePrefix string `yaml:"bookkeeping_table_prefix"`
	HistoryDir             string `yaml:"history_dir"`
	LockRetryTimeout       string `yaml:"lock_retry_timeout"`
	ConfirmByDefault       bool   `yaml:"confirm_by_default"`
	DebugSchema            bool   `yaml:"debug_schema"`
}

// LoadFile reads the fleet configuration document the CLI layer points
// --config at: the database list, bookkeeping naming, history directory
// and lock-retry timeout.
func LoadFile(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %q: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return nil, fmt.Errorf("config: parsing %q: %w", path, err)
	}

	cfg := &Config{
		BookkeepingTablePrefix: fc.BookkeepingTablePrefix,
		HistoryDir:             fc.HistoryDir,
		ConfirmByDefault:       fc.ConfirmByDefault,
		DebugSchema:            fc.DebugSchema,
	}
	if fc.LockRetryTimeout != "" {
		d, err := time.ParseDuration(fc.LockRetryTimeout)
		if err != nil {
			return nil, fmt.Errorf("config: lock_retry_timeout: %w", err)
		}
		cfg.LockRetryTimeout = d
	}
	for _, d := range fc.Databases {
		cfg.Databases = append(cfg.Databases, Database{
			Name: d.Name, Dialect: d.Dialect, DSN: d.DSN, Default: d.Default, Schema: d.Schema,
		})
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
