// SPDX-License-Identifier: Apache-2.0

// Package config carries the process-wide settings as a single value,
// built once at startup and passed explicitly into the constructors that
// need it. No package in this module holds a mutable settings singleton.
package config

import (
	"fmt"
	"time"
)

// Database describes one physical database in the fleet that the migration
// engine can target.
type Database struct {
	// Name is the logical name used in SchemaParams database_names sets and
	// in Operation.DatabaseName. Must be unique within a Config.
	Name string

	// Dialect is one of "sqlite", "mysql", "postgres".
	Dialect string

	// DSN is the driver-specific data source name used to open a
	// connection to this database.
	DSN string

	// Default marks the single database that stores the bookkeeping
	// Configuration and DBSchemaVersion tables.
	Default bool

	// Schema sets the Postgres search_path for this database's connection
	// string. Ignored for non-postgres dialects.
	Schema string
}

// Config is constructed once by the CLI (or by an embedding application) and
// passed by value/pointer into migration.Core and milestone.Milestone. No
// package in this module reads from a global settings object.
type Config struct {
	// Databases is the fleet this Config targets, keyed implicitly by
	// Database.Name.
	Databases []Database

	// BookkeepingTablePrefix is prefixed onto the three bookkeeping table
	// names ("configuration", "dbschema_version", "dbschema_operation"),
	// matching the on-disk contract's "sooners_" prefix.
	BookkeepingTablePrefix string

	// HistoryDir is the root directory under which each component's
	// history/version.NNNN.xml and history/patch.NNNN.MMMM.xml files live.
	HistoryDir string

	// LockRetryTimeout is read from the fleet configuration document. The
	// DDL retry loop in pkg/dialect does not consult it: a lock-contended
	// statement is retried until its context is done.
	LockRetryTimeout time.Duration

	// ConfirmByDefault makes every milestone step behave as though
	// --confirm had been passed.
	ConfirmByDefault bool

	// DebugSchema raises the engine's logger to debug level.
	DebugSchema bool
}

// DefaultDatabase returns the database marked Default, or false if none (or
// more than one) is configured; callers should treat more than one default
// as a configuration error, checked by Validate.
func (c *Config) DefaultDatabase() (Database, bool) {
	var found Database
	count := 0
	for _, d := range c.Databases {
		if d.Default {
			found = d
			count++
		}
	}
	return found, count == 1
}

// DatabaseNames returns the configured database names in declaration order.
func (c *Config) DatabaseNames() []string {
	names := make([]string, len(c.Databases))
	for i, d := range c.Databases {
		names[i] = d.Name
	}
	return names
}

// Lookup returns the Database with the given name.
func (c *Config) Lookup(name string) (Database, bool) {
	for _, d := range c.Databases {
		if d.Name == name {
			return d, true
		}
	}
	return Database{}, false
}

// Validate checks the invariants the rest of this module assumes hold:
// exactly one default database, unique non-empty database names, and a
// known dialect per database.
func (c *Config) Validate() error {
	if len(c.Databases) == 0 {
		return fmt.Errorf("config: no databases configured")
	}
	if _, ok := c.DefaultDatabase(); !ok {
		return fmt.Errorf("config: exactly one database must be marked default")
	}
	seen := map[string]bool{}
	for _, d := range c.Databases {
		if d.Name == "" {
			return fmt.Errorf("config: database name must not be empty")
		}
		if seen[d.Name] {
			return fmt.Errorf("config: duplicate database name %q", d.Name)
		}
		seen[d.Name] = true
		switch d.Dialect {
		case "sqlite", "mysql", "postgres":
		default:
			return fmt.Errorf("config: database %q: unknown dialect %q", d.Name, d.Dialect)
		}
	}
	if c.BookkeepingTablePrefix == "" {
		return fmt.Errorf("config: bookkeeping table prefix must not be empty")
	}
	if c.HistoryDir == "" {
		return fmt.Errorf("config: history directory must not be empty")
	}
	return nil
}
