// SPDX-License-Identifier: Apache-2.0

// Package opendb opens one *sql.DB per config.Database, registering the
// three driver packages the dialect adapters target.
package opendb

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/charlesw1234/sooners-migrate/internal/config"
	"github.com/charlesw1234/sooners-migrate/internal/connstr"
)

func driverName(dialect string) (string, error) {
	switch dialect {
	case "postgres":
		return "postgres", nil
	case "mysql":
		return "mysql", nil
	case "sqlite":
		return "sqlite3", nil
	default:
		return "", fmt.Errorf("opendb: unknown dialect %q", dialect)
	}
}

// OpenAll opens one *sql.DB per configured database, keyed by name. A
// postgres database with a Schema set has search_path appended to its
// DSN via connstr.AppendSearchPathOption.
func OpenAll(cfg *config.Config) (map[string]*sql.DB, error) {
	dbs := make(map[string]*sql.DB, len(cfg.Databases))
	for _, d := range cfg.Databases {
		driver, err := driverName(d.Dialect)
		if err != nil {
			CloseAll(dbs)
			return nil, err
		}

		dsn := d.DSN
		if d.Dialect == "postgres" && d.Schema != "" {
			dsn, err = connstr.AppendSearchPathOption(dsn, d.Schema)
			if err != nil {
				CloseAll(dbs)
				return nil, fmt.Errorf("opendb: database %q: %w", d.Name, err)
			}
		}

		db, err := sql.Open(driver, dsn)
		if err != nil {
			CloseAll(dbs)
			return nil, fmt.Errorf("opendb: opening %q: %w", d.Name, err)
		}
		dbs[d.Name] = db
	}
	return dbs, nil
}

// CloseAll closes every open connection, ignoring individual close
// errors.
func CloseAll(dbs map[string]*sql.DB) {
	for _, db := range dbs {
		db.Close()
	}
}
