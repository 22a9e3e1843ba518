// SPDX-License-Identifier: Apache-2.0

package bookkeeping

import (
	"context"
	"fmt"

	"github.com/charlesw1234/sooners-migrate/internal/enginerr"
)

// TableNames carries the three bookkeeping table names built from a
// common prefix ("sooners_" by convention).
type TableNames struct {
	Configuration     string
	DBSchemaVersion   string
	DBSchemaOperation string
}

func NewTableNames(prefix string) TableNames {
	return TableNames{
		Configuration:     prefix + "configuration",
		DBSchemaVersion:   prefix + "dbschema_version",
		DBSchemaOperation: prefix + "dbschema_operation",
	}
}

// autoIDColumn is the self-assigning integer primary key clause for the
// bookkeeping tables' surrogate ids, which each backend spells its own way.
func autoIDColumn(dialectName string) string {
	switch dialectName {
	case "postgres":
		return "id SERIAL PRIMARY KEY"
	case "mysql":
		return "id INTEGER PRIMARY KEY AUTO_INCREMENT"
	default:
		return "id INTEGER PRIMARY KEY"
	}
}

// CreateBookkeepingTables issues the CREATE TABLE statements for the
// Configuration and DBSchemaVersion tables (default database only).
func CreateBookkeepingTables(ctx context.Context, s SessionStore, names TableNames, dialectName string) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE %s (
			%s,
			conf_type VARCHAR(32) NOT NULL,
			conf_part_order INTEGER NOT NULL,
			conf_part VARCHAR(64) NOT NULL
		)`, names.Configuration, autoIDColumn(dialectName)),
		fmt.Sprintf(`CREATE TABLE %s (
			component_name VARCHAR(64) PRIMARY KEY,
			index0 INTEGER NOT NULL,
			version0 INTEGER,
			checksum0 CHAR(64),
			index1 INTEGER NOT NULL,
			version1 INTEGER,
			checksum1 CHAR(64)
		)`, names.DBSchemaVersion),
	}
	for _, stmt := range stmts {
		if _, err := s.ExecContext(ctx, stmt); err != nil {
			return enginerr.NewDDLFailure("default", "create bookkeeping table", err)
		}
	}
	return nil
}

// CreateOperationLogTable issues the CREATE TABLE statement for
// DBSchemaOperation, which is present in every database.
func CreateOperationLogTable(ctx context.Context, s SessionStore, names TableNames, dialectName string) error {
	stmt := fmt.Sprintf(`CREATE TABLE %s (
		%s,
		component_name VARCHAR(64) NOT NULL,
		typeid INTEGER NOT NULL,
		tablename VARCHAR(64),
		name0 VARCHAR(64),
		name1 VARCHAR(64)
	)`, names.DBSchemaOperation, autoIDColumn(dialectName))
	if _, err := s.ExecContext(ctx, stmt); err != nil {
		return enginerr.NewDDLFailure("(per-database)", "create operation log table", err)
	}
	return nil
}

// TableExists probes whether a bookkeeping table has been created yet,
// the check behind the degraded early-migration paths where bookkeeping
// stays in memory until the plan itself creates the table.
func TableExists(ctx context.Context, s SessionStore, table string) bool {
	rows, err := s.QueryContext(ctx, fmt.Sprintf("SELECT 1 FROM %s LIMIT 1", table))
	if err != nil {
		return false
	}
	rows.Close()
	return true
}
