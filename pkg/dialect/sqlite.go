// SPDX-License-Identifier: Apache-2.0

package dialect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/charlesw1234/sooners-migrate/pkg/operations"
)

type sqliteDialect struct{}

func (sqliteDialect) Name() Name { return SQLite }

func (sqliteDialect) Quote(identifier string) string {
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}

func (sqliteDialect) ColumnType(col operations.ColumnDef) string {
	switch col.Type {
	case "integer", "smallint":
		return "integer"
	case "bigint":
		return "integer"
	case "varchar", "text", "enum":
		return "text"
	case "boolean":
		return "integer"
	case "date", "datetime", "timestamp":
		return "text"
	case "decimal", "float":
		return "real"
	default:
		return "text"
	}
}

// isRestrictedOnSQLite reports operations SQLite cannot apply via a
// narrow ALTER TABLE clause: its
// ALTER TABLE only supports RENAME TO, RENAME COLUMN, ADD COLUMN, and
// (3.35+) DROP COLUMN; everything else requires a table rebuild that this
// adapter declines to perform implicitly.
func isRestrictedOnSQLite(op operations.Operation) bool {
	switch op.(type) {
	case *operations.OpCreatePrimaryKey, *operations.OpDropPrimaryKey,
		*operations.OpCreateForeignKey, *operations.OpDropForeignKey,
		*operations.OpCreateUnique, *operations.OpDropUnique,
		*operations.OpCreateCheck, *operations.OpDropCheck:
		return true
	}
	return false
}

func (d sqliteDialect) BuildDDL(op operations.Operation) ([]string, error) {
	if isRestrictedOnSQLite(op) {
		return nil, fmt.Errorf("dialect: sqlite does not support %s in place; requires a table rebuild not performed by this adapter", op.Key())
	}
	if alter, ok := op.(*operations.OpAlterColumn); ok {
		return d.buildAlterColumn(alter)
	}
	return genericBuildDDL(d, op)
}

// buildAlterColumn emits a RENAME COLUMN when the name changed; a
// nullability or default change is accepted without error but produces
// no statement. A type change is rejected (SQLite has no ALTER COLUMN
// TYPE).
func (d sqliteDialect) buildAlterColumn(o *operations.OpAlterColumn) ([]string, error) {
	if o.Before.Type != o.After.Type {
		return nil, fmt.Errorf("dialect: sqlite cannot change column type for %s in place; requires a table rebuild not performed by this adapter", o.Key())
	}
	var stmts []string
	if o.Name0 != o.Name1 {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s",
			d.Quote(o.Table), d.Quote(o.Name0), d.Quote(o.Name1)))
	}
	return stmts, nil
}

func (sqliteDialect) PostOperation(op operations.Operation) ([]string, error) { return nil, nil }

// IsRetryable reports whether err looks like SQLITE_BUSY/SQLITE_LOCKED,
// matched on message text since ncruces/go-sqlite3 exposes the numeric
// code via its own error type that this adapter does not import directly
// to keep the retry predicate dependency-light.
func (sqliteDialect) IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}

type sqliteIntrospector struct{ db *sql.DB }

func (s *sqliteIntrospector) ListTables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStrings(rows)
}

func (s *sqliteIntrospector) ListColumns(ctx context.Context, table string) ([]ColumnInfo, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%s)`, s.quoteIdent(table)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ColumnInfo
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull int
		var dflt sql.NullString
		var pk int
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return nil, err
		}
		c := ColumnInfo{Name: name, Type: ctype, Nullable: notnull == 0, PrimaryKey: pk > 0}
		if dflt.Valid {
			c.Default = &dflt.String
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *sqliteIntrospector) quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
