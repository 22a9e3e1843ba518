// SPDX-License-Identifier: Apache-2.0

package dialect

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/charlesw1234/sooners-migrate/pkg/operations"
)

const postgresLockNotAvailable pq.ErrorCode = "55P03"

type postgresDialect struct{}

func (postgresDialect) Name() Name { return Postgres }

func (postgresDialect) Quote(identifier string) string {
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}

func (postgresDialect) ColumnType(col operations.ColumnDef) string {
	switch col.Type {
	case "integer":
		return "integer"
	case "bigint":
		return "bigint"
	case "smallint":
		return "smallint"
	case "varchar":
		if col.Length > 0 {
			return fmt.Sprintf("varchar(%d)", col.Length)
		}
		return "varchar"
	case "text":
		return "text"
	case "boolean":
		return "boolean"
	case "date":
		return "date"
	case "datetime", "timestamp":
		return "timestamp"
	case "decimal":
		if col.Precision > 0 {
			return fmt.Sprintf("decimal(%d,%d)", col.Precision, col.Scale)
		}
		return "decimal"
	case "float":
		return "double precision"
	case "enum":
		return enumTypeName(col) + "_t"
	default:
		return col.Type
	}
}

func enumTypeName(col operations.ColumnDef) string {
	return "enum_" + col.Name
}

func (d postgresDialect) BuildDDL(op operations.Operation) ([]string, error) {
	if c, ok := op.(*operations.OpAddColumn); ok && c.Column.Type == "enum" {
		return append([]string{createEnumTypeStmt(c.Column)}, fmt.Sprintf(
			"ALTER TABLE %s ADD COLUMN %s", d.Quote(c.Table), buildColumnClause(d, c.Column))), nil
	}
	if c, ok := op.(*operations.OpCreateTable); ok {
		var stmts []string
		for _, col := range c.Columns {
			if col.Type == "enum" {
				stmts = append(stmts, createEnumTypeStmt(col))
			}
		}
		stmts = append(stmts, buildCreateTable(d, c))
		return stmts, nil
	}
	return genericBuildDDL(d, op)
}

func createEnumTypeStmt(col operations.ColumnDef) string {
	var vals []string
	for _, v := range col.EnumValues {
		vals = append(vals, "'"+strings.ReplaceAll(v, "'", "''")+"'")
	}
	return fmt.Sprintf("CREATE TYPE %s_t AS ENUM (%s)", enumTypeName(col), strings.Join(vals, ", "))
}

// PostOperation drops orphan enum types left behind by DropTable or an
// enum-typed DropColumn: PostgreSQL's CREATE TYPE-backed enum columns
// leave their type behind after the column/table is gone.
func (postgresDialect) PostOperation(op operations.Operation) ([]string, error) {
	switch o := op.(type) {
	case *operations.OpDropTable:
		var stmts []string
		for _, col := range o.Columns {
			if col.Type == "enum" {
				stmts = append(stmts, fmt.Sprintf("DROP TYPE IF EXISTS %s_t", enumTypeName(col)))
			}
		}
		return stmts, nil
	case *operations.OpDropColumn:
		if o.Column.Type == "enum" {
			return []string{fmt.Sprintf("DROP TYPE IF EXISTS %s_t", enumTypeName(o.Column))}, nil
		}
	}
	return nil, nil
}

func (postgresDialect) IsRetryable(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == postgresLockNotAvailable
}

type postgresIntrospector struct{ db *sql.DB }

func (p *postgresIntrospector) ListTables(ctx context.Context) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT table_name FROM information_schema.tables WHERE table_schema = 'public'`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStrings(rows)
}

func (p *postgresIntrospector) ListColumns(ctx context.Context, table string) ([]ColumnInfo, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT column_name, data_type, is_nullable, column_default
		FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name = $1
		ORDER BY ordinal_position`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanColumns(rows)
}
