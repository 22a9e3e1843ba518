// SPDX-License-Identifier: Apache-2.0

package dialect

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/charlesw1234/sooners-migrate/pkg/operations"
)

const mysqlLockWaitTimeout uint16 = 1205

type mysqlDialect struct{}

func (mysqlDialect) Name() Name { return MySQL }

func (mysqlDialect) Quote(identifier string) string {
	return "`" + strings.ReplaceAll(identifier, "`", "``") + "`"
}

func (mysqlDialect) ColumnType(col operations.ColumnDef) string {
	switch col.Type {
	case "integer":
		return "int"
	case "bigint":
		return "bigint"
	case "smallint":
		return "smallint"
	case "varchar":
		if col.Length > 0 {
			return fmt.Sprintf("varchar(%d)", col.Length)
		}
		return "varchar(255)"
	case "text":
		return "text"
	case "boolean":
		return "tinyint(1)"
	case "date":
		return "date"
	case "datetime", "timestamp":
		return "datetime"
	case "decimal":
		if col.Precision > 0 {
			return fmt.Sprintf("decimal(%d,%d)", col.Precision, col.Scale)
		}
		return "decimal"
	case "float":
		return "double"
	case "enum":
		var vals []string
		for _, v := range col.EnumValues {
			vals = append(vals, "'"+strings.ReplaceAll(v, "'", "''")+"'")
		}
		return fmt.Sprintf("enum(%s)", strings.Join(vals, ", "))
	default:
		return col.Type
	}
}

// BuildDDL delegates to genericBuildDDL except for AlterColumn, where
// MySQL's CHANGE COLUMN requires restating the column's full shape
// (type, default, nullability) in one clause rather than the narrow
// per-attribute ALTER COLUMN clauses Postgres/SQLite accept.
func (d mysqlDialect) BuildDDL(op operations.Operation) ([]string, error) {
	if alter, ok := op.(*operations.OpAlterColumn); ok {
		return d.buildAlterColumn(alter)
	}
	return genericBuildDDL(d, op)
}

func (d mysqlDialect) buildAlterColumn(o *operations.OpAlterColumn) ([]string, error) {
	restated := o.After
	restated.Name = o.Name1
	restated.PrimaryKey = false // CHANGE COLUMN must not restate the key
	stmt := fmt.Sprintf("ALTER TABLE %s CHANGE COLUMN %s %s",
		d.Quote(o.Table), d.Quote(o.Name0), buildColumnClause(d, restated))
	return []string{stmt}, nil
}

func (mysqlDialect) PostOperation(op operations.Operation) ([]string, error) { return nil, nil }

func (mysqlDialect) IsRetryable(err error) bool {
	var mErr *mysql.MySQLError
	return errors.As(err, &mErr) && mErr.Number == mysqlLockWaitTimeout
}

type mysqlIntrospector struct{ db *sql.DB }

func (m *mysqlIntrospector) ListTables(ctx context.Context) ([]string, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE()`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStrings(rows)
}

func (m *mysqlIntrospector) ListColumns(ctx context.Context, table string) ([]ColumnInfo, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT column_name, data_type, is_nullable, column_default
		FROM information_schema.columns
		WHERE table_schema = DATABASE() AND table_name = ?
		ORDER BY ordinal_position`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanColumns(rows)
}
