// SPDX-License-Identifier: Apache-2.0

package dialect

import (
	"fmt"
	"strings"

	"github.com/charlesw1234/sooners-migrate/pkg/operations"
)

// genericBuildDDL implements BuildDDL for the sixteen Operation typeids in
// terms of a Dialect's Quote/ColumnType, and is shared by all three
// dialects; each dialect's BuildDDL method delegates here and overrides
// only where its quirks require different statements (MySQL's
// ALTER COLUMN restate in mysql.go, PostgreSQL's enum types in
// postgres.go, SQLite's restricted ALTER TABLE in sqlite.go).
func genericBuildDDL(d Dialect, op operations.Operation) ([]string, error) {
	switch o := op.(type) {
	case *operations.OpCreateTable:
		return []string{buildCreateTable(d, o)}, nil
	case *operations.OpRenameTable:
		return []string{fmt.Sprintf("ALTER TABLE %s RENAME TO %s", d.Quote(o.Name0), d.Quote(o.Name1))}, nil
	case *operations.OpDropTable:
		return []string{fmt.Sprintf("DROP TABLE %s", d.Quote(o.Table))}, nil

	case *operations.OpAddColumn:
		return []string{fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", d.Quote(o.Table), buildColumnClause(d, o.Column))}, nil
	case *operations.OpAlterColumn:
		return buildAlterColumn(d, o)
	case *operations.OpDropColumn:
		return []string{fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", d.Quote(o.Table), d.Quote(o.Column.Name))}, nil

	case *operations.OpCreatePrimaryKey:
		return []string{fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s PRIMARY KEY (%s)",
			d.Quote(o.Table), d.Quote(o.Name), quoteList(d, o.Columns))}, nil
	case *operations.OpDropPrimaryKey:
		return []string{dropConstraintStmt(d, o.Table, o.Name)}, nil

	case *operations.OpCreateForeignKey:
		stmt := fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
			d.Quote(o.Table), d.Quote(o.Name), quoteList(d, o.Columns), d.Quote(o.ReferencedTable), quoteList(d, o.ReferencedColumns))
		if o.OnDelete != "" {
			stmt += " ON DELETE " + o.OnDelete
		}
		if o.OnUpdate != "" {
			stmt += " ON UPDATE " + o.OnUpdate
		}
		return []string{stmt}, nil
	case *operations.OpDropForeignKey:
		return []string{dropConstraintStmt(d, o.Table, o.Name)}, nil

	case *operations.OpCreateUnique:
		return []string{fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s UNIQUE (%s)",
			d.Quote(o.Table), d.Quote(o.Name), quoteList(d, o.Columns))}, nil
	case *operations.OpDropUnique:
		return []string{dropConstraintStmt(d, o.Table, o.Name)}, nil

	case *operations.OpCreateCheck:
		return []string{fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s CHECK (%s)",
			d.Quote(o.Table), d.Quote(o.Name), o.Expression)}, nil
	case *operations.OpDropCheck:
		return []string{dropConstraintStmt(d, o.Table, o.Name)}, nil

	case *operations.OpCreateIndex:
		unique := ""
		if o.Unique {
			unique = "UNIQUE "
		}
		return []string{fmt.Sprintf("CREATE %sINDEX %s ON %s (%s)", unique, d.Quote(o.Name), d.Quote(o.Table), quoteList(d, o.Columns))}, nil
	case *operations.OpDropIndex:
		return []string{fmt.Sprintf("DROP INDEX %s", d.Quote(o.Name))}, nil

	default:
		return nil, fmt.Errorf("dialect: unsupported operation type %T", op)
	}
}

func buildCreateTable(d Dialect, o *operations.OpCreateTable) string {
	var parts []string
	for _, col := range o.Columns {
		parts = append(parts, buildColumnClause(d, col))
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", d.Quote(o.Table), strings.Join(parts, ", "))
}

func buildColumnClause(d Dialect, col operations.ColumnDef) string {
	clause := fmt.Sprintf("%s %s", d.Quote(col.Name), d.ColumnType(col))
	if !col.Nullable {
		clause += " NOT NULL"
	}
	if col.Default != nil {
		clause += " DEFAULT " + *col.Default
	}
	if col.PrimaryKey {
		clause += " PRIMARY KEY"
	}
	if col.Unique {
		clause += " UNIQUE"
	}
	if col.References != nil {
		clause += fmt.Sprintf(" REFERENCES %s (%s)", d.Quote(col.References.Table), d.Quote(col.References.Column))
		if col.References.OnDelete != "" {
			clause += " ON DELETE " + col.References.OnDelete
		}
	}
	return clause
}

// buildAlterColumn implements the default (non-MySQL) AlterColumn
// translation: a plain rename when only the name changed, otherwise a
// sequence of narrow ALTER COLUMN clauses (PostgreSQL-style; SQLite's
// adapter further restricts this, see sqlite.go).
func buildAlterColumn(d Dialect, o *operations.OpAlterColumn) ([]string, error) {
	var stmts []string
	if o.Name0 != o.Name1 {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s",
			d.Quote(o.Table), d.Quote(o.Name0), d.Quote(o.Name1)))
	}
	col := o.Name1
	if col == "" {
		col = o.Name0
	}
	if o.Before.Type != o.After.Type {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s",
			d.Quote(o.Table), d.Quote(col), d.ColumnType(o.After)))
	}
	if o.Before.Nullable != o.After.Nullable {
		clause := "SET NOT NULL"
		if o.After.Nullable {
			clause = "DROP NOT NULL"
		}
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s %s", d.Quote(o.Table), d.Quote(col), clause))
	}
	if !defaultsEqual(o.Before.Default, o.After.Default) {
		if o.After.Default == nil {
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP DEFAULT", d.Quote(o.Table), d.Quote(col)))
		} else {
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET DEFAULT %s", d.Quote(o.Table), d.Quote(col), *o.After.Default))
		}
	}
	return stmts, nil
}

func defaultsEqual(a, b *string) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}

func dropConstraintStmt(d Dialect, table, name string) string {
	return fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s", d.Quote(table), d.Quote(name))
}

func quoteList(d Dialect, names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = d.Quote(n)
	}
	return strings.Join(quoted, ", ")
}
