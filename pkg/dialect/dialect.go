// SPDX-License-Identifier: Apache-2.0

// Package dialect implements the DDL dialect adapter: the sole place
// with dialect-specific code, translating Operations into concrete
// DDL for SQLite, MySQL, and PostgreSQL, and performing post-operation
// cleanup (orphan enum types) where a dialect requires it.
package dialect

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/charlesw1234/sooners-migrate/pkg/operations"
)

// Name identifies one of the three recognized dialects.
type Name string

const (
	SQLite   Name = "sqlite"
	MySQL    Name = "mysql"
	Postgres Name = "postgres"
)

// ColumnInfo is a live database's reported shape for one column, as
// returned by SchemaIntrospector.ListColumns.
type ColumnInfo struct {
	Name       string
	Type       string
	Nullable   bool
	PrimaryKey bool
	Default    *string
}

// SchemaIntrospector lists tables/columns on a live database.
type SchemaIntrospector interface {
	ListTables(ctx context.Context) ([]string, error)
	ListColumns(ctx context.Context, table string) ([]ColumnInfo, error)
}

// OperationExecutor emits DDL for a single create/alter/drop Operation
// against a live database connection.
type OperationExecutor interface {
	Execute(ctx context.Context, op operations.Operation) error
}

// Dialect is the per-backend strategy an adapter implements: DDL
// generation, type mapping, quoting, and post-operation cleanup. Exactly
// one Dialect backs each OperationExecutor/SchemaIntrospector pair.
type Dialect interface {
	Name() Name
	Quote(identifier string) string
	ColumnType(col operations.ColumnDef) string

	// BuildDDL returns the ordered DDL statements that realize op on this
	// dialect. Most operations yield exactly one statement; PostgreSQL's
	// enum-typed CreateTable/AddColumn (a CREATE TYPE first) and the
	// narrow-clause AlterColumn translation may yield more than one, and
	// SQLite's AlterColumn may yield none.
	BuildDDL(op operations.Operation) ([]string, error)

	// PostOperation returns cleanup DDL to run after op has committed
	// (PostgreSQL's orphan enum type drop after DropTable or an
	// enum-typed DropColumn). Most dialects return nil for every op.
	PostOperation(op operations.Operation) ([]string, error)

	// IsRetryable reports whether err is a lock-contention error this
	// dialect's adapter should retry with backoff.
	IsRetryable(err error) bool
}

// New returns the Dialect implementation for name.
func New(name Name) (Dialect, error) {
	switch name {
	case SQLite:
		return sqliteDialect{}, nil
	case MySQL:
		return mysqlDialect{}, nil
	case Postgres:
		return postgresDialect{}, nil
	default:
		return nil, fmt.Errorf("dialect: unrecognized dialect %q", name)
	}
}

// NewExecutor builds an OperationExecutor over db for the given dialect,
// wrapping every statement in the retry-with-backoff policy of RDB.
func NewExecutor(d Dialect, db *sql.DB) OperationExecutor {
	return &executor{dialect: d, rdb: &RDB{DB: db, Dialect: d}}
}

// NewIntrospector builds a SchemaIntrospector over db for the given
// dialect.
func NewIntrospector(d Dialect, db *sql.DB) SchemaIntrospector {
	switch d.Name() {
	case SQLite:
		return &sqliteIntrospector{db: db}
	case MySQL:
		return &mysqlIntrospector{db: db}
	case Postgres:
		return &postgresIntrospector{db: db}
	default:
		return nil
	}
}
