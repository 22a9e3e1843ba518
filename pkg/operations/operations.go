// SPDX-License-Identifier: Apache-2.0

// Package operations implements the engine's operation model: sixteen
// concrete, typed, serializable DDL primitives with stable numeric
// typeids, each exposing a Key() usable as the idempotence boundary in
// the migration planner.
package operations

import "fmt"

// TypeID is the stable small integer assigned to each operation kind.
// These values are part of the on-disk and bookkeeping contract and must
// never be renumbered.
type TypeID int

const (
	TypeCreateTable TypeID = 1
	TypeRenameTable TypeID = 2
	TypeDropTable   TypeID = 3

	TypeAddColumn   TypeID = 4
	TypeAlterColumn TypeID = 5
	TypeDropColumn  TypeID = 6

	TypeCreatePrimaryKey TypeID = 7
	TypeDropPrimaryKey   TypeID = 8
	TypeCreateForeignKey TypeID = 9
	TypeDropForeignKey   TypeID = 10
	TypeCreateUnique     TypeID = 11
	TypeDropUnique       TypeID = 12
	TypeCreateCheck      TypeID = 13
	TypeDropCheck        TypeID = 14

	TypeCreateIndex TypeID = 15
	TypeDropIndex   TypeID = 16
)

func (t TypeID) String() string {
	switch t {
	case TypeCreateTable:
		return "create_table"
	case TypeRenameTable:
		return "rename_table"
	case TypeDropTable:
		return "drop_table"
	case TypeAddColumn:
		return "add_column"
	case TypeAlterColumn:
		return "alter_column"
	case TypeDropColumn:
		return "drop_column"
	case TypeCreatePrimaryKey:
		return "create_primary_key"
	case TypeDropPrimaryKey:
		return "drop_primary_key"
	case TypeCreateForeignKey:
		return "create_foreign_key"
	case TypeDropForeignKey:
		return "drop_foreign_key"
	case TypeCreateUnique:
		return "create_unique"
	case TypeDropUnique:
		return "drop_unique"
	case TypeCreateCheck:
		return "create_check"
	case TypeDropCheck:
		return "drop_check"
	case TypeCreateIndex:
		return "create_index"
	case TypeDropIndex:
		return "drop_index"
	default:
		return fmt.Sprintf("typeid(%d)", int(t))
	}
}

// Key is the operation key: the tuple (typeid, table_name, name0,
// name1). It is globally unique within a migration run per database, and
// is the idempotence boundary checked against DBSchemaOperation before
// an operation is (re-)applied.
type Key struct {
	TypeID TypeID
	Table  string
	Name0  string
	Name1  string
}

func (k Key) String() string {
	return fmt.Sprintf("%s(table=%q, name0=%q, name1=%q)", k.TypeID, k.Table, k.Name0, k.Name1)
}

// Operation is a tagged record with fields (typeid, database_name,
// table_name?, name0?, name1?, payload).
type Operation interface {
	// TypeID returns the operation's stable numeric type.
	TypeID() TypeID

	// Key returns the operation key used for idempotence checks and
	// deterministic ordering.
	Key() Key

	// DatabaseName is the database this operation applies to.
	DatabaseName() string

	// SetDatabaseName assigns the target database; used by the planner
	// when expanding a table across its configured databases/shards.
	SetDatabaseName(name string)

	// TableName returns the table this operation concerns, or "" if the
	// operation is not table-scoped.
	TableName() string
}

// Invertible operations have a well-defined inverse used by the withdraw
// resolver: create<->drop, rename swaps name0/name1, AlterColumn swaps
// before/after.
type Invertible interface {
	Inverse() Operation
}

// ColumnDef describes a column's declared shape, shared by OpCreateTable,
// OpAddColumn and the before/after sides of OpAlterColumn.
type ColumnDef struct {
	Name       string            `json:"name"`
	Type       string            `json:"type"`
	Length     int               `json:"length,omitempty"`
	Precision  int               `json:"precision,omitempty"`
	Scale      int               `json:"scale,omitempty"`
	Nullable   bool              `json:"nullable"`
	Unique     bool              `json:"unique"`
	PrimaryKey bool              `json:"primary_key"`
	Default    *string           `json:"default,omitempty"`
	Comment    string            `json:"comment,omitempty"`
	EnumValues []string          `json:"enum_values,omitempty"`
	References *ForeignKeyTarget `json:"references,omitempty"`
}

// Equal reports whether two ColumnDefs are equal across every attribute
// AlterColumn compares: name, type, nullability, default, comment.
func (c ColumnDef) Equal(o ColumnDef) bool {
	if c.Name != o.Name || c.Type != o.Type || c.Nullable != o.Nullable || c.Comment != o.Comment {
		return false
	}
	if (c.Default == nil) != (o.Default == nil) {
		return false
	}
	if c.Default != nil && *c.Default != *o.Default {
		return false
	}
	return true
}

// ForeignKeyTarget is the (table, column) a column-level foreign key
// references.
type ForeignKeyTarget struct {
	Table    string `json:"table"`
	Column   string `json:"column"`
	OnDelete string `json:"on_delete,omitempty"`
}

type base struct {
	Database string `json:"database"`
	Table    string `json:"table,omitempty"`
}

func (b base) DatabaseName() string      { return b.Database }
func (b *base) SetDatabaseName(n string) { b.Database = n }
func (b base) TableName() string         { return b.Table }

// MapTableNames returns a copy of op with every table name it carries
// passed through rename: the op's own table plus, for table renames, both
// endpoints. The planner uses it to fan a sharded table's logical
// operations out to per-suffix physical tables, and to decouple the copies
// it assigns to different databases from one another.
func MapTableNames(op Operation, rename func(string) string) Operation {
	switch o := op.(type) {
	case *OpCreateTable:
		cp := *o
		cp.Table = rename(cp.Table)
		return &cp
	case *OpRenameTable:
		cp := *o
		cp.Table = rename(cp.Table)
		cp.Name0 = rename(cp.Name0)
		cp.Name1 = rename(cp.Name1)
		return &cp
	case *OpDropTable:
		cp := *o
		cp.Table = rename(cp.Table)
		return &cp
	case *OpAddColumn:
		cp := *o
		cp.Table = rename(cp.Table)
		return &cp
	case *OpAlterColumn:
		cp := *o
		cp.Table = rename(cp.Table)
		return &cp
	case *OpDropColumn:
		cp := *o
		cp.Table = rename(cp.Table)
		return &cp
	case *OpCreatePrimaryKey:
		cp := *o
		cp.Table = rename(cp.Table)
		return &cp
	case *OpDropPrimaryKey:
		cp := *o
		cp.Table = rename(cp.Table)
		return &cp
	case *OpCreateForeignKey:
		cp := *o
		cp.Table = rename(cp.Table)
		return &cp
	case *OpDropForeignKey:
		cp := *o
		cp.Table = rename(cp.Table)
		return &cp
	case *OpCreateUnique:
		cp := *o
		cp.Table = rename(cp.Table)
		return &cp
	case *OpDropUnique:
		cp := *o
		cp.Table = rename(cp.Table)
		return &cp
	case *OpCreateCheck:
		cp := *o
		cp.Table = rename(cp.Table)
		return &cp
	case *OpDropCheck:
		cp := *o
		cp.Table = rename(cp.Table)
		return &cp
	case *OpCreateIndex:
		cp := *o
		cp.Table = rename(cp.Table)
		return &cp
	case *OpDropIndex:
		cp := *o
		cp.Table = rename(cp.Table)
		return &cp
	default:
		return op
	}
}
