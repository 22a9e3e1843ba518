// SPDX-License-Identifier: Apache-2.0

// Package metadata implements version and patch documents: canonical XML
// snapshots of a component's schema and the structural diffs between
// them.
package metadata

// ModelDefinition is the builder value an embedding application constructs
// to describe one table's shape. The engine consumes ModelDefinition
// values directly: there is no per-model Go type.
type ModelDefinition struct {
	Name        string          `yaml:"name" validate:"required,max=64"`
	Columns     []ColumnDef     `yaml:"columns" validate:"required,min=1,dive"`
	PrimaryKeys []PrimaryKeyDef `yaml:"primary_keys,omitempty" validate:"dive"`
	ForeignKeys []ForeignKeyDef `yaml:"foreign_keys,omitempty" validate:"dive"`
	Uniques     []UniqueDef     `yaml:"uniques,omitempty" validate:"dive"`
	Checks      []CheckDef      `yaml:"checks,omitempty" validate:"dive"`
	Indexes     []IndexDef      `yaml:"indexes,omitempty" validate:"dive"`
	Comment     string          `yaml:"comment,omitempty"`
	Shard       *ShardPolicy    `yaml:"shard,omitempty"`
}

// ShardPolicy records the per-table sharding declaration used by
// shardmap.Expand: a map of database name to ordered shard suffixes. A nil ShardPolicy means the table is unsharded.
type ShardPolicy struct {
	Shards map[string][]string `yaml:"shards"`
}

// ColumnDef is a column's declared shape within a ModelDefinition.
type ColumnDef struct {
	Name       string               `yaml:"name" validate:"required,max=64"`
	Type       string               `yaml:"type" validate:"required,oneof=integer bigint smallint varchar text boolean date datetime timestamp decimal float enum"`
	Length     int                  `yaml:"length,omitempty"`
	Precision  int                  `yaml:"precision,omitempty"`
	Scale      int                  `yaml:"scale,omitempty"`
	Nullable   bool                 `yaml:"nullable,omitempty"`
	Unique     bool                 `yaml:"unique,omitempty"`
	PrimaryKey bool                 `yaml:"primary_key,omitempty"`
	Default    *string              `yaml:"default,omitempty"`
	Comment    string               `yaml:"comment,omitempty"`
	EnumValues []string             `yaml:"enum_values,omitempty"`
	ForeignKey *ColumnForeignKeyDef `yaml:"foreign_key,omitempty"`
}

// ColumnForeignKeyDef is a column-level foreign key reference, emitted as
// an inline <ForeignKey> child of its owning <Column> in the canonical
// XML.
type ColumnForeignKeyDef struct {
	Table    string `yaml:"table" validate:"required"`
	Column   string `yaml:"column" validate:"required"`
	OnDelete string `yaml:"on_delete,omitempty"`
}

// PrimaryKeyDef is a table-level (possibly multi-column) primary key.
type PrimaryKeyDef struct {
	Name    string   `yaml:"name" validate:"required"`
	Columns []string `yaml:"columns" validate:"required,min=1"`
}

// ForeignKeyDef is a table-level foreign key constraint.
type ForeignKeyDef struct {
	Name              string   `yaml:"name" validate:"required"`
	Columns           []string `yaml:"columns" validate:"required,min=1"`
	ReferencedTable   string   `yaml:"referenced_table" validate:"required"`
	ReferencedColumns []string `yaml:"referenced_columns" validate:"required,min=1"`
	OnDelete          string   `yaml:"on_delete,omitempty"`
	OnUpdate          string   `yaml:"on_update,omitempty"`
}

// UniqueDef is a table-level (possibly multi-column) unique constraint.
type UniqueDef struct {
	Name    string   `yaml:"name" validate:"required"`
	Columns []string `yaml:"columns" validate:"required,min=1"`
}

// CheckDef is a table-level check constraint.
type CheckDef struct {
	Name       string   `yaml:"name" validate:"required"`
	Columns    []string `yaml:"columns,omitempty"`
	Expression string   `yaml:"expression" validate:"required"`
}

// IndexDef is a (possibly multi-column, possibly unique) index.
type IndexDef struct {
	Name    string   `yaml:"name" validate:"required"`
	Columns []string `yaml:"columns" validate:"required,min=1"`
	Unique  bool     `yaml:"unique,omitempty"`
}
