// SPDX-License-Identifier: Apache-2.0

package operations

var (
	_ Operation  = (*OpAddColumn)(nil)
	_ Invertible = (*OpAddColumn)(nil)
	_ Operation  = (*OpAlterColumn)(nil)
	_ Invertible = (*OpAlterColumn)(nil)
	_ Operation  = (*OpDropColumn)(nil)
	_ Invertible = (*OpDropColumn)(nil)
)

// OpAddColumn adds a new column to an existing table.
type OpAddColumn struct {
	base
	Column ColumnDef `json:"column"`
}

func (o *OpAddColumn) TypeID() TypeID { return TypeAddColumn }

func (o *OpAddColumn) Key() Key {
	return Key{TypeID: TypeAddColumn, Table: o.Table, Name0: o.Column.Name}
}

func (o *OpAddColumn) Inverse() Operation {
	return &OpDropColumn{base: base{Database: o.Database, Table: o.Table}, Column: o.Column}
}

// OpAlterColumn changes an existing column's name and/or attributes. Name0
// is the column's current name, Name1 its target name (equal to Name0 when
// only attributes change). Before/After carry the full column shape so
// that dialect adapters can restate type/default/nullability where the
// dialect requires it (e.g. MySQL's ALTER COLUMN), and so CheckArguments
// can detect a no-op alter.
type OpAlterColumn struct {
	base
	Name0  string    `json:"name0"`
	Name1  string    `json:"name1"`
	Before ColumnDef `json:"before"`
	After  ColumnDef `json:"after"`
}

func (o *OpAlterColumn) TypeID() TypeID { return TypeAlterColumn }

func (o *OpAlterColumn) Key() Key {
	return Key{TypeID: TypeAlterColumn, Table: o.Table, Name0: o.Name0, Name1: o.Name1}
}

// CheckArguments reports whether this alter is a no-op: every attribute
// AlterColumn compares (name, type, nullability, default, comment) is
// unchanged between Before and After.
func (o *OpAlterColumn) CheckArguments() bool {
	return o.Name0 == o.Name1 && o.Before.Equal(o.After)
}

func (o *OpAlterColumn) Inverse() Operation {
	return &OpAlterColumn{
		base:   base{Database: o.Database, Table: o.Table},
		Name0:  o.Name1,
		Name1:  o.Name0,
		Before: o.After,
		After:  o.Before,
	}
}

// OpDropColumn drops a column. Column is retained so Inverse() can
// reconstruct a faithful OpAddColumn.
type OpDropColumn struct {
	base
	Column ColumnDef `json:"column"`
}

func (o *OpDropColumn) TypeID() TypeID { return TypeDropColumn }

func (o *OpDropColumn) Key() Key {
	return Key{TypeID: TypeDropColumn, Table: o.Table, Name0: o.Column.Name}
}

func (o *OpDropColumn) Inverse() Operation {
	return &OpAddColumn{base: base{Database: o.Database, Table: o.Table}, Column: o.Column}
}

// NewAddColumn constructs an OpAddColumn for table.
func NewAddColumn(table string, column ColumnDef) *OpAddColumn {
	return &OpAddColumn{base: base{Table: table}, Column: column}
}

// NewDropColumn constructs an OpDropColumn for table.
func NewDropColumn(table string, column ColumnDef) *OpDropColumn {
	return &OpDropColumn{base: base{Table: table}, Column: column}
}

// NewAlterColumn constructs an OpAlterColumn for table.
func NewAlterColumn(table, name0, name1 string, before, after ColumnDef) *OpAlterColumn {
	return &OpAlterColumn{base: base{Table: table}, Name0: name0, Name1: name1, Before: before, After: after}
}
