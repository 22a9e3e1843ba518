// SPDX-License-Identifier: Apache-2.0

package operations

var (
	_ Operation  = (*OpCreateTable)(nil)
	_ Invertible = (*OpCreateTable)(nil)
	_ Operation  = (*OpRenameTable)(nil)
	_ Invertible = (*OpRenameTable)(nil)
	_ Operation  = (*OpDropTable)(nil)
	_ Invertible = (*OpDropTable)(nil)
)

// OpCreateTable creates a new table with the given columns.
type OpCreateTable struct {
	base
	Columns []ColumnDef `json:"columns"`
	Comment string      `json:"comment,omitempty"`
}

func (o *OpCreateTable) TypeID() TypeID { return TypeCreateTable }

func (o *OpCreateTable) Key() Key { return Key{TypeID: TypeCreateTable, Table: o.Table} }

func (o *OpCreateTable) Inverse() Operation {
	return &OpDropTable{base: base{Database: o.Database, Table: o.Table}}
}

// OpRenameTable renames a table from Name0 to Name1.
type OpRenameTable struct {
	base
	Name0 string `json:"name0"`
	Name1 string `json:"name1"`
}

func (o *OpRenameTable) TypeID() TypeID { return TypeRenameTable }

func (o *OpRenameTable) Key() Key {
	return Key{TypeID: TypeRenameTable, Table: o.Table, Name0: o.Name0, Name1: o.Name1}
}

func (o *OpRenameTable) Inverse() Operation {
	return &OpRenameTable{base: base{Database: o.Database, Table: o.Table}, Name0: o.Name1, Name1: o.Name0}
}

// OpDropTable drops a table. Columns is retained only so that Inverse() can
// reconstruct a faithful OpCreateTable for skwithdraw.
type OpDropTable struct {
	base
	Columns []ColumnDef `json:"columns,omitempty"`
	Comment string      `json:"comment,omitempty"`
}

func (o *OpDropTable) TypeID() TypeID { return TypeDropTable }

func (o *OpDropTable) Key() Key { return Key{TypeID: TypeDropTable, Table: o.Table} }

func (o *OpDropTable) Inverse() Operation {
	return &OpCreateTable{base: base{Database: o.Database, Table: o.Table}, Columns: o.Columns, Comment: o.Comment}
}

// NewCreateTable constructs an OpCreateTable for table, used by callers
// outside this package (e.g. the planner) that cannot name the unexported
// base field directly.
func NewCreateTable(table string, columns []ColumnDef, comment string) *OpCreateTable {
	return &OpCreateTable{base: base{Table: table}, Columns: columns, Comment: comment}
}

// NewDropTable constructs an OpDropTable for table.
func NewDropTable(table string, columns []ColumnDef, comment string) *OpDropTable {
	return &OpDropTable{base: base{Table: table}, Columns: columns, Comment: comment}
}

// NewRenameTable constructs an OpRenameTable for table.
func NewRenameTable(table, name0, name1 string) *OpRenameTable {
	return &OpRenameTable{base: base{Table: table}, Name0: name0, Name1: name1}
}
