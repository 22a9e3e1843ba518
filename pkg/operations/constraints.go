// SPDX-License-Identifier: Apache-2.0

package operations

var (
	_ Operation  = (*OpCreatePrimaryKey)(nil)
	_ Invertible = (*OpCreatePrimaryKey)(nil)
	_ Operation  = (*OpDropPrimaryKey)(nil)
	_ Invertible = (*OpDropPrimaryKey)(nil)
	_ Operation  = (*OpCreateForeignKey)(nil)
	_ Invertible = (*OpCreateForeignKey)(nil)
	_ Operation  = (*OpDropForeignKey)(nil)
	_ Invertible = (*OpDropForeignKey)(nil)
	_ Operation  = (*OpCreateUnique)(nil)
	_ Invertible = (*OpCreateUnique)(nil)
	_ Operation  = (*OpDropUnique)(nil)
	_ Invertible = (*OpDropUnique)(nil)
	_ Operation  = (*OpCreateCheck)(nil)
	_ Invertible = (*OpCreateCheck)(nil)
	_ Operation  = (*OpDropCheck)(nil)
	_ Invertible = (*OpDropCheck)(nil)
)

// OpCreatePrimaryKey creates a (possibly multi-column) primary key
// constraint. Typeid 7.
type OpCreatePrimaryKey struct {
	base
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
}

func (o *OpCreatePrimaryKey) TypeID() TypeID { return TypeCreatePrimaryKey }
func (o *OpCreatePrimaryKey) Key() Key {
	return Key{TypeID: TypeCreatePrimaryKey, Table: o.Table, Name0: o.Name}
}
func (o *OpCreatePrimaryKey) Inverse() Operation {
	return &OpDropPrimaryKey{base: base{Database: o.Database, Table: o.Table}, Name: o.Name, Columns: o.Columns}
}

// OpDropPrimaryKey drops a primary key constraint. Typeid 8.
type OpDropPrimaryKey struct {
	base
	Name    string   `json:"name"`
	Columns []string `json:"columns,omitempty"`
}

func (o *OpDropPrimaryKey) TypeID() TypeID { return TypeDropPrimaryKey }
func (o *OpDropPrimaryKey) Key() Key {
	return Key{TypeID: TypeDropPrimaryKey, Table: o.Table, Name0: o.Name}
}
func (o *OpDropPrimaryKey) Inverse() Operation {
	return &OpCreatePrimaryKey{base: base{Database: o.Database, Table: o.Table}, Name: o.Name, Columns: o.Columns}
}

// OpCreateForeignKey creates a table-level foreign key constraint. Typeid 9.
type OpCreateForeignKey struct {
	base
	Name              string   `json:"name"`
	Columns           []string `json:"columns"`
	ReferencedTable   string   `json:"referenced_table"`
	ReferencedColumns []string `json:"referenced_columns"`
	OnDelete          string   `json:"on_delete,omitempty"`
	OnUpdate          string   `json:"on_update,omitempty"`
}

func (o *OpCreateForeignKey) TypeID() TypeID { return TypeCreateForeignKey }
func (o *OpCreateForeignKey) Key() Key {
	return Key{TypeID: TypeCreateForeignKey, Table: o.Table, Name0: o.Name}
}
func (o *OpCreateForeignKey) Inverse() Operation {
	return &OpDropForeignKey{base: base{Database: o.Database, Table: o.Table}, Name: o.Name, Columns: o.Columns,
		ReferencedTable: o.ReferencedTable, ReferencedColumns: o.ReferencedColumns, OnDelete: o.OnDelete, OnUpdate: o.OnUpdate}
}

// OpDropForeignKey drops a foreign key constraint. Typeid 10.
type OpDropForeignKey struct {
	base
	Name              string   `json:"name"`
	Columns           []string `json:"columns,omitempty"`
	ReferencedTable   string   `json:"referenced_table,omitempty"`
	ReferencedColumns []string `json:"referenced_columns,omitempty"`
	OnDelete          string   `json:"on_delete,omitempty"`
	OnUpdate          string   `json:"on_update,omitempty"`
}

func (o *OpDropForeignKey) TypeID() TypeID { return TypeDropForeignKey }
func (o *OpDropForeignKey) Key() Key {
	return Key{TypeID: TypeDropForeignKey, Table: o.Table, Name0: o.Name}
}
func (o *OpDropForeignKey) Inverse() Operation {
	return &OpCreateForeignKey{base: base{Database: o.Database, Table: o.Table}, Name: o.Name, Columns: o.Columns,
		ReferencedTable: o.ReferencedTable, ReferencedColumns: o.ReferencedColumns, OnDelete: o.OnDelete, OnUpdate: o.OnUpdate}
}

// OpCreateUnique creates a (possibly multi-column) unique constraint.
// Typeid 11.
type OpCreateUnique struct {
	base
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
}

func (o *OpCreateUnique) TypeID() TypeID { return TypeCreateUnique }
func (o *OpCreateUnique) Key() Key {
	return Key{TypeID: TypeCreateUnique, Table: o.Table, Name0: o.Name}
}
func (o *OpCreateUnique) Inverse() Operation {
	return &OpDropUnique{base: base{Database: o.Database, Table: o.Table}, Name: o.Name, Columns: o.Columns}
}

// OpDropUnique drops a unique constraint. Typeid 12.
type OpDropUnique struct {
	base
	Name    string   `json:"name"`
	Columns []string `json:"columns,omitempty"`
}

func (o *OpDropUnique) TypeID() TypeID { return TypeDropUnique }
func (o *OpDropUnique) Key() Key {
	return Key{TypeID: TypeDropUnique, Table: o.Table, Name0: o.Name}
}
func (o *OpDropUnique) Inverse() Operation {
	return &OpCreateUnique{base: base{Database: o.Database, Table: o.Table}, Name: o.Name, Columns: o.Columns}
}

// OpCreateCheck creates a check constraint. Typeid 13.
type OpCreateCheck struct {
	base
	Name       string   `json:"name"`
	Columns    []string `json:"columns"`
	Expression string   `json:"expression"`
}

func (o *OpCreateCheck) TypeID() TypeID { return TypeCreateCheck }
func (o *OpCreateCheck) Key() Key {
	return Key{TypeID: TypeCreateCheck, Table: o.Table, Name0: o.Name}
}
func (o *OpCreateCheck) Inverse() Operation {
	return &OpDropCheck{base: base{Database: o.Database, Table: o.Table}, Name: o.Name, Columns: o.Columns, Expression: o.Expression}
}

// OpDropCheck drops a check constraint. Typeid 14.
type OpDropCheck struct {
	base
	Name       string   `json:"name"`
	Columns    []string `json:"columns,omitempty"`
	Expression string   `json:"expression,omitempty"`
}

func (o *OpDropCheck) TypeID() TypeID { return TypeDropCheck }
func (o *OpDropCheck) Key() Key {
	return Key{TypeID: TypeDropCheck, Table: o.Table, Name0: o.Name}
}
func (o *OpDropCheck) Inverse() Operation {
	return &OpCreateCheck{base: base{Database: o.Database, Table: o.Table}, Name: o.Name, Columns: o.Columns, Expression: o.Expression}
}

// NewCreatePrimaryKey constructs an OpCreatePrimaryKey for table.
func NewCreatePrimaryKey(table, name string, columns []string) *OpCreatePrimaryKey {
	return &OpCreatePrimaryKey{base: base{Table: table}, Name: name, Columns: columns}
}

// NewDropPrimaryKey constructs an OpDropPrimaryKey for table.
func NewDropPrimaryKey(table, name string, columns []string) *OpDropPrimaryKey {
	return &OpDropPrimaryKey{base: base{Table: table}, Name: name, Columns: columns}
}

// NewCreateForeignKey constructs an OpCreateForeignKey for table.
func NewCreateForeignKey(table, name string, columns []string, referencedTable string, referencedColumns []string, onDelete, onUpdate string) *OpCreateForeignKey {
	return &OpCreateForeignKey{base: base{Table: table}, Name: name, Columns: columns,
		ReferencedTable: referencedTable, ReferencedColumns: referencedColumns, OnDelete: onDelete, OnUpdate: onUpdate}
}

// NewDropForeignKey constructs an OpDropForeignKey for table.
func NewDropForeignKey(table, name string, columns []string, referencedTable string, referencedColumns []string, onDelete, onUpdate string) *OpDropForeignKey {
	return &OpDropForeignKey{base: base{Table: table}, Name: name, Columns: columns,
		ReferencedTable: referencedTable, ReferencedColumns: referencedColumns, OnDelete: onDelete, OnUpdate: onUpdate}
}

// NewCreateUnique constructs an OpCreateUnique for table.
func NewCreateUnique(table, name string, columns []string) *OpCreateUnique {
	return &OpCreateUnique{base: base{Table: table}, Name: name, Columns: columns}
}

// NewDropUnique constructs an OpDropUnique for table.
func NewDropUnique(table, name string, columns []string) *OpDropUnique {
	return &OpDropUnique{base: base{Table: table}, Name: name, Columns: columns}
}

// NewCreateCheck constructs an OpCreateCheck for table.
func NewCreateCheck(table, name string, columns []string, expression string) *OpCreateCheck {
	return &OpCreateCheck{base: base{Table: table}, Name: name, Columns: columns, Expression: expression}
}

// NewDropCheck constructs an OpDropCheck for table.
func NewDropCheck(table, name string, columns []string, expression string) *OpDropCheck {
	return &OpDropCheck{base: base{Table: table}, Name: name, Columns: columns, Expression: expression}
}
