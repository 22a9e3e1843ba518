// SPDX-License-Identifier: Apache-2.0

package operations

var (
	_ Operation  = (*OpCreateIndex)(nil)
	_ Invertible = (*OpCreateIndex)(nil)
	_ Operation  = (*OpDropIndex)(nil)
	_ Invertible = (*OpDropIndex)(nil)
)

// OpCreateIndex creates a (possibly multi-column, possibly unique) index.
// Typeid 15.
type OpCreateIndex struct {
	base
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Unique  bool     `json:"unique,omitempty"`
}

func (o *OpCreateIndex) TypeID() TypeID { return TypeCreateIndex }
func (o *OpCreateIndex) Key() Key {
	return Key{TypeID: TypeCreateIndex, Table: o.Table, Name0: o.Name}
}
func (o *OpCreateIndex) Inverse() Operation {
	return &OpDropIndex{base: base{Database: o.Database, Table: o.Table}, Name: o.Name, Columns: o.Columns, Unique: o.Unique}
}

// OpDropIndex drops an index. Columns/Unique are retained so Inverse() can
// reconstruct a faithful OpCreateIndex.
type OpDropIndex struct {
	base
	Name    string   `json:"name"`
	Columns []string `json:"columns,omitempty"`
	Unique  bool     `json:"unique,omitempty"`
}

func (o *OpDropIndex) TypeID() TypeID { return TypeDropIndex }
func (o *OpDropIndex) Key() Key {
	return Key{TypeID: TypeDropIndex, Table: o.Table, Name0: o.Name}
}
func (o *OpDropIndex) Inverse() Operation {
	return &OpCreateIndex{base: base{Database: o.Database, Table: o.Table}, Name: o.Name, Columns: o.Columns, Unique: o.Unique}
}

// NewCreateIndex constructs an OpCreateIndex for table.
func NewCreateIndex(table, name string, columns []string, unique bool) *OpCreateIndex {
	return &OpCreateIndex{base: base{Table: table}, Name: name, Columns: columns, Unique: unique}
}

// NewDropIndex constructs an OpDropIndex for table.
func NewDropIndex(table, name string, columns []string, unique bool) *OpDropIndex {
	return &OpDropIndex{base: base{Table: table}, Name: name, Columns: columns, Unique: unique}
}
