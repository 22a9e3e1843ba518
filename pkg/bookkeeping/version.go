// SPDX-License-Identifier: Apache-2.0

package bookkeeping

import (
	"context"
	"fmt"

	"github.com/oapi-codegen/nullable"
)

// VersionRow is one row of DBSchemaVersion: the before/after
// version+checksum pair for one component. "Before" reflects what the
// databases currently hold; "after" is the target; they agree exactly
// when the component's migration is complete.
type VersionRow struct {
	ComponentName string
	Index0        int
	Version0      nullable.Nullable[int]
	Checksum0     nullable.Nullable[string]
	Index1        int
	Version1      nullable.Nullable[int]
	Checksum1     nullable.Nullable[string]
}

// IsSame reports whether the before/after pair agree: version0 equals
// version1 and checksum0 equals checksum1.
func (r *VersionRow) IsSame() bool {
	return nullableEqualInt(r.Version0, r.Version1) && nullableEqualString(r.Checksum0, r.Checksum1)
}

func nullableEqualInt(a, b nullable.Nullable[int]) bool {
	if a.IsNull() != b.IsNull() {
		return false
	}
	if a.IsNull() {
		return true
	}
	av, _ := a.Get()
	bv, _ := b.Get()
	return av == bv
}

func nullableEqualString(a, b nullable.Nullable[string]) bool {
	if a.IsNull() != b.IsNull() {
		return false
	}
	if a.IsNull() {
		return true
	}
	av, _ := a.Get()
	bv, _ := b.Get()
	return av == bv
}

// VersionDict is an auto-creating mapping over DBSchemaVersion rows: Get
// materializes a transient row for an absent component name, and Save
// persists every transient/dirty row, adding them on first store.
type VersionDict struct {
	names       TableNames
	dialectName string
	rows        map[string]*VersionRow
	dirty       map[string]bool
	tableExists bool
}

// LoadDefaultDict reads every DBSchemaVersion row into a VersionDict.
// When the table does not yet exist, returns a dict with tableExists
// false; the caller must re-save after the table is created by the plan
// itself.
func LoadDefaultDict(ctx context.Context, s SessionStore, names TableNames, dialectName string) (*VersionDict, error) {
	d := &VersionDict{names: names, dialectName: dialectName, rows: map[string]*VersionRow{}, dirty: map[string]bool{}}
	if !TableExists(ctx, s, names.DBSchemaVersion) {
		return d, nil
	}
	d.tableExists = true

	rows, err := s.QueryContext(ctx, fmt.Sprintf(
		"SELECT component_name, index0, version0, checksum0, index1, version1, checksum1 FROM %s", names.DBSchemaVersion))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var r VersionRow
		var v0, v1 *int
		var c0, c1 *string
		if err := rows.Scan(&r.ComponentName, &r.Index0, &v0, &c0, &r.Index1, &v1, &c1); err != nil {
			return nil, err
		}
		r.Version0 = intToNullable(v0)
		r.Checksum0 = stringToNullable(c0)
		r.Version1 = intToNullable(v1)
		r.Checksum1 = stringToNullable(c1)
		d.rows[r.ComponentName] = &r
	}
	return d, rows.Err()
}

func intToNullable(v *int) nullable.Nullable[int] {
	if v == nil {
		return nullable.NewNullNullable[int]()
	}
	return nullable.NewNullableWithValue(*v)
}

func stringToNullable(v *string) nullable.Nullable[string] {
	if v == nil {
		return nullable.NewNullNullable[string]()
	}
	return nullable.NewNullableWithValue(*v)
}

// Get returns the row for component, materializing a transient one
// (index0 = index1 = current dict size) if absent.
func (d *VersionDict) Get(component string) *VersionRow {
	if r, ok := d.rows[component]; ok {
		return r
	}
	r := &VersionRow{
		ComponentName: component,
		Index0:        len(d.rows),
		Index1:        len(d.rows),
		Version0:      nullable.NewNullNullable[int](),
		Checksum0:     nullable.NewNullNullable[string](),
		Version1:      nullable.NewNullNullable[int](),
		Checksum1:     nullable.NewNullNullable[string](),
	}
	d.rows[component] = r
	d.dirty[component] = true
	return r
}

// MarkDirty flags component's row for persistence on the next Save.
func (d *VersionDict) MarkDirty(component string) { d.dirty[component] = true }

// Rows returns every materialized row, sorted by Index1 ascending for
// forward planning order.
func (d *VersionDict) Rows() []*VersionRow {
	out := make([]*VersionRow, 0, len(d.rows))
	for _, r := range d.rows {
		out = append(out, r)
	}
	sortRowsByIndex1(out)
	return out
}

func sortRowsByIndex1(rows []*VersionRow) {
	for i := 1; i < len(rows); i++ {
		for j := i; j > 0 && rows[j].Index1 < rows[j-1].Index1; j-- {
			rows[j], rows[j-1] = rows[j-1], rows[j]
		}
	}
}

// Save persists every dirty row. Returns false without error if the
// table does not yet exist; the caller must retry after CreateBookkeepingTables.
func (d *VersionDict) Save(ctx context.Context, s SessionStore) (bool, error) {
	if !TableExists(ctx, s, d.names.DBSchemaVersion) {
		return false, nil
	}

	for component := range d.dirty {
		r := d.rows[component]
		exists, err := d.rowExists(ctx, s, component)
		if err != nil {
			return false, err
		}

		v0 := nullableIntPtr(r.Version0)
		c0 := nullableStringPtr(r.Checksum0)
		v1 := nullableIntPtr(r.Version1)
		c1 := nullableStringPtr(r.Checksum1)

		if exists {
			_, err = s.ExecContext(ctx, fmt.Sprintf(
				"UPDATE %s SET index0=%s, version0=%s, checksum0=%s, index1=%s, version1=%s, checksum1=%s WHERE component_name=%s",
				d.names.DBSchemaVersion,
				placeholder(d.dialectName, 1), placeholder(d.dialectName, 2), placeholder(d.dialectName, 3),
				placeholder(d.dialectName, 4), placeholder(d.dialectName, 5), placeholder(d.dialectName, 6),
				placeholder(d.dialectName, 7)),
				r.Index0, v0, c0, r.Index1, v1, c1, component)
		} else {
			_, err = s.ExecContext(ctx, fmt.Sprintf(
				"INSERT INTO %s (component_name, index0, version0, checksum0, index1, version1, checksum1) VALUES (%s, %s, %s, %s, %s, %s, %s)",
				d.names.DBSchemaVersion,
				placeholder(d.dialectName, 1), placeholder(d.dialectName, 2), placeholder(d.dialectName, 3),
				placeholder(d.dialectName, 4), placeholder(d.dialectName, 5), placeholder(d.dialectName, 6), placeholder(d.dialectName, 7)),
				component, r.Index0, v0, c0, r.Index1, v1, c1)
		}
		if err != nil {
			return false, err
		}
	}
	d.dirty = map[string]bool{}
	d.tableExists = true
	return true, nil
}

func (d *VersionDict) rowExists(ctx context.Context, s SessionStore, component string) (bool, error) {
	rows, err := s.QueryContext(ctx, fmt.Sprintf(
		"SELECT 1 FROM %s WHERE component_name = %s", d.names.DBSchemaVersion, placeholder(d.dialectName, 1)), component)
	if err != nil {
		return false, err
	}
	defer rows.Close()
	return rows.Next(), rows.Err()
}

func nullableIntPtr(n nullable.Nullable[int]) *int {
	if n.IsNull() {
		return nil
	}
	v, _ := n.Get()
	return &v
}

func nullableStringPtr(n nullable.Nullable[string]) *string {
	if n.IsNull() {
		return nil
	}
	v, _ := n.Get()
	return &v
}
