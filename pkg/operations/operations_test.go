// SPDX-License-Identifier: Apache-2.0

package operations

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListJSONRoundTrip(t *testing.T) {
	def := "0"
	ops := List{
		NewCreateTable("t0", []ColumnDef{
			{Name: "id", Type: "integer", PrimaryKey: true},
			{Name: "count", Type: "integer", Default: &def},
		}, "first table"),
		NewAlterColumn("t0", "count", "total",
			ColumnDef{Name: "count", Type: "integer", Default: &def},
			ColumnDef{Name: "total", Type: "bigint"}),
		NewCreateForeignKey("t0", "fk_owner", []string{"owner_id"}, "users", []string{"id"}, "CASCADE", ""),
		NewDropIndex("t0", "idx_old", []string{"count"}, false),
	}

	raw, err := json.Marshal(ops)
	require.NoError(t, err)

	var got List
	require.NoError(t, json.Unmarshal(raw, &got))
	require.Len(t, got, len(ops))
	for i := range ops {
		assert.Equal(t, ops[i].TypeID(), got[i].TypeID())
		assert.Equal(t, ops[i].Key(), got[i].Key())
	}

	alter, ok := got[1].(*OpAlterColumn)
	require.True(t, ok)
	require.NotNil(t, alter.Before.Default)
	assert.Equal(t, "0", *alter.Before.Default)
	assert.Nil(t, alter.After.Default)
}

func TestListUnmarshalRejectsUnknownTypeName(t *testing.T) {
	var got List
	err := json.Unmarshal([]byte(`[{"explode_table": {}}]`), &got)
	assert.ErrorContains(t, err, "unknown operation typeid name")
}

func TestTypeIDsAreStable(t *testing.T) {
	assert.Equal(t, 1, int(TypeCreateTable))
	assert.Equal(t, 4, int(TypeAddColumn))
	assert.Equal(t, 7, int(TypeCreatePrimaryKey))
	assert.Equal(t, 14, int(TypeDropCheck))
	assert.Equal(t, 16, int(TypeDropIndex))
}

func TestInversesRoundTrip(t *testing.T) {
	col := ColumnDef{Name: "c", Type: "varchar"}

	tests := []struct {
		name string
		op   Operation
	}{
		{"create table", NewCreateTable("t", []ColumnDef{col}, "")},
		{"rename table", NewRenameTable("t", "t", "u")},
		{"add column", NewAddColumn("t", col)},
		{"alter column", NewAlterColumn("t", "c", "d", col, ColumnDef{Name: "d", Type: "varchar"})},
		{"create primary key", NewCreatePrimaryKey("t", "pk", []string{"c"})},
		{"create foreign key", NewCreateForeignKey("t", "fk", []string{"c"}, "u", []string{"id"}, "", "")},
		{"create unique", NewCreateUnique("t", "uq", []string{"c"})},
		{"create check", NewCreateCheck("t", "ck", nil, "c > 0")},
		{"create index", NewCreateIndex("t", "ix", []string{"c"}, true)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, ok := tt.op.(Invertible)
			require.True(t, ok)
			back, ok := inv.Inverse().(Invertible)
			require.True(t, ok)
			assert.Equal(t, tt.op.Key(), back.Inverse().Key())
		})
	}
}

func TestRenameInverseSwapsNames(t *testing.T) {
	op := NewRenameTable("t", "old", "new")
	inv, ok := op.Inverse().(*OpRenameTable)
	require.True(t, ok)
	assert.Equal(t, "new", inv.Name0)
	assert.Equal(t, "old", inv.Name1)
}

func TestAlterColumnCheckArguments(t *testing.T) {
	col := ColumnDef{Name: "c", Type: "integer", Nullable: true}

	noop := NewAlterColumn("t", "c", "c", col, col)
	assert.True(t, noop.CheckArguments())

	changed := NewAlterColumn("t", "c", "c", col, ColumnDef{Name: "c", Type: "bigint", Nullable: true})
	assert.False(t, changed.CheckArguments())

	renamed := NewAlterColumn("t", "c", "d", col, ColumnDef{Name: "d", Type: "integer", Nullable: true})
	assert.False(t, renamed.CheckArguments())
}

func TestMapTableNamesClonesAndRewrites(t *testing.T) {
	op := NewRenameTable("t", "t", "u")
	shard := MapTableNames(op, func(n string) string { return n + "_000" })

	renamed, ok := shard.(*OpRenameTable)
	require.True(t, ok)
	assert.Equal(t, "t_000", renamed.TableName())
	assert.Equal(t, "t_000", renamed.Name0)
	assert.Equal(t, "u_000", renamed.Name1)

	// the original is untouched
	assert.Equal(t, "t", op.TableName())
	assert.Equal(t, "u", op.Name1)

	add := NewAddColumn("t", ColumnDef{Name: "c", Type: "integer"})
	clone := MapTableNames(add, func(n string) string { return n })
	clone.SetDatabaseName("db1")
	assert.Equal(t, "", add.DatabaseName())
}
