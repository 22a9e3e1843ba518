// SPDX-License-Identifier: Apache-2.0

package bookkeeping

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/oapi-codegen/nullable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charlesw1234/sooners-migrate/pkg/operations"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func testNames() TableNames { return NewTableNames("sooners_") }

func TestConfigurationNoOpsWithoutTable(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	conf := NewConfiguration(testNames(), "sqlite")

	_, ok, err := conf.Load(ctx, db, ConfTypeSchemaParams0)
	require.NoError(t, err)
	assert.False(t, ok)

	saved, err := conf.Save(ctx, db, ConfTypeSchemaParams0, "pending")
	require.NoError(t, err)
	assert.False(t, saved)
}

func TestConfigurationSlicesLongTextIntoParts(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	names := testNames()
	require.NoError(t, CreateBookkeepingTables(ctx, db, names, "sqlite"))
	conf := NewConfiguration(names, "sqlite")

	text := strings.Repeat("0123456789", 20) // 200 chars -> 4 parts
	saved, err := conf.Save(ctx, db, ConfTypeSchemaParams1, text)
	require.NoError(t, err)
	require.True(t, saved)

	var parts int
	require.NoError(t, db.QueryRow(
		"SELECT COUNT(*) FROM sooners_configuration WHERE conf_type = ?", ConfTypeSchemaParams1).Scan(&parts))
	assert.Equal(t, 4, parts)

	got, ok, err := conf.Load(ctx, db, ConfTypeSchemaParams1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, text, got)
}

func TestConfigurationShrinkDeletesTrailingParts(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	names := testNames()
	require.NoError(t, CreateBookkeepingTables(ctx, db, names, "sqlite"))
	conf := NewConfiguration(names, "sqlite")

	long := strings.Repeat("x", 200)
	_, err := conf.Save(ctx, db, ConfTypeSchemaParams0, long)
	require.NoError(t, err)

	_, err = conf.Save(ctx, db, ConfTypeSchemaParams0, "short")
	require.NoError(t, err)

	var parts int
	require.NoError(t, db.QueryRow(
		"SELECT COUNT(*) FROM sooners_configuration WHERE conf_type = ?", ConfTypeSchemaParams0).Scan(&parts))
	assert.Equal(t, 1, parts)

	got, ok, err := conf.Load(ctx, db, ConfTypeSchemaParams0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "short", got)
}

func TestConfigurationKeepsTypesSeparate(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	names := testNames()
	require.NoError(t, CreateBookkeepingTables(ctx, db, names, "sqlite"))
	conf := NewConfiguration(names, "sqlite")

	_, err := conf.Save(ctx, db, ConfTypeSchemaParams0, "before")
	require.NoError(t, err)
	_, err = conf.Save(ctx, db, ConfTypeSchemaParams1, "after")
	require.NoError(t, err)

	got0, _, err := conf.Load(ctx, db, ConfTypeSchemaParams0)
	require.NoError(t, err)
	got1, _, err := conf.Load(ctx, db, ConfTypeSchemaParams1)
	require.NoError(t, err)
	assert.Equal(t, "before", got0)
	assert.Equal(t, "after", got1)
}

func TestVersionDictAutoCreatesRows(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	names := testNames()
	require.NoError(t, CreateBookkeepingTables(ctx, db, names, "sqlite"))

	dict, err := LoadDefaultDict(ctx, db, names, "sqlite")
	require.NoError(t, err)

	row := dict.Get("app")
	assert.True(t, row.Version0.IsNull())
	assert.True(t, row.IsSame())

	row.Version1 = nullable.NewNullableWithValue(1)
	row.Checksum1 = nullable.NewNullableWithValue("abc")
	dict.MarkDirty("app")
	assert.False(t, row.IsSame())

	saved, err := dict.Save(ctx, db)
	require.NoError(t, err)
	require.True(t, saved)

	reloaded, err := LoadDefaultDict(ctx, db, names, "sqlite")
	require.NoError(t, err)
	got := reloaded.Get("app")
	v1, err := got.Version1.Get()
	require.NoError(t, err)
	assert.Equal(t, 1, v1)
	assert.True(t, got.Version0.IsNull())
}

func TestVersionDictSaveWithoutTableReportsFalse(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	dict, err := LoadDefaultDict(ctx, db, testNames(), "sqlite")
	require.NoError(t, err)
	dict.Get("app")

	saved, err := dict.Save(ctx, db)
	require.NoError(t, err)
	assert.False(t, saved)
}

func TestVersionDictRowsOrderedByIndex1(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	names := testNames()
	require.NoError(t, CreateBookkeepingTables(ctx, db, names, "sqlite"))

	dict, err := LoadDefaultDict(ctx, db, names, "sqlite")
	require.NoError(t, err)
	a := dict.Get("a")
	b := dict.Get("b")
	a.Index1 = 2
	b.Index1 = 1

	rows := dict.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "b", rows[0].ComponentName)
	assert.Equal(t, "a", rows[1].ComponentName)
}

func TestOperationLogAppendLoadClear(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	names := testNames()
	require.NoError(t, CreateOperationLogTable(ctx, db, names, "sqlite"))
	log := NewOperationLog(names, "sqlite")

	key := operations.Key{TypeID: operations.TypeAddColumn, Table: "t0", Name0: "name"}
	require.NoError(t, log.Append(ctx, db, "app", key))

	loaded, err := log.Load(ctx, db, "app")
	require.NoError(t, err)
	assert.True(t, loaded.Contains(key))
	assert.False(t, loaded.Contains(operations.Key{TypeID: operations.TypeDropColumn, Table: "t0", Name0: "name"}))

	otherComponent, err := log.Load(ctx, db, "other")
	require.NoError(t, err)
	assert.False(t, otherComponent.Contains(key))

	require.NoError(t, log.Clear(ctx, db, "app"))
	loaded, err = log.Load(ctx, db, "app")
	require.NoError(t, err)
	assert.False(t, loaded.Contains(key))
}
