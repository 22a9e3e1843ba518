// SPDX-License-Identifier: Apache-2.0

package resolver_test

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/oapi-codegen/nullable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charlesw1234/sooners-migrate/internal/config"
	"github.com/charlesw1234/sooners-migrate/internal/logging"
	"github.com/charlesw1234/sooners-migrate/pkg/bookkeeping"
	"github.com/charlesw1234/sooners-migrate/pkg/metadata"
	"github.com/charlesw1234/sooners-migrate/pkg/migration"
	"github.com/charlesw1234/sooners-migrate/pkg/resolver"
	"github.com/charlesw1234/sooners-migrate/pkg/shardmap"
)

// brokenHarness drives a first-install migration of tables a and b into a
// broken state: table b exists ahead of time, so its create fails after
// a's create has been applied and logged.
func brokenHarness(t *testing.T) (*migration.Core, *sql.DB) {
	t.Helper()
	historyDir := t.TempDir()

	cfg := &config.Config{
		Databases: []config.Database{
			{Name: "default", Dialect: "sqlite", DSN: ":memory:", Default: true},
		},
		BookkeepingTablePrefix: "sooners_",
		HistoryDir:             historyDir,
	}
	require.NoError(t, cfg.Validate())

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	core, err := migration.New(cfg, map[string]*sql.DB{"default": db}, logging.Noop())
	require.NoError(t, err)

	models := []metadata.ModelDefinition{
		{Name: "a", Columns: []metadata.ColumnDef{{Name: "id", Type: "integer", Nullable: true}}},
		{Name: "b", Columns: []metadata.ColumnDef{{Name: "id", Type: "integer", Nullable: true}}},
	}
	v1, err := metadata.MakeVersion("app", 1, models)
	require.NoError(t, err)
	_, err = metadata.WriteVersion(historyDir, v1)
	require.NoError(t, err)

	params := shardmap.New()
	params.Tables["a"] = shardmap.TableParams{DatabaseNames: []string{"default"}}
	params.Tables["b"] = shardmap.TableParams{DatabaseNames: []string{"default"}}

	// persist the before/after bookkeeping the way a milestone step's broken
	// run leaves it, so PendingTargets can rebuild the targets from disk
	ctx := context.Background()
	names := bookkeeping.NewTableNames("sooners_")
	require.NoError(t, bookkeeping.CreateBookkeepingTables(ctx, db, names, "sqlite"))
	dict, err := bookkeeping.LoadDefaultDict(ctx, db, names, "sqlite")
	require.NoError(t, err)
	row := dict.Get("app")
	row.Version1 = nullable.NewNullableWithValue(v1.Version)
	row.Checksum1 = nullable.NewNullableWithValue(v1.Checksum)
	dict.MarkDirty("app")
	_, err = dict.Save(ctx, db)
	require.NoError(t, err)

	conf := bookkeeping.NewConfiguration(names, "sqlite")
	text, err := params.Marshal()
	require.NoError(t, err)
	_, err = conf.Save(ctx, db, bookkeeping.ConfTypeSchemaParams1, text)
	require.NoError(t, err)

	// the conflicting table breaks the run partway
	_, err = db.Exec(`CREATE TABLE b (id integer)`)
	require.NoError(t, err)

	err = core.Execute(ctx, []migration.ComponentTarget{{
		Component: "app", V1: v1, Params1: params,
	}}, nil)
	require.Error(t, err)
	require.Equal(t, migration.StateBroken, core.State())

	return core, db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var count int
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&count))
	return count > 0
}

func TestContinueSkipsAppliedPrefixAndFinishes(t *testing.T) {
	ctx := context.Background()
	core, db := brokenHarness(t)

	// the operator removes the conflicting table, then resumes
	_, err := db.Exec(`DROP TABLE b`)
	require.NoError(t, err)

	require.NoError(t, resolver.Continue(ctx, core, nil))

	assert.True(t, tableExists(t, db, "a"))
	assert.True(t, tableExists(t, db, "b"))

	names := bookkeeping.NewTableNames("sooners_")
	dict, err := bookkeeping.LoadDefaultDict(ctx, db, names, "sqlite")
	require.NoError(t, err)
	assert.True(t, dict.Get("app").IsSame())

	log := bookkeeping.NewOperationLog(names, "sqlite")
	loaded, err := log.Load(ctx, db, "app")
	require.NoError(t, err)
	assert.NotNil(t, loaded)
}

func TestContinueWithNothingPendingIsANoOp(t *testing.T) {
	ctx := context.Background()

	cfg := &config.Config{
		Databases: []config.Database{
			{Name: "default", Dialect: "sqlite", DSN: ":memory:", Default: true},
		},
		BookkeepingTablePrefix: "sooners_",
		HistoryDir:             t.TempDir(),
	}
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	core, err := migration.New(cfg, map[string]*sql.DB{"default": db}, logging.Noop())
	require.NoError(t, err)

	assert.NoError(t, resolver.Continue(ctx, core, nil))
}

func TestWithdrawUnwindsAppliedOperations(t *testing.T) {
	ctx := context.Background()
	core, db := brokenHarness(t)

	require.NoError(t, resolver.Withdraw(ctx, core, nil))

	assert.False(t, tableExists(t, db, "a"))
	assert.False(t, tableExists(t, db, "b"))

	// the persisted after-state is now "component does not exist"
	names := bookkeeping.NewTableNames("sooners_")
	dict, err := bookkeeping.LoadDefaultDict(ctx, db, names, "sqlite")
	require.NoError(t, err)
	row := dict.Get("app")
	assert.True(t, row.IsSame())
	assert.True(t, row.Version0.IsNull())
}

func TestWithdrawWithNothingPendingFails(t *testing.T) {
	ctx := context.Background()

	cfg := &config.Config{
		Databases: []config.Database{
			{Name: "default", Dialect: "sqlite", DSN: ":memory:", Default: true},
		},
		BookkeepingTablePrefix: "sooners_",
		HistoryDir:             t.TempDir(),
	}
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	core, err := migration.New(cfg, map[string]*sql.DB{"default": db}, logging.Noop())
	require.NoError(t, err)

	assert.Error(t, resolver.Withdraw(ctx, core, nil))
}
