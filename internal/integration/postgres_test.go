// SPDX-License-Identifier: Apache-2.0

// Package integration drives the dialect adapter and migration core
// against a real Postgres server in a test container.
package integration

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charlesw1234/sooners-migrate/internal/config"
	"github.com/charlesw1234/sooners-migrate/internal/logging"
	"github.com/charlesw1234/sooners-migrate/pkg/bookkeeping"
	"github.com/charlesw1234/sooners-migrate/pkg/dialect"
	"github.com/charlesw1234/sooners-migrate/pkg/metadata"
	"github.com/charlesw1234/sooners-migrate/pkg/migration"
	"github.com/charlesw1234/sooners-migrate/pkg/operations"
	"github.com/charlesw1234/sooners-migrate/pkg/shardmap"
	"github.com/charlesw1234/sooners-migrate/pkg/testutils"
)

func TestMain(m *testing.M) {
	testutils.SharedTestMain(m)
}

func TestExecutorAppliesDDLAgainstPostgres(t *testing.T) {
	ctx := context.Background()
	db, _ := testutils.SetupTestDatabase(t)

	d, err := dialect.New(dialect.Postgres)
	require.NoError(t, err)
	exec := dialect.NewExecutor(d, db)

	require.NoError(t, exec.Execute(ctx, operations.NewCreateTable("users", []operations.ColumnDef{
		{Name: "id", Type: "integer", PrimaryKey: true},
		{Name: "name", Type: "varchar", Length: 32, Nullable: true},
		{Name: "state", Type: "enum", EnumValues: []string{"new", "active"}},
	}, "")))

	intro := dialect.NewIntrospector(d, db)
	tables, err := intro.ListTables(ctx)
	require.NoError(t, err)
	assert.Contains(t, tables, "users")

	columns, err := intro.ListColumns(ctx, "users")
	require.NoError(t, err)
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"id", "name", "state"}, names)

	// dropping the enum column removes the orphaned type as well
	require.NoError(t, exec.Execute(ctx, operations.NewDropColumn("users",
		operations.ColumnDef{Name: "state", Type: "enum"})))

	var typeCount int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pg_type WHERE typname = 'enum_state_t'`).Scan(&typeCount))
	assert.Equal(t, 0, typeCount)
}

func TestMigrationCoreFirstInstallOnPostgres(t *testing.T) {
	ctx := context.Background()
	db, dsn := testutils.SetupTestDatabase(t)

	cfg := &config.Config{
		Databases: []config.Database{
			{Name: "default", Dialect: "postgres", DSN: dsn, Default: true},
		},
		BookkeepingTablePrefix: "sooners_",
		HistoryDir:             t.TempDir(),
	}
	require.NoError(t, cfg.Validate())

	core, err := migration.New(cfg, map[string]*sql.DB{"default": db}, logging.Noop())
	require.NoError(t, err)

	v1, err := metadata.MakeVersion("app", 1, []metadata.ModelDefinition{{
		Name: "t0",
		Columns: []metadata.ColumnDef{
			{Name: "id", Type: "integer", PrimaryKey: true},
		},
	}})
	require.NoError(t, err)

	params := shardmap.New()
	params.Tables["t0"] = shardmap.TableParams{DatabaseNames: []string{"default"}}

	require.NoError(t, core.Execute(ctx, []migration.ComponentTarget{{
		Component: "app", V1: v1, Params1: params,
	}}, nil))

	names := bookkeeping.NewTableNames("sooners_")
	dict, err := bookkeeping.LoadDefaultDict(ctx, db, names, "postgres")
	require.NoError(t, err)
	row := dict.Get("app")
	assert.True(t, row.IsSame())
	v0, err := row.Version0.Get()
	require.NoError(t, err)
	assert.Equal(t, 1, v0)

	var count int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM information_schema.tables WHERE table_name = 't0'`).Scan(&count))
	assert.Equal(t, 1, count)
}
