// SPDX-License-Identifier: Apache-2.0

package milestone_test

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charlesw1234/sooners-migrate/internal/config"
	"github.com/charlesw1234/sooners-migrate/internal/enginerr"
	"github.com/charlesw1234/sooners-migrate/internal/logging"
	"github.com/charlesw1234/sooners-migrate/pkg/metadata"
	"github.com/charlesw1234/sooners-migrate/pkg/migration"
	"github.com/charlesw1234/sooners-migrate/pkg/milestone"
	"github.com/charlesw1234/sooners-migrate/pkg/operations"
	"github.com/charlesw1234/sooners-migrate/pkg/patchgen"
	"github.com/charlesw1234/sooners-migrate/pkg/shardmap"
)

// writeHistory snapshots one numbered version per table set into historyDir.
func writeHistory(t *testing.T, historyDir string, version int, tables ...metadata.ModelDefinition) {
	t.Helper()
	v, err := metadata.MakeVersion("app", version, tables)
	require.NoError(t, err)
	require.NotNil(t, v)
	_, err = metadata.WriteVersion(historyDir, v)
	require.NoError(t, err)
}

func simpleTable(name string, columns ...string) metadata.ModelDefinition {
	m := metadata.ModelDefinition{Name: name}
	for _, c := range columns {
		m.Columns = append(m.Columns, metadata.ColumnDef{Name: c, Type: "integer", Nullable: true})
	}
	return m
}

func newMilestoneHarness(t *testing.T) (*migration.Core, *sql.DB, string) {
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
	return core, db, historyDir
}

func appParams(tables ...string) *shardmap.SchemaParams {
	p := shardmap.New()
	for _, table := range tables {
		p.Tables[table] = shardmap.TableParams{DatabaseNames: []string{"default"}}
	}
	return p
}

func twoStepMilestone(historyDir string) *milestone.Milestone {
	params := appParams("t0")
	return &milestone.Milestone{
		Name: "era1",
		Steps: []milestone.Step{
			&milestone.DBSchemaStep{
				AbbrevName: "install", Num: 1, HistoryDir: historyDir,
				Versions: map[string]int{"app": 1}, Params: params,
			},
			&milestone.DBSchemaStep{
				AbbrevName: "addname", Num: 2, HistoryDir: historyDir,
				Versions: map[string]int{"app": 2}, Params: params,
			},
		},
	}
}

func TestForwardRunsStepsInOrder(t *testing.T) {
	ctx := context.Background()
	core, db, historyDir := newMilestoneHarness(t)

	writeHistory(t, historyDir, 1, simpleTable("t0", "id"))
	writeHistory(t, historyDir, 2, simpleTable("t0", "id", "name"))

	m := twoStepMilestone(historyDir)

	// step 2 diffs v1 -> v2, which needs one disambiguation per plan pass
	prompt := &patchgen.StaticPrompt{Answers: []string{"unchanged id create name", "unchanged id create name"}}
	require.NoError(t, milestone.Run(ctx, m, core, migration.DirectionForward, nil, prompt, nil))

	var count int
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM pragma_table_info('t0') WHERE name = 'name'`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestBackwardReversesSelectedSteps(t *testing.T) {
	ctx := context.Background()
	core, db, historyDir := newMilestoneHarness(t)

	writeHistory(t, historyDir, 1, simpleTable("t0", "id"))
	writeHistory(t, historyDir, 2, simpleTable("t0", "id", "name"))

	m := twoStepMilestone(historyDir)

	forward := &patchgen.StaticPrompt{Answers: []string{"unchanged id create name", "unchanged id create name"}}
	require.NoError(t, milestone.Run(ctx, m, core, migration.DirectionForward, nil, forward, nil))

	// backward over step 2 re-diffs v2 -> v1
	backward := &patchgen.StaticPrompt{Answers: []string{"unchanged id drop name", "unchanged id drop name"}}
	require.NoError(t, milestone.Run(ctx, m, core, migration.DirectionBackward, []string{"addname.*"}, backward, nil))

	var count int
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM pragma_table_info('t0') WHERE name = 'name'`).Scan(&count))
	assert.Equal(t, 0, count)
}

func TestBackwardOntoForwardOnlyStepIsBannedBeforeAnyAction(t *testing.T) {
	ctx := context.Background()
	core, db, historyDir := newMilestoneHarness(t)

	writeHistory(t, historyDir, 1, simpleTable("t0", "id"))

	no := false
	m := &milestone.Milestone{
		Name: "era1",
		Steps: []milestone.Step{
			&milestone.DBSchemaStep{
				AbbrevName: "install", Num: 1, HistoryDir: historyDir,
				Versions: map[string]int{"app": 1}, Params: appParams("t0"),
				Backward: &no,
			},
		},
	}

	err := milestone.Run(ctx, m, core, migration.DirectionBackward, nil, nil, nil)
	require.Error(t, err)
	assert.True(t, enginerr.As(err, enginerr.MilestoneStepBanned))

	// nothing was applied: the bookkeeping tables were never created
	var count int
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table'`).Scan(&count))
	assert.Equal(t, 0, count)
}

func TestPlanPreviewAppliesNothing(t *testing.T) {
	ctx := context.Background()
	core, db, historyDir := newMilestoneHarness(t)

	writeHistory(t, historyDir, 1, simpleTable("t0", "id"))

	m := &milestone.Milestone{
		Name: "era1",
		Steps: []milestone.Step{
			&milestone.DBSchemaStep{
				AbbrevName: "install", Num: 1, HistoryDir: historyDir,
				Versions: map[string]int{"app": 1}, Params: appParams("t0"),
			},
		},
	}

	plans, err := milestone.Plan(ctx, m, core, migration.DirectionForward, nil, nil)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	require.Len(t, plans[0].Operations, 1)
	assert.Equal(t, operations.TypeCreateTable, plans[0].Operations[0].Op.TypeID())

	var count int
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table'`).Scan(&count))
	assert.Equal(t, 0, count)
}

func TestConfirmerCanSkipStep(t *testing.T) {
	ctx := context.Background()
	core, db, historyDir := newMilestoneHarness(t)

	writeHistory(t, historyDir, 1, simpleTable("t0", "id"))

	m := &milestone.Milestone{
		Name: "era1",
		Steps: []milestone.Step{
			&milestone.DBSchemaStep{
				AbbrevName: "install", Num: 1, HistoryDir: historyDir,
				Versions: map[string]int{"app": 1}, Params: appParams("t0"),
			},
		},
	}

	declined := func(milestone.Step, string) bool { return false }
	require.NoError(t, milestone.Run(ctx, m, core, migration.DirectionForward, nil, nil, declined))

	var count int
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 't0'`).Scan(&count))
	assert.Equal(t, 0, count)
}

func TestBuildResolvesPreviousByName(t *testing.T) {
	doc := &milestone.Document{
		Milestones: []milestone.MilestoneConfig{
			{Name: "era1", Steps: []milestone.StepConfig{{Abbrev: "install", Number: 1, Versions: map[string]int{"app": 1}}}},
			{Name: "era2", Previous: "era1", Steps: []milestone.StepConfig{{Abbrev: "grow", Number: 1, Versions: map[string]int{"app": 2}}}},
		},
	}

	built, err := doc.Build("history", appParams("t0"))
	require.NoError(t, err)
	require.Len(t, built, 2)
	assert.Same(t, built["era1"], built["era2"].Previous)

	_, err = (&milestone.Document{
		Milestones: []milestone.MilestoneConfig{
			{Name: "era2", Previous: "nosuch"},
		},
	}).Build("history", nil)
	assert.ErrorContains(t, err, "declared earlier")
}
