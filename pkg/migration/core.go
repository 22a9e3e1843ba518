// SPDX-License-Identifier: Apache-2.0

package migration

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/oapi-codegen/nullable"

	"github.com/charlesw1234/sooners-migrate/internal/config"
	"github.com/charlesw1234/sooners-migrate/internal/enginerr"
	"github.com/charlesw1234/sooners-migrate/internal/logging"
	"github.com/charlesw1234/sooners-migrate/pkg/bookkeeping"
	"github.com/charlesw1234/sooners-migrate/pkg/dialect"
	"github.com/charlesw1234/sooners-migrate/pkg/metadata"
	"github.com/charlesw1234/sooners-migrate/pkg/operations"
	"github.com/charlesw1234/sooners-migrate/pkg/patchgen"
	"github.com/charlesw1234/sooners-migrate/pkg/shardmap"
)

// State is one of the four migration core states: CLEAN means every
// component's before/after version rows agree; DIRTY means at least one
// disagrees and a plan has not yet been applied;
// EXECUTING is held only while operations are being applied; BROKEN is
// entered (and never automatically left) when an operation fails partway.
type State string

const (
	StateClean     State = "clean"
	StateDirty     State = "dirty"
	StateExecuting State = "executing"
	StateBroken    State = "broken"
)

// Direction is the component-wide migration direction computed from every
// DBSchemaVersion row: forward when version1 > version0,
// backward when version1 < version0. Mixing directions across components
// in the same run is fatal (enginerr.InconsistentDirection).
type Direction string

const (
	DirectionForward  Direction = "forward"
	DirectionBackward Direction = "backward"
	DirectionNone     Direction = "none"
)

// PlannedOperation pairs one Operation with the physical database it must
// run against, after shard expansion.
type PlannedOperation struct {
	Database string
	Op       operations.Operation
	Deferred bool
}

// Core is the migration core: it owns one *sql.DB per configured
// database, computes plans from metadata snapshots and live bookkeeping,
// and applies them operation-by-operation with idempotence and
// crash-recovery guarantees.
type Core struct {
	cfg     *config.Config
	dbs     map[string]*sql.DB
	dials   map[string]dialect.Dialect
	names   bookkeeping.TableNames
	log     logging.Logger
	state   State
	Confirm func(description string) bool

	lastTargets []ComponentTarget
}

// LastTargets returns the ComponentTargets passed to the most recent
// Execute call, the basis for the withdraw resolver's reversed plan.
func (c *Core) LastTargets() []ComponentTarget { return c.lastTargets }

// ReverseTargets swaps each target's before/after endpoints, turning a
// forward-shaped plan into its backward counterpart. Since the planner
// diffs V0->V1 freshly rather than replaying a stored patch, swapping
// the endpoints yields the reverse patch directly.
func ReverseTargets(targets []ComponentTarget) []ComponentTarget {
	out := make([]ComponentTarget, len(targets))
	for i, t := range targets {
		out[i] = ComponentTarget{
			Component: t.Component,
			V0:        t.V1, V1: t.V0,
			Params0: t.Params1, Params1: t.Params0,
		}
	}
	return out
}

// New builds a Core over already-open database connections, one per
// config.Database.Name. Callers own opening/closing the *sql.DB values.
func New(cfg *config.Config, dbs map[string]*sql.DB, log logging.Logger) (*Core, error) {
	dials := make(map[string]dialect.Dialect, len(cfg.Databases))
	for _, d := range cfg.Databases {
		dl, err := dialect.New(dialect.Name(d.Dialect))
		if err != nil {
			return nil, fmt.Errorf("database %q: %w", d.Name, err)
		}
		dials[d.Name] = dl
	}
	return &Core{
		cfg:     cfg,
		dbs:     dbs,
		dials:   dials,
		names:   bookkeeping.NewTableNames(cfg.BookkeepingTablePrefix),
		log:     log,
		state:   StateClean,
		Confirm: func(string) bool { return true },
	}, nil
}

func (c *Core) State() State { return c.state }

func (c *Core) defaultDB() (*sql.DB, string, error) {
	def, ok := c.cfg.DefaultDatabase()
	if !ok {
		return nil, "", fmt.Errorf("migration: config has no exactly-one default database")
	}
	db, ok := c.dbs[def.Name]
	if !ok {
		return nil, "", fmt.Errorf("migration: no open connection for default database %q", def.Name)
	}
	return db, def.Name, nil
}

func (c *Core) dialectName(database string) string {
	if d, ok := c.cfg.Lookup(database); ok {
		return d.Dialect
	}
	return ""
}

// Direction reports the component-wide direction implied by every
// DBSchemaVersion row currently persisted in the default database,
// raising enginerr.InconsistentDirection if some rows want forward and
// others backward.
func (c *Core) Direction(ctx context.Context) (Direction, error) {
	db, _, err := c.defaultDB()
	if err != nil {
		return DirectionNone, err
	}
	dict, err := bookkeeping.LoadDefaultDict(ctx, db, c.names, c.dialectName(c.defaultDatabaseName()))
	if err != nil {
		return DirectionNone, err
	}

	sawForward, sawBackward := false, false
	for _, r := range dict.Rows() {
		switch rowDirection(r) {
		case DirectionForward:
			sawForward = true
		case DirectionBackward:
			sawBackward = true
		}
	}
	if sawForward && sawBackward {
		return DirectionNone, enginerr.NewInconsistentDirection()
	}
	if sawForward {
		return DirectionForward, nil
	}
	if sawBackward {
		return DirectionBackward, nil
	}
	return DirectionNone, nil
}

func (c *Core) defaultDatabaseName() string {
	d, _ := c.cfg.DefaultDatabase()
	return d.Name
}

// PendingTargets rebuilds the ComponentTargets a fresh process needs to
// drive skcontinue/skwithdraw: every component whose DBSchemaVersion row
// is not yet clean, with its before/after metadata read back from
// history/ and its before/after SchemaParams read back from Configuration.
// Unlike LastTargets, this survives a process restart, since everything it
// reads is persisted bookkeeping rather than in-memory state.
func (c *Core) PendingTargets(ctx context.Context) ([]ComponentTarget, error) {
	db, dbName, err := c.defaultDB()
	if err != nil {
		return nil, err
	}
	dialectName := c.dialectName(dbName)

	dict, err := bookkeeping.LoadDefaultDict(ctx, db, c.names, dialectName)
	if err != nil {
		return nil, err
	}

	conf := bookkeeping.NewConfiguration(c.names, dialectName)
	params0, err := loadParams(ctx, conf, db, bookkeeping.ConfTypeSchemaParams0)
	if err != nil {
		return nil, err
	}
	params1, err := loadParams(ctx, conf, db, bookkeeping.ConfTypeSchemaParams1)
	if err != nil {
		return nil, err
	}

	rows := dict.Rows()
	sort.Slice(rows, func(i, j int) bool { return rows[i].ComponentName < rows[j].ComponentName })

	var targets []ComponentTarget
	for _, r := range rows {
		if r.IsSame() {
			continue
		}
		v0, err := readVersionRow(c.cfg.HistoryDir, r.ComponentName, r.Version0)
		if err != nil {
			return nil, err
		}
		v1, err := readVersionRow(c.cfg.HistoryDir, r.ComponentName, r.Version1)
		if err != nil {
			return nil, err
		}
		targets = append(targets, ComponentTarget{
			Component: r.ComponentName, V0: v0, V1: v1, Params0: params0, Params1: params1,
		})
	}
	return targets, nil
}

func loadParams(ctx context.Context, conf *bookkeeping.Configuration, db bookkeeping.SessionStore, confType string) (*shardmap.SchemaParams, error) {
	text, ok, err := conf.Load(ctx, db, confType)
	if err != nil || !ok || text == "" {
		return nil, err
	}
	return shardmap.Unmarshal(text)
}

func readVersionRow(historyDir, component string, v nullable.Nullable[int]) (*metadata.VersionDocument, error) {
	version, err := v.Get()
	if err != nil {
		return nil, nil
	}
	return metadata.ReadVersion(historyDir, component, version)
}

func rowDirection(r *bookkeeping.VersionRow) Direction {
	if r.IsSame() {
		return DirectionNone
	}
	v0, err0 := r.Version0.Get()
	v1, err1 := r.Version1.Get()
	hasV0, hasV1 := err0 == nil, err1 == nil
	switch {
	case hasV1 && !hasV0:
		return DirectionForward
	case hasV0 && !hasV1:
		return DirectionBackward
	case hasV0 && hasV1 && v1 > v0:
		return DirectionForward
	case hasV0 && hasV1 && v1 < v0:
		return DirectionBackward
	default:
		return DirectionNone
	}
}

// PlanComponent generates the ordered, table-name-deterministic operation
// list that moves a component from v0 to v1, consulting prompt only when
// the underlying diff is ambiguous and must be resolved interactively.
func PlanComponent(v0, v1 *metadata.VersionDocument, prompt patchgen.PromptIO) ([]operations.Operation, error) {
	if v0 == nil && v1 == nil {
		return nil, nil
	}
	if v0 == nil {
		return translatePatchDocument(allCreatePatch(v1), v0, v1), nil
	}
	if v1 == nil {
		return translatePatchDocument(allDropPatch(v0), v0, v1), nil
	}

	patch, err := patchgen.Generate(v0, v1, prompt)
	if err != nil {
		return nil, err
	}
	return translatePatchDocument(patch, v0, v1), nil
}

// allCreatePatch builds the patch that creates every table in v (used when
// a component has no prior version, i.e. its first forward migration).
func allCreatePatch(v *metadata.VersionDocument) *metadata.PatchDocument {
	names := append([]string{}, v.TableNames()...)
	sort.Strings(names)
	p := &metadata.PatchDocument{Component: v.Component, Version1: v.Version}
	for _, n := range names {
		p.Tables = append(p.Tables, metadata.TablePatch{Kind: metadata.EntryCreate, Name: n})
	}
	return p
}

// allDropPatch builds the patch that drops every table in v (used on the
// terminal backward migration of a component to nothing).
func allDropPatch(v *metadata.VersionDocument) *metadata.PatchDocument {
	names := append([]string{}, v.TableNames()...)
	sort.Strings(names)
	p := &metadata.PatchDocument{Component: v.Component, Version0: v.Version}
	for _, n := range names {
		p.Tables = append(p.Tables, metadata.TablePatch{Kind: metadata.EntryDrop, Name: n})
	}
	return p
}

// Expand spreads ops (all table-scoped, database-less) across the physical
// databases named by params0 (for drop-shaped ops) / params1 (for
// create-shaped ops). A sharded table yields one copy of each operation
// per (database, shard suffix), rewritten to the suffixed physical table
// name; a plain table yields one copy per database. Unchanged/rename-shaped
// ops follow params1, the post-migration placement: an unchanged table's
// shard map is not expected to move mid-patch (that is a params update, see
// planParamsUpdate).
func Expand(ops []operations.Operation, params0, params1 *shardmap.SchemaParams) []PlannedOperation {
	var out []PlannedOperation
	for _, op := range ops {
		table := op.TableName()
		params := params1
		if isDropShaped(op) {
			params = params0
		}
		if params == nil || table == "" {
			out = append(out, PlannedOperation{Database: "", Op: op})
			continue
		}
		tp, ok := params.Tables[table]
		if !ok {
			out = append(out, PlannedOperation{Database: "", Op: op})
			continue
		}
		for _, ent := range shardmap.Expand(table, tp) {
			suffix := ent.ShardSuffix
			cloned := operations.MapTableNames(op, func(n string) string {
				if suffix == "" {
					return n
				}
				return n + "_" + suffix
			})
			out = append(out, PlannedOperation{Database: ent.Database, Op: cloned})
		}
	}
	return out
}

// paramsEqual compares two SchemaParams by their canonical JSON text, the
// same representation Configuration persists them under.
func paramsEqual(a, b *shardmap.SchemaParams) bool {
	if a == nil || b == nil {
		return a == b
	}
	at, errA := a.Marshal()
	bt, errB := b.Marshal()
	return errA == nil && errB == nil && at == bt
}

// planParamsUpdate yields the operations that re-home a component's tables
// when its before/after versions are equal but the deployment params
// differ: each table's physical entities are expanded under both params,
// entities present only in params1 are created (ascending database/suffix
// order), then entities present only in params0 are dropped. This covers
// plain-to-sharded splits, shard-suffix re-maps, and database set changes.
func planParamsUpdate(v *metadata.VersionDocument, params0, params1 *shardmap.SchemaParams) []PlannedOperation {
	if v == nil {
		return nil
	}

	var out []PlannedOperation
	for _, table := range v.Tables {
		ents0 := expandTable(table.Name, params0)
		ents1 := expandTable(table.Name, params1)

		placed0 := map[[2]string]bool{}
		for _, e := range ents0 {
			placed0[[2]string{e.Database, e.PhysicalName}] = true
		}
		placed1 := map[[2]string]bool{}
		for _, e := range ents1 {
			placed1[[2]string{e.Database, e.PhysicalName}] = true
		}

		for _, e := range ents1 {
			if placed0[[2]string{e.Database, e.PhysicalName}] {
				continue
			}
			for _, op := range createTableOps(table) {
				out = append(out, PlannedOperation{
					Database: e.Database,
					Op:       physicalOp(op, table.Name, e.PhysicalName),
				})
			}
		}
		for _, e := range ents0 {
			if placed1[[2]string{e.Database, e.PhysicalName}] {
				continue
			}
			out = append(out, PlannedOperation{
				Database: e.Database,
				Op:       physicalOp(dropTableOps(table)[0], table.Name, e.PhysicalName),
			})
		}
	}
	return out
}

func expandTable(table string, params *shardmap.SchemaParams) []shardmap.ShardEntity {
	if params == nil {
		return nil
	}
	tp, ok := params.Tables[table]
	if !ok {
		return nil
	}
	return shardmap.Expand(table, tp)
}

func physicalOp(op operations.Operation, logical, physical string) operations.Operation {
	return operations.MapTableNames(op, func(n string) string {
		if n == logical {
			return physical
		}
		return n
	})
}

// componentDirection reports this component's own forward/backward
// direction from its before/after versions, independent of the run-wide
// Direction; it picks the cross-database ordering (ascending for
// forward/create, descending for backward/drop).
func componentDirection(v0, v1 *metadata.VersionDocument) Direction {
	switch {
	case v0 == nil && v1 == nil:
		return DirectionNone
	case v0 == nil:
		return DirectionForward
	case v1 == nil:
		return DirectionBackward
	case v1.Version > v0.Version:
		return DirectionForward
	case v1.Version < v0.Version:
		return DirectionBackward
	default:
		return DirectionNone
	}
}

func isDropShaped(op operations.Operation) bool {
	switch op.TypeID() {
	case operations.TypeDropTable, operations.TypeDropColumn, operations.TypeDropPrimaryKey,
		operations.TypeDropForeignKey, operations.TypeDropUnique, operations.TypeDropCheck, operations.TypeDropIndex:
		return true
	default:
		return false
	}
}
