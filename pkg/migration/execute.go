// SPDX-License-Identifier: Apache-2.0

package migration

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/oapi-codegen/nullable"

	"github.com/charlesw1234/sooners-migrate/internal/enginerr"
	"github.com/charlesw1234/sooners-migrate/pkg/bookkeeping"
	"github.com/charlesw1234/sooners-migrate/pkg/dialect"
	"github.com/charlesw1234/sooners-migrate/pkg/metadata"
	"github.com/charlesw1234/sooners-migrate/pkg/patchgen"
	"github.com/charlesw1234/sooners-migrate/pkg/shardmap"
)

// ComponentTarget is one component's before/after snapshot, as loaded by
// the caller (a milestone step) from history/ and resolved against the
// default database's DBSchemaVersion row.
type ComponentTarget struct {
	Component string
	V0, V1    *metadata.VersionDocument
	Params0   *shardmap.SchemaParams
	Params1   *shardmap.SchemaParams
}

// isBookkeepingTable reports whether table is one of the three tables
// the Core itself depends on, used to defer their own drop until after
// finalization has safely written everything else: dropping a
// bookkeeping table mid-run would remove the ledger the run still needs
// before it commits.
func (c *Core) isBookkeepingTable(table string) bool {
	return table == c.names.Configuration || table == c.names.DBSchemaVersion || table == c.names.DBSchemaOperation
}

// targetsDirection scans every target's own before/after direction and
// fails with enginerr.InconsistentDirection when the run mixes forward
// and backward components. Both Plan and Execute call this before doing
// anything else, so a mixed run never reaches the dialect adapter.
func targetsDirection(targets []ComponentTarget) (Direction, error) {
	sawForward, sawBackward := false, false
	for _, t := range targets {
		switch componentDirection(t.V0, t.V1) {
		case DirectionForward:
			sawForward = true
		case DirectionBackward:
			sawBackward = true
		}
	}
	switch {
	case sawForward && sawBackward:
		return DirectionNone, enginerr.NewInconsistentDirection()
	case sawForward:
		return DirectionForward, nil
	case sawBackward:
		return DirectionBackward, nil
	default:
		return DirectionNone, nil
	}
}

// Plan computes the full ordered PlannedOperation list across every
// target, without applying anything, backing the --show and --no-action
// previews. Operations touching a bookkeeping table are moved to the end
// of their component's slice, marked Deferred.
func (c *Core) Plan(ctx context.Context, targets []ComponentTarget, prompt patchgen.PromptIO) ([]PlannedOperation, error) {
	if _, err := targetsDirection(targets); err != nil {
		return nil, err
	}

	var all []PlannedOperation
	for _, t := range targets {
		planned, err := c.planTarget(t, prompt)
		if err != nil {
			return nil, err
		}
		now, deferred := splitDeferred(c, planned)
		all = append(all, now...)
		all = append(all, deferred...)
	}
	return all, nil
}

// planTarget computes one component's planned operations: a version diff
// expanded across databases, or, when the before/after versions are
// identical but the deployment params moved, a params update
// (planParamsUpdate).
func (c *Core) planTarget(t ComponentTarget, prompt patchgen.PromptIO) ([]PlannedOperation, error) {
	if t.V0 != nil && t.V1 != nil && t.V0.Version == t.V1.Version &&
		t.V0.Checksum == t.V1.Checksum && !paramsEqual(t.Params0, t.Params1) {
		return planParamsUpdate(t.V1, t.Params0, t.Params1), nil
	}

	ops, err := PlanComponent(t.V0, t.V1, prompt)
	if err != nil {
		return nil, fmt.Errorf("planning component %q: %w", t.Component, err)
	}
	return Expand(ops, t.Params0, t.Params1), nil
}

func splitDeferred(c *Core, planned []PlannedOperation) (now, deferred []PlannedOperation) {
	for _, p := range planned {
		if c.isBookkeepingTable(p.Op.TableName()) {
			p.Deferred = true
			deferred = append(deferred, p)
		} else {
			now = append(now, p)
		}
	}
	return now, deferred
}

// Execute applies every target's plan in order, tracking idempotence
// against each target database's DBSchemaOperation log, then finalizes
// bookkeeping for every component that completed without error. On the
// first operation failure the Core enters StateBroken and returns the
// error; a subsequent skcontinue run with the same targets re-drives the
// identical plan, skipping every already-logged key.
func (c *Core) Execute(ctx context.Context, targets []ComponentTarget, prompt patchgen.PromptIO) error {
	if _, err := targetsDirection(targets); err != nil {
		return err
	}

	c.lastTargets = targets
	c.state = StateExecuting
	defer func() {
		if c.state == StateExecuting {
			c.state = StateClean
		}
	}()

	runID := uuid.NewString()
	log := c.log.WithFields(map[string]any{"run": runID})
	log.Infof("migration run started: %d component target(s)", len(targets))

	for _, t := range targets {
		if err := c.executeComponent(ctx, t, prompt); err != nil {
			c.state = StateBroken
			log.Errorf("migration run broken at component %q: %v", t.Component, err)
			return fmt.Errorf("component %q: %w", t.Component, err)
		}
	}
	log.Infof("migration run completed")
	return nil
}

func (c *Core) executeComponent(ctx context.Context, t ComponentTarget, prompt patchgen.PromptIO) error {
	planned, err := c.planTarget(t, prompt)
	if err != nil {
		return err
	}
	now, deferred := splitDeferred(c, planned)

	if c.Confirm != nil && !c.Confirm(fmt.Sprintf("apply %d operation(s) for component %q", len(now)+len(deferred), t.Component)) {
		return nil
	}

	descending := componentDirection(t.V0, t.V1) == DirectionBackward

	byDB := groupByDatabase(now)
	for _, dbName := range sortedKeys(byDB, descending) {
		if err := c.applyOperations(ctx, dbName, t.Component, byDB[dbName]); err != nil {
			return err
		}
	}

	if err := c.finalizeComponent(ctx, t); err != nil {
		return err
	}

	deferredByDB := groupByDatabase(deferred)
	for _, dbName := range sortedKeys(deferredByDB, descending) {
		if err := c.applyOperations(ctx, dbName, t.Component, deferredByDB[dbName]); err != nil {
			return err
		}
	}
	return nil
}

func groupByDatabase(planned []PlannedOperation) map[string][]PlannedOperation {
	m := map[string][]PlannedOperation{}
	for _, p := range planned {
		m[p.Database] = append(m[p.Database], p)
	}
	return m
}

// sortedKeys orders database names ascending (forward/create) or
// descending (backward/drop), keeping the cross-database execution order
// deterministic.
func sortedKeys(m map[string][]PlannedOperation, descending bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if descending {
		for i, j := 0, len(keys)-1; i < j; i, j = i+1, j-1 {
			keys[i], keys[j] = keys[j], keys[i]
		}
	}
	return keys
}

// applyOperations runs each planned op against database in order,
// skipping any whose Key is already present in that database's operation
// log, and appending the key to the log immediately after a successful
// application so a crash between two operations leaves the log consistent
// with what was actually applied.
func (c *Core) applyOperations(ctx context.Context, database, component string, planned []PlannedOperation) error {
	db, ok := c.dbs[database]
	if database == "" {
		db, ok = c.defaultDBOrFirst()
	}
	if !ok {
		return fmt.Errorf("no open connection for database %q", database)
	}

	dl, ok := c.dials[database]
	if database == "" {
		dl = c.firstDialect()
	} else if !ok {
		return fmt.Errorf("no dialect configured for database %q", database)
	}

	log := bookkeeping.NewOperationLog(c.names, string(dl.Name()))
	if !bookkeeping.TableExists(ctx, db, c.names.DBSchemaOperation) {
		if err := bookkeeping.CreateOperationLogTable(ctx, db, c.names, string(dl.Name())); err != nil {
			return err
		}
	}
	loaded, err := log.Load(ctx, db, component)
	if err != nil {
		return err
	}

	exec := dialect.NewExecutor(dl, db)
	for _, p := range planned {
		op := p.Op
		op.SetDatabaseName(database)
		key := op.Key()
		if loaded.Contains(key) {
			c.log.Debugf("skipping already-logged operation %s on %q", key, database)
			continue
		}
		c.log.Infof("applying %s on %q", key, database)
		if err := exec.Execute(ctx, op); err != nil {
			return fmt.Errorf("%s on %q: %w", key, database, err)
		}
		if err := log.Append(ctx, db, component, key); err != nil {
			return fmt.Errorf("logging %s on %q: %w", key, database, err)
		}
	}
	return nil
}

func (c *Core) defaultDBOrFirst() (*sql.DB, bool) {
	if db, _, err := c.defaultDB(); err == nil {
		return db, true
	}
	for _, db := range c.dbs {
		return db, true
	}
	return nil, false
}

func (c *Core) firstDialect() dialect.Dialect {
	for _, dl := range c.dials {
		return dl
	}
	return nil
}

// finalizeComponent promotes version1/checksum1 to version0/checksum0,
// persists the SCHEMA_PARAMS_1 text as SCHEMA_PARAMS_0, and clears every
// per-database operation log for the component. If DBSchemaVersion or
// Configuration did not exist before this run, they are created here (on
// the default database) and the pending in-memory state is saved
// immediately afterward, now that storage exists.
func (c *Core) finalizeComponent(ctx context.Context, t ComponentTarget) error {
	db, dbName, err := c.defaultDB()
	if err != nil {
		return err
	}
	dialectName := c.dialectName(dbName)

	if !bookkeeping.TableExists(ctx, db, c.names.DBSchemaVersion) {
		if err := bookkeeping.CreateBookkeepingTables(ctx, db, c.names, dialectName); err != nil {
			return err
		}
	}

	dict, err := bookkeeping.LoadDefaultDict(ctx, db, c.names, dialectName)
	if err != nil {
		return err
	}
	row := dict.Get(t.Component)
	row.Version1 = versionNullable(t.V1)
	row.Checksum1 = checksumNullable(t.V1)
	row.Version0 = row.Version1
	row.Checksum0 = row.Checksum1
	dict.MarkDirty(t.Component)
	if _, err := dict.Save(ctx, db); err != nil {
		return err
	}

	conf := bookkeeping.NewConfiguration(c.names, dialectName)
	if t.Params1 != nil {
		text, err := t.Params1.Marshal()
		if err != nil {
			return err
		}
		if _, err := conf.Save(ctx, db, bookkeeping.ConfTypeSchemaParams1, text); err != nil {
			return err
		}
		if _, err := conf.Save(ctx, db, bookkeeping.ConfTypeSchemaParams0, text); err != nil {
			return err
		}
	}

	for _, name := range c.cfg.DatabaseNames() {
		database := c.dbs[name]
		if database == nil {
			continue
		}
		log := bookkeeping.NewOperationLog(c.names, c.dialectName(name))
		if bookkeeping.TableExists(ctx, database, c.names.DBSchemaOperation) {
			if err := log.Clear(ctx, database, t.Component); err != nil {
				return err
			}
		}
	}
	return nil
}

// versionNullable/checksumNullable report v's version/checksum, or null
// when v is nil (the component's target is "does not exist", i.e. the
// terminal backward migration that drops every one of its tables).
func versionNullable(v *metadata.VersionDocument) nullable.Nullable[int] {
	if v == nil {
		return nullable.NewNullNullable[int]()
	}
	return nullable.NewNullableWithValue(v.Version)
}

func checksumNullable(v *metadata.VersionDocument) nullable.Nullable[string] {
	if v == nil {
		return nullable.NewNullNullable[string]()
	}
	return nullable.NewNullableWithValue(v.Checksum)
}
