// SPDX-License-Identifier: Apache-2.0

// Package migration implements the migration core: the state machine
// that loads bookkeeping, materializes before/after metadata snapshots,
// plans ordered operations per component per database, and writes
// progress after each operation.
package migration

import (
	"sort"

	"github.com/charlesw1234/sooners-migrate/pkg/metadata"
	"github.com/charlesw1234/sooners-migrate/pkg/operations"
)

// translatePatch turns one table entry of a metadata.PatchDocument into
// the ordered Operations that realize it, looking up create/drop
// payloads from the paired VersionDocuments by name. Constraint and
// index renames have no dedicated typeid (only create/drop are assigned
// typeids 7-16), so they translate to a drop of the old name followed by
// a create of the new one under the same column set.
func translatePatch(table string, patch metadata.TablePatch, v0, v1 *metadata.VersionDocument) []operations.Operation {
	switch patch.Kind {
	case metadata.EntryCreate:
		t1, _ := v1.Table(patch.Name)
		return createTableOps(t1)
	case metadata.EntryDrop:
		t0, _ := v0.Table(patch.Name)
		return dropTableOps(t0)
	case metadata.EntryRename:
		return []operations.Operation{operations.NewRenameTable(table, patch.Name0, patch.Name1)}
	case metadata.EntryUnchanged:
		t0, _ := v0.Table(patch.Name)
		t1, _ := v1.Table(patch.Name)
		return translateUnchangedTable(patch, t0, t1)
	default:
		return nil
	}
}

func createTableOps(t metadata.ModelDefinition) []operations.Operation {
	ops := []operations.Operation{operations.NewCreateTable(t.Name, modelColumnsToOps(t.Columns), t.Comment)}
	ops = append(ops, createConstraintOps(t.Name, t)...)
	return ops
}

func dropTableOps(t metadata.ModelDefinition) []operations.Operation {
	return []operations.Operation{operations.NewDropTable(t.Name, modelColumnsToOps(t.Columns), t.Comment)}
}

func createConstraintOps(table string, t metadata.ModelDefinition) []operations.Operation {
	var ops []operations.Operation
	for _, pk := range t.PrimaryKeys {
		ops = append(ops, operations.NewCreatePrimaryKey(table, pk.Name, pk.Columns))
	}
	for _, fk := range t.ForeignKeys {
		ops = append(ops, operations.NewCreateForeignKey(table, fk.Name, fk.Columns, fk.ReferencedTable, fk.ReferencedColumns, fk.OnDelete, fk.OnUpdate))
	}
	for _, u := range t.Uniques {
		ops = append(ops, operations.NewCreateUnique(table, u.Name, u.Columns))
	}
	for _, c := range t.Checks {
		ops = append(ops, operations.NewCreateCheck(table, c.Name, c.Columns, c.Expression))
	}
	for _, ix := range t.Indexes {
		ops = append(ops, operations.NewCreateIndex(table, ix.Name, ix.Columns, ix.Unique))
	}
	return ops
}

func translateUnchangedTable(patch metadata.TablePatch, t0, t1 metadata.ModelDefinition) []operations.Operation {
	var ops []operations.Operation

	for _, c := range patch.Columns {
		switch c.Kind {
		case metadata.EntryCreate:
			ops = append(ops, operations.NewAddColumn(patch.Name, columnDefToOp(c.After)))
		case metadata.EntryDrop:
			ops = append(ops, operations.NewDropColumn(patch.Name, columnDefToOp(c.Before)))
		case metadata.EntryRename:
			ops = append(ops, operations.NewAlterColumn(patch.Name, c.Name0, c.Name1, columnDefToOp(c.Before), columnDefToOp(c.After)))
		case metadata.EntryUnchanged:
			before, after := columnDefToOp(c.Before), columnDefToOp(c.After)
			if !before.Equal(after) {
				ops = append(ops, operations.NewAlterColumn(patch.Name, c.Name, c.Name, before, after))
			}
		}
	}

	ops = append(ops, translateConstraintPatches(patch.Name, patch.PrimaryKeys, t0.PrimaryKeys, t1.PrimaryKeys,
		func(name string, defs []metadata.PrimaryKeyDef) operations.Operation {
			return operations.NewCreatePrimaryKey(patch.Name, name, findColumns(defs, name))
		},
		func(name string, defs []metadata.PrimaryKeyDef) operations.Operation {
			return operations.NewDropPrimaryKey(patch.Name, name, findColumns(defs, name))
		})...)

	ops = append(ops, translateConstraintPatches(patch.Name, patch.ForeignKeys, t0.ForeignKeys, t1.ForeignKeys,
		func(name string, defs []metadata.ForeignKeyDef) operations.Operation {
			fk := findForeignKey(defs, name)
			return operations.NewCreateForeignKey(patch.Name, name, fk.Columns, fk.ReferencedTable, fk.ReferencedColumns, fk.OnDelete, fk.OnUpdate)
		},
		func(name string, defs []metadata.ForeignKeyDef) operations.Operation {
			fk := findForeignKey(defs, name)
			return operations.NewDropForeignKey(patch.Name, name, fk.Columns, fk.ReferencedTable, fk.ReferencedColumns, fk.OnDelete, fk.OnUpdate)
		})...)

	ops = append(ops, translateConstraintPatches(patch.Name, patch.Uniques, t0.Uniques, t1.Uniques,
		func(name string, defs []metadata.UniqueDef) operations.Operation {
			return operations.NewCreateUnique(patch.Name, name, findUniqueColumns(defs, name))
		},
		func(name string, defs []metadata.UniqueDef) operations.Operation {
			return operations.NewDropUnique(patch.Name, name, findUniqueColumns(defs, name))
		})...)

	ops = append(ops, translateConstraintPatches(patch.Name, patch.Checks, t0.Checks, t1.Checks,
		func(name string, defs []metadata.CheckDef) operations.Operation {
			ck := findCheck(defs, name)
			return operations.NewCreateCheck(patch.Name, name, ck.Columns, ck.Expression)
		},
		func(name string, defs []metadata.CheckDef) operations.Operation {
			ck := findCheck(defs, name)
			return operations.NewDropCheck(patch.Name, name, ck.Columns, ck.Expression)
		})...)

	ops = append(ops, translateConstraintPatches(patch.Name, patch.Indexes, t0.Indexes, t1.Indexes,
		func(name string, defs []metadata.IndexDef) operations.Operation {
			ix := findIndex(defs, name)
			return operations.NewCreateIndex(patch.Name, name, ix.Columns, ix.Unique)
		},
		func(name string, defs []metadata.IndexDef) operations.Operation {
			ix := findIndex(defs, name)
			return operations.NewDropIndex(patch.Name, name, ix.Columns, ix.Unique)
		})...)

	return ops
}

// translateConstraintPatches is generic over the five constraint/index
// sub-entity kinds: Create -> a single create op looked up in defs1;
// Drop -> a single drop op looked up in defs0; Rename -> drop(old) then
// create(new), since no rename typeid exists for constraints/indexes;
// Unchanged -> no operation.
func translateConstraintPatches[D any](
	table string,
	patches []metadata.ConstraintPatch,
	defs0, defs1 []D,
	makeCreate func(name string, defs []D) operations.Operation,
	makeDrop func(name string, defs []D) operations.Operation,
) []operations.Operation {
	var ops []operations.Operation
	for _, p := range patches {
		switch p.Kind {
		case metadata.EntryCreate:
			ops = append(ops, makeCreate(p.Name, defs1))
		case metadata.EntryDrop:
			ops = append(ops, makeDrop(p.Name, defs0))
		case metadata.EntryRename:
			ops = append(ops, makeDrop(p.Name0, defs0))
			ops = append(ops, makeCreate(p.Name1, defs1))
		}
	}
	return ops
}

func findColumns(defs []metadata.PrimaryKeyDef, name string) []string {
	for _, d := range defs {
		if d.Name == name {
			return d.Columns
		}
	}
	return nil
}
func findForeignKey(defs []metadata.ForeignKeyDef, name string) metadata.ForeignKeyDef {
	for _, d := range defs {
		if d.Name == name {
			return d
		}
	}
	return metadata.ForeignKeyDef{}
}
func findUniqueColumns(defs []metadata.UniqueDef, name string) []string {
	for _, d := range defs {
		if d.Name == name {
			return d.Columns
		}
	}
	return nil
}
func findCheck(defs []metadata.CheckDef, name string) metadata.CheckDef {
	for _, d := range defs {
		if d.Name == name {
			return d
		}
	}
	return metadata.CheckDef{}
}
func findIndex(defs []metadata.IndexDef, name string) metadata.IndexDef {
	for _, d := range defs {
		if d.Name == name {
			return d
		}
	}
	return metadata.IndexDef{}
}

func modelColumnsToOps(cols []metadata.ColumnDef) []operations.ColumnDef {
	out := make([]operations.ColumnDef, len(cols))
	for i, c := range cols {
		out[i] = columnDefToOp(c)
	}
	return out
}

func columnDefToOp(c metadata.ColumnDef) operations.ColumnDef {
	out := operations.ColumnDef{
		Name: c.Name, Type: c.Type, Length: c.Length, Precision: c.Precision, Scale: c.Scale,
		Nullable: c.Nullable, Unique: c.Unique,
		PrimaryKey: c.PrimaryKey, Default: c.Default, Comment: c.Comment, EnumValues: c.EnumValues,
	}
	if c.ForeignKey != nil {
		out.References = &operations.ForeignKeyTarget{Table: c.ForeignKey.Table, Column: c.ForeignKey.Column, OnDelete: c.ForeignKey.OnDelete}
	}
	return out
}

// translatePatchDocument translates every table entry of a patch into a
// flat operation list, in table-name order so the plan is deterministic
// regardless of patch-document table order on disk.
func translatePatchDocument(patch *metadata.PatchDocument, v0, v1 *metadata.VersionDocument) []operations.Operation {
	tables := make([]metadata.TablePatch, len(patch.Tables))
	copy(tables, patch.Tables)
	sort.SliceStable(tables, func(i, j int) bool { return tablePatchName(tables[i]) < tablePatchName(tables[j]) })

	var ops []operations.Operation
	for _, t := range tables {
		ops = append(ops, translatePatch(tablePatchName(t), t, v0, v1)...)
	}
	return ops
}

func tablePatchName(t metadata.TablePatch) string {
	if t.Name != "" {
		return t.Name
	}
	return t.Name0
}
