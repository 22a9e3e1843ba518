// SPDX-License-Identifier: Apache-2.0

package metadata

import (
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"

	"github.com/charlesw1234/sooners-migrate/internal/enginerr"
)

var validate = validator.New()

// VersionDocument is the canonical XML element `MetaData`: a numbered,
// immutable snapshot of a component's schema, checksummed over
// its canonical serialization.
type VersionDocument struct {
	Component string
	Version   int
	Checksum  string
	Tables    []ModelDefinition
}

// MakeVersion builds a VersionDocument from a set of ModelDefinitions.
// It returns (nil, nil) when models is empty, that is when the component
// declares zero tables.
func MakeVersion(component string, version int, models []ModelDefinition) (*VersionDocument, error) {
	if len(models) == 0 {
		return nil, nil
	}
	for i := range models {
		if err := validate.Struct(&models[i]); err != nil {
			return nil, fmt.Errorf("model %q: %w", models[i].Name, err)
		}
	}

	tables := make([]ModelDefinition, len(models))
	copy(tables, models)
	sort.Slice(tables, func(i, j int) bool { return tables[i].Name < tables[j].Name })

	doc := &VersionDocument{Component: component, Version: version, Tables: tables}
	canonical, err := canonicalXML(doc)
	if err != nil {
		return nil, err
	}
	doc.Checksum = checksumOf(canonical)
	return doc, nil
}

// VerifyChecksum recomputes the checksum over the document's canonical
// serialization and compares it against the stored Checksum field,
// surfacing enginerr.NewChecksumMismatch on disagreement.
func (v *VersionDocument) VerifyChecksum() error {
	canonical, err := canonicalXML(v)
	if err != nil {
		return err
	}
	got := checksumOf(canonical)
	if got != v.Checksum {
		return enginerr.NewChecksumMismatch(v.Component, v.Version, v.Checksum, got)
	}
	return nil
}

// Table looks up a table by name.
func (v *VersionDocument) Table(name string) (ModelDefinition, bool) {
	for _, t := range v.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return ModelDefinition{}, false
}

// TableNames returns the sorted set of table names declared by this
// version, used by the patch generator's parallel walk.
func (v *VersionDocument) TableNames() []string {
	names := make([]string, len(v.Tables))
	for i, t := range v.Tables {
		names[i] = t.Name
	}
	return names
}

// EntryKind is one of the four diff kinds a patch records at every
// sub-entity level: Create, Unchanged, Rename, Drop.
type EntryKind string

const (
	EntryCreate    EntryKind = "create"
	EntryUnchanged EntryKind = "unchanged"
	EntryRename    EntryKind = "rename"
	EntryDrop      EntryKind = "drop"
)

// PatchDocument is the canonical XML element `Patch`: the structural
// diff between two adjacent VersionDocuments of the same
// component.
type PatchDocument struct {
	Component string
	Version0  int
	Version1  int
	Tables    []TablePatch
}

// TablePatch is one table-level entry in a PatchDocument.
type TablePatch struct {
	Kind EntryKind
	// Name is populated for Create/Drop; Name0/Name1 for Rename.
	Name  string
	Name0 string
	Name1 string
	// Columns/Constraints/Indexes recurse the same four-kind grammar one
	// level down, populated only for Kind == EntryUnchanged.
	Columns     []ColumnPatch
	PrimaryKeys []ConstraintPatch
	ForeignKeys []ConstraintPatch
	Uniques     []ConstraintPatch
	Checks      []ConstraintPatch
	Indexes     []ConstraintPatch
}

type ColumnPatch struct {
	Kind   EntryKind
	Name   string
	Name0  string
	Name1  string
	Before ColumnDef
	After  ColumnDef
}

// ConstraintPatch is the shared (Kind, Name|Name0/Name1) shape for the five
// constraint/index sub-entity kinds (PrimaryKey, ForeignKey, Unique, Check,
// Index), each of which carries only naming information in the diff —
// their payload is looked up from the paired VersionDocuments by name when
// the migration planner translates a patch into Operations.
type ConstraintPatch struct {
	Kind  EntryKind
	Name  string
	Name0 string
	Name1 string
}
