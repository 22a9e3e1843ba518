// SPDX-License-Identifier: Apache-2.0

package patchgen

import (
	"sort"

	"github.com/charlesw1234/sooners-migrate/internal/enginerr"
	"github.com/charlesw1234/sooners-migrate/pkg/metadata"
)

// diffResult is the outcome of comparing two name sets at one nesting
// level: every name in names0 or names1 appears in exactly one of these
// four slices.
type diffResult struct {
	Create    []string
	Drop      []string
	Unchanged []string
	Rename    []Rename
}

// diffNames is the per-level diff: empty names0 means all creates, empty
// names1 all drops, equal sets all unchanged; anything else raises Doubt
// and resolves interactively, retrying on AnswerError with no maximum.
func diffNames(kind string, names0, names1 []string, prompt PromptIO) (*diffResult, error) {
	if len(names0) == 0 {
		return &diffResult{Create: sortedCopy(names1)}, nil
	}
	if len(names1) == 0 {
		return &diffResult{Drop: sortedCopy(names0)}, nil
	}
	if sameSet(names0, names1) {
		return &diffResult{Unchanged: sortedCopy(names0)}, nil
	}

	doubt := Doubt{Kind: kind, Names0: sortedCopy(names0), Names1: sortedCopy(names1)}
	if prompt == nil {
		return nil, enginerr.NewAmbiguousDiff(kind, doubt.Names0, doubt.Names1)
	}
	suggestions := suggestRenames(doubt)

	for {
		line, err := prompt.Resolve(doubt, suggestions)
		if err != nil {
			return nil, err
		}
		ans, err := parseAnswer(line, doubt, suggestions)
		if err != nil {
			if enginerr.As(err, enginerr.AnswerError) {
				continue
			}
			return nil, err
		}
		return &diffResult{Create: ans.Create, Drop: ans.Drop, Unchanged: ans.Unchanged, Rename: ans.Rename}, nil
	}
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	sa, sb := sortedCopy(a), sortedCopy(b)
	for i := range sa {
		if sa[i] != sb[i] {
			return false
		}
	}
	return true
}

func sortedCopy(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	return out
}

// Generate walks v0 and v1 in parallel at the table level, and recurses
// into the column level for every table kept unchanged.
func Generate(v0, v1 *metadata.VersionDocument, prompt PromptIO) (*metadata.PatchDocument, error) {
	if v0.Component != v1.Component {
		return nil, enginerr.NewAnswerError("version0 and version1 belong to different components")
	}

	tableDiff, err := diffNames("Table", v0.TableNames(), v1.TableNames(), prompt)
	if err != nil {
		return nil, err
	}

	patch := &metadata.PatchDocument{Component: v0.Component, Version0: v0.Version, Version1: v1.Version}

	for _, name := range tableDiff.Create {
		patch.Tables = append(patch.Tables, metadata.TablePatch{Kind: metadata.EntryCreate, Name: name})
	}
	for _, name := range tableDiff.Drop {
		patch.Tables = append(patch.Tables, metadata.TablePatch{Kind: metadata.EntryDrop, Name: name})
	}
	for _, r := range tableDiff.Rename {
		patch.Tables = append(patch.Tables, metadata.TablePatch{Kind: metadata.EntryRename, Name0: r.Name0, Name1: r.Name1})
	}
	for _, name := range tableDiff.Unchanged {
		t0, _ := v0.Table(name)
		t1, _ := v1.Table(name)
		tp, err := diffTable(name, t0, t1, prompt)
		if err != nil {
			return nil, err
		}
		patch.Tables = append(patch.Tables, tp)
	}

	sort.SliceStable(patch.Tables, func(i, j int) bool { return tablePatchSortKey(patch.Tables[i]) < tablePatchSortKey(patch.Tables[j]) })
	return patch, nil
}

func tablePatchSortKey(t metadata.TablePatch) string {
	if t.Name != "" {
		return t.Name
	}
	return t.Name0
}

func diffTable(name string, t0, t1 metadata.ModelDefinition, prompt PromptIO) (metadata.TablePatch, error) {
	colDiff, err := diffNames("Column", columnNames(t0), columnNames(t1), prompt)
	if err != nil {
		return metadata.TablePatch{}, err
	}

	tp := metadata.TablePatch{Kind: metadata.EntryUnchanged, Name: name}
	colByName0 := indexColumns(t0.Columns)
	colByName1 := indexColumns(t1.Columns)

	for _, n := range colDiff.Create {
		tp.Columns = append(tp.Columns, metadata.ColumnPatch{Kind: metadata.EntryCreate, Name: n, After: colByName1[n]})
	}
	for _, n := range colDiff.Drop {
		tp.Columns = append(tp.Columns, metadata.ColumnPatch{Kind: metadata.EntryDrop, Name: n, Before: colByName0[n]})
	}
	for _, r := range colDiff.Rename {
		tp.Columns = append(tp.Columns, metadata.ColumnPatch{
			Kind: metadata.EntryRename, Name0: r.Name0, Name1: r.Name1,
			Before: colByName0[r.Name0], After: colByName1[r.Name1],
		})
	}
	for _, n := range colDiff.Unchanged {
		tp.Columns = append(tp.Columns, metadata.ColumnPatch{
			Kind: metadata.EntryUnchanged, Name: n,
			Before: colByName0[n], After: colByName1[n],
		})
	}

	sort.SliceStable(tp.Columns, func(i, j int) bool { return columnPatchSortKey(tp.Columns[i]) < columnPatchSortKey(tp.Columns[j]) })

	pkDiff, err := diffConstraintNames("PrimaryKey", primaryKeyNames(t0), primaryKeyNames(t1), prompt)
	if err != nil {
		return metadata.TablePatch{}, err
	}
	tp.PrimaryKeys = pkDiff

	fkDiff, err := diffConstraintNames("ForeignKey", foreignKeyNames(t0), foreignKeyNames(t1), prompt)
	if err != nil {
		return metadata.TablePatch{}, err
	}
	tp.ForeignKeys = fkDiff

	uqDiff, err := diffConstraintNames("Unique", uniqueNames(t0), uniqueNames(t1), prompt)
	if err != nil {
		return metadata.TablePatch{}, err
	}
	tp.Uniques = uqDiff

	ckDiff, err := diffConstraintNames("Check", checkNames(t0), checkNames(t1), prompt)
	if err != nil {
		return metadata.TablePatch{}, err
	}
	tp.Checks = ckDiff

	ixDiff, err := diffConstraintNames("Index", indexNames(t0), indexNames(t1), prompt)
	if err != nil {
		return metadata.TablePatch{}, err
	}
	tp.Indexes = ixDiff

	return tp, nil
}

func columnPatchSortKey(c metadata.ColumnPatch) string {
	if c.Name != "" {
		return c.Name
	}
	return c.Name0
}

func columnNames(t metadata.ModelDefinition) []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

func indexColumns(cols []metadata.ColumnDef) map[string]metadata.ColumnDef {
	m := make(map[string]metadata.ColumnDef, len(cols))
	for _, c := range cols {
		m[c.Name] = c
	}
	return m
}

func primaryKeyNames(t metadata.ModelDefinition) []string {
	names := make([]string, len(t.PrimaryKeys))
	for i, p := range t.PrimaryKeys {
		names[i] = p.Name
	}
	return names
}
func foreignKeyNames(t metadata.ModelDefinition) []string {
	names := make([]string, len(t.ForeignKeys))
	for i, f := range t.ForeignKeys {
		names[i] = f.Name
	}
	return names
}
func uniqueNames(t metadata.ModelDefinition) []string {
	names := make([]string, len(t.Uniques))
	for i, u := range t.Uniques {
		names[i] = u.Name
	}
	return names
}
func checkNames(t metadata.ModelDefinition) []string {
	names := make([]string, len(t.Checks))
	for i, c := range t.Checks {
		names[i] = c.Name
	}
	return names
}
func indexNames(t metadata.ModelDefinition) []string {
	names := make([]string, len(t.Indexes))
	for i, ix := range t.Indexes {
		names[i] = ix.Name
	}
	return names
}

func diffConstraintNames(kind string, names0, names1 []string, prompt PromptIO) ([]metadata.ConstraintPatch, error) {
	d, err := diffNames(kind, names0, names1, prompt)
	if err != nil {
		return nil, err
	}
	var out []metadata.ConstraintPatch
	for _, n := range d.Create {
		out = append(out, metadata.ConstraintPatch{Kind: metadata.EntryCreate, Name: n})
	}
	for _, n := range d.Drop {
		out = append(out, metadata.ConstraintPatch{Kind: metadata.EntryDrop, Name: n})
	}
	for _, r := range d.Rename {
		out = append(out, metadata.ConstraintPatch{Kind: metadata.EntryRename, Name0: r.Name0, Name1: r.Name1})
	}
	for _, n := range d.Unchanged {
		out = append(out, metadata.ConstraintPatch{Kind: metadata.EntryUnchanged, Name: n})
	}
	return out, nil
}
