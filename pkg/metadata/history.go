// SPDX-License-Identifier: Apache-2.0

package metadata

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// HistoryDir returns the on-disk history directory for a component,
// holding its version.NNNN.xml and patch.NNNN.MMMM.xml files.
func HistoryDir(baseDir, component string) string {
	return filepath.Join(baseDir, component, "history")
}

func versionFilename(version int) string {
	return fmt.Sprintf("version.%04d.xml", version)
}

func patchFilename(version0, version1 int) string {
	return fmt.Sprintf("patch.%04d.%04d.xml", version0, version1)
}

// WriteVersion serializes a VersionDocument to its canonical pretty-printed
// form (with the checksum attribute, computed over the un-pretty-printed
// bytes) and writes it under history/version.NNNN.xml. Version files are
// immutable once written: WriteVersion refuses to overwrite an existing
// file.
func WriteVersion(baseDir string, v *VersionDocument) (string, error) {
	dir := HistoryDir(baseDir, v.Component)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating history dir: %w", err)
	}

	path := filepath.Join(dir, versionFilename(v.Version))
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("version file %s already exists: version documents are immutable once written", path)
	}

	doc := etree.NewDocument()
	root := doc.CreateElement("MetaData")
	root.CreateAttr("sooners", fmt.Sprintf("%s-%02d", v.Component, v.Version))
	root.CreateAttr("component", v.Component)
	root.CreateAttr("version", strconv.Itoa(v.Version))
	root.CreateAttr("checksum", v.Checksum)
	for _, table := range v.Tables {
		writeTableElement(root, table)
	}
	doc.Indent(2)

	if err := doc.WriteToFile(path); err != nil {
		return "", fmt.Errorf("writing version file: %w", err)
	}
	return path, nil
}

// ReadVersion loads a VersionDocument from history/version.NNNN.xml and
// verifies its recomputed checksum against the stored attribute
// (enginerr.ChecksumMismatch on disagreement).
func ReadVersion(baseDir, component string, version int) (*VersionDocument, error) {
	path := filepath.Join(HistoryDir(baseDir, component), versionFilename(version))
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, fmt.Errorf("reading version file %s: %w", path, err)
	}

	root := doc.Root()
	v := &VersionDocument{
		Component: root.SelectAttrValue("component", component),
		Checksum:  root.SelectAttrValue("checksum", ""),
	}
	if ver, err := strconv.Atoi(root.SelectAttrValue("version", "0")); err == nil {
		v.Version = ver
	}

	for _, te := range root.SelectElements("Table") {
		v.Tables = append(v.Tables, parseTableElement(te))
	}

	if err := v.VerifyChecksum(); err != nil {
		return nil, err
	}
	return v, nil
}

func parseTableElement(te *etree.Element) ModelDefinition {
	m := ModelDefinition{
		Name:    te.SelectAttrValue("name", ""),
		Comment: te.SelectAttrValue("comment", ""),
	}
	for _, ce := range te.SelectElements("Column") {
		m.Columns = append(m.Columns, parseColumnElement(ce))
	}
	for _, pe := range te.SelectElements("PrimaryKey") {
		m.PrimaryKeys = append(m.PrimaryKeys, PrimaryKeyDef{
			Name:    pe.SelectAttrValue("name", ""),
			Columns: splitColumns(pe.SelectAttrValue("columns", "")),
		})
	}
	for _, fe := range te.SelectElements("ForeignKeyConstraint") {
		m.ForeignKeys = append(m.ForeignKeys, ForeignKeyDef{
			Name:              fe.SelectAttrValue("name", ""),
			Columns:           splitColumns(fe.SelectAttrValue("columns", "")),
			ReferencedTable:   fe.SelectAttrValue("referenced_table", ""),
			ReferencedColumns: splitColumns(fe.SelectAttrValue("referenced_columns", "")),
			OnDelete:          fe.SelectAttrValue("ondelete", ""),
			OnUpdate:          fe.SelectAttrValue("onupdate", ""),
		})
	}
	for _, ue := range te.SelectElements("Unique") {
		m.Uniques = append(m.Uniques, UniqueDef{
			Name:    ue.SelectAttrValue("name", ""),
			Columns: splitColumns(ue.SelectAttrValue("columns", "")),
		})
	}
	for _, ch := range te.SelectElements("Check") {
		m.Checks = append(m.Checks, CheckDef{
			Name:       ch.SelectAttrValue("name", ""),
			Expression: ch.SelectAttrValue("expression", ""),
		})
	}
	for _, ie := range te.SelectElements("Index") {
		m.Indexes = append(m.Indexes, IndexDef{
			Name:    ie.SelectAttrValue("name", ""),
			Columns: splitColumns(ie.SelectAttrValue("columns", "")),
			Unique:  ie.SelectAttrValue("unique", "false") == "true",
		})
	}
	return m
}

func parseColumnElement(ce *etree.Element) ColumnDef {
	c := ColumnDef{
		Name:       ce.SelectAttrValue("name", ""),
		Type:       ce.SelectAttrValue("type", ""),
		Nullable:   ce.SelectAttrValue("nullable", "false") == "true",
		Unique:     ce.SelectAttrValue("unique", "false") == "true",
		PrimaryKey: ce.SelectAttrValue("primary_key", "false") == "true",
		Comment:    ce.SelectAttrValue("comment", ""),
	}
	if l, err := strconv.Atoi(ce.SelectAttrValue("length", "0")); err == nil {
		c.Length = l
	}
	if p, err := strconv.Atoi(ce.SelectAttrValue("precision", "0")); err == nil {
		c.Precision = p
	}
	if s, err := strconv.Atoi(ce.SelectAttrValue("scale", "0")); err == nil {
		c.Scale = s
	}
	if d := ce.SelectAttr("default"); d != nil {
		val := d.Value
		c.Default = &val
	}
	if ev := ce.SelectAttrValue("enum_values", ""); ev != "" {
		c.EnumValues = splitColumns(ev)
	}
	if fke := ce.SelectElement("ForeignKey"); fke != nil {
		target := fke.SelectAttrValue("column", "")
		table, column := splitFullname(target)
		c.ForeignKey = &ColumnForeignKeyDef{Table: table, Column: column, OnDelete: fke.SelectAttrValue("ondelete", "")}
	}
	return c
}

func splitColumns(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func splitFullname(s string) (table, column string) {
	idx := strings.LastIndex(s, ".")
	if idx < 0 {
		return "", s
	}
	return s[:idx], s[idx+1:]
}

// WritePatch serializes a PatchDocument to history/patch.NNNN.MMMM.xml.
func WritePatch(baseDir string, p *PatchDocument) (string, error) {
	dir := HistoryDir(baseDir, p.Component)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating history dir: %w", err)
	}

	path := filepath.Join(dir, patchFilename(p.Version0, p.Version1))
	doc := etree.NewDocument()
	root := doc.CreateElement("Patch")
	root.CreateAttr("sooners", fmt.Sprintf("%s-%02d.%02d", p.Component, p.Version0, p.Version1))
	root.CreateAttr("component", p.Component)
	root.CreateAttr("version0", strconv.Itoa(p.Version0))
	root.CreateAttr("version1", strconv.Itoa(p.Version1))
	for _, t := range p.Tables {
		writeTablePatchElement(root, t)
	}
	doc.Indent(2)

	if err := doc.WriteToFile(path); err != nil {
		return "", fmt.Errorf("writing patch file: %w", err)
	}
	return path, nil
}

func writeTablePatchElement(parent *etree.Element, t TablePatch) {
	switch t.Kind {
	case EntryCreate:
		e := parent.CreateElement("TableCreate")
		e.CreateAttr("name", t.Name)
	case EntryDrop:
		e := parent.CreateElement("TableDrop")
		e.CreateAttr("name", t.Name)
	case EntryRename:
		e := parent.CreateElement("TableRename")
		e.CreateAttr("name0", t.Name0)
		e.CreateAttr("name1", t.Name1)
		writeColumnPatches(e, t.Columns)
	case EntryUnchanged:
		e := parent.CreateElement("Table")
		e.CreateAttr("name", t.Name)
		writeColumnPatches(e, t.Columns)
		writeConstraintPatches(e, "PrimaryKey", t.PrimaryKeys)
		writeConstraintPatches(e, "ForeignKeyConstraint", t.ForeignKeys)
		writeConstraintPatches(e, "Unique", t.Uniques)
		writeConstraintPatches(e, "Check", t.Checks)
		writeConstraintPatches(e, "Index", t.Indexes)
	}
}

func writeConstraintPatches(parent *etree.Element, tag string, entries []ConstraintPatch) {
	for _, c := range entries {
		switch c.Kind {
		case EntryCreate:
			e := parent.CreateElement(tag + "Create")
			e.CreateAttr("name", c.Name)
		case EntryDrop:
			e := parent.CreateElement(tag + "Drop")
			e.CreateAttr("name", c.Name)
		case EntryRename:
			e := parent.CreateElement(tag + "Rename")
			e.CreateAttr("name0", c.Name0)
			e.CreateAttr("name1", c.Name1)
		case EntryUnchanged:
			e := parent.CreateElement(tag)
			e.CreateAttr("name", c.Name)
		}
	}
}

func writeColumnPatches(parent *etree.Element, cols []ColumnPatch) {
	for _, c := range cols {
		switch c.Kind {
		case EntryCreate:
			e := parent.CreateElement("ColumnCreate")
			e.CreateAttr("name", c.Name)
		case EntryDrop:
			e := parent.CreateElement("ColumnDrop")
			e.CreateAttr("name", c.Name)
		case EntryRename:
			e := parent.CreateElement("ColumnRename")
			e.CreateAttr("name0", c.Name0)
			e.CreateAttr("name1", c.Name1)
		case EntryUnchanged:
			e := parent.CreateElement("Column")
			e.CreateAttr("name", c.Name)
		}
	}
}
