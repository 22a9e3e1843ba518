// SPDX-License-Identifier: Apache-2.0

package metadata

import (
	"encoding/base64"
	"fmt"
	"sort"
	"strconv"

	"github.com/beevik/etree"
	"golang.org/x/crypto/sha3"
)

// The priority* constants order constraint kinds within a table: primary
// keys first, then foreign keys, uniques, checks.
const (
	priorityPrimaryKey = 0
	priorityForeignKey = 1
	priorityUnique     = 2
	priorityCheck      = 3
)

// canonicalXML builds the pre-order etree representation of a
// VersionDocument and returns its UTF-8 bytes with no pretty-printing
// whitespace; the checksum is computed over these bytes, before any
// pretty-printing is applied.
func canonicalXML(v *VersionDocument) ([]byte, error) {
	doc := etree.NewDocument()
	root := doc.CreateElement("MetaData")
	root.CreateAttr("component", v.Component)
	root.CreateAttr("version", strconv.Itoa(v.Version))

	for _, table := range v.Tables {
		writeTableElement(root, table)
	}

	doc.WriteSettings.CanonicalText = true
	doc.WriteSettings.CanonicalAttrVal = true
	return doc.WriteToBytes()
}

func writeTableElement(parent *etree.Element, table ModelDefinition) {
	te := parent.CreateElement("Table")
	te.CreateAttr("name", table.Name)
	if table.Comment != "" {
		te.CreateAttr("comment", table.Comment)
	}

	for _, col := range table.Columns {
		writeColumnElement(te, col)
	}

	type constraintEntry struct {
		priority int
		name     string
		write    func()
	}
	var entries []constraintEntry
	for _, pk := range table.PrimaryKeys {
		pk := pk
		entries = append(entries, constraintEntry{priorityPrimaryKey, pk.Name, func() {
			e := te.CreateElement("PrimaryKey")
			e.CreateAttr("name", pk.Name)
			e.CreateAttr("columns", joinColumns(pk.Columns))
		}})
	}
	for _, fk := range table.ForeignKeys {
		fk := fk
		entries = append(entries, constraintEntry{priorityForeignKey, fk.Name, func() {
			e := te.CreateElement("ForeignKeyConstraint")
			e.CreateAttr("name", fk.Name)
			e.CreateAttr("columns", joinColumns(fk.Columns))
			e.CreateAttr("referenced_table", fk.ReferencedTable)
			e.CreateAttr("referenced_columns", joinColumns(fk.ReferencedColumns))
			if fk.OnDelete != "" {
				e.CreateAttr("ondelete", fk.OnDelete)
			}
			if fk.OnUpdate != "" {
				e.CreateAttr("onupdate", fk.OnUpdate)
			}
		}})
	}
	for _, u := range table.Uniques {
		u := u
		entries = append(entries, constraintEntry{priorityUnique, u.Name, func() {
			e := te.CreateElement("Unique")
			e.CreateAttr("name", u.Name)
			e.CreateAttr("columns", joinColumns(u.Columns))
		}})
	}
	for _, c := range table.Checks {
		c := c
		entries = append(entries, constraintEntry{priorityCheck, c.Name, func() {
			e := te.CreateElement("Check")
			e.CreateAttr("name", c.Name)
			e.CreateAttr("expression", c.Expression)
		}})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].priority != entries[j].priority {
			return entries[i].priority < entries[j].priority
		}
		return entries[i].name < entries[j].name
	})
	for _, e := range entries {
		e.write()
	}

	indexes := make([]IndexDef, len(table.Indexes))
	copy(indexes, table.Indexes)
	sort.Slice(indexes, func(i, j int) bool { return indexes[i].Name < indexes[j].Name })
	for _, idx := range indexes {
		ie := te.CreateElement("Index")
		ie.CreateAttr("name", idx.Name)
		ie.CreateAttr("columns", joinColumns(idx.Columns))
		ie.CreateAttr("unique", strconv.FormatBool(idx.Unique))
	}
}

func writeColumnElement(parent *etree.Element, col ColumnDef) {
	ce := parent.CreateElement("Column")
	ce.CreateAttr("name", col.Name)
	ce.CreateAttr("type", col.Type)
	if col.Length != 0 {
		ce.CreateAttr("length", strconv.Itoa(col.Length))
	}
	if col.Precision != 0 {
		ce.CreateAttr("precision", strconv.Itoa(col.Precision))
	}
	if col.Scale != 0 {
		ce.CreateAttr("scale", strconv.Itoa(col.Scale))
	}
	ce.CreateAttr("nullable", strconv.FormatBool(col.Nullable))
	ce.CreateAttr("unique", strconv.FormatBool(col.Unique))
	ce.CreateAttr("primary_key", strconv.FormatBool(col.PrimaryKey))
	if col.Default != nil {
		ce.CreateAttr("default", *col.Default)
	}
	if col.Comment != "" {
		ce.CreateAttr("comment", col.Comment)
	}
	if len(col.EnumValues) > 0 {
		// enum members in numeric-value order: declaration order is their
		// numeric order.
		ce.CreateAttr("enum_values", joinColumns(col.EnumValues))
	}
	if col.ForeignKey != nil {
		fke := ce.CreateElement("ForeignKey")
		fke.CreateAttr("column", fmt.Sprintf("%s.%s", col.ForeignKey.Table, col.ForeignKey.Column))
		if col.ForeignKey.OnDelete != "" {
			fke.CreateAttr("ondelete", col.ForeignKey.OnDelete)
		}
	}
}

func joinColumns(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ","
		}
		out += n
	}
	return out
}

// checksumOf returns the base64 encoding of the SHA3-384 digest of raw.
// The digest algorithm is part of the on-disk contract: stored checksum
// attributes must match byte-for-byte across implementations.
func checksumOf(raw []byte) string {
	sum := sha3.Sum384(raw)
	return base64.StdEncoding.EncodeToString(sum[:])
}
