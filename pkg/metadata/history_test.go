// SPDX-License-Identifier: Apache-2.0

package metadata

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charlesw1234/sooners-migrate/internal/enginerr"
)

func TestWriteAndReadVersionRoundTrip(t *testing.T) {
	dir := t.TempDir()

	v, err := MakeVersion("app", 1, exampleModels())
	require.NoError(t, err)

	path, err := WriteVersion(dir, v)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "app", "history", "version.0001.xml"), path)

	got, err := ReadVersion(dir, "app", 1)
	require.NoError(t, err)

	assert.Equal(t, v.Component, got.Component)
	assert.Equal(t, v.Version, got.Version)
	assert.Equal(t, v.Checksum, got.Checksum)
	require.Len(t, got.Tables, 2)

	orders, ok := got.Table("orders")
	require.True(t, ok)
	require.Len(t, orders.Columns, 2)
	require.NotNil(t, orders.Columns[1].ForeignKey)
	assert.Equal(t, "users", orders.Columns[1].ForeignKey.Table)
	assert.Equal(t, "id", orders.Columns[1].ForeignKey.Column)
	assert.Equal(t, "CASCADE", orders.Columns[1].ForeignKey.OnDelete)
}

func TestWriteVersionRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()

	v, err := MakeVersion("app", 1, exampleModels())
	require.NoError(t, err)

	_, err = WriteVersion(dir, v)
	require.NoError(t, err)

	_, err = WriteVersion(dir, v)
	assert.ErrorContains(t, err, "immutable")
}

func TestReadVersionDetectsChecksumMismatch(t *testing.T) {
	dir := t.TempDir()

	v, err := MakeVersion("app", 1, exampleModels())
	require.NoError(t, err)
	path, err := WriteVersion(dir, v)
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	tampered := strings.Replace(string(raw), `name="users"`, `name="people"`, 1)
	require.NoError(t, os.WriteFile(path, []byte(tampered), 0o644))

	_, err = ReadVersion(dir, "app", 1)
	require.Error(t, err)
	assert.True(t, enginerr.As(err, enginerr.ChecksumMismatch))
}

func TestWritePatchFileLayout(t *testing.T) {
	dir := t.TempDir()

	p := &PatchDocument{
		Component: "app",
		Version0:  1,
		Version1:  2,
		Tables: []TablePatch{
			{Kind: EntryCreate, Name: "orders"},
			{Kind: EntryUnchanged, Name: "users", Columns: []ColumnPatch{
				{Kind: EntryRename, Name0: "name", Name1: "full_name"},
			}},
			{Kind: EntryDrop, Name: "legacy"},
		},
	}

	path, err := WritePatch(dir, p)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "app", "history", "patch.0001.0002.xml"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	xml := string(raw)
	assert.Contains(t, xml, `<TableCreate name="orders"/>`)
	assert.Contains(t, xml, `<ColumnRename name0="name" name1="full_name"/>`)
	assert.Contains(t, xml, `<TableDrop name="legacy"/>`)
	assert.Contains(t, xml, `version0="1"`)
	assert.Contains(t, xml, `version1="2"`)
}
