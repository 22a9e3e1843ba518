// SPDX-License-Identifier: Apache-2.0

package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exampleModels() []ModelDefinition {
	return []ModelDefinition{
		{
			Name: "users",
			Columns: []ColumnDef{
				{Name: "id", Type: "integer", PrimaryKey: true},
				{Name: "name", Type: "varchar", Length: 32, Nullable: true},
			},
			Indexes: []IndexDef{
				{Name: "idx_users_name", Columns: []string{"name"}},
			},
		},
		{
			Name: "orders",
			Columns: []ColumnDef{
				{Name: "id", Type: "integer", PrimaryKey: true},
				{Name: "user_id", Type: "integer", ForeignKey: &ColumnForeignKeyDef{
					Table: "users", Column: "id", OnDelete: "CASCADE",
				}},
			},
		},
	}
}

func TestMakeVersionChecksumIsDeterministic(t *testing.T) {
	v1, err := MakeVersion("app", 1, exampleModels())
	require.NoError(t, err)
	require.NotNil(t, v1)

	v2, err := MakeVersion("app", 1, exampleModels())
	require.NoError(t, err)

	assert.Equal(t, v1.Checksum, v2.Checksum)
	assert.NoError(t, v1.VerifyChecksum())
}

func TestMakeVersionChecksumIgnoresDeclarationOrderOfTables(t *testing.T) {
	models := exampleModels()
	reversed := []ModelDefinition{models[1], models[0]}

	v1, err := MakeVersion("app", 1, models)
	require.NoError(t, err)
	v2, err := MakeVersion("app", 1, reversed)
	require.NoError(t, err)

	assert.Equal(t, v1.Checksum, v2.Checksum)
}

func TestMakeVersionChecksumChangesWithContent(t *testing.T) {
	v1, err := MakeVersion("app", 1, exampleModels())
	require.NoError(t, err)

	models := exampleModels()
	models[0].Columns = append(models[0].Columns, ColumnDef{
		Name: "email", Type: "varchar", Length: 64, Nullable: true,
	})
	v2, err := MakeVersion("app", 2, models)
	require.NoError(t, err)

	assert.NotEqual(t, v1.Checksum, v2.Checksum)
}

func TestMakeVersionReturnsNilForZeroTables(t *testing.T) {
	v, err := MakeVersion("empty", 1, nil)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestMakeVersionValidatesModels(t *testing.T) {
	_, err := MakeVersion("app", 1, []ModelDefinition{
		{Name: "bad", Columns: []ColumnDef{{Name: "c", Type: "blob"}}},
	})
	assert.Error(t, err)
}

func TestVerifyChecksumDetectsTampering(t *testing.T) {
	v, err := MakeVersion("app", 1, exampleModels())
	require.NoError(t, err)

	v.Checksum = "bm90IGEgcmVhbCBjaGVja3N1bQ=="
	assert.Error(t, v.VerifyChecksum())
}

func TestTableNamesAreSorted(t *testing.T) {
	v, err := MakeVersion("app", 1, exampleModels())
	require.NoError(t, err)

	assert.Equal(t, []string{"orders", "users"}, v.TableNames())
}

func TestCanonicalXMLOrdersConstraintsByKind(t *testing.T) {
	models := []ModelDefinition{{
		Name:    "t",
		Columns: []ColumnDef{{Name: "a", Type: "integer"}, {Name: "b", Type: "integer"}},
		Checks:  []CheckDef{{Name: "ck_positive", Expression: "a > 0"}},
		Uniques: []UniqueDef{{Name: "uq_ab", Columns: []string{"a", "b"}}},
		PrimaryKeys: []PrimaryKeyDef{
			{Name: "pk_t", Columns: []string{"a"}},
		},
	}}
	v, err := MakeVersion("app", 1, models)
	require.NoError(t, err)

	raw, err := canonicalXML(v)
	require.NoError(t, err)

	xml := string(raw)
	pk := indexOfSubstring(t, xml, "pk_t")
	uq := indexOfSubstring(t, xml, "uq_ab")
	ck := indexOfSubstring(t, xml, "ck_positive")
	assert.Less(t, pk, uq)
	assert.Less(t, uq, ck)
}

func indexOfSubstring(t *testing.T, s, sub string) int {
	t.Helper()
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	t.Fatalf("%q not found in canonical xml", sub)
	return -1
}
