// SPDX-License-Identifier: Apache-2.0

package shardmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandShardedTable(t *testing.T) {
	params := TableParams{Shards: map[string][]string{
		"db1": {"002", "001"},
		"db0": {"000"},
	}}

	got := Expand("t", params)
	require.Len(t, got, 3)

	assert.Equal(t, ShardEntity{TableName: "t", PhysicalName: "t_000", Database: "db0", ShardSuffix: "000"}, got[0])
	assert.Equal(t, ShardEntity{TableName: "t", PhysicalName: "t_001", Database: "db1", ShardSuffix: "001"}, got[1])
	assert.Equal(t, ShardEntity{TableName: "t", PhysicalName: "t_002", Database: "db1", ShardSuffix: "002"}, got[2])
}

func TestExpandPlainTable(t *testing.T) {
	params := TableParams{DatabaseNames: []string{"db1", "db0"}}

	got := Expand("t", params)
	require.Len(t, got, 2)
	assert.Equal(t, "db0", got[0].Database)
	assert.Equal(t, "db1", got[1].Database)
	for _, e := range got {
		assert.Equal(t, "t", e.PhysicalName)
		assert.Empty(t, e.ShardSuffix)
	}
}

func TestWithDefaultsFillsAbsentTables(t *testing.T) {
	p := New()
	p.Tables["configured"] = TableParams{DatabaseNames: []string{"db1"}}

	out := p.WithDefaults([]string{"configured", "unconfigured"}, "default")

	assert.Equal(t, []string{"db1"}, out.Tables["configured"].DatabaseNames)
	assert.Equal(t, []string{"default"}, out.Tables["unconfigured"].DatabaseNames)
	// the receiver is not mutated
	_, ok := p.Tables["unconfigured"]
	assert.False(t, ok)
}

func TestValidateRejectsMixedShape(t *testing.T) {
	p := New()
	p.Tables["t"] = TableParams{
		DatabaseNames: []string{"db0"},
		Shards:        map[string][]string{"db1": {"000"}},
	}

	err := p.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "both database_names and shards")
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	p := New()
	p.Tables["plain"] = TableParams{DatabaseNames: []string{"db0"}}
	p.Tables["sharded"] = TableParams{Shards: map[string][]string{"db0": {"000"}, "db1": {"001", "002"}}}

	text, err := p.Marshal()
	require.NoError(t, err)

	got, err := Unmarshal(text)
	require.NoError(t, err)
	assert.Equal(t, p.Tables, got.Tables)
}

func TestUnmarshalRejectsWrongShape(t *testing.T) {
	_, err := Unmarshal(`{"tables": {"t": {"database_names": "not-a-list"}}}`)
	assert.Error(t, err)

	_, err = Unmarshal(`{"not_tables": {}}`)
	assert.Error(t, err)

	_, err = Unmarshal(`{invalid json`)
	assert.Error(t, err)
}
