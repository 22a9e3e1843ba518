// SPDX-License-Identifier: Apache-2.0

// Package shardmap implements SchemaParams: a structured mapping from
// table name to per-table deployment metadata, in its two well-known
// shapes ("plain" and "sharded"), plus the shard expansion rule.
package shardmap

import (
	"encoding/json"
	"sort"

	"github.com/go-playground/validator/v10"
)

// validate is constructed once; go-playground/validator instances are safe
// for concurrent use once their struct tags are registered.
var validate = validator.New()

// TableParams is the per-table deployment metadata for one table name. It
// carries exactly one of two well-known shapes:
//
//   - plain:   DatabaseNames is non-empty, Shards is nil.
//   - sharded: Shards is non-empty, mapping database name -> ordered shard
//     suffixes; DatabaseNames is nil.
type TableParams struct {
	// DatabaseNames is the set of databases this table is deployed to, in
	// the plain (unsharded) shape.
	DatabaseNames []string `json:"database_names,omitempty" validate:"omitempty,min=1,dive,required"`

	// Shards maps database name to an ordered list of shard suffixes, in
	// the sharded shape.
	Shards map[string][]string `json:"shards,omitempty"`
}

// IsSharded reports whether this table uses the sharded shape.
func (p TableParams) IsSharded() bool {
	return len(p.Shards) > 0
}

// SchemaParams is a structured mapping from table name to TableParams.
// Every table referenced by a materialized VersionDocument must have an
// entry; absent entries default to {DefaultDatabase}, applied by
// WithDefaults.
type SchemaParams struct {
	Tables map[string]TableParams `json:"tables"`
}

// New returns an empty SchemaParams.
func New() *SchemaParams {
	return &SchemaParams{Tables: map[string]TableParams{}}
}

// Validate checks structural well-formedness of every TableParams entry.
func (p *SchemaParams) Validate() error {
	for name, t := range p.Tables {
		if err := validate.Struct(t); err != nil {
			return err
		}
		if len(t.DatabaseNames) > 0 && len(t.Shards) > 0 {
			return &InvalidShapeError{Table: name, Reason: "has both database_names and shards"}
		}
	}
	return nil
}

// InvalidShapeError is returned when a TableParams entry mixes the plain
// and sharded shapes, or is otherwise structurally invalid.
type InvalidShapeError struct {
	Table  string
	Reason string
}

func (e *InvalidShapeError) Error() string {
	return "invalid schema params for table " + e.Table + ": " + e.Reason
}

// WithDefaults returns a copy of p where every table name present in
// tableNames but absent from p.Tables is given {defaultDatabase} plain
// params.
func (p *SchemaParams) WithDefaults(tableNames []string, defaultDatabase string) *SchemaParams {
	out := &SchemaParams{Tables: make(map[string]TableParams, len(p.Tables))}
	for k, v := range p.Tables {
		out.Tables[k] = v
	}
	for _, name := range tableNames {
		if _, ok := out.Tables[name]; !ok {
			out.Tables[name] = TableParams{DatabaseNames: []string{defaultDatabase}}
		}
	}
	return out
}

// ShardEntity is one expanded physical entity for a sharded table: table
// `name` deployed to `database` under physical name `name + "_" + suffix`.
type ShardEntity struct {
	TableName    string
	PhysicalName string
	Database     string
	ShardSuffix  string
}

// Expand expands a sharded table with map {db: [s1, s2, ...]} to one
// ShardEntity per (database, suffix) pair, each mapping to exactly one
// database. Plain tables expand to one ShardEntity per database with an
// empty suffix and PhysicalName equal to TableName. Results are ordered
// ascending by (database, suffix) so plans stay deterministic.
func Expand(tableName string, params TableParams) []ShardEntity {
	var out []ShardEntity
	if params.IsSharded() {
		dbs := make([]string, 0, len(params.Shards))
		for db := range params.Shards {
			dbs = append(dbs, db)
		}
		sort.Strings(dbs)
		for _, db := range dbs {
			suffixes := append([]string{}, params.Shards[db]...)
			sort.Strings(suffixes)
			for _, suffix := range suffixes {
				out = append(out, ShardEntity{
					TableName:    tableName,
					PhysicalName: tableName + "_" + suffix,
					Database:     db,
					ShardSuffix:  suffix,
				})
			}
		}
		return out
	}

	dbs := append([]string{}, params.DatabaseNames...)
	sort.Strings(dbs)
	for _, db := range dbs {
		out = append(out, ShardEntity{
			TableName:    tableName,
			PhysicalName: tableName,
			Database:     db,
		})
	}
	return out
}

// Marshal serializes p for storage as a Configuration text blob
// (SCHEMA_PARAMS_0 / SCHEMA_PARAMS_1).
func (p *SchemaParams) Marshal() (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Unmarshal parses a Configuration text blob back into a SchemaParams,
// validating its JSON shape against schemaParamsSchema before trusting
// it (see ValidateJSONShape in jsonschema.go).
func Unmarshal(text string) (*SchemaParams, error) {
	if err := ValidateJSONShape([]byte(text)); err != nil {
		return nil, err
	}
	var p SchemaParams
	if err := json.Unmarshal([]byte(text), &p); err != nil {
		return nil, err
	}
	if p.Tables == nil {
		p.Tables = map[string]TableParams{}
	}
	return &p, nil
}
