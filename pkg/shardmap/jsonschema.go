// SPDX-License-Identifier: Apache-2.0

package shardmap

import (
	"bytes"
	"encoding/json"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// schemaParamsSchema is the JSON-schema shape a persisted SCHEMA_PARAMS_*
// configuration blob must satisfy before it is trusted as a SchemaParams
// value.
const schemaParamsSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["tables"],
  "properties": {
    "tables": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "properties": {
          "database_names": {"type": "array", "items": {"type": "string"}},
          "shards": {
            "type": "object",
            "additionalProperties": {"type": "array", "items": {"type": "string"}}
          }
        }
      }
    }
  }
}`

var compiledSchemaParamsSchema *jsonschema.Schema

func init() {
	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema_params.json", mustUnmarshal(schemaParamsSchema)); err != nil {
		panic(err)
	}
	sch, err := c.Compile("schema_params.json")
	if err != nil {
		panic(err)
	}
	compiledSchemaParamsSchema = sch
}

func mustUnmarshal(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		panic(err)
	}
	return v
}

// ValidateJSONShape validates raw JSON bytes against the schema params
// shape before they are unmarshaled into a SchemaParams value.
func ValidateJSONShape(raw []byte) error {
	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&v); err != nil {
		return err
	}
	return compiledSchemaParamsSchema.Validate(v)
}
