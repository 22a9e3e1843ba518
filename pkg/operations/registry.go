// SPDX-License-Identifier: Apache-2.0

package operations

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// List is an ordered slice of Operations that (de)serializes as a JSON
// array of single-key objects, each keyed by the operation's typeid name
// (e.g. {"create_table": {...}}).
type List []Operation

// MarshalJSON serializes the list of operations into a JSON array.
func (l List) MarshalJSON() ([]byte, error) {
	if len(l) == 0 {
		return []byte(`[]`), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('[')

	enc := json.NewEncoder(&buf)
	for i, op := range l {
		if i != 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(`{"`)
		buf.WriteString(op.TypeID().String())
		buf.WriteString(`":`)
		if err := enc.Encode(op); err != nil {
			return nil, fmt.Errorf("encode operation [%d]: %w", i, err)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// UnmarshalJSON deserializes the list of operations from a JSON array of
// single-key, typeid-name-keyed objects.
func (l *List) UnmarshalJSON(data []byte) error {
	var raw []map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if len(raw) == 0 {
		*l = List{}
		return nil
	}

	ops := make([]Operation, len(raw))
	for i, obj := range raw {
		if len(obj) != 1 {
			return fmt.Errorf("operation object at index %d must have exactly one key, got %d", i, len(obj))
		}

		var name string
		var body json.RawMessage
		for k, v := range obj {
			name, body = k, v
		}

		op, err := newByName(name)
		if err != nil {
			return fmt.Errorf("operation at index %d: %w", i, err)
		}

		dec := json.NewDecoder(bytes.NewReader(body))
		dec.DisallowUnknownFields()
		if err := dec.Decode(op); err != nil {
			return fmt.Errorf("decode operation [%s]: %w", name, err)
		}

		ops[i] = op
	}

	*l = ops
	return nil
}

// newByName returns a freshly allocated, zero-valued Operation for the
// given typeid name, the inverse of TypeID.String().
func newByName(name string) (Operation, error) {
	switch name {
	case TypeCreateTable.String():
		return &OpCreateTable{}, nil
	case TypeRenameTable.String():
		return &OpRenameTable{}, nil
	case TypeDropTable.String():
		return &OpDropTable{}, nil
	case TypeAddColumn.String():
		return &OpAddColumn{}, nil
	case TypeAlterColumn.String():
		return &OpAlterColumn{}, nil
	case TypeDropColumn.String():
		return &OpDropColumn{}, nil
	case TypeCreatePrimaryKey.String():
		return &OpCreatePrimaryKey{}, nil
	case TypeDropPrimaryKey.String():
		return &OpDropPrimaryKey{}, nil
	case TypeCreateForeignKey.String():
		return &OpCreateForeignKey{}, nil
	case TypeDropForeignKey.String():
		return &OpDropForeignKey{}, nil
	case TypeCreateUnique.String():
		return &OpCreateUnique{}, nil
	case TypeDropUnique.String():
		return &OpDropUnique{}, nil
	case TypeCreateCheck.String():
		return &OpCreateCheck{}, nil
	case TypeDropCheck.String():
		return &OpDropCheck{}, nil
	case TypeCreateIndex.String():
		return &OpCreateIndex{}, nil
	case TypeDropIndex.String():
		return &OpDropIndex{}, nil
	default:
		return nil, fmt.Errorf("unknown operation typeid name %q", name)
	}
}

// ByKey indexes a list of operations by their Key, used by the planner to
// look up an operation against the bookkeeping operation log.
func ByKey(ops List) map[Key]Operation {
	m := make(map[Key]Operation, len(ops))
	for _, op := range ops {
		m[op.Key()] = op
	}
	return m
}
