// SPDX-License-Identifier: Apache-2.0

package bookkeeping

import (
	"context"
	"fmt"

	"github.com/charlesw1234/sooners-migrate/pkg/operations"
)

// OperationLog is the append-only DBSchemaOperation table, present in
// every database. It is the idempotence boundary: an operation is
// "already done" for a component iff its Key appears here.
type OperationLog struct {
	names       TableNames
	dialectName string
}

func NewOperationLog(names TableNames, dialectName string) *OperationLog {
	return &OperationLog{names: names, dialectName: dialectName}
}

// Loaded is the in-memory set of keys currently logged for one component,
// read once per migration run and consulted by the planner before every
// operation.
type Loaded struct {
	keys map[operations.Key]bool
}

// Contains reports whether key is already logged.
func (l *Loaded) Contains(key operations.Key) bool { return l.keys[key] }

// Load reads every logged key for component.
func (o *OperationLog) Load(ctx context.Context, s SessionStore, component string) (*Loaded, error) {
	l := &Loaded{keys: map[operations.Key]bool{}}
	if !TableExists(ctx, s, o.names.DBSchemaOperation) {
		return l, nil
	}

	rows, err := s.QueryContext(ctx, fmt.Sprintf(
		"SELECT typeid, tablename, name0, name1 FROM %s WHERE component_name = %s",
		o.names.DBSchemaOperation, placeholder(o.dialectName, 1)), component)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var typeID int
		var table, name0, name1 *string
		if err := rows.Scan(&typeID, &table, &name0, &name1); err != nil {
			return nil, err
		}
		l.keys[operations.Key{
			TypeID: operations.TypeID(typeID),
			Table:  deref(table),
			Name0:  deref(name0),
			Name1:  deref(name1),
		}] = true
	}
	return l, rows.Err()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Append writes one operation-key row, recording the key as applied.
func (o *OperationLog) Append(ctx context.Context, s SessionStore, component string, key operations.Key) error {
	nullIfEmpty := func(v string) any {
		if v == "" {
			return nil
		}
		return v
	}
	_, err := s.ExecContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (component_name, typeid, tablename, name0, name1) VALUES (%s, %s, %s, %s, %s)",
		o.names.DBSchemaOperation,
		placeholder(o.dialectName, 1), placeholder(o.dialectName, 2), placeholder(o.dialectName, 3),
		placeholder(o.dialectName, 4), placeholder(o.dialectName, 5)),
		component, int(key.TypeID), nullIfEmpty(key.Table), nullIfEmpty(key.Name0), nullIfEmpty(key.Name1))
	return err
}

// Clear deletes every row for component, run at migration completion.
func (o *OperationLog) Clear(ctx context.Context, s SessionStore, component string) error {
	_, err := s.ExecContext(ctx, fmt.Sprintf(
		"DELETE FROM %s WHERE component_name = %s", o.names.DBSchemaOperation, placeholder(o.dialectName, 1)), component)
	return err
}
