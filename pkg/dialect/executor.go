// SPDX-License-Identifier: Apache-2.0

package dialect

import (
	"context"
	"fmt"

	"github.com/charlesw1234/sooners-migrate/pkg/operations"
)

type executor struct {
	dialect Dialect
	rdb     *RDB
}

var _ OperationExecutor = (*executor)(nil)

// Execute runs every DDL statement BuildDDL returns for op in order,
// then runs PostOperation's cleanup statements (PostgreSQL's orphan enum
// type drop).
func (e *executor) Execute(ctx context.Context, op operations.Operation) error {
	stmts, err := e.dialect.BuildDDL(op)
	if err != nil {
		return fmt.Errorf("building DDL for %s: %w", op.Key(), err)
	}

	for _, stmt := range stmts {
		if _, err := e.rdb.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt, err)
		}
	}

	post, err := e.dialect.PostOperation(op)
	if err != nil {
		return fmt.Errorf("post-operation cleanup for %s: %w", op.Key(), err)
	}
	for _, stmt := range post {
		if _, err := e.rdb.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing post-operation cleanup %q: %w", stmt, err)
		}
	}
	return nil
}
