// SPDX-License-Identifier: Apache-2.0

// Package resolver implements the continue and withdraw resolvers: the
// two recovery paths out of migration.StateBroken.
package resolver

import (
	"context"
	"fmt"

	"github.com/charlesw1234/sooners-migrate/pkg/migration"
	"github.com/charlesw1234/sooners-migrate/pkg/patchgen"
)

// Continue (skcontinue) re-plans every not-yet-clean component directly
// from persisted bookkeeping (Core.PendingTargets) and re-drives it. No
// override is needed beyond what Core.Execute already does: an operation
// already present in DBSchemaOperation is skipped, so replaying the
// rebuilt targets list resumes exactly where the broken run stopped, even
// across a process restart where Core.LastTargets is empty.
func Continue(ctx context.Context, core *migration.Core, prompt patchgen.PromptIO) error {
	if _, err := core.Direction(ctx); err != nil {
		return err
	}
	targets, err := core.PendingTargets(ctx)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return nil
	}
	return core.Execute(ctx, targets, prompt)
}

// Withdraw (skwithdraw) reverses every not-yet-clean component's targets
// (migration.ReverseTargets) and executes that instead, restoring
// metadata0 as the persisted-after state on a terminal withdraw: because
// the reversed targets put the original V0 into the V1 slot, finalization
// promotes version1/checksum1 (= the original before-state) back into
// version0/checksum0. PendingTargets is read from persisted bookkeeping
// rather than Core.LastTargets so this works even in a freshly started
// process.
func Withdraw(ctx context.Context, core *migration.Core, prompt patchgen.PromptIO) error {
	if _, err := core.Direction(ctx); err != nil {
		return err
	}
	targets, err := core.PendingTargets(ctx)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return fmt.Errorf("resolver: no pending migration to withdraw")
	}
	return core.Execute(ctx, migration.ReverseTargets(targets), prompt)
}
