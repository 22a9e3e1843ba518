// SPDX-License-Identifier: Apache-2.0

package milestone

import (
	"context"
	"fmt"

	"github.com/charlesw1234/sooners-migrate/internal/enginerr"
	"github.com/charlesw1234/sooners-migrate/pkg/metadata"
	"github.com/charlesw1234/sooners-migrate/pkg/migration"
	"github.com/charlesw1234/sooners-migrate/pkg/patchgen"
	"github.com/charlesw1234/sooners-migrate/pkg/shardmap"
)

// Confirmer gates a single step's application behind --confirm: return
// false to skip the step entirely. A nil Confirmer runs every selected
// step unconditionally.
type Confirmer func(step Step, description string) bool

// AlwaysConfirm is the non-interactive Confirmer used by --no-action
// previews and tests.
func AlwaysConfirm(Step, string) bool { return true }

// Run selects steps by pattern and drives core forward or backward over
// them. Every selected step is checked against the requested direction's
// availability before any step executes (enginerr.Kind
// MilestoneStepBanned is fatal-before-action, never partial).
func Run(ctx context.Context, m *Milestone, core *migration.Core, direction migration.Direction, patterns []string, prompt patchgen.PromptIO, confirm Confirmer) error {
	ordered, targetsFor, err := resolveSteps(ctx, m, direction, patterns)
	if err != nil {
		return err
	}

	if confirm == nil {
		confirm = AlwaysConfirm
	}

	for _, i := range ordered {
		step := m.Steps[i]
		core.Confirm = func(desc string) bool { return confirm(step, desc) }
		if err := core.Execute(ctx, targetsFor(i), prompt); err != nil {
			return fmt.Errorf("step %s: %w", Repr(step), err)
		}
	}
	return nil
}

// Plan computes every selected step's planned operations without
// applying any of them, backing the --show and --no-action previews.
func Plan(ctx context.Context, m *Milestone, core *migration.Core, direction migration.Direction, patterns []string, prompt patchgen.PromptIO) ([]StepPlan, error) {
	ordered, targetsFor, err := resolveSteps(ctx, m, direction, patterns)
	if err != nil {
		return nil, err
	}

	plans := make([]StepPlan, 0, len(ordered))
	for _, i := range ordered {
		step := m.Steps[i]
		planned, err := core.Plan(ctx, targetsFor(i), prompt)
		if err != nil {
			return nil, fmt.Errorf("step %s: %w", Repr(step), err)
		}
		plans = append(plans, StepPlan{Step: step, Operations: planned})
	}
	return plans, nil
}

// StepPlan pairs one selected step with the operations it would apply.
type StepPlan struct {
	Step       Step
	Operations []migration.PlannedOperation
}

// resolveSteps validates and orders the steps patterns selects, returning a
// targetsFor closure that builds (and, for backward runs, reverses) the
// ComponentTargets for step index i.
func resolveSteps(ctx context.Context, m *Milestone, direction migration.Direction, patterns []string) ([]int, func(i int) []migration.ComponentTarget, error) {
	if direction != migration.DirectionForward && direction != migration.DirectionBackward {
		return nil, nil, fmt.Errorf("milestone: direction must be forward or backward, got %q", direction)
	}

	indices, err := Select(m.Steps, patterns)
	if err != nil {
		return nil, nil, fmt.Errorf("milestone %q: %w", m.Name, err)
	}

	for _, i := range indices {
		step := m.Steps[i]
		if direction == migration.DirectionForward && !step.SupportsForward() {
			return nil, nil, enginerr.NewMilestoneStepBanned(Repr(step), "forward")
		}
		if direction == migration.DirectionBackward && !step.SupportsBackward() {
			return nil, nil, enginerr.NewMilestoneStepBanned(Repr(step), "backward")
		}
	}

	chain, err := m.chain(ctx)
	if err != nil {
		return nil, nil, err
	}
	metadata0, err := m.metadata0Chain(ctx, chain)
	if err != nil {
		return nil, nil, err
	}

	ordered := indices
	if direction == migration.DirectionBackward {
		ordered = reversedCopy(indices)
	}

	targetsFor := func(i int) []migration.ComponentTarget {
		targets := buildTargets(metadata0[i], chain[i])
		if direction == migration.DirectionBackward {
			targets = migration.ReverseTargets(targets)
		}
		return targets
	}
	return ordered, targetsFor, nil
}

// buildTargets turns a (metadata0, metadata1) Snapshot pair into one
// ComponentTarget per component name appearing in either snapshot.
func buildTargets(m0, m1 *Snapshot) []migration.ComponentTarget {
	names := map[string]bool{}
	var params0, params1 *shardmap.SchemaParams
	if m0 != nil {
		params0 = m0.Params
		for name := range m0.Versions {
			names[name] = true
		}
	}
	if m1 != nil {
		params1 = m1.Params
		for name := range m1.Versions {
			names[name] = true
		}
	}

	ordered := make([]string, 0, len(names))
	for name := range names {
		ordered = append(ordered, name)
	}
	sortStrings(ordered)

	targets := make([]migration.ComponentTarget, 0, len(ordered))
	for _, name := range ordered {
		var v0, v1 *metadata.VersionDocument
		if m0 != nil {
			v0 = m0.Versions[name]
		}
		if m1 != nil {
			v1 = m1.Versions[name]
		}
		targets = append(targets, migration.ComponentTarget{
			Component: name, V0: v0, V1: v1, Params0: params0, Params1: params1,
		})
	}
	return targets
}

func reversedCopy(xs []int) []int {
	out := make([]int, len(xs))
	for i, x := range xs {
		out[len(xs)-1-i] = x
	}
	return out
}

func sortStrings(xs []string) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j] < xs[j-1]; j-- {
			xs[j], xs[j-1] = xs[j-1], xs[j]
		}
	}
}
