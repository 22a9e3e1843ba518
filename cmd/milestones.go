// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/charlesw1234/sooners-migrate/cmd/flags"
	"github.com/charlesw1234/sooners-migrate/pkg/migration"
	"github.com/charlesw1234/sooners-migrate/pkg/milestone"
	"github.com/charlesw1234/sooners-migrate/pkg/patchgen"
	"github.com/charlesw1234/sooners-migrate/pkg/shardmap"
)

func loadSchemaParams() (*shardmap.SchemaParams, error) {
	path := flags.SchemaParamsPath()
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema params %q: %w", path, err)
	}
	if err := shardmap.ValidateJSONShape(raw); err != nil {
		return nil, fmt.Errorf("schema params %q: %w", path, err)
	}
	params, err := shardmap.Unmarshal(string(raw))
	if err != nil {
		return nil, fmt.Errorf("schema params %q: %w", path, err)
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("schema params %q: %w", path, err)
	}
	return params, nil
}

// milestoneConfirmer returns the Confirmer milestone.Run should drive
// each step's --confirm gate with: an interactive pterm prompt when
// --confirm/confirm_by_default is set, else always-true.
func milestoneConfirmer(confirmByDefault bool) milestone.Confirmer {
	if !confirmByDefault {
		return milestone.AlwaysConfirm
	}
	return func(step milestone.Step, description string) bool {
		ok, _ := pterm.DefaultInteractiveConfirm.
			WithDefaultText(fmt.Sprintf("%s: %s?", milestone.Repr(step), description)).
			Show()
		return ok
	}
}

func printPlan(plans []milestone.StepPlan) {
	for _, sp := range plans {
		pterm.DefaultSection.Println(milestone.Repr(sp.Step))
		if len(sp.Operations) == 0 {
			pterm.Println("  (no operations)")
			continue
		}
		for _, p := range sp.Operations {
			db := p.Database
			if db == "" {
				db = "(default)"
			}
			pterm.Printfln("  %-20s %s", db, p.Op.Key())
		}
	}
}

func runMilestoneCommand(dir migration.Direction, e *engine) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return fmt.Errorf("%s requires a MILESTONE argument", cmd.Name())
		}
		name, patterns := args[0], args[1:]

		doc, err := milestone.LoadFile(flags.MilestonesPath())
		if err != nil {
			return err
		}
		params, err := loadSchemaParams()
		if err != nil {
			return err
		}
		built, err := doc.Build(e.cfg.HistoryDir, params)
		if err != nil {
			return err
		}
		m, ok := built[name]
		if !ok {
			return fmt.Errorf("unknown milestone %q", name)
		}

		prompt := patchgen.PtermPrompt{}

		if flags.Show() || flags.NoAction() {
			plans, err := milestone.Plan(cmd.Context(), m, e.core, dir, patterns, prompt)
			if err != nil {
				return err
			}
			printPlan(plans)
			return nil
		}

		confirm := milestoneConfirmer(e.cfg.ConfirmByDefault)
		return milestone.Run(cmd.Context(), m, e.core, dir, patterns, prompt, confirm)
	}
}
