// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/charlesw1234/sooners-migrate/cmd/flags"
	"github.com/charlesw1234/sooners-migrate/pkg/patchgen"
	"github.com/charlesw1234/sooners-migrate/pkg/resolver"
)

func skcontinueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "skcontinue",
		Short: "Resume a migration broken by a mid-run DDL failure",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEngine()
			if err != nil {
				return err
			}
			defer e.Close()

			ctx := cmd.Context()
			prompt := patchgen.PtermPrompt{}

			if flags.Show() || flags.NoAction() {
				targets, err := e.core.PendingTargets(ctx)
				if err != nil {
					return err
				}
				planned, err := e.core.Plan(ctx, targets, prompt)
				if err != nil {
					return err
				}
				for _, p := range planned {
					pterm.Printfln("%-20s %s", p.Database, p.Op.Key())
				}
				return nil
			}
			return resolver.Continue(ctx, e.core, prompt)
		},
	}
}
