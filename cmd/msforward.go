// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/charlesw1234/sooners-migrate/pkg/migration"
)

func msforwardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "msforward MILESTONE [patterns...]",
		Short: "Apply a milestone's selected steps forward",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEngine()
			if err != nil {
				return err
			}
			defer e.Close()
			return runMilestoneCommand(migration.DirectionForward, e)(cmd, args)
		},
	}
}
