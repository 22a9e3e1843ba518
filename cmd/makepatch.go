// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/charlesw1234/sooners-migrate/cmd/flags"
	"github.com/charlesw1234/sooners-migrate/internal/config"
	"github.com/charlesw1234/sooners-migrate/pkg/metadata"
	"github.com/charlesw1234/sooners-migrate/pkg/patchgen"
)

func makepatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "makepatch COMPONENT V0 V1",
		Short: "Diff two numbered versions of a component and write the patch",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFile(flags.ConfigPath())
			if err != nil {
				return err
			}
			component := args[0]
			v0n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("makepatch: V0 must be an integer: %w", err)
			}
			v1n, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("makepatch: V1 must be an integer: %w", err)
			}

			v0, err := metadata.ReadVersion(cfg.HistoryDir, component, v0n)
			if err != nil {
				return err
			}
			v1, err := metadata.ReadVersion(cfg.HistoryDir, component, v1n)
			if err != nil {
				return err
			}

			prompt := patchgen.PtermPrompt{}
			patch, err := patchgen.Generate(v0, v1, prompt)
			if err != nil {
				return err
			}

			path, err := metadata.WritePatch(cfg.HistoryDir, patch)
			if err != nil {
				return err
			}
			pterm.Success.Printfln("wrote %s", path)
			return nil
		},
	}
}
