// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/charlesw1234/sooners-migrate/cmd/flags"
	"github.com/charlesw1234/sooners-migrate/internal/config"
	"github.com/charlesw1234/sooners-migrate/pkg/metadata"
)

func makeversionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "makeversion [component...]",
		Short: "Snapshot a component's declared model as a new numbered version",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFile(flags.ConfigPath())
			if err != nil {
				return err
			}
			modelsPath := flags.ModelsPath()
			if modelsPath == "" {
				return fmt.Errorf("makeversion: --models is required")
			}
			models, err := loadModelDocument(modelsPath)
			if err != nil {
				return err
			}

			components := args
			if len(components) == 0 {
				components = []string{componentFromModelsPath(modelsPath)}
			}

			for _, component := range components {
				if err := makeVersionFor(cfg.HistoryDir, component, models); err != nil {
					return err
				}
			}
			return nil
		},
	}
	flags.ModelsFlag(cmd)
	return cmd
}

func componentFromModelsPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func makeVersionFor(baseDir, component string, models []metadata.ModelDefinition) error {
	next, err := nextVersion(baseDir, component)
	if err != nil {
		return err
	}

	v, err := metadata.MakeVersion(component, next, models)
	if err != nil {
		return err
	}
	if v == nil {
		pterm.Warning.Printfln("component %q declares zero tables; nothing written", component)
		return nil
	}

	path, err := metadata.WriteVersion(baseDir, v)
	if err != nil {
		return err
	}
	pterm.Success.Printfln("wrote %s (checksum %s)", path, v.Checksum)
	return nil
}

// nextVersion scans history/version.NNNN.xml for component and returns one
// past the highest existing version, or 1 if none exist.
func nextVersion(baseDir, component string) (int, error) {
	dir := metadata.HistoryDir(baseDir, component)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("scanning %s: %w", dir, err)
	}

	highest := 0
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, "version.") || !strings.HasSuffix(name, ".xml") {
			continue
		}
		num := strings.TrimSuffix(strings.TrimPrefix(name, "version."), ".xml")
		n, err := strconv.Atoi(num)
		if err != nil {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return highest + 1, nil
}
