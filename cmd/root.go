// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/charlesw1234/sooners-migrate/cmd/flags"
	"github.com/charlesw1234/sooners-migrate/internal/config"
	"github.com/charlesw1234/sooners-migrate/internal/logging"
	"github.com/charlesw1234/sooners-migrate/internal/opendb"
	"github.com/charlesw1234/sooners-migrate/pkg/migration"
)

// Version is the engine CLI version.
var Version = "development"

func init() {
	viper.SetEnvPrefix("SOONERS")
	viper.AutomaticEnv()
	flags.EngineFlags(rootCmd)
}

var rootCmd = &cobra.Command{
	Use:           "sooners-migrate",
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       Version,
}

// Execute executes the root command.
func Execute() error {
	rootCmd.AddCommand(msforwardCmd())
	rootCmd.AddCommand(msbackwardCmd())
	rootCmd.AddCommand(skcontinueCmd())
	rootCmd.AddCommand(skwithdrawCmd())
	rootCmd.AddCommand(makeversionCmd())
	rootCmd.AddCommand(makepatchCmd())

	return rootCmd.Execute()
}

// engine bundles the Core plus the open connections it borrows, so command
// RunE closures can defer a single Close.
type engine struct {
	cfg  *config.Config
	core *migration.Core
	dbs  map[string]*sql.DB
	log  logging.Logger
}

func (e *engine) Close() { opendb.CloseAll(e.dbs) }

// newEngine loads the fleet configuration, opens every configured
// database, and builds a migration.Core over them.
func newEngine() (*engine, error) {
	cfg, err := config.LoadFile(flags.ConfigPath())
	if err != nil {
		return nil, err
	}
	if flags.DebugSchema() {
		cfg.DebugSchema = true
	}
	if flags.Confirm() {
		cfg.ConfirmByDefault = true
	}

	log := logging.New(cfg.DebugSchema)

	dbs, err := opendb.OpenAll(cfg)
	if err != nil {
		return nil, err
	}

	core, err := migration.New(cfg, dbs, log)
	if err != nil {
		opendb.CloseAll(dbs)
		return nil, fmt.Errorf("building migration core: %w", err)
	}
	return &engine{cfg: cfg, core: core, dbs: dbs, log: log}, nil
}
