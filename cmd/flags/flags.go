// SPDX-License-Identifier: Apache-2.0

package flags

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// bind registers one flag from fs under its viper key, so commands read
// flag values and SOONERS_* environment overrides through one accessor.
func bind(fs *pflag.FlagSet, key, name string) {
	viper.BindPFlag(key, fs.Lookup(name))
}

func ConfigPath() string { return viper.GetString("CONFIG") }

func MilestonesPath() string { return viper.GetString("MILESTONES") }

func SchemaParamsPath() string { return viper.GetString("SCHEMA_PARAMS") }

func ModelsPath() string { return viper.GetString("MODELS") }

func Show() bool { return viper.GetBool("SHOW") }

func Confirm() bool { return viper.GetBool("CONFIRM") }

func NoAction() bool { return viper.GetBool("NO_ACTION") }

func DebugSchema() bool { return viper.GetBool("DEBUG_SCHEMA") }

// EngineFlags registers the flags every engine-facing command shares:
// where the fleet/milestone/schema-params documents live, and the
// preview/confirm/debug behaviors.
func EngineFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("config", "sooners.yaml", "Path to the fleet configuration document")
	cmd.PersistentFlags().String("milestones", "milestones.yaml", "Path to the milestones document")
	cmd.PersistentFlags().String("schema-params", "", "Path to a JSON SchemaParams document (defaults to the persisted SCHEMA_PARAMS_1)")
	cmd.PersistentFlags().Bool("show", false, "Print the planned operations without applying them")
	cmd.PersistentFlags().Bool("confirm", false, "Force per-step confirmation even for steps that would not otherwise require it")
	cmd.PersistentFlags().Bool("no-action", false, "Plan but never apply any operation")
	cmd.PersistentFlags().Bool("debug-schema", false, "Raise the engine logger to debug level")

	fs := cmd.PersistentFlags()
	bind(fs, "CONFIG", "config")
	bind(fs, "MILESTONES", "milestones")
	bind(fs, "SCHEMA_PARAMS", "schema-params")
	bind(fs, "SHOW", "show")
	bind(fs, "CONFIRM", "confirm")
	bind(fs, "NO_ACTION", "no-action")
	bind(fs, "DEBUG_SCHEMA", "debug-schema")
}

// ModelsFlag registers the --models flag makeversion uses to locate its
// YAML model document.
func ModelsFlag(cmd *cobra.Command) {
	cmd.Flags().String("models", "", "Path to a YAML model document (one ModelDefinition list per component)")
	bind(cmd.Flags(), "MODELS", "models")
}
