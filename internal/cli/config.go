package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/prayer-tracker/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or modify configuration",
		Long: "Display current configuration, or use subcommands to modify it.\n" +
			"When run without subcommands, shows the effective configuration,\n" +
			"including PRAYER_TRACKER_* overrides from the environment or .env.",
		RunE: runConfigShow,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a config value",
		Long: fmt.Sprintf("Set a configuration value. Valid keys: %s\n\nExamples:\n"+
			"  prayer-tracker config set city Jakarta\n"+
			"  prayer-tracker config set country Indonesia\n"+
			"  prayer-tracker config set method 20\n"+
			"  prayer-tracker config set timezone Asia/Jakarta\n"+
			"  prayer-tracker config set ramadan_start 2026-02-19",
			strings.Join(config.ValidKeys, ", ")),
		Args: cobra.ExactArgs(2),
		RunE: runConfigSet,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Print one effective config value",
		Args:  cobra.ExactArgs(1),
		RunE:  runConfigGet,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Reset config to defaults",
		Long:  "Delete the config file and restore all settings to defaults.",
		Args:  cobra.NoArgs,
		RunE:  runConfigReset,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print config file path",
		Args:  cobra.NoArgs,
		RunE:  runConfigPath,
	})

	return cmd
}

// runConfigShow displays the effective configuration and where overrides
// came from.
func runConfigShow(cmd *cobra.Command, args []string) error {
	path, err := config.Path()
	if err != nil {
		return err
	}
	cfg := effectiveConfig(cmd)
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "  Configuration (%s)\n\n", path)
	for _, key := range config.ValidKeys {
		val, _ := cfg.Get(key)
		shown := val
		switch {
		case val == "":
			shown = "(not set)"
		case val == "-1" && (key == "method" || key == "school"):
			shown = "(API default)"
		case key == "method":
			shown = formatMethodValue(val)
		case key == "school":
			shown = formatSchoolValue(val)
		}
		if _, ok := os.LookupEnv(config.EnvVar(key)); ok {
			shown += "  (from " + config.EnvVar(key) + ")"
		}
		fmt.Fprintf(out, "  %-14s %s\n", key, shown)
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	val, err := effectiveConfig(cmd).Get(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), val)
	return nil
}

// runConfigSet writes to the config file only; environment overrides are
// left out so they are never persisted by accident.
func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Set(key, value); err != nil {
		return err
	}
	if err := cfg.Save(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
	return nil
}

func runConfigReset(cmd *cobra.Command, args []string) error {
	if err := config.Reset(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Configuration reset to defaults.")
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	path, err := config.Path()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

// formatMethodValue adds the method name to the numeric value.
func formatMethodValue(val string) string {
	for _, m := range CalculationMethods {
		if strconv.Itoa(m.ID) == val {
			return fmt.Sprintf("%s (%s)", val, m.Name)
		}
	}
	return val
}

// formatSchoolValue adds the school name to the numeric value.
func formatSchoolValue(val string) string {
	switch val {
	case "0":
		return "0 (Shafi)"
	case "1":
		return "1 (Hanafi)"
	default:
		return val
	}
}
