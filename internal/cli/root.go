package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/smokyabdulrahman/prayer-tracker/internal/config"
	"github.com/smokyabdulrahman/prayer-tracker/internal/dates"
	"github.com/smokyabdulrahman/prayer-tracker/internal/display"
	"github.com/smokyabdulrahman/prayer-tracker/internal/logging"
)

// Global flags shared across all subcommands.
var (
	FlagCity       string
	FlagCountry    string
	FlagLatitude   float64
	FlagLongitude  float64
	FlagMethod     int
	FlagSchool     int
	FlagJSON       bool
	FlagCacheDir   string
	FlagDataDir    string
	FlagTimezone   string
	FlagTimeFormat string
	FlagVerbose    bool
	FlagQuiet      bool
	FlagNoColor    bool
)

// loadedConfig holds the config loaded during PersistentPreRunE.
// Available to all subcommand handlers.
var loadedConfig *config.Config

// clock is the source of "now" for every command.
var clock = dates.SystemClock

// NewRootCmd creates the root command for the prayer-tracker CLI.
// The version parameter is set by the calling binary via ldflags.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "prayer-tracker",
		Short: "Islamic prayer times and attendance tracker",
		Long: "Shows prayer times from the Al Adhan API and keeps a local log of the\n" +
			"five daily prayers and Ramadan fasts, with recaps, streaks and grids.",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if FlagNoColor {
				display.SetEnabled(false)
			}
			logger := logging.New(cmd.ErrOrStderr(), logging.Options{
				Verbose: FlagVerbose,
				Quiet:   FlagQuiet,
				NoColor: FlagNoColor || !display.Enabled(),
			})
			cmd.SetContext(logging.WithContext(cmd.Context(), logger))

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			envPath, err := config.EnvPath()
			if err != nil {
				return fmt.Errorf("failed to locate .env: %w", err)
			}
			if err := cfg.ApplyEnv(envPath); err != nil {
				return fmt.Errorf("failed to apply environment: %w", err)
			}
			for _, name := range config.UnknownEnv(envPath) {
				logger.Warn().Str("var", name).Msg("ignoring unknown variable in .env")
			}
			loadedConfig = cfg
			return nil
		},
		// Default action: show today's prayer schedule.
		RunE:          runToday,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetVersionTemplate("prayer-tracker version {{.Version}}\n")

	// Register global persistent flags.
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&FlagCity, "city", "", "Override city (takes precedence over config)")
	pf.StringVar(&FlagCountry, "country", "", "Override country")
	pf.Float64Var(&FlagLatitude, "latitude", 0, "Override latitude")
	pf.Float64Var(&FlagLongitude, "longitude", 0, "Override longitude")
	pf.IntVar(&FlagMethod, "method", -1, "Override calculation method (0-23)")
	pf.IntVar(&FlagSchool, "school", -1, "Override school (0=Shafi, 1=Hanafi)")
	pf.BoolVar(&FlagJSON, "json", false, "Output as JSON (where supported)")
	pf.StringVar(&FlagCacheDir, "cache-dir", "", "Cache directory (default: ~/.cache/prayer-tracker/)")
	pf.StringVar(&FlagDataDir, "data-dir", "", "Attendance database directory (default: ~/.local/share/prayer-tracker/)")
	pf.StringVar(&FlagTimezone, "timezone", "", "IANA timezone used for \"now\" instead of the API's")
	pf.StringVar(&FlagTimeFormat, "time-format", "", "Time format: 12h or 24h (overrides config)")
	pf.BoolVarP(&FlagVerbose, "verbose", "v", false, "Log debug details to stderr")
	pf.BoolVarP(&FlagQuiet, "quiet", "q", false, "Suppress all log output")
	pf.BoolVar(&FlagNoColor, "no-color", false, "Disable colored output")

	// Register subcommands.
	rootCmd.AddCommand(newTodayCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newNextCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newWeekCmd())
	rootCmd.AddCommand(newMonthCmd())
	rootCmd.AddCommand(newMarkCmd())
	rootCmd.AddCommand(newBackfillCmd())
	rootCmd.AddCommand(newRecapCmd())
	rootCmd.AddCommand(newRamadanCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newMethodsCmd())
	rootCmd.AddCommand(newDataCmd())

	return rootCmd
}

// PrintVersion prints the version string in the expected format.
func PrintVersion(version string) string {
	return fmt.Sprintf("prayer-tracker %s\n", version)
}

// effectiveConfig returns the merged configuration values,
// applying the priority: CLI flags > environment > config file > defaults.
// It uses cobra's Changed() to detect whether a flag was explicitly set.
func effectiveConfig(cmd *cobra.Command) *config.Config {
	cfg := loadedConfig
	if cfg == nil {
		empty := config.Config{}
		cfg = &empty
	}

	defaults := config.Defaults()

	flags := cmd.Flags()
	root := cmd.Root().PersistentFlags()

	if flagWasSet(flags, root, "city") {
		cfg.City = FlagCity
	}
	if flagWasSet(flags, root, "country") {
		cfg.Country = FlagCountry
	}
	if flagWasSet(flags, root, "latitude") {
		cfg.Latitude = FlagLatitude
	}
	if flagWasSet(flags, root, "longitude") {
		cfg.Longitude = FlagLongitude
	}
	if flagWasSet(flags, root, "method") {
		cfg.Method = &FlagMethod
	} else if cfg.Method == nil {
		cfg.Method = defaults.Method
	}
	if flagWasSet(flags, root, "school") {
		cfg.School = &FlagSchool
	} else if cfg.School == nil {
		cfg.School = defaults.School
	}
	if flagWasSet(flags, root, "cache-dir") {
		cfg.CacheDir = FlagCacheDir
	}
	if flagWasSet(flags, root, "data-dir") {
		cfg.DataDir = FlagDataDir
	}
	if flagWasSet(flags, root, "timezone") {
		cfg.Timezone = FlagTimezone
	}

	// Time format: CLI flag > config > default ("24h").
	if flagWasSet(flags, root, "time-format") {
		cfg.TimeFormat = FlagTimeFormat
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = defaults.TimeFormat
	}

	return cfg
}

// flagWasSet checks if a flag was explicitly set on either the local or persistent flag set.
func flagWasSet(local, persistent *pflag.FlagSet, name string) bool {
	if f := local.Lookup(name); f != nil && f.Changed {
		return true
	}
	if f := persistent.Lookup(name); f != nil && f.Changed {
		return true
	}
	return false
}
