package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/san-kum/systree/internal/config"
	"github.com/san-kum/systree/internal/logging"
	"github.com/san-kum/systree/internal/viz"
)

var (
	cfgFile string
	// Scenario selection
	preset string
	// Run parameters
	steps      int
	integrator string
	track      string
	noSave     bool
	// Live view
	frameRate int
	speed     float64
	theme     string
	// Prediction
	owner string
	limit int
	// Output file for export
	output string

	settings config.Settings
	logger   = logging.Nop()
)

func main() {
	cobra.OnInitialize(initConfig)

	rootCmd := &cobra.Command{
		Use:   "systree",
		Short: "nested multi-rate orbital simulation",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if settings, err = config.LoadSettings(viper.GetViper()); err != nil {
				return err
			}
			if logger, err = logging.New(os.Stderr, settings.LogLevel, settings.LogFormat); err != nil {
				return err
			}
			slog.SetDefault(logger)
			cmd.SetContext(logging.WithLogger(cmd.Context(), logger))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive()
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "settings file (default .systree.yaml)")
	rootCmd.PersistentFlags().String("data", ".systree", "data directory")
	rootCmd.PersistentFlags().String("log-level", "info", "debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", "text", "text or json")
	_ = viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))

	runCmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "run a scenario and store the reports",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().StringVar(&preset, "preset", "", "use a built-in scenario")
	runCmd.Flags().IntVar(&steps, "steps", 0, "root steps (default from scenario)")
	runCmd.Flags().StringVar(&integrator, "integrator", "", "integration scheme (default from scenario or settings)")
	runCmd.Flags().StringVar(&track, "track", "", "body to measure drift for")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not write the run to the store")

	liveCmd := &cobra.Command{
		Use:   "live [scenario]",
		Short: "run a scenario with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&preset, "preset", "", "use a built-in scenario")
	liveCmd.Flags().StringVar(&integrator, "integrator", "", "integration scheme (default from scenario or settings)")
	liveCmd.Flags().IntVar(&frameRate, "fps", 0, "frame rate (default from settings)")
	liveCmd.Flags().Float64Var(&speed, "speed", 1, "root steps per frame")
	liveCmd.Flags().StringVar(&theme, "theme", "", "color theme")

	predictCmd := &cobra.Command{
		Use:   "predict [scenario]",
		Short: "forecast body paths in the background",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runPredict,
	}
	predictCmd.Flags().StringVar(&preset, "preset", "", "use a built-in scenario")
	predictCmd.Flags().IntVar(&steps, "steps", 0, "root steps to forecast")
	predictCmd.Flags().StringVar(&owner, "owner", "", "body to forecast (default all)")
	predictCmd.Flags().IntVar(&limit, "workers", 4, "concurrent forecasts")

	compareCmd := &cobra.Command{
		Use:   "compare [scenario]",
		Short: "compare integrators on the same scenario",
		Args:  cobra.MaximumNArgs(1),
		RunE:  compareIntegrators,
	}
	compareCmd.Flags().StringVar(&preset, "preset", "", "use a built-in scenario")
	compareCmd.Flags().IntVar(&steps, "steps", 0, "root steps (default from scenario)")
	compareCmd.Flags().StringVar(&track, "track", "", "body to measure (default first body)")

	validateCmd := &cobra.Command{
		Use:   "validate [scenario]",
		Short: "check a scenario file and print its systems",
		Args:  cobra.ExactArgs(1),
		RunE:  validateScenario,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				fmt.Printf("  %-10s %s\n", name, config.GetPreset(name).Description)
			}
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot body distances of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&owner, "owner", "", "body to plot (default all)")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	rootCmd.AddCommand(runCmd, liveCmd, predictCmd, compareCmd, validateCmd, presetsCmd, listCmd, plotCmd, exportCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".systree")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("SYSTREE")
	viper.AutomaticEnv()

	// No settings file is fine; defaults apply.
	_ = viper.ReadInConfig()
}
