package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"lunargen/config"
	"lunargen/core"
	"lunargen/logging"
)

var (
	settings config.Settings
	logger   *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "lunargen",
	Short: "lunargen generates cratered planet surfaces",
	Long: `lunargen builds a displaced sphere mesh with relief noise, mountains and
craters. Meshes can be written to disk, served over HTTP or viewed in a window.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		loaded, used, err := config.Load(path)
		if err != nil {
			return err
		}
		settings = loaded

		if cmd.Flags().Changed("log-level") {
			settings.LogLevel, _ = cmd.Flags().GetString("log-level")
		}
		level, err := logging.ParseLevel(settings.LogLevel)
		if err != nil {
			return err
		}
		if settings.Server.JSONLogs {
			logger = logging.NewJSON(os.Stderr, level)
		} else {
			logger = logging.New(level)
		}
		slog.SetDefault(logger)

		if used != "" {
			logger.Debug("loaded settings", "file", used)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and runs it
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Settings file (default settings.yaml, settings.yml or settings.json)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error")
}

// addGenerationFlags registers the flags that override generation settings
func addGenerationFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64("size", 0, "Base radius")
	f.Float64("crater-density", 0, "Crater density (x100 craters)")
	f.Float64("mountain-height", 0, "Mountain height (x8 mountains)")
	f.Int("lat", 0, "Latitude segments")
	f.Int("lon", 0, "Longitude segments")
	f.Uint64("seed", 0, "Random seed (random when unset)")
	f.String("relief", "", "Relief field: sine, simplex or perlin")
	f.String("sampling", "", "Site sampling: angular or area")
}

// generationParams returns the loaded settings with any set flags applied
func generationParams(cmd *cobra.Command) (core.GenerationParams, error) {
	params := settings.Generation
	f := cmd.Flags()

	if f.Changed("size") {
		params.Size, _ = f.GetFloat64("size")
	}
	if f.Changed("crater-density") {
		params.CraterDensity, _ = f.GetFloat64("crater-density")
	}
	if f.Changed("mountain-height") {
		params.MountainHeight, _ = f.GetFloat64("mountain-height")
	}
	if f.Changed("lat") {
		params.LatSegments, _ = f.GetInt("lat")
	}
	if f.Changed("lon") {
		params.LonSegments, _ = f.GetInt("lon")
	}
	if f.Changed("seed") {
		seed, _ := f.GetUint64("seed")
		params = params.WithSeed(seed)
	}
	if f.Changed("relief") {
		relief, _ := f.GetString("relief")
		params.Relief = core.ReliefKind(relief)
	}
	if f.Changed("sampling") {
		sampling, _ := f.GetString("sampling")
		params.Sampling = core.Sampling(sampling)
	}

	return params, params.Validate()
}
