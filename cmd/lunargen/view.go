package main

import (
	"github.com/spf13/cobra"

	"lunargen/rendering"
	rlview "lunargen/rendering/raylib"
	"lunargen/terrain"
	"lunargen/worker"
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Open a window showing the surface",
	Long: `Opens a raylib window with an orbiting camera. C/V change crater density,
M/N change mountain height, R picks a new seed and W toggles wireframe.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := generationParams(cmd)
		if err != nil {
			return err
		}
		color, err := rendering.ParseColor(settings.Viewer.Color)
		if err != nil {
			return err
		}

		regen := worker.NewRegenerator(terrain.NewGenerator(terrain.WithLogger(logger)), worker.WithLogger(logger))
		defer regen.Close()

		viewer := rlview.NewViewer(regen, params, rlview.Options{
			Width:  settings.Viewer.Width,
			Height: settings.Viewer.Height,
			Color:  color,
			Logger: logger,
		})
		return viewer.Run(cmd.Context())
	},
}

func init() {
	addGenerationFlags(viewCmd)
	rootCmd.AddCommand(viewCmd)
}
