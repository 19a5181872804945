package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lunargen/terrain"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Generate a surface and print its statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := generationParams(cmd)
		if err != nil {
			return err
		}
		result, err := generateOne(cmd.Context(), params)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		printStats(out, result)

		tiers := make(map[terrain.CraterTier]int)
		for _, site := range result.Sites {
			if site.Kind == terrain.Crater {
				tiers[site.Tier]++
			}
		}
		for _, tier := range []terrain.CraterTier{terrain.Small, terrain.Medium, terrain.Large} {
			fmt.Fprintf(out, "%-11s %d\n", tier.String(), tiers[tier])
		}
		for _, w := range result.Warnings {
			fmt.Fprintf(out, "warning     %v\n", w)
		}
		return nil
	},
}

func init() {
	addGenerationFlags(statsCmd)
	rootCmd.AddCommand(statsCmd)
}
