package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"lunargen/core"
)

var bakeCmd = &cobra.Command{
	Use:   "bake",
	Short: "Generate a batch of seeded surfaces into a directory",
	Long: `Generates --seeds surfaces with consecutive seeds starting at --first-seed
and writes each one to <dir>/planet-<seed>.<format>. Generations run in parallel.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := generationParams(cmd)
		if err != nil {
			return err
		}
		dir, _ := cmd.Flags().GetString("dir")
		count, _ := cmd.Flags().GetInt("seeds")
		first, _ := cmd.Flags().GetUint64("first-seed")
		format, _ := cmd.Flags().GetString("format")
		jobs, _ := cmd.Flags().GetInt("jobs")

		if count < 1 {
			return fmt.Errorf("%w: --seeds must be >= 1", core.ErrInvalidParameter)
		}
		if format != "obj" && format != "bin" {
			return fmt.Errorf("%w: unknown format %q", core.ErrInvalidParameter, format)
		}
		if jobs < 1 {
			jobs = runtime.GOMAXPROCS(0)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}

		g, ctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(jobs)

		var done atomic.Int64
		for i := range count {
			seed := first + uint64(i)
			g.Go(func() error {
				result, err := generateOne(ctx, params.WithSeed(seed))
				if err != nil {
					return fmt.Errorf("seed %d: %w", seed, err)
				}
				path := filepath.Join(dir, fmt.Sprintf("planet-%d.%s", seed, format))
				if err := writeMesh(path, format, result); err != nil {
					return err
				}
				logger.Info("baked surface", "seed", seed, "file", path,
					"done", done.Add(1), "total", count)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "baked %d surfaces into %s\n", count, dir)
		return nil
	},
}

func init() {
	addGenerationFlags(bakeCmd)
	bakeCmd.Flags().String("dir", "baked", "Output directory")
	bakeCmd.Flags().Int("seeds", 8, "Number of surfaces")
	bakeCmd.Flags().Uint64("first-seed", 1, "Seed of the first surface")
	bakeCmd.Flags().String("format", "bin", "Output format: obj or bin")
	bakeCmd.Flags().IntP("jobs", "j", 0, "Parallel generations (default GOMAXPROCS)")
	rootCmd.AddCommand(bakeCmd)
}
