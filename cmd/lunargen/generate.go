package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"lunargen/core"
	"lunargen/export"
	"lunargen/terrain"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one surface and write it to a file",
	Long: `Generates a surface and writes it as Wavefront OBJ or in the binary mesh
format. The format follows the output extension unless --format is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := generationParams(cmd)
		if err != nil {
			return err
		}
		out, _ := cmd.Flags().GetString("out")
		format, _ := cmd.Flags().GetString("format")
		if format == "" {
			format = formatFor(out)
		}

		result, err := generateOne(cmd.Context(), params)
		if err != nil {
			return err
		}
		for _, w := range result.Warnings {
			logger.Warn("generation warning", "error", w)
		}

		if err := writeMesh(out, format, result); err != nil {
			return err
		}
		printStats(cmd.OutOrStdout(), result)
		return nil
	},
}

func init() {
	addGenerationFlags(generateCmd)
	generateCmd.Flags().StringP("out", "o", "planet.obj", "Output file")
	generateCmd.Flags().String("format", "", "Output format: obj or bin")
	rootCmd.AddCommand(generateCmd)
}

func formatFor(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".bin") {
		return "bin"
	}
	return "obj"
}

func writeMesh(path, format string, result *terrain.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	switch format {
	case "obj":
		err = export.WriteOBJ(w, result.Mesh, fmt.Sprintf("lunargen seed %d", result.Seed))
	case "bin":
		err = export.WriteBinary(w, result.Mesh)
	default:
		err = fmt.Errorf("%w: unknown format %q", core.ErrInvalidParameter, format)
	}
	if err == nil {
		err = w.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func printStats(w io.Writer, result *terrain.Result) {
	s := result.Stats
	fmt.Fprintf(w, "seed        %d\n", result.Seed)
	fmt.Fprintf(w, "vertices    %d\n", s.Vertices)
	fmt.Fprintf(w, "triangles   %d\n", s.Triangles)
	fmt.Fprintf(w, "mountains   %d\n", s.Mountains)
	fmt.Fprintf(w, "craters     %d\n", s.Craters)
	fmt.Fprintf(w, "radius      %.5f .. %.5f\n", s.MinRadius, s.MaxRadius)
	fmt.Fprintf(w, "duration    %.1f ms\n", s.DurationMs)
}

// generateOne runs a single generation with the command's logger
func generateOne(ctx context.Context, params core.GenerationParams) (*terrain.Result, error) {
	return terrain.NewGenerator(terrain.WithLogger(logger)).Generate(ctx, params)
}
