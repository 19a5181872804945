package terrain

import (
	"context"
	"testing"

	"lunargen/core"
)

// Stage timings of the default 128x128 surface

func BenchmarkTessellate(b *testing.B) {
	for b.Loop() {
		if _, err := core.GenerateSphere(1, 128, 128); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkPlaceFeatures(b *testing.B) {
	params := core.DefaultParams()
	for b.Loop() {
		PlaceFeatures(NewRandomSource(1), params.MountainHeight, params.CraterDensity, core.SamplingAngular)
	}
}

func BenchmarkApplyFeatures(b *testing.B) {
	params := core.DefaultParams()
	sites := PlaceFeatures(NewRandomSource(1), params.MountainHeight, params.CraterDensity, core.SamplingAngular)
	base, err := core.GenerateSphere(1, 128, 128)
	if err != nil {
		b.Fatal(err)
	}
	relief := DefaultSineRelief()

	for b.Loop() {
		mesh := base.Clone()
		if _, err := ApplyFeatures(context.Background(), mesh, relief, sites); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRecomputeNormals(b *testing.B) {
	mesh, err := core.GenerateSphere(1, 128, 128)
	if err != nil {
		b.Fatal(err)
	}
	for b.Loop() {
		core.RecomputeNormals(mesh)
	}
}

func BenchmarkGenerate(b *testing.B) {
	gen := NewGenerator()
	params := core.DefaultParams().WithSeed(1)
	for b.Loop() {
		if _, err := gen.Generate(context.Background(), params); err != nil {
			b.Fatal(err)
		}
	}
}
