package terrain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lunargen/core"
)

func TestSineReliefBound(t *testing.T) {
	r := DefaultSineRelief()
	assert.InDelta(t, 0.03, r.Bound(), 1e-12)

	for phi := 0.0; phi <= math.Pi; phi += 0.01 {
		for theta := -math.Pi; theta <= math.Pi; theta += 0.01 {
			require.LessOrEqual(t, math.Abs(r.Relief(phi, theta)), r.Bound())
		}
	}
}

func TestSineReliefSeamless(t *testing.T) {
	r := DefaultSineRelief()
	for phi := 0.05; phi < math.Pi; phi += 0.1 {
		assert.InDelta(t, r.Relief(phi, -math.Pi), r.Relief(phi, math.Pi), 1e-9, "seam at phi=%f", phi)
		assert.InDelta(t, r.Relief(phi, 0), r.Relief(phi, 2*math.Pi), 1e-9, "wrap at phi=%f", phi)
	}
}

func TestSineReliefMatchesOctaveSum(t *testing.T) {
	r := DefaultSineRelief()
	phi, theta := 0.7, -1.3

	want := math.Sin(12*phi+12*theta)*0.015 +
		math.Sin(24*phi+24*theta)*0.008 +
		math.Sin(48*phi+48*theta)*0.004 +
		math.Sin(96*phi+96*theta)*0.002 +
		math.Sin(200*phi+200*theta)*0.001
	assert.InDelta(t, want, r.Relief(phi, theta), 1e-15)
}

func TestNewSineReliefRejectsFractionalFrequency(t *testing.T) {
	_, err := NewSineRelief([]Octave{{Frequency: 12, Amplitude: 0.01}, {Frequency: 12.5, Amplitude: 0.01}})
	require.ErrorIs(t, err, core.ErrInvalidParameter)
	assert.Contains(t, err.Error(), "octaves[1]")
}

func TestNoiseReliefsBoundedAndSeeded(t *testing.T) {
	for _, kind := range []core.ReliefKind{core.ReliefSimplex, core.ReliefPerlin} {
		t.Run(string(kind), func(t *testing.T) {
			a, err := NewRelief(kind, 42)
			require.NoError(t, err)
			b, err := NewRelief(kind, 42)
			require.NoError(t, err)

			assert.InDelta(t, 0.03, a.Bound(), 1e-12)

			nonZero := false
			for phi := 0.0; phi <= math.Pi; phi += 0.05 {
				for theta := -math.Pi; theta <= math.Pi; theta += 0.05 {
					v := a.Relief(phi, theta)
					require.LessOrEqual(t, math.Abs(v), a.Bound())
					require.Equal(t, v, b.Relief(phi, theta))
					if v != 0 {
						nonZero = true
					}
				}
				assert.InDelta(t, a.Relief(phi, -math.Pi), a.Relief(phi, math.Pi), 1e-9)
			}
			assert.True(t, nonZero)
		})
	}
}

func TestNewReliefUnknownKind(t *testing.T) {
	_, err := NewRelief("fractal", 1)
	assert.ErrorIs(t, err, core.ErrInvalidParameter)
}
