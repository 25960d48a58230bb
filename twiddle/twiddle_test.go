package twiddle

import (
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStageZeroIsUnity(t *testing.T) {
	l := New()
	l.Select(0)
	assert.InDelta(t, 1.0, real(l.Get(0)), 1e-12)
	assert.InDelta(t, 0.0, imag(l.Get(0)), 1e-12)
}

func TestSelectClamps(t *testing.T) {
	l := New()
	l.Select(-5)
	assert.Equal(t, 0, l.current)
	l.Select(99)
	assert.Equal(t, Stages-1, l.current)
}

func TestStageOneIsNegativeI(t *testing.T) {
	// Array i has length 2^i and denominator M = 2^i (spec.md §4.2), so
	// stage 1's single nontrivial entry is e^{-iπ/2} = -i. A denominator
	// of 2^(i+1) would instead give e^{-iπ/4}, so this catches that
	// factor-of-2 regression directly, unlike a bare magnitude check.
	l := New()
	l.Select(1)
	assert.InDelta(t, 0.0, real(l.Get(1)), 1e-12)
	assert.InDelta(t, -1.0, imag(l.Get(1)), 1e-12)
}

func TestMagnitudeIsUnitCircle(t *testing.T) {
	l := New()
	for stage := 0; stage < Stages; stage++ {
		l.Select(stage)
		for k := 0; k < 1<<stage; k++ {
			assert.InDelta(t, 1.0, cmplx.Abs(l.Get(k)), 1e-9)
		}
	}
}
