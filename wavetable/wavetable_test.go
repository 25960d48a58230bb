package wavetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestEqualizeEndAndBeginBitExact(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		shift := rapid.IntRange(4, 11).Draw(t, "log2size")
		size := 1 << shift
		wt := NewSine[float64](size)
		assert.Equal(t, wt.At(0), wt.At(size-1))
	})
}

func TestStandardWaveformsSpanUnitRange(t *testing.T) {
	for name, build := range map[string]func(int) *WaveTable[float64]{
		"sine":     NewSine[float64],
		"square":   NewSquare[float64],
		"saw":      NewSaw[float64],
		"triangle": NewTriangle[float64],
	} {
		t.Run(name, func(t *testing.T) {
			wt := build(256)
			for i := 0; i < wt.Len(); i++ {
				v := wt.At(i)
				assert.GreaterOrEqualf(t, v, -1.0001, "index %d below -1: %v", i, v)
				assert.LessOrEqualf(t, v, 1.0001, "index %d above 1: %v", i, v)
			}
		})
	}
}

func TestHannWindowEndpointsNearZero(t *testing.T) {
	wt := NewHann[float64](1024)
	assert.InDelta(t, 0.0, wt.At(0), 1e-9)
	assert.InDelta(t, 0.0, wt.At(wt.Len()-1), 1e-9)
}

func TestBartlettPeaksAtCenter(t *testing.T) {
	wt := NewBartlett[float64](1025)
	center := wt.Len() / 2
	assert.InDelta(t, 1.0, wt.At(center), 1e-9)
	assert.Less(t, wt.At(0), wt.At(center))
}

func TestSquareHalves(t *testing.T) {
	wt := NewSquare[float64](8)
	assert.Equal(t, -1.0, wt.At(0))
	assert.Equal(t, 1.0, wt.At(4))
}
