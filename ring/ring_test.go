package ring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/doismellburning/spectralfx/wavetable"
)

func TestAdvanceWrapsThroughViewSize(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		shift := rapid.IntRange(3, 9).Draw(t, "log2n")
		n := 1 << shift
		win := wavetable.NewHann[float64](n)
		b := New[float64](n, win, 1.0)

		wrapCount := 0
		for i := 0; i < n; i++ {
			if b.Advance() {
				wrapCount++
				assert.Equal(t, 0, b.i%b.viewSize)
			}
		}
		assert.Equal(t, 2, wrapCount)
	})
}

func TestCopyToOutputAppliesWindow(t *testing.T) {
	n := 16
	win := wavetable.NewHann[float64](n)
	b := New[float64](n, win, 1.0)
	for i := 0; i < n; i++ {
		b.FillInput(1.0)
		b.Advance()
	}
	b.CopyToOutput()
	out := b.Out()
	for k := 0; k < n; k++ {
		assert.InDelta(t, win.At(k), real(out[k]), 1e-9)
		assert.InDelta(t, 0, imag(out[k]), 1e-9)
	}
}

func TestClearZeroesAndResetsCursor(t *testing.T) {
	n := 8
	win := wavetable.NewHann[float64](n)
	b := New[float64](n, win, 1.2)
	for i := 0; i < 20; i++ {
		b.FillInput(5)
		b.Advance()
	}
	b.CopyToOutput()
	b.Clear()
	assert.Equal(t, 0, b.i)
	for _, v := range b.in {
		assert.Equal(t, 0.0, v)
	}
	for _, v := range b.out {
		assert.Equal(t, complex(0, 0), v)
	}
}

func TestFillInputAppliesCompensation(t *testing.T) {
	n := 8
	win := wavetable.NewHann[float64](n)
	b := New[float64](n, win, 1.2)
	b.FillInput(1.0)
	assert.InDelta(t, 1.2, b.in[0], 1e-9)
}
