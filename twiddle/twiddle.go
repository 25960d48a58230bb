// Package twiddle precomputes the complex exponentials consumed by the
// FFT butterfly, removing every exp/sin/cos call from the analysis
// hot path.
package twiddle

import "math/cmplx"
import "math"

// Stages is the number of precomputed arrays: a power-of-two FFT of
// size up to 2048 (log2N = 11) needs one twiddle array per butterfly
// stage.
const Stages = 11

// LUT holds one complex array per FFT stage. Array i has length 2^i
// and element k equal to e^{-iπk/M} where M = 2^i is the array length
// of that stage.
type LUT struct {
	arrays  [Stages][]complex128
	current int
}

// New builds the full family of Stages arrays.
func New() *LUT {
	l := &LUT{}
	for i := 0; i < Stages; i++ {
		m := 1 << i
		arr := make([]complex128, 1<<i)
		for k := range arr {
			arr[k] = cmplx.Exp(complex(0, -math.Pi*float64(k)/float64(m)))
		}
		l.arrays[i] = arr
	}
	return l
}

// Select sets the active stage, clamped to [0, Stages).
func (l *LUT) Select(stage int) {
	if stage < 0 {
		stage = 0
	}
	if stage >= Stages {
		stage = Stages - 1
	}
	l.current = stage
}

// Get returns arrays[current][k] without bounds checking; callers must
// keep k within the array length implied by the selected stage.
func (l *LUT) Get(k int) complex128 {
	return l.arrays[l.current][k]
}
