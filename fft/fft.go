// Package fft performs the in-place radix-2 Cooley-Tukey transform and
// threshold-and-sort peak extraction described in spec.md §4.6. Phase
// is discarded: the resynthesis downstream only ever consumes bin
// index and magnitude.
package fft

import (
	"math"
	"math/bits"
	"math/cmplx"
	"sort"

	"github.com/doismellburning/spectralfx/twiddle"
)

// MinGainThreshold is the floor (ε) a caller-supplied threshold is
// clamped against; a threshold of exactly zero would let DC noise and
// denormals flood the peak list.
const MinGainThreshold = 1e-6

// BinMag is one entry of the sorted peak map: a frequency bin index
// and its magnitude.
type BinMag struct {
	Index     int
	Magnitude float64
}

// log2 returns log2(n) for a power-of-two n.
func log2(n int) int {
	return bits.TrailingZeros(uint(n))
}

// ForwardInPlace transforms buf (length N, a power of two) in place:
// bit-reversal permutation followed by log2(N) butterfly stages, each
// stage's twiddle factors read from lut. lut's selected stage is left
// at log2(N)-1 on return.
func ForwardInPlace(buf []complex128, lut *twiddle.LUT) {
	n := len(buf)
	if n <= 1 {
		return
	}
	bitReverse(buf)

	logN := log2(n)
	for s := 1; s <= logN; s++ {
		m := 1 << s
		half := m / 2
		lut.Select(s - 1)
		for r := 0; r < n/m; r++ {
			base := r * m
			for k := 0; k < half; k++ {
				tau := lut.Get(k) * buf[base+k+half]
				buf[base+k+half] = buf[base+k] - tau
				buf[base+k] += tau
			}
		}
	}
}

// bitReverse permutes buf into bit-reversed index order, the standard
// precondition for an in-place iterative Cooley-Tukey transform.
func bitReverse(buf []complex128) {
	n := len(buf)
	logN := log2(n)
	for j := 0; j < n; j++ {
		r := 0
		for s := 0; s < logN; s++ {
			r = (r << 1) | ((j >> s) & 1)
		}
		if j < r {
			buf[j], buf[r] = buf[r], buf[j]
		}
	}
}

// ExtractPeaks scans buf[0:viewSize) (viewSize = N/2) for bins whose
// magnitude meets threshold (clamped to [MinGainThreshold, viewSize]),
// writes them into out (which must have capacity >= viewSize) sorted
// by descending magnitude, and returns how many entries are valid.
// Entries at out[valid:] are left untouched.
func ExtractPeaks(buf []complex128, viewSize int, threshold float64, out []BinMag) int {
	threshold = clampThreshold(threshold, viewSize)

	valid := 0
	for k := 0; k < viewSize; k++ {
		mag := cmplx.Abs(buf[k])
		if mag >= threshold {
			out[valid] = BinMag{Index: k, Magnitude: mag}
			valid++
		}
	}

	sort.Slice(out[:valid], func(i, j int) bool {
		return out[i].Magnitude > out[j].Magnitude
	})
	return valid
}

func clampThreshold(threshold float64, viewSize int) float64 {
	lo := MinGainThreshold
	hi := float64(viewSize)
	return math.Max(lo, math.Min(hi, threshold))
}
