// Package ring implements the dual-array staging buffer described in
// spec.md §4.4: a live input ring the audio thread fills every
// sample, and a windowed complex snapshot the analysis thread reads.
//
// The privileged-construction-seam note in spec.md §9 (friend access
// to in/out in the C++ original) is expressed here as an unexported
// field: only this package's exported methods (FillInput, Advance,
// CopyToOutput, Clear, Out) can touch the backing arrays.
package ring

import "github.com/doismellburning/spectralfx/wavetable"

// Buffer is the audio-thread-owned ring plus the analysis-thread-owned
// snapshot it publishes on wrap.
type Buffer[T wavetable.Sample] struct {
	in           []T
	out          []complex128
	i            int
	window       *wavetable.WaveTable[T]
	viewSize     int
	compensation T
}

// New builds a buffer of size N bound to the given window table
// (length N). compensation restores unity passband under that window
// at 50% overlap (spec.md §9's per-window constant).
func New[T wavetable.Sample](n int, window *wavetable.WaveTable[T], compensation T) *Buffer[T] {
	return &Buffer[T]{
		in:           make([]T, n),
		out:          make([]complex128, n),
		window:       window,
		viewSize:     n / 2,
		compensation: compensation,
	}
}

// Len returns N.
func (b *Buffer[T]) Len() int { return len(b.in) }

// FillInput stores x at the current cursor, scaled by the window's
// compensation constant.
func (b *Buffer[T]) FillInput(x T) {
	b.in[b.i] = x * b.compensation
}

// Advance moves the cursor forward by one sample (mod N) and reports
// whether it just wrapped through a view-size boundary (index 0 or
// N/2) -- the 50%-overlap hop that should trigger an analysis pass.
func (b *Buffer[T]) Advance() bool {
	b.i = (b.i + 1) % len(b.in)
	return b.i%b.viewSize == 0
}

// CopyToOutput windows the current input ring into the complex output
// array: out[k] = in[k]*window[k] + 0i. This is the only legal way to
// publish a snapshot to the analysis thread; after the call, out is
// logically owned by the analysis thread until it signals completion.
func (b *Buffer[T]) CopyToOutput() {
	for k := range b.in {
		b.out[k] = complex(float64(b.in[k])*float64(b.window.At(k)), 0)
	}
}

// Out returns the published complex snapshot for the analysis thread
// to transform in place. Callers must only touch it between a
// CopyToOutput call and the analysis thread's next FillInput-side
// readiness check (enforced by the pipeline's sync gate, not by this
// type).
func (b *Buffer[T]) Out() []complex128 { return b.out }

// ViewSize returns N/2.
func (b *Buffer[T]) ViewSize() int { return b.viewSize }

// Clear zeros both arrays and resets the cursor.
func (b *Buffer[T]) Clear() {
	for i := range b.in {
		b.in[i] = 0
	}
	for i := range b.out {
		b.out[i] = 0
	}
	b.i = 0
}
